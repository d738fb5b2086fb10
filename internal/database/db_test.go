package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/exhibition-stall-reservation/internal/config"
)

func TestDSN(t *testing.T) {
	cfg := config.Config{
		DBUser: "app",
		DBPass: "s3cret",
		DBHost: "db.internal",
		DBPort: "3306",
		DBName: "stalls",
	}
	assert.Equal(t,
		"app:s3cret@tcp(db.internal:3306)/stalls?charset=utf8mb4&parseTime=true&loc=UTC",
		dsn(cfg))
}

func TestDSNEmptyPassword(t *testing.T) {
	cfg := config.Config{
		DBUser: "app",
		DBHost: "localhost",
		DBPort: "3306",
		DBName: "stalls",
	}
	assert.Equal(t,
		"app@tcp(localhost:3306)/stalls?charset=utf8mb4&parseTime=true&loc=UTC",
		dsn(cfg))
}
