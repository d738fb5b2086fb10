package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/exhibition-stall-reservation/internal/config"
	"github.com/iliyamo/exhibition-stall-reservation/internal/database"
	"github.com/iliyamo/exhibition-stall-reservation/internal/handler"
	"github.com/iliyamo/exhibition-stall-reservation/internal/ledger"
	"github.com/iliyamo/exhibition-stall-reservation/internal/model"
	"github.com/iliyamo/exhibition-stall-reservation/internal/queue"
	"github.com/iliyamo/exhibition-stall-reservation/internal/registry"
	"github.com/iliyamo/exhibition-stall-reservation/internal/repository"
	"github.com/iliyamo/exhibition-stall-reservation/internal/router"
	"github.com/iliyamo/exhibition-stall-reservation/internal/sweeper"
	"github.com/iliyamo/exhibition-stall-reservation/internal/token"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()
	ctx := context.Background()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}

	stallRepo := repository.NewStallRepo(db)
	stalls, err := stallRepo.List(ctx)
	if err != nil {
		log.Fatalf("load floor plan: %v", err)
	}
	if len(stalls) == 0 && cfg.Env == "dev" {
		log.Println("empty floor plan, seeding dev layout")
		if err := stallRepo.CreateBulk(ctx, devFloorPlan()); err != nil {
			log.Fatalf("seed floor plan: %v", err)
		}
		if stalls, err = stallRepo.List(ctx); err != nil {
			log.Fatalf("load floor plan: %v", err)
		}
	}
	reg, err := registry.New(stalls)
	if err != nil {
		log.Fatalf("build stall registry: %v", err)
	}

	issuer, err := token.NewIssuer(cfg.TokenSecret, nil)
	if err != nil {
		log.Fatalf("token issuer: %v", err)
	}

	led := ledger.New(reg, repository.NewReservationRepo(db), issuer, ledger.Config{HoldTTL: cfg.HoldTTL})
	if err := led.Load(ctx); err != nil {
		log.Fatalf("rebuild ledger: %v", err)
	}

	go sweeper.New(led, cfg.SweepInterval, nil).Run(ctx)
	go func() {
		if err := queue.StartConfirmationConsumer(); err != nil {
			log.Printf("confirmation consumer stopped: %v", err)
		}
	}()

	rdb := config.NewRedisClient(cfg)
	if rdb == nil {
		log.Println("redis unavailable, rate limiting disabled")
	}

	e := echo.New()
	router.Register(e,
		handler.NewVendorHandler(led, reg),
		handler.NewEmployeeHandler(led, reg),
		handler.NewPublicHandler(led),
		cfg.IdentityJWTSecret,
		config.LoadRateLimitConfig(),
		rdb,
	)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, stalls=%d)", addr, cfg.Env, reg.Len())
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// devFloorPlan returns the layout seeded into empty dev databases:
// three rows of stalls, one per size class.
func devFloorPlan() []model.Stall {
	sizes := []struct {
		size       model.StallSize
		dimensions string
		priceCents uint32
	}{
		{model.SizeSmall, "2m x 2m", 500000},
		{model.SizeMedium, "3m x 3m", 900000},
		{model.SizeLarge, "4m x 4m", 1500000},
	}
	var stalls []model.Stall
	for row, s := range sizes {
		for col := 0; col < 6; col++ {
			stalls = append(stalls, model.Stall{
				Name:       fmt.Sprintf("%c-%d", 'A'+row, col+1),
				Size:       s.size,
				Dimensions: s.dimensions,
				PriceCents: s.priceCents,
				FloorRow:   uint32(row),
				FloorCol:   uint32(col),
			})
		}
	}
	return stalls
}
