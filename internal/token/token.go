// Package token issues and verifies the opaque verification tokens that
// end up inside reservation QR codes.  A token is an HS256-signed JWT
// carrying the reservation ID; the signature makes it unforgeable and a
// random jti claim makes every issued token unique, so a token can never
// be replayed against a different reservation or a later hold on the
// same stall.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned by Verify for any token that was not
// issued by this Issuer: bad signature, wrong algorithm, malformed
// payload or a missing reservation claim.
var ErrInvalidToken = errors.New("invalid or expired token")

// Issuer signs and verifies verification tokens with a server-held
// secret.  The clock is injected so tests can control issuance times.
type Issuer struct {
	secret []byte
	now    func() time.Time
}

// NewIssuer constructs an Issuer.  The secret must be non-empty; now may
// be nil, in which case time.Now (UTC) is used.
func NewIssuer(secret string, now func() time.Time) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("token: empty signing secret")
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Issuer{secret: []byte(secret), now: now}, nil
}

// Issue creates a fresh token for the given reservation.  The jti claim
// is 16 bytes of crypto/rand data, so two calls never produce the same
// string even for the same reservation.
func (i *Issuer) Issue(reservationID string) (string, error) {
	jti, err := randomHex(16)
	if err != nil {
		return "", fmt.Errorf("token: generate jti: %w", err)
	}
	claims := jwt.MapClaims{
		"sub": reservationID,
		"jti": jti,
		"iat": i.now().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Verify checks the signature of a presented token and returns the
// reservation ID it was issued for.  Any mutation of the token string
// causes ErrInvalidToken.
func (i *Issuer) Verify(raw string) (string, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return i.secret, nil
	})
	if err != nil || !tok.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
