package app

import (
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

// DefaultReservationTTL bounds how long an issued seat reservation stays
// redeemable.
const DefaultReservationTTL = 30 * time.Second

// ReservationService issues and verifies signed seat reservations. A
// reservation pins one user to one table for a short window, so a lobby can
// promise a seat before the client finishes the match join handshake.
type ReservationService struct {
	secret string
	ttl    time.Duration
	now    func() time.Time
}

// NewReservationService builds a reservation signer. An empty secret leaves
// the service disabled; ttl values at or below zero take the default.
func NewReservationService(secret string, ttl time.Duration) *ReservationService {
	if ttl <= 0 {
		ttl = DefaultReservationTTL
	}
	return &ReservationService{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Enabled reports whether a signing secret is configured.
func (s *ReservationService) Enabled() bool {
	return s != nil && s.secret != ""
}

// Issue signs a reservation pinning userID to tableID until the TTL runs out.
// It returns the token and its expiry.
func (s *ReservationService) Issue(userID, tableID string) (string, time.Time, error) {
	if !s.Enabled() {
		return "", time.Time{}, fmt.Errorf("reservations are not enabled")
	}
	if userID == "" {
		return "", time.Time{}, fmt.Errorf("user is required")
	}
	if tableID == "" {
		return "", time.Time{}, fmt.Errorf("table is required")
	}

	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.ttl)
	claims := jwt.MapClaims{
		"sub": userID,
		"mid": tableID,
		"iat": issuedAt.Unix(),
		"exp": expiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign reservation: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks the token signature and expiry and that the reservation was
// issued to this user for this table.
func (s *ReservationService) Verify(tokenString, userID, tableID string) error {
	if !s.Enabled() {
		return fmt.Errorf("reservations are not enabled")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return fmt.Errorf("failed to parse reservation: %w", err)
	}
	if !token.Valid {
		return fmt.Errorf("reservation is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return fmt.Errorf("reservation claims are malformed")
	}
	if sub, _ := claims["sub"].(string); sub != userID {
		return fmt.Errorf("reservation was issued to another user")
	}
	if mid, _ := claims["mid"].(string); mid != tableID {
		return fmt.Errorf("reservation is for another table")
	}
	return nil
}
