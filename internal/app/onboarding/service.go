package onboarding

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"blackjack/internal/ports"
	"blackjack/internal/stake"
)

// Result captures non-fatal onboarding outcomes.
type Result struct {
	// ProfileUpdateErr is set when the profile update failed but onboarding continued.
	ProfileUpdateErr error
	// BankrollGranted is false when the starting bankroll had already been granted.
	BankrollGranted bool
}

// Service handles post-auth onboarding for new users.
type Service struct {
	accounts ports.AccountPort
	bankroll ports.BankrollPort
	amount   int64
	rng      *rand.Rand
}

// NewService constructs an onboarding service with required ports.
// accounts/bankroll must be non-nil; amount may be zero to use the default
// starting bankroll and rng may be nil to use a time-seeded default.
func NewService(accounts ports.AccountPort, bankroll ports.BankrollPort, amount int64, rng *rand.Rand) *Service {
	if amount <= 0 {
		amount = stake.DefaultStartingBalance
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		accounts: accounts,
		bankroll: bankroll,
		amount:   amount,
		rng:      rng,
	}
}

// OnboardNewUser initializes profile and wallet for a newly created account.
// Returns a Result with any non-fatal issues and an error if the starting
// bankroll cannot be granted. The grant is once-only, so an account that
// re-authenticates as "created" after a partial first run is not paid twice.
func (s *Service) OnboardNewUser(ctx context.Context, userID string) (Result, error) {
	if s.accounts == nil || s.bankroll == nil {
		return Result{}, fmt.Errorf("onboarding service not configured")
	}

	result := Result{}
	displayName := s.generateFriendlyName()
	if err := s.accounts.UpdateProfile(ctx, userID, displayName, displayName); err != nil {
		// Profile updates are best-effort; the bankroll grant is what matters.
		result.ProfileUpdateErr = err
	}

	granted, err := s.bankroll.GrantStartingBankrollOnce(ctx, userID, s.amount, map[string]interface{}{
		"reason": "starting_bankroll",
	})
	if err != nil {
		return result, fmt.Errorf("failed to grant starting bankroll: %w", err)
	}
	result.BankrollGranted = granted

	return result, nil
}

func (s *Service) generateFriendlyName() string {
	adjectives := []string{"Lucky", "Golden", "Silent", "Smooth", "Bold", "Icy", "Neon", "Royal", "Velvet", "High"}
	nouns := []string{"Ace", "Jack", "Duke", "Shark", "Whale", "Maverick", "Baron", "Joker", "Count", "Raven"}

	adj := adjectives[s.rng.Intn(len(adjectives))]
	noun := nouns[s.rng.Intn(len(nouns))]
	num := s.rng.Intn(9000) + 1000

	return fmt.Sprintf("%s%s%d", adj, noun, num)
}
