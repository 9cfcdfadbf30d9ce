package onboarding

import (
	"context"
	"errors"
	"math/rand"
	"testing"
)

type fakeAccountPort struct {
	updateErr error
	profiles  []string
}

func (f *fakeAccountPort) UpdateProfile(ctx context.Context, userID, username, displayName string) error {
	f.profiles = append(f.profiles, displayName)
	return f.updateErr
}

type fakeBankrollPort struct {
	grantErr error
	granted  bool
	calls    []bankrollCall
}

type bankrollCall struct {
	userID   string
	amount   int64
	metadata map[string]interface{}
}

func (f *fakeBankrollPort) GrantStartingBankrollOnce(ctx context.Context, userID string, amount int64, metadata map[string]interface{}) (bool, error) {
	f.calls = append(f.calls, bankrollCall{
		userID:   userID,
		amount:   amount,
		metadata: metadata,
	})
	if f.grantErr != nil {
		return false, f.grantErr
	}
	return f.granted, nil
}

func TestOnboardNewUser_GrantsStartingBankroll(t *testing.T) {
	bankroll := &fakeBankrollPort{granted: true}
	service := NewService(&fakeAccountPort{}, bankroll, 2500, rand.New(rand.NewSource(1)))

	result, err := service.OnboardNewUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("OnboardNewUser returned error: %v", err)
	}
	if result.ProfileUpdateErr != nil {
		t.Fatalf("Expected no profile update error, got %v", result.ProfileUpdateErr)
	}

	if len(bankroll.calls) != 1 {
		t.Fatalf("Expected 1 bankroll grant call, got %d", len(bankroll.calls))
	}
	if bankroll.calls[0].amount != 2500 {
		t.Fatalf("Expected bankroll of 2500, got %d", bankroll.calls[0].amount)
	}
	if bankroll.calls[0].userID != "user-1" {
		t.Fatalf("Expected grant for user-1, got %s", bankroll.calls[0].userID)
	}
	if !result.BankrollGranted {
		t.Fatal("Expected bankroll to be marked as granted")
	}
}

func TestOnboardNewUser_DefaultsAmount(t *testing.T) {
	bankroll := &fakeBankrollPort{granted: true}
	service := NewService(&fakeAccountPort{}, bankroll, 0, rand.New(rand.NewSource(1)))

	if _, err := service.OnboardNewUser(context.Background(), "user-1"); err != nil {
		t.Fatalf("OnboardNewUser returned error: %v", err)
	}
	if len(bankroll.calls) != 1 || bankroll.calls[0].amount != 1000 {
		t.Fatalf("Expected default bankroll of 1000, got %+v", bankroll.calls)
	}
}

func TestOnboardNewUser_ProfileFailureStillGrantsBankroll(t *testing.T) {
	bankroll := &fakeBankrollPort{granted: true}
	service := NewService(&fakeAccountPort{updateErr: errors.New("update failed")}, bankroll, 0, rand.New(rand.NewSource(1)))

	result, err := service.OnboardNewUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("OnboardNewUser returned error: %v", err)
	}
	if result.ProfileUpdateErr == nil {
		t.Fatal("Expected profile update error to be captured")
	}

	if len(bankroll.calls) != 1 {
		t.Fatalf("Expected 1 bankroll grant call, got %d", len(bankroll.calls))
	}
	if !result.BankrollGranted {
		t.Fatal("Expected bankroll to be marked as granted")
	}
}

func TestOnboardNewUser_BankrollFailureReturnsError(t *testing.T) {
	service := NewService(&fakeAccountPort{}, &fakeBankrollPort{grantErr: errors.New("wallet failed")}, 0, rand.New(rand.NewSource(1)))

	if _, err := service.OnboardNewUser(context.Background(), "user-1"); err == nil {
		t.Fatal("Expected error when the bankroll grant fails")
	}
}

func TestOnboardNewUser_BankrollAlreadyGranted(t *testing.T) {
	bankroll := &fakeBankrollPort{granted: false}
	service := NewService(&fakeAccountPort{}, bankroll, 0, rand.New(rand.NewSource(1)))

	result, err := service.OnboardNewUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("OnboardNewUser returned error: %v", err)
	}
	if result.BankrollGranted {
		t.Fatal("Expected bankroll to be marked as already granted")
	}
}

func TestGeneratedNamesVary(t *testing.T) {
	service := NewService(&fakeAccountPort{}, &fakeBankrollPort{granted: true}, 0, rand.New(rand.NewSource(7)))

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		seen[service.generateFriendlyName()] = true
	}
	if len(seen) < 2 {
		t.Fatalf("Expected varied generated names, got %d distinct", len(seen))
	}
}
