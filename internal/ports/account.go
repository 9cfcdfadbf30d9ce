package ports

import "context"

// AccountPort defines the interface for account profile writes. Onboarding
// uses it to stamp a generated display name on fresh accounts so tables never
// show a blank seat label.
type AccountPort interface {
	// UpdateProfile applies username and display name to the given account.
	UpdateProfile(ctx context.Context, userID, username, displayName string) error
}
