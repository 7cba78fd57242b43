package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"eventdesk/internal/domain/account"
)

// AccountStoreForSeed defines the store methods needed by SeedAdmin.
type AccountStoreForSeed interface {
	Count(ctx context.Context) (int, error)
	Save(ctx context.Context, a account.Account) error
}

// SeedAdminInput carries the bootstrap admin credentials.
type SeedAdminInput struct {
	Email    string
	Password string
}

// SeedAdminDeps holds dependencies for SeedAdmin.
type SeedAdminDeps struct {
	AccountStore AccountStoreForSeed
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteSeedAdmin creates the first admin account on an empty database.
// PRE: none
// POST: Returns true when an account was created; false when accounts already
// exist or no credentials were configured
func ExecuteSeedAdmin(ctx context.Context, input SeedAdminInput, deps SeedAdminDeps) (bool, error) {
	if input.Email == "" || input.Password == "" {
		return false, nil
	}
	n, err := deps.AccountStore.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	genID, now := deps.GenerateID, deps.Now
	if genID == nil {
		genID = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}
	acct := account.Account{
		ID:        genID(),
		Email:     input.Email,
		Role:      account.RoleAdmin,
		CreatedAt: now().UTC(),
	}
	if err := acct.Validate(); err != nil {
		return false, err
	}
	if err := acct.SetPassword(input.Password); err != nil {
		return false, err
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return false, err
	}
	slog.Info("admin_seeded", "email", acct.Email)
	return true, nil
}
