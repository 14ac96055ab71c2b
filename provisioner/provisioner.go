// Package provisioner mirrors auth identities into the users table.
// Profile writes are retried because the profile row is what every
// other feature keys on; an identity without one is an orphan.
package provisioner

import (
	"context"

	"academy-backend/models"
	"academy-backend/retry"

	"go.uber.org/zap"
)

// Profile is the users row mirrored from an identity.
type Profile struct {
	ID       string
	FullName string
	Email    string
	Role     models.Role
	Approved bool
}

// ProfileStore is the persistence surface the provisioner writes
// through.
type ProfileStore interface {
	Exists(ctx context.Context, id string) (bool, error)
	Upsert(ctx context.Context, profile Profile) error
}

// Provisioner creates profile rows with retry.
type Provisioner struct {
	store  ProfileStore
	policy retry.Policy
	log    *zap.Logger
}

// New builds a Provisioner with the default retry policy.
func New(store ProfileStore, log *zap.Logger) *Provisioner {
	return &Provisioner{store: store, policy: retry.Default(), log: log}
}

// NewWithPolicy builds a Provisioner with an explicit policy.
func NewWithPolicy(store ProfileStore, policy retry.Policy, log *zap.Logger) *Provisioner {
	return &Provisioner{store: store, policy: policy, log: log}
}

// Provision writes the profile row for an identity. A row that already
// exists counts as success; nothing is written over it. On failure the
// returned error wraps every attempt's error.
func (p *Provisioner) Provision(ctx context.Context, profile Profile) error {
	attempt := 0
	err := p.policy.Do(ctx, func(ctx context.Context) error {
		attempt++

		exists, err := p.store.Exists(ctx, profile.ID)
		if err != nil {
			// The existence check is only an idempotence guard; the
			// upsert below is safe to run without it.
			p.log.Warn("profile existence check failed",
				zap.String("user_id", profile.ID),
				zap.Int("attempt", attempt),
				zap.Error(err))
		} else if exists {
			p.log.Info("profile already exists, skipping creation",
				zap.String("user_id", profile.ID))
			return nil
		}

		if err := p.store.Upsert(ctx, profile); err != nil {
			p.log.Warn("profile upsert failed",
				zap.String("user_id", profile.ID),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return err
		}

		p.log.Info("profile created",
			zap.String("user_id", profile.ID),
			zap.Int("attempt", attempt))
		return nil
	})

	if err != nil {
		p.log.Error("profile provisioning gave up",
			zap.String("user_id", profile.ID),
			zap.Error(err))
	}
	return err
}
