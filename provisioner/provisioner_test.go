package provisioner

import (
	"context"
	"errors"
	"testing"
	"time"

	"academy-backend/models"
	"academy-backend/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	existing    map[string]bool
	existsErr   error
	upsertErrs  []error
	upsertCalls int
}

func (f *fakeStore) Exists(ctx context.Context, id string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.existing[id], nil
}

func (f *fakeStore) Upsert(ctx context.Context, profile Profile) error {
	f.upsertCalls++
	if len(f.upsertErrs) > 0 {
		err := f.upsertErrs[0]
		f.upsertErrs = f.upsertErrs[1:]
		return err
	}
	if f.existing == nil {
		f.existing = map[string]bool{}
	}
	f.existing[profile.ID] = true
	return nil
}

func fastPolicy() retry.Policy {
	p := retry.Default()
	p.Backoff = func(n int) time.Duration { return 0 }
	return p
}

func testProfile() Profile {
	return Profile{
		ID:       "2b1f4a0e-7c11-4a57-9a3d-111111111111",
		FullName: "Test Player",
		Email:    "player@example.com",
		Role:     models.RolePlayer,
		Approved: true,
	}
}

func TestProvisionCreatesProfile(t *testing.T) {
	store := &fakeStore{}
	p := NewWithPolicy(store, fastPolicy(), zap.NewNop())

	err := p.Provision(context.Background(), testProfile())

	require.NoError(t, err)
	assert.Equal(t, 1, store.upsertCalls)
}

func TestProvisionSkipsExistingProfile(t *testing.T) {
	profile := testProfile()
	store := &fakeStore{existing: map[string]bool{profile.ID: true}}
	p := NewWithPolicy(store, fastPolicy(), zap.NewNop())

	err := p.Provision(context.Background(), profile)

	require.NoError(t, err)
	assert.Zero(t, store.upsertCalls, "existing row must not be written again")
}

func TestProvisionRetriesTransientFailures(t *testing.T) {
	store := &fakeStore{
		upsertErrs: []error{
			errors.New("connection reset"),
			errors.New("connection reset"),
		},
	}
	p := NewWithPolicy(store, fastPolicy(), zap.NewNop())

	err := p.Provision(context.Background(), testProfile())

	require.NoError(t, err)
	assert.Equal(t, 3, store.upsertCalls)
}

func TestProvisionReturnsLastErrorAfterSevenFailures(t *testing.T) {
	errs := make([]error, 7)
	for i := range errs {
		errs[i] = errors.New("write failed")
	}
	errs[6] = errors.New("disk full")
	store := &fakeStore{upsertErrs: errs}
	p := NewWithPolicy(store, fastPolicy(), zap.NewNop())

	err := p.Provision(context.Background(), testProfile())

	require.Error(t, err)
	assert.Equal(t, 7, store.upsertCalls)

	var rerr *retry.Error
	require.ErrorAs(t, err, &rerr)
	assert.Len(t, rerr.Attempts, 7)
	assert.EqualError(t, rerr.Last(), "disk full")
}

func TestProvisionToleratesExistenceCheckFailure(t *testing.T) {
	store := &fakeStore{existsErr: errors.New("timeout")}
	p := NewWithPolicy(store, fastPolicy(), zap.NewNop())

	err := p.Provision(context.Background(), testProfile())

	require.NoError(t, err)
	assert.Equal(t, 1, store.upsertCalls)
}
