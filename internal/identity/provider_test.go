package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/mentorhood/mentorhood/internal/domain"
	"github.com/mentorhood/mentorhood/internal/localstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFunc func(ctx context.Context, email, password string) (domain.Identity, error)

func (f authFunc) Login(ctx context.Context, email, password string) (domain.Identity, error) {
	return f(ctx, email, password)
}

func TestEmptyStoreIsSignedOut(t *testing.T) {
	p := NewProvider(context.Background(), localstore.NewMemory())
	_, err := p.Current()
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Equal(t, "", p.Token())
}

func TestLoginPersistsAndLogoutClears(t *testing.T) {
	ctx := context.Background()
	store := localstore.NewMemory()
	require.NoError(t, store.Set(ctx, MentorFormDataKey, map[string]string{"step": "2"}))

	p := NewProvider(ctx, store)
	auth := authFunc(func(_ context.Context, email, _ string) (domain.Identity, error) {
		return domain.Identity{Email: email, UserID: "u1", Token: "jwt", Role: domain.RoleMentor}, nil
	})

	id, err := p.Login(ctx, auth, "m@example.com", "pw")
	require.NoError(t, err)
	assert.True(t, id.IsMentor())
	assert.Equal(t, "jwt", p.Token())

	other := NewProvider(ctx, store)
	got, err := other.Current()
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)

	require.NoError(t, p.Logout(ctx))
	_, err = p.Current()
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	found, err := store.Get(ctx, MentorFormDataKey, &map[string]string{})
	require.NoError(t, err)
	assert.False(t, found)

	// other view still holds its copy until it refreshes
	_, err = other.Current()
	require.NoError(t, err)
	require.NoError(t, other.Refresh(ctx))
	_, err = other.Current()
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestFailedLoginKeepsState(t *testing.T) {
	p := NewProvider(context.Background(), localstore.NewMemory())
	boom := errors.New("401")
	_, err := p.Login(context.Background(), authFunc(func(context.Context, string, string) (domain.Identity, error) {
		return domain.Identity{}, boom
	}), "a", "b")
	assert.ErrorIs(t, err, boom)
	_, err = p.Current()
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestCorruptRecordIsSignedOut(t *testing.T) {
	store := localstore.NewMemory()
	require.NoError(t, store.Set(context.Background(), UserKey, "not an object"))
	p := NewProvider(context.Background(), store)
	_, err := p.Current()
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}
