package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	info  Info
	err   error
	calls int
}

func (f *fakeAuth) SignIn(ctx context.Context, email, password string) (Info, error) {
	f.calls++
	return f.info, f.err
}

func TestStore_SignInAndOut(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	auth := &fakeAuth{info: Info{UserID: "u1", Email: "op@plant.io", Token: "tok", ExpiresAt: now.Add(time.Hour)}}
	s := NewStore(auth)
	s.now = func() time.Time { return now }

	assert.Empty(t, s.Actor())
	assert.Empty(t, s.Token())

	_, err := s.SignIn(context.Background(), "op@plant.io", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u1", s.Actor())
	assert.Equal(t, "tok", s.Token())

	s.SignOut()
	assert.Empty(t, s.Actor())
}

func TestStore_ExpiredSessionHasNoActor(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(&fakeAuth{info: Info{UserID: "u1", ExpiresAt: now.Add(time.Minute)}})
	s.now = func() time.Time { return now }

	_, err := s.SignIn(context.Background(), "op@plant.io", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u1", s.Actor())

	s.now = func() time.Time { return now.Add(time.Minute) }
	_, ok := s.Current()
	assert.False(t, ok)
	assert.Empty(t, s.Actor())
}

func TestStore_SignInFailureKeepsPreviousState(t *testing.T) {
	auth := &fakeAuth{err: errors.New("invalid email or password")}
	s := NewStore(auth)

	_, err := s.SignIn(context.Background(), "op@plant.io", "bad")
	assert.EqualError(t, err, "invalid email or password")
	assert.Empty(t, s.Actor())

	_, err = s.SignIn(context.Background(), "  ", "pw")
	assert.Error(t, err)
	assert.Equal(t, 1, auth.calls, "blank email never reaches the authenticator")
}
