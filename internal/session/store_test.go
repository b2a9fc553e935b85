package session

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/atongani/market-client/internal/core/ports"
)

type failingStorage struct {
	loadErr, saveErr, deleteErr error
	deletes                     int
}

func (f *failingStorage) Load(context.Context) (string, error) { return "", f.loadErr }
func (f *failingStorage) Save(context.Context, string) error   { return f.saveErr }
func (f *failingStorage) Delete(context.Context) error {
	f.deletes++
	return f.deleteErr
}

func TestStore_SetPersistsAndSurvivesReload(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()

	first := NewStore(storage, zerolog.Nop())
	require.NoError(t, first.Set(ctx, "tok-1"))
	require.Equal(t, "tok-1", first.Token())
	require.True(t, first.Present())

	reloaded := NewStore(storage, zerolog.Nop())
	require.False(t, reloaded.Present())
	require.NoError(t, reloaded.Load(ctx))
	require.Equal(t, "tok-1", reloaded.Token())
}

func TestStore_LoadWithoutToken(t *testing.T) {
	s := NewStore(NewMemoryStorage(), zerolog.Nop())
	require.NoError(t, s.Load(context.Background()))
	require.False(t, s.Present())
}

func TestStore_ClearRemovesDurableCopy(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	s := NewStore(storage, zerolog.Nop())
	require.NoError(t, s.Set(ctx, "tok"))

	require.NoError(t, s.Clear(ctx))
	require.Equal(t, "", s.Token())

	_, err := storage.Load(ctx)
	require.ErrorIs(t, err, ports.ErrTokenNotFound)
}

func TestStore_SetEmptyClears(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemoryStorage(), zerolog.Nop())
	require.NoError(t, s.Set(ctx, "tok"))
	require.NoError(t, s.Set(ctx, ""))
	require.False(t, s.Present())
}

func TestStore_SaveFailureKeepsPreviousToken(t *testing.T) {
	ctx := context.Background()
	storage := &failingStorage{loadErr: ports.ErrTokenNotFound}
	s := NewStore(storage, zerolog.Nop())

	storage.saveErr = errors.New("disk full")
	require.Error(t, s.Set(ctx, "tok"))
	require.False(t, s.Present())
}

func TestStore_ClearDropsTokenEvenWhenDeleteFails(t *testing.T) {
	ctx := context.Background()
	storage := &failingStorage{}
	s := NewStore(storage, zerolog.Nop())
	require.NoError(t, s.Set(ctx, "tok"))

	storage.deleteErr = errors.New("redis down")
	require.Error(t, s.Clear(ctx))
	require.False(t, s.Present())
	require.Equal(t, 1, storage.deletes)
}

func TestStore_LoadPropagatesStorageError(t *testing.T) {
	s := NewStore(&failingStorage{loadErr: errors.New("permission denied")}, zerolog.Nop())
	require.Error(t, s.Load(context.Background()))
}
