package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"catfish/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return New(client)
}

func lobbyGame(code string) *models.Game {
	return &models.Game{
		Code:       code,
		GameType:   "catfish",
		Status:     models.StatusLobby,
		HostUID:    "host-uid",
		MinPlayers: 3,
		MaxPlayers: 20,
		CreatedAt:  time.Now().UTC(),
		Players: map[string]*models.Player{
			"host-uid": {Username: "Alice", IsHost: true, JoinedAt: time.Now().UTC()},
		},
	}
}

func TestCreateGameRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateGame(ctx, lobbyGame("ABCDEF"))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	resolved, err := s.GetGameIDByCode(ctx, "ABCDEF")
	require.NoError(t, err)
	assert.Equal(t, id, resolved)

	game, err := s.GetGame(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, game.ID)
	assert.Equal(t, "ABCDEF", game.Code)
	assert.Equal(t, models.StatusLobby, game.Status)
	assert.Len(t, game.Players, 1)
	assert.True(t, game.Players["host-uid"].IsHost)
}

func TestCreateGameCodeTaken(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateGame(ctx, lobbyGame("ABCDEF"))
	require.NoError(t, err)

	_, err = s.CreateGame(ctx, lobbyGame("ABCDEF"))
	assert.ErrorIs(t, err, ErrCodeTaken)
}

func TestGetGameNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetGame(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetGameIDByCode(ctx, "NOCODE")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateMutatesDocument(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateGame(ctx, lobbyGame("ABCDEF"))
	require.NoError(t, err)

	updated, err := s.Update(ctx, id, func(g *models.Game) (Outcome, error) {
		g.Players["p2"] = &models.Player{Username: "Bob"}
		return Save, nil
	})
	require.NoError(t, err)
	assert.Len(t, updated.Players, 2)

	game, err := s.GetGame(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Bob", game.Players["p2"].Username)
}

func TestUpdateErrorAbortsWrite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateGame(ctx, lobbyGame("ABCDEF"))
	require.NoError(t, err)

	wantErr := errors.New("precondition failed")
	_, err = s.Update(ctx, id, func(g *models.Game) (Outcome, error) {
		g.Players["p2"] = &models.Player{Username: "Bob"}
		return Save, wantErr
	})
	assert.ErrorIs(t, err, wantErr)

	game, err := s.GetGame(ctx, id)
	require.NoError(t, err)
	assert.Len(t, game.Players, 1)
}

func TestUpdateNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Update(context.Background(), "missing", func(g *models.Game) (Outcome, error) {
		return Save, nil
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateDeleteRemovesGameAndCode(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateGame(ctx, lobbyGame("ABCDEF"))
	require.NoError(t, err)

	_, err = s.Update(ctx, id, func(g *models.Game) (Outcome, error) {
		return Delete, nil
	})
	require.NoError(t, err)

	_, err = s.GetGame(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetGameIDByCode(ctx, "ABCDEF")
	assert.ErrorIs(t, err, ErrNotFound)
}

// A write must refresh the code entry's TTL together with the game's,
// so the join code keeps resolving for as long as the game is alive.
func TestUpdateRefreshesCodeTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	s := New(client)
	ctx := context.Background()

	id, err := s.CreateGame(ctx, lobbyGame("ABCDEF"))
	require.NoError(t, err)

	// Touch the game shortly before the original TTL would run out,
	// then cross that boundary.
	mr.FastForward(115 * time.Minute)
	_, err = s.Update(ctx, id, func(g *models.Game) (Outcome, error) {
		return Save, nil
	})
	require.NoError(t, err)
	mr.FastForward(10 * time.Minute)

	_, err = s.GetGame(ctx, id)
	require.NoError(t, err)

	resolved, err := s.GetGameIDByCode(ctx, "ABCDEF")
	require.NoError(t, err)
	assert.Equal(t, id, resolved)
}

// Concurrent writers must all land: lost WATCHes replay the whole
// read-mutate-write cycle, so no increment can be swallowed.
func TestUpdateConcurrentWritersAllApply(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	game := lobbyGame("ABCDEF")
	game.Players["host-uid"].Score = 0
	id, err := s.CreateGame(ctx, game)
	require.NoError(t, err)

	const writers = 10
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Update(ctx, id, func(g *models.Game) (Outcome, error) {
				g.Players["host-uid"].Score++
				return Save, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	final, err := s.GetGame(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, writers, final.Players["host-uid"].Score)
}
