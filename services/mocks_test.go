package services

import (
	"context"
	"testing"

	"catfish/models"
	"catfish/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return store.New(client)
}

// fakePromptSource serves fixed pools without a database.
type fakePromptSource struct {
	pools map[string][]models.PromptCard
}

func (f *fakePromptSource) FetchShuffled(_ context.Context, pool string) ([]models.PromptCard, error) {
	return f.pools[pool], nil
}

// stockedPrompts returns a source with enough prompts for games of up
// to 10 players.
func stockedPrompts() *fakePromptSource {
	pools := map[string][]models.PromptCard{}
	for i := uint(1); i <= 20; i++ {
		pools[models.PoolText] = append(pools[models.PoolText], models.PromptCard{ID: i, Text: "What is your favourite food?"})
		pools[models.PoolImage] = append(pools[models.PoolImage], models.PromptCard{ID: 100 + i, Text: "Draw your dream house"})
	}
	pools[models.PoolVoting] = []models.PromptCard{{ID: 500, Text: "Who is the real one?"}}
	pools[models.PoolDecoyInstruction] = []models.PromptCard{{ID: 600, Text: "Answer as if you were {player_name}"}}
	return &fakePromptSource{pools: pools}
}

// newLobbyWithPlayers creates a game and joins extra guests, returning
// the lobby service, game id and the uids in join order (host first).
func newLobbyWithPlayers(t *testing.T, st *store.Store, extraPlayers int) (*LobbyService, string, []string) {
	t.Helper()
	ctx := context.Background()

	lobby := NewLobbyService(st)
	created, err := lobby.CreateGame(ctx, "host-uid", "catfish", PlayerData{Username: "Alice"}, 3, 20)
	require.NoError(t, err)

	uids := []string{"host-uid"}
	for i := 0; i < extraPlayers; i++ {
		uid := string(rune('a'+i)) + "-uid"
		_, err := lobby.JoinGame(ctx, created.GameCode, uid, PlayerData{Username: "Player-" + uid})
		require.NoError(t, err)
		uids = append(uids, uid)
	}
	return lobby, created.GameID, uids
}
