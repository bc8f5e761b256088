package services

import (
	"context"
	"strings"
	"testing"

	"catfish/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGameIssuesValidCode(t *testing.T) {
	st := newTestStore(t)
	lobby := NewLobbyService(st)

	result, err := lobby.CreateGame(context.Background(), "host-uid", "catfish", PlayerData{Username: "Alice"}, 3, 20)
	require.NoError(t, err)

	assert.Len(t, result.GameCode, gameCodeLength)
	for _, r := range result.GameCode {
		assert.Contains(t, gameCodeChars, string(r))
	}

	game, err := st.GetGame(context.Background(), result.GameID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusLobby, game.Status)
	assert.Equal(t, "host-uid", game.HostUID)
	require.Contains(t, game.Players, "host-uid")
	assert.True(t, game.Players["host-uid"].IsHost)
}

func TestGeneratedCodesUseRestrictedAlphabet(t *testing.T) {
	for i := 0; i < 200; i++ {
		code := generateGameCode()
		require.Len(t, code, gameCodeLength)
		for _, r := range code {
			require.Contains(t, gameCodeChars, string(r))
			require.NotContains(t, "IOQL0123456789", string(r))
		}
	}
}

func TestJoinGameRoundTrip(t *testing.T) {
	st := newTestStore(t)
	lobby := NewLobbyService(st)
	ctx := context.Background()

	created, err := lobby.CreateGame(ctx, "host-uid", "catfish", PlayerData{Username: "Alice"}, 3, 20)
	require.NoError(t, err)

	joined, err := lobby.JoinGame(ctx, created.GameCode, "bob-uid", PlayerData{Username: "Bob"})
	require.NoError(t, err)
	assert.Equal(t, created.GameID, joined.GameID)
	assert.Equal(t, "catfish", joined.GameType)

	// Codes are case-insensitive on join.
	_, err = lobby.JoinGame(ctx, strings.ToLower(created.GameCode), "carol-uid", PlayerData{Username: "Carol"})
	require.NoError(t, err)

	game, err := st.GetGame(ctx, created.GameID)
	require.NoError(t, err)
	assert.Len(t, game.Players, 3)
	assert.False(t, game.Players["bob-uid"].IsHost)
}

func TestJoinGameUnknownCode(t *testing.T) {
	st := newTestStore(t)
	lobby := NewLobbyService(st)

	_, err := lobby.JoinGame(context.Background(), "ZZZZZZ", "bob-uid", PlayerData{Username: "Bob"})
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestJoinGameTwiceFails(t *testing.T) {
	st := newTestStore(t)
	lobby := NewLobbyService(st)
	ctx := context.Background()

	created, err := lobby.CreateGame(ctx, "host-uid", "catfish", PlayerData{Username: "Alice"}, 3, 20)
	require.NoError(t, err)

	_, err = lobby.JoinGame(ctx, created.GameCode, "bob-uid", PlayerData{Username: "Bob"})
	require.NoError(t, err)

	_, err = lobby.JoinGame(ctx, created.GameCode, "bob-uid", PlayerData{Username: "Bob"})
	assert.ErrorIs(t, err, ErrAlreadyInGame)
}

func TestJoinGameCapacityBoundary(t *testing.T) {
	st := newTestStore(t)
	lobby := NewLobbyService(st)
	ctx := context.Background()

	created, err := lobby.CreateGame(ctx, "host-uid", "catfish", PlayerData{Username: "Alice"}, 3, 4)
	require.NoError(t, err)

	// Fill to maxPlayers - 1, then the final seat must still work.
	_, err = lobby.JoinGame(ctx, created.GameCode, "p2", PlayerData{Username: "P2"})
	require.NoError(t, err)
	_, err = lobby.JoinGame(ctx, created.GameCode, "p3", PlayerData{Username: "P3"})
	require.NoError(t, err)
	_, err = lobby.JoinGame(ctx, created.GameCode, "p4", PlayerData{Username: "P4"})
	require.NoError(t, err)

	game, err := st.GetGame(ctx, created.GameID)
	require.NoError(t, err)
	assert.Len(t, game.Players, 4)

	_, err = lobby.JoinGame(ctx, created.GameCode, "p5", PlayerData{Username: "P5"})
	assert.ErrorIs(t, err, ErrGameFull)
}

func TestJoinGameAfterStartFails(t *testing.T) {
	st := newTestStore(t)
	lobby, gameID, _ := newLobbyWithPlayers(t, st, 2)
	ctx := context.Background()

	games := NewGameService(st, stockedPrompts())
	_, err := games.StartGame(ctx, gameID, "host-uid")
	require.NoError(t, err)

	game, err := st.GetGame(ctx, gameID)
	require.NoError(t, err)

	_, err = lobby.JoinGame(ctx, game.Code, "late-uid", PlayerData{Username: "Late"})
	assert.ErrorIs(t, err, ErrGameAlreadyStarted)
}

func TestRemovePlayerSelfLeave(t *testing.T) {
	st := newTestStore(t)
	lobby, gameID, uids := newLobbyWithPlayers(t, st, 2)
	ctx := context.Background()

	result, err := lobby.RemovePlayer(ctx, gameID, uids[1], uids[1])
	require.NoError(t, err)
	assert.False(t, result.GameDeleted)
	assert.Equal(t, []string{uids[1]}, result.AffectedUIDs)

	game, err := st.GetGame(ctx, gameID)
	require.NoError(t, err)
	assert.NotContains(t, game.Players, uids[1])
	assert.Len(t, game.Players, 2)
}

func TestRemovePlayerHostKick(t *testing.T) {
	st := newTestStore(t)
	lobby, gameID, uids := newLobbyWithPlayers(t, st, 2)

	result, err := lobby.RemovePlayer(context.Background(), gameID, uids[2], "host-uid")
	require.NoError(t, err)
	assert.False(t, result.GameDeleted)
	assert.Equal(t, []string{uids[2]}, result.AffectedUIDs)
}

func TestRemovePlayerNotAuthorised(t *testing.T) {
	st := newTestStore(t)
	lobby, gameID, uids := newLobbyWithPlayers(t, st, 2)

	_, err := lobby.RemovePlayer(context.Background(), gameID, uids[1], uids[2])
	assert.ErrorIs(t, err, ErrNotAuthorised)
}

func TestRemovePlayerHostLeaveDeletesGame(t *testing.T) {
	st := newTestStore(t)
	lobby, gameID, uids := newLobbyWithPlayers(t, st, 2)
	ctx := context.Background()

	game, err := st.GetGame(ctx, gameID)
	require.NoError(t, err)
	code := game.Code

	result, err := lobby.RemovePlayer(ctx, gameID, "host-uid", "host-uid")
	require.NoError(t, err)
	assert.True(t, result.GameDeleted)
	assert.ElementsMatch(t, uids, result.AffectedUIDs)

	_, err = st.GetGame(ctx, gameID)
	assert.Error(t, err)

	// The code must stop resolving once the game is gone.
	_, err = lobby.JoinGame(ctx, code, "new-uid", PlayerData{Username: "New"})
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestRemovePlayerGameGone(t *testing.T) {
	st := newTestStore(t)
	lobby := NewLobbyService(st)

	_, err := lobby.RemovePlayer(context.Background(), "missing-game", "a", "a")
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestSetProfilePicture(t *testing.T) {
	st := newTestStore(t)
	lobby, gameID, uids := newLobbyWithPlayers(t, st, 1)
	ctx := context.Background()

	err := lobby.SetProfilePicture(ctx, gameID, uids[1], "http://localhost:8080/uploads/x.png")
	require.NoError(t, err)

	game, err := st.GetGame(ctx, gameID)
	require.NoError(t, err)
	require.NotNil(t, game.Players[uids[1]].ProfilePictureURL)
	assert.Equal(t, "http://localhost:8080/uploads/x.png", *game.Players[uids[1]].ProfilePictureURL)

	err = lobby.SetProfilePicture(ctx, gameID, "stranger-uid", "http://example.com/x.png")
	assert.ErrorIs(t, err, ErrNotAuthorised)
}
