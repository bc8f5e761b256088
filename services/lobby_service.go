package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"catfish/models"
	"catfish/store"
)

// Code generation. The alphabet drops I, O, Q, L and all digits so
// codes read unambiguously off someone else's screen.
const (
	gameCodeChars  = "ABCDEFGHJKMNPRSTUVWXYZ"
	gameCodeLength = 6

	// Collision retries for code reservation. Non-collision failures
	// propagate immediately.
	maxCodeAttempts = 5
)

func generateGameCode() string {
	buf := make([]byte, gameCodeLength)
	rand.Read(buf)
	for i, b := range buf {
		buf[i] = gameCodeChars[int(b)%len(gameCodeChars)]
	}
	return string(buf)
}

// PlayerData carries the validated player fields written on create/join.
type PlayerData struct {
	Username          string
	ProfilePictureURL string
}

func (d PlayerData) toPlayer(isHost bool) *models.Player {
	player := &models.Player{
		Username: d.Username,
		IsHost:   isHost,
		JoinedAt: time.Now().UTC(),
	}
	if d.ProfilePictureURL != "" {
		url := d.ProfilePictureURL
		player.ProfilePictureURL = &url
	}
	return player
}

type LobbyService struct {
	store *store.Store
}

func NewLobbyService(st *store.Store) *LobbyService {
	return &LobbyService{store: st}
}

type CreateGameResult struct {
	GameID   string `json:"game_id"`
	GameCode string `json:"game_code"`
}

// CreateGame writes a fresh lobby document and its code registry entry
// in one atomic step. The requesting user becomes the host.
func (s *LobbyService) CreateGame(ctx context.Context, hostUID, gameType string, data PlayerData, minPlayers, maxPlayers int) (*CreateGameResult, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := generateGameCode()

		game := &models.Game{
			Code:              code,
			GameType:          gameType,
			Status:            models.StatusLobby,
			HostUID:           hostUID,
			MinPlayers:        minPlayers,
			MaxPlayers:        maxPlayers,
			CreatedAt:         time.Now().UTC(),
			CurrentPhaseIndex: 0,
			Players: map[string]*models.Player{
				hostUID: data.toPlayer(true),
			},
		}

		id, err := s.store.CreateGame(ctx, game)
		if errors.Is(err, store.ErrCodeTaken) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create game: %w", err)
		}
		return &CreateGameResult{GameID: id, GameCode: code}, nil
	}
	return nil, ErrCodeGenerationFailed
}

type JoinGameResult struct {
	GameID   string `json:"game_id"`
	GameType string `json:"game_type"`
}

// JoinGame resolves the code outside any transaction, then re-validates
// everything against the authoritative document inside one. The narrow
// window where the code entry vanishes between lookup and transaction
// collapses into ErrGameNotFound.
func (s *LobbyService) JoinGame(ctx context.Context, code, uid string, data PlayerData) (*JoinGameResult, error) {
	gameID, err := s.store.GetGameIDByCode(ctx, strings.ToUpper(code))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolve game code: %w", err)
	}

	var gameType string
	_, err = s.store.Update(ctx, gameID, func(g *models.Game) (store.Outcome, error) {
		gameType = g.GameType

		if g.Status != models.StatusLobby {
			return store.Save, ErrGameAlreadyStarted
		}
		if _, ok := g.Players[uid]; ok {
			return store.Save, ErrAlreadyInGame
		}
		if len(g.Players) >= g.MaxPlayers {
			return store.Save, ErrGameFull
		}

		g.Players[uid] = data.toPlayer(false)
		return store.Save, nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}

	return &JoinGameResult{GameID: gameID, GameType: gameType}, nil
}

type RemovePlayerResult struct {
	GameDeleted  bool     `json:"game_deleted"`
	GameType     string   `json:"game_type"`
	AffectedUIDs []string `json:"affected_uids"`
}

// RemovePlayer removes targetUID from the game. Only the host or the
// target player themselves may request it. Removing the host tears down
// the whole game together with its code entry; there is no host
// succession.
func (s *LobbyService) RemovePlayer(ctx context.Context, gameID, targetUID, requestingUID string) (*RemovePlayerResult, error) {
	var result RemovePlayerResult

	_, err := s.store.Update(ctx, gameID, func(g *models.Game) (store.Outcome, error) {
		if requestingUID != g.HostUID && requestingUID != targetUID {
			return store.Save, ErrNotAuthorised
		}

		result.GameType = g.GameType

		if targetUID == g.HostUID {
			result.GameDeleted = true
			result.AffectedUIDs = g.PlayerUIDs()
			return store.Delete, nil
		}

		delete(g.Players, targetUID)
		result.GameDeleted = false
		result.AffectedUIDs = []string{targetUID}
		return store.Save, nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// SetProfilePicture patches a player's picture URL. The upload itself
// happens outside the transaction; only the URL write is transactional.
func (s *LobbyService) SetProfilePicture(ctx context.Context, gameID, uid, url string) error {
	_, err := s.store.Update(ctx, gameID, func(g *models.Game) (store.Outcome, error) {
		player, ok := g.Players[uid]
		if !ok {
			return store.Save, ErrNotAuthorised
		}
		player.ProfilePictureURL = &url
		return store.Save, nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return ErrGameNotFound
	}
	return err
}
