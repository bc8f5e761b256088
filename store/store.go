package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"catfish/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrNotFound means the game document (or code entry) does not exist.
	ErrNotFound = errors.New("game not found")
	// ErrCodeTaken means another live game already owns the code.
	ErrCodeTaken = errors.New("game code already in use")
	// ErrContention means a transaction kept losing its WATCH and gave up.
	ErrContention = errors.New("too much contention on game document")
)

// Sessions expire if nobody touches them. Every write refreshes the TTL
// on both the game document and its code entry.
const gameTTL = 2 * time.Hour

// Retry bound for WATCH conflicts. Conflicts only happen when several
// players mutate the same game at once, so a lost WATCH is cheap to
// replay and exhausting this bound is effectively unreachable.
const maxTxRetries = 50

// Outcome tells Update what to do with the document after the mutate
// callback succeeds.
type Outcome int

const (
	// Save writes the mutated document back.
	Save Outcome = iota
	// Delete removes the document and its code registry entry.
	Delete
)

// Store keeps each game as a single JSON document in Redis and gives
// every mutation read-check-write semantics through optimistic WATCH
// transactions. Callers must assume the mutate callbacks can run more
// than once and keep them free of side effects.
type Store struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func gameKey(id string) string {
	return "game:" + id
}

func codeKey(code string) string {
	return "code:" + strings.ToUpper(code)
}

// CreateGame assigns the game a fresh id, reserves its code and writes
// the document, all in one transaction. Returns ErrCodeTaken when the
// code is already reserved, including when a concurrent writer wins the
// race for it; the caller regenerates and retries.
func (s *Store) CreateGame(ctx context.Context, game *models.Game) (string, error) {
	id := uuid.NewString()
	game.ID = id

	data, err := json.Marshal(game)
	if err != nil {
		return "", fmt.Errorf("marshal game: %w", err)
	}

	txf := func(tx *redis.Tx) error {
		_, err := tx.Get(ctx, codeKey(game.Code)).Result()
		if err == nil {
			return ErrCodeTaken
		}
		if err != redis.Nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, codeKey(game.Code), id, gameTTL)
			pipe.Set(ctx, gameKey(id), data, gameTTL)
			return nil
		})
		return err
	}

	err = s.rdb.Watch(ctx, txf, codeKey(game.Code))
	if errors.Is(err, redis.TxFailedErr) {
		// Someone else grabbed the code between read and write.
		return "", ErrCodeTaken
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// GetGameIDByCode resolves a join code to a game id. This read is not
// linearised with any later transaction; callers treat it as routing
// only and re-validate inside Update.
func (s *Store) GetGameIDByCode(ctx context.Context, code string) (string, error) {
	id, err := s.rdb.Get(ctx, codeKey(code)).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// GetGame reads a game document outside any transaction.
func (s *Store) GetGame(ctx context.Context, id string) (*models.Game, error) {
	data, err := s.rdb.Get(ctx, gameKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var game models.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, fmt.Errorf("unmarshal game %s: %w", id, err)
	}
	return &game, nil
}

// Update runs mutate against the current document under a WATCH on the
// game key and atomically writes the result (or deletes the document
// and its code entry when mutate returns Delete). On a conflicting
// concurrent writer the whole read-mutate-write cycle re-executes, so
// mutate always sees the latest committed state. Errors returned by
// mutate abort the transaction and surface unchanged.
func (s *Store) Update(ctx context.Context, id string, mutate func(*models.Game) (Outcome, error)) (*models.Game, error) {
	var result *models.Game

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, gameKey(id)).Bytes()
		if err == redis.Nil {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var game models.Game
		if err := json.Unmarshal(data, &game); err != nil {
			return fmt.Errorf("unmarshal game %s: %w", id, err)
		}

		outcome, err := mutate(&game)
		if err != nil {
			return err
		}
		result = &game

		if outcome == Delete {
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, gameKey(id))
				pipe.Del(ctx, codeKey(game.Code))
				return nil
			})
			return err
		}

		updated, err := json.Marshal(&game)
		if err != nil {
			return fmt.Errorf("marshal game %s: %w", id, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, gameKey(id), updated, gameTTL)
			// Keep the code entry's lifetime in step with the game's, or
			// the code would expire under a long-lived session.
			pipe.Expire(ctx, codeKey(game.Code), gameTTL)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.rdb.Watch(ctx, txf, gameKey(id))
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	return nil, ErrContention
}
