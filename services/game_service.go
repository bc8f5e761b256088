package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"catfish/models"
	"catfish/store"
)

// Each content pool (text, image) feeds this many rounds, so a game
// needs playerCount * promptRoundCount distinct prompts per pool.
const promptRoundCount = 2

// Placeholder resolved in decoy instruction templates at build time,
// e.g. "Put yourself in {player_name}'s shoes and answer this".
const playerNamePlaceholder = "{player_name}"

type GameService struct {
	store   *store.Store
	prompts PromptSource
}

func NewGameService(st *store.Store, prompts PromptSource) *GameService {
	return &GameService{store: st, prompts: prompts}
}

func (s *GameService) GetGame(ctx context.Context, gameID string) (*models.Game, error) {
	game, err := s.store.GetGame(ctx, gameID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrGameNotFound
	}
	return game, err
}

// ---------------------------------------------------------------------
// Round building
// ---------------------------------------------------------------------

func shuffledCopy(uids []string) []string {
	shuffled := make([]string, len(uids))
	copy(shuffled, uids)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}

// assignAnswerers shuffles the players into a cyclic order and gives
// each player's prompt to the player themselves plus the two following
// them in the cycle. Every player ends up real answerer exactly once
// and decoy exactly twice, with three distinct uids per prompt for any
// n >= 3.
func assignAnswerers(uids []string) (map[string]models.AnswererSet, error) {
	shuffled := shuffledCopy(uids)
	n := len(shuffled)

	assignments := make(map[string]models.AnswererSet, n)
	for i := 0; i < n; i++ {
		set, err := models.NewAnswererSet(shuffled[i], shuffled[(i+1)%n], shuffled[(i+2)%n])
		if err != nil {
			return nil, fmt.Errorf("assign answerers: %w", err)
		}
		assignments[shuffled[i]] = set
	}
	return assignments, nil
}

func buildPromptPhase(phaseType models.PhaseType, players map[string]*models.Player, pool []models.PromptCard, poolOffset int, instructions []models.PromptCard) (*models.Phase, error) {
	uids := make([]string, 0, len(players))
	for uid := range players {
		uids = append(uids, uid)
	}

	assignments, err := assignAnswerers(uids)
	if err != nil {
		return nil, err
	}

	prompts := make(map[string]*models.PromptEntry, len(uids))
	for i, ownerUID := range uids {
		card := pool[poolOffset+i]
		answerers := assignments[ownerUID]

		shuffledUIDs := answerers.UIDs()
		rand.Shuffle(len(shuffledUIDs), func(a, b int) {
			shuffledUIDs[a], shuffledUIDs[b] = shuffledUIDs[b], shuffledUIDs[a]
		})

		template := instructions[rand.Intn(len(instructions))]
		instruction := strings.ReplaceAll(template.Text, playerNamePlaceholder, players[ownerUID].Username)

		responses := make(map[string]*string, 3)
		for _, uid := range answerers.UIDs() {
			responses[uid] = nil
		}

		prompts[ownerUID] = &models.PromptEntry{
			PromptID:             card.ID,
			PromptText:           card.Text,
			Answerers:            &answerers,
			ShuffledAnswerers:    shuffledUIDs,
			DecoyInstructionText: instruction,
			Responses:            responses,
		}
	}

	return &models.Phase{
		Type:    phaseType,
		SubStep: 0,
		Prompts: prompts,
	}, nil
}

func buildVotingPhase(linkedPhaseIndex int, votingPromptText string, uids []string) *models.Phase {
	return &models.Phase{
		Type:               models.PhaseVoting,
		LinkedPhaseIndex:   linkedPhaseIndex,
		VotingPromptText:   votingPromptText,
		VotingOrder:        shuffledCopy(uids),
		CurrentVotingIndex: 0,
		Votes:              make(map[string]map[string]string),
	}
}

type promptPools struct {
	text         []models.PromptCard
	image        []models.PromptCard
	voting       []models.PromptCard
	instructions []models.PromptCard
}

func (s *GameService) fetchPools(ctx context.Context) (*promptPools, error) {
	pools := &promptPools{}
	for _, fetch := range []struct {
		pool string
		dst  *[]models.PromptCard
	}{
		{models.PoolText, &pools.text},
		{models.PoolImage, &pools.image},
		{models.PoolVoting, &pools.voting},
		{models.PoolDecoyInstruction, &pools.instructions},
	} {
		cards, err := s.prompts.FetchShuffled(ctx, fetch.pool)
		if err != nil {
			return nil, fmt.Errorf("fetch %s prompts: %w", fetch.pool, err)
		}
		*fetch.dst = cards
	}
	return pools, nil
}

func (p *promptPools) validate(playerCount int) error {
	required := playerCount * promptRoundCount
	if len(p.text) < required || len(p.image) < required {
		return ErrInsufficientPrompts
	}
	if len(p.voting) == 0 || len(p.instructions) == 0 {
		return ErrInsufficientPrompts
	}
	return nil
}

// buildPhases assembles the full fixed playlist:
//
//	0 text round (guided onboarding)  5 voting
//	1 voting                          6 image round
//	2 image round                     7 voting
//	3 voting                          8 results
//	4 text round
func buildPhases(players map[string]*models.Player, pools *promptPools) ([]*models.Phase, error) {
	uids := make([]string, 0, len(players))
	for uid := range players {
		uids = append(uids, uid)
	}
	playerCount := len(uids)

	pickVotingPrompt := func() string {
		return pools.voting[rand.Intn(len(pools.voting))].Text
	}

	rounds := []struct {
		phaseType models.PhaseType
		pool      []models.PromptCard
		offset    int
	}{
		{models.PhaseTextPromptIntro, pools.text, 0},
		{models.PhaseImagePrompt, pools.image, 0},
		{models.PhaseTextPrompt, pools.text, playerCount},
		{models.PhaseImagePrompt, pools.image, playerCount},
	}

	phases := make([]*models.Phase, 0, 2*len(rounds)+1)
	for _, round := range rounds {
		promptPhase, err := buildPromptPhase(round.phaseType, players, round.pool, round.offset, pools.instructions)
		if err != nil {
			return nil, err
		}
		phases = append(phases, promptPhase)
		phases = append(phases, buildVotingPhase(len(phases)-1, pickVotingPrompt(), uids))
	}
	phases = append(phases, &models.Phase{Type: models.PhaseResults})

	return phases, nil
}

// StartGame validates the lobby, fetches the prompt pools and writes
// the full phase list, flipping the game to playing in one atomic
// write. Pool reads run outside the transaction; the transaction
// re-validates every precondition before writing.
func (s *GameService) StartGame(ctx context.Context, gameID, requestingUID string) (*models.Game, error) {
	game, err := s.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.HostUID != requestingUID {
		return nil, ErrNotHost
	}
	if game.Status != models.StatusLobby {
		return nil, ErrGameAlreadyStarted
	}
	if len(game.Players) < game.MinPlayers {
		return nil, ErrInsufficientPlayers
	}

	pools, err := s.fetchPools(ctx)
	if err != nil {
		return nil, err
	}
	if err := pools.validate(len(game.Players)); err != nil {
		return nil, err
	}

	updated, err := s.store.Update(ctx, gameID, func(g *models.Game) (store.Outcome, error) {
		if g.HostUID != requestingUID {
			return store.Save, ErrNotHost
		}
		if g.Status != models.StatusLobby {
			return store.Save, ErrGameAlreadyStarted
		}
		if len(g.Players) < g.MinPlayers {
			return store.Save, ErrInsufficientPlayers
		}
		// Players may have joined since the advisory read.
		if err := pools.validate(len(g.Players)); err != nil {
			return store.Save, err
		}

		phases, err := buildPhases(g.Players, pools)
		if err != nil {
			return store.Save, err
		}

		g.Phases = phases
		g.Status = models.StatusPlaying
		g.CurrentPhaseIndex = 0
		for _, player := range g.Players {
			player.Score = 0
		}
		return store.Save, nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ---------------------------------------------------------------------
// Phase state machine
// ---------------------------------------------------------------------

// advance moves the machine one step: sub-step increment while the
// current phase has sub-steps left, then phase increment, then the
// terminal status flip.
func advance(g *models.Game) {
	phase := g.CurrentPhase()
	if phase != nil {
		if max, ok := models.MaxSubStep(phase.Type); ok && phase.SubStep < max {
			phase.SubStep++
			return
		}
	}

	if g.CurrentPhaseIndex+1 >= len(g.Phases) {
		g.Status = models.StatusFinished
		return
	}
	g.CurrentPhaseIndex++
}

// AdvancePhase is the host's manual skip. The external timer backend
// calls the same operation when a timed window expires.
func (s *GameService) AdvancePhase(ctx context.Context, gameID, requestingUID string) (*models.Game, error) {
	updated, err := s.store.Update(ctx, gameID, func(g *models.Game) (store.Outcome, error) {
		if g.HostUID != requestingUID {
			return store.Save, ErrNotHost
		}
		switch g.Status {
		case models.StatusLobby:
			return store.Save, ErrGameNotStarted
		case models.StatusFinished:
			return store.Save, ErrGameAlreadyFinished
		}

		advance(g)
		return store.Save, nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SubmitAnswer records the caller's answer for the current sub-step
// and, when that completes the sub-step, advances the machine in the
// same transaction. Two players racing the final submission therefore
// can never double-advance: the completeness check and the write
// commit together or re-execute together.
func (s *GameService) SubmitAnswer(ctx context.Context, gameID, requestingUID, answer string) (*models.Game, error) {
	updated, err := s.store.Update(ctx, gameID, func(g *models.Game) (store.Outcome, error) {
		if g.Status != models.StatusPlaying {
			return store.Save, ErrGameNotPlaying
		}

		phase := g.CurrentPhase()
		if phase == nil {
			return store.Save, ErrGameNotFound
		}

		slot, ok := models.AnswererSlotForSubStep(phase.Type, phase.SubStep)
		if !ok {
			return store.Save, ErrNotAPromptStep
		}

		var entry *models.PromptEntry
		for _, candidate := range phase.Prompts {
			if candidate.Answerers.Slot(slot) == requestingUID {
				entry = candidate
				break
			}
		}
		if entry == nil {
			return store.Save, ErrNotAnAnswerer
		}

		if existing, ok := entry.Responses[requestingUID]; ok && existing != nil {
			return store.Save, ErrAlreadySubmitted
		}
		response := answer
		entry.Responses[requestingUID] = &response

		allSubmitted := true
		for _, candidate := range phase.Prompts {
			answererUID := candidate.Answerers.Slot(slot)
			if r, ok := candidate.Responses[answererUID]; !ok || r == nil {
				allSubmitted = false
				break
			}
		}
		if allSubmitted {
			advance(g)
		}
		return store.Save, nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}
