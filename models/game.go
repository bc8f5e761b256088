package models

import "time"

type GameStatus string

const (
	StatusLobby    GameStatus = "lobby"
	StatusPlaying  GameStatus = "playing"
	StatusFinished GameStatus = "finished"
)

// Game is the single shared document coordinating one session. It is
// stored as JSON in Redis and every mutation runs through an atomic
// transaction on that one document.
type Game struct {
	ID         string     `json:"id"`
	Code       string     `json:"code"`
	GameType   string     `json:"game_type"`
	Status     GameStatus `json:"status"`
	HostUID    string     `json:"host_uid"`
	MinPlayers int        `json:"min_players"`
	MaxPlayers int        `json:"max_players"`
	CreatedAt  time.Time  `json:"created_at"`

	// Set at game start, fixed in count and order afterwards. Only
	// sub-steps, voting cursors and the leaf response/vote maps mutate.
	CurrentPhaseIndex int      `json:"current_phase_index"`
	Phases            []*Phase `json:"phases,omitempty"`

	Players map[string]*Player `json:"players"`
}

func (g *Game) PlayerUIDs() []string {
	uids := make([]string, 0, len(g.Players))
	for uid := range g.Players {
		uids = append(uids, uid)
	}
	return uids
}

func (g *Game) CurrentPhase() *Phase {
	if g.CurrentPhaseIndex < 0 || g.CurrentPhaseIndex >= len(g.Phases) {
		return nil
	}
	return g.Phases[g.CurrentPhaseIndex]
}

// ClientView returns a copy safe to hand to players: the answerer slot
// assignments are stripped, since knowing slot 0 would unmask the real
// player. Clients only ever need ShuffledAnswerers. The receiver is
// left untouched.
func (g *Game) ClientView() *Game {
	view := *g
	if g.Phases == nil {
		return &view
	}

	view.Phases = make([]*Phase, len(g.Phases))
	for i, phase := range g.Phases {
		p := *phase
		if phase.Prompts != nil {
			p.Prompts = make(map[string]*PromptEntry, len(phase.Prompts))
			for uid, entry := range phase.Prompts {
				e := *entry
				e.Answerers = nil
				p.Prompts[uid] = &e
			}
		}
		view.Phases[i] = &p
	}
	return &view
}
