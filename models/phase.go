package models

import "fmt"

type PhaseType string

const (
	PhaseTextPromptIntro PhaseType = "text_prompt_intro"
	PhaseTextPrompt      PhaseType = "text_prompt"
	PhaseImagePrompt     PhaseType = "image_prompt"
	PhaseVoting          PhaseType = "voting"
	PhaseResults         PhaseType = "results"
)

// Answerer slots. Slot 0 is always the genuine player; the slot layout
// is a server-side secret and is never sent to clients in slot order —
// viewers only ever see ShuffledAnswerers.
const (
	SlotReal = iota
	SlotDecoy1
	SlotDecoy2
	answererCount
)

// maxSubStep is the highest sub-step each prompt phase reaches before
// advancing to the next phase. Voting and results phases have no
// sub-steps and are absent.
//
// The intro phase interleaves narrative interludes with answer steps:
//
//	0 message (welcome)      3 answer, decoy 1
//	1 answer, real player    4 answer, decoy 2
//	2 message (decoy rules)  5 message (pre-voting)
//
// Plain prompt phases are three answer steps back to back.
var maxSubStep = map[PhaseType]int{
	PhaseTextPromptIntro: 5,
	PhaseTextPrompt:      2,
	PhaseImagePrompt:     2,
}

// subStepAnswererSlot maps (phase type, sub-step) to the answerer slot
// expected to respond. Sub-steps missing from the map are narrative
// interludes with no answerer.
var subStepAnswererSlot = map[PhaseType]map[int]int{
	PhaseTextPromptIntro: {1: SlotReal, 3: SlotDecoy1, 4: SlotDecoy2},
	PhaseTextPrompt:      {0: SlotReal, 1: SlotDecoy1, 2: SlotDecoy2},
	PhaseImagePrompt:     {0: SlotReal, 1: SlotDecoy1, 2: SlotDecoy2},
}

// MaxSubStep returns the highest sub-step for the phase type, or false
// when the phase type has no sub-steps.
func MaxSubStep(t PhaseType) (int, bool) {
	max, ok := maxSubStep[t]
	return max, ok
}

// AnswererSlotForSubStep returns the answerer slot responding at the
// given sub-step, or false for narrative sub-steps and phase types
// without prompts.
func AnswererSlotForSubStep(t PhaseType, subStep int) (int, bool) {
	steps, ok := subStepAnswererSlot[t]
	if !ok {
		return 0, false
	}
	slot, ok := steps[subStep]
	return slot, ok
}

// AnswererSet holds the three uids assigned to one prompt. Construct it
// with NewAnswererSet so the pairwise-distinct invariant holds.
type AnswererSet struct {
	Real   string `json:"real"`
	Decoy1 string `json:"decoy1"`
	Decoy2 string `json:"decoy2"`
}

func NewAnswererSet(real, decoy1, decoy2 string) (AnswererSet, error) {
	if real == "" || decoy1 == "" || decoy2 == "" {
		return AnswererSet{}, fmt.Errorf("answerer set has empty uid")
	}
	if real == decoy1 || real == decoy2 || decoy1 == decoy2 {
		return AnswererSet{}, fmt.Errorf("answerer set has duplicate uid")
	}
	return AnswererSet{Real: real, Decoy1: decoy1, Decoy2: decoy2}, nil
}

// Slot returns the uid occupying the given answerer slot.
func (a AnswererSet) Slot(slot int) string {
	switch slot {
	case SlotReal:
		return a.Real
	case SlotDecoy1:
		return a.Decoy1
	case SlotDecoy2:
		return a.Decoy2
	}
	return ""
}

// UIDs returns all three answerer uids in slot order.
func (a AnswererSet) UIDs() [3]string {
	return [3]string{a.Real, a.Decoy1, a.Decoy2}
}

// PromptEntry is one player's prompt within a prompt phase, keyed in
// the phase by the owning player's uid.
type PromptEntry struct {
	PromptID uint `json:"prompt_id"`
	// Denormalised at build time so gameplay never re-reads the pool.
	PromptText string `json:"prompt_text"`
	// Server-side only; stripped from client views, which carry the
	// shuffled order instead.
	Answerers *AnswererSet `json:"answerers,omitempty"`
	// Display order shown to voters; fixed at build time so every
	// viewer sees the same candidate order.
	ShuffledAnswerers [3]string `json:"shuffled_answerers"`
	// Instruction shown to the two decoys, with the owner's name
	// already substituted in.
	DecoyInstructionText string `json:"decoy_instruction_text"`
	// Keyed by answerer uid; nil until that answerer submits.
	Responses map[string]*string `json:"responses"`
}

// Phase is one entry in the game's fixed playlist. Type selects the
// variant; the other fields are only meaningful for the matching
// variant. Consumers must switch on Type.
type Phase struct {
	Type PhaseType `json:"type"`

	// Prompt phases
	SubStep int                     `json:"sub_step"`
	Prompts map[string]*PromptEntry `json:"prompts,omitempty"`

	// Voting phases. LinkedPhaseIndex points at the prompt phase being
	// voted on; zero is a valid target.
	LinkedPhaseIndex   int                          `json:"linked_phase_index"`
	VotingPromptText   string                       `json:"voting_prompt_text,omitempty"`
	VotingOrder        []string                     `json:"voting_order,omitempty"`
	CurrentVotingIndex int                          `json:"current_voting_index"`
	Votes              map[string]map[string]string `json:"votes,omitempty"`
}

func (p *Phase) IsPromptPhase() bool {
	switch p.Type {
	case PhaseTextPromptIntro, PhaseTextPrompt, PhaseImagePrompt:
		return true
	}
	return false
}
