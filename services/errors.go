package services

import "errors"

// Closed set of expected, caller-recoverable failures. Handlers surface
// these verbatim as machine-readable codes; everything else is logged
// and reported as a generic failure.
var (
	ErrGameNotFound         = errors.New("game not found")
	ErrGameAlreadyStarted   = errors.New("game has already started")
	ErrAlreadyInGame        = errors.New("already in this game")
	ErrGameFull             = errors.New("game is full")
	ErrNotAuthorised        = errors.New("not authorised")
	ErrNotHost              = errors.New("only the host can do this")
	ErrCodeGenerationFailed = errors.New("failed to generate a unique game code")
	ErrInsufficientPlayers  = errors.New("not enough players")
	ErrInsufficientPrompts  = errors.New("not enough prompts available")
	ErrGameNotStarted       = errors.New("game has not started yet")
	ErrGameAlreadyFinished  = errors.New("game is already finished")
	ErrGameNotPlaying       = errors.New("game is not in playing state")
	ErrNotAPromptStep       = errors.New("current sub-step is not a prompt step")
	ErrNotAnAnswerer        = errors.New("not an answerer at this sub-step")
	ErrAlreadySubmitted     = errors.New("answer already submitted")

	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already taken")
)

var errorCodes = map[error]string{
	ErrGameNotFound:         "GAME_NOT_FOUND",
	ErrGameAlreadyStarted:   "GAME_ALREADY_STARTED",
	ErrAlreadyInGame:        "ALREADY_IN_GAME",
	ErrGameFull:             "GAME_FULL",
	ErrNotAuthorised:        "NOT_AUTHORISED",
	ErrNotHost:              "NOT_HOST",
	ErrCodeGenerationFailed: "CODE_GENERATION_FAILED",
	ErrInsufficientPlayers:  "INSUFFICIENT_PLAYERS",
	ErrInsufficientPrompts:  "INSUFFICIENT_PROMPTS",
	ErrGameNotStarted:       "GAME_NOT_STARTED",
	ErrGameAlreadyFinished:  "GAME_ALREADY_FINISHED",
	ErrGameNotPlaying:       "GAME_NOT_PLAYING",
	ErrNotAPromptStep:       "NOT_A_PROMPT_STEP",
	ErrNotAnAnswerer:        "NOT_AN_ANSWERER",
	ErrAlreadySubmitted:     "ALREADY_SUBMITTED",
	ErrInvalidCredentials:   "INVALID_CREDENTIALS",
	ErrUsernameTaken:        "USERNAME_TAKEN",
}

// ErrorCode returns the machine-readable code for an expected error, or
// false for anything outside the closed set.
func ErrorCode(err error) (string, bool) {
	for sentinel, code := range errorCodes {
		if errors.Is(err, sentinel) {
			return code, true
		}
	}
	return "", false
}
