package engine

import "errors"

var (
	ErrInvalidDifficulty      = errors.New("difficulty must be EASY, NORMAL or HARD")
	ErrGameNotFound           = errors.New("game not found")
	ErrGameAlreadyTerminal    = errors.New("game already finished")
	ErrInvalidChoice          = errors.New("choice not available for current turn")
	ErrNoChoice               = errors.New("at least one choice is required")
	ErrTooManyChoices         = errors.New("too many choices for current staff")
	ErrEventPending           = errors.New("pending event must be resolved first")
	ErrNoEventPending         = errors.New("no event is pending")
	ErrInvalidEventChoice     = errors.New("choice not available for pending event")
	ErrConcurrentModification = errors.New("another transition is in flight for this game")
	ErrUnknownContent         = errors.New("catalog content missing")
)
