// internal/game/errors.go
package game

import "errors"

// Reducer errors. Every rejection returned by the majority and identity
// packages wraps exactly one of these, so callers can branch with errors.Is
// and still show the wrapped message to the acting player.
var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidState        = errors.New("invalid state")
	ErrInsufficientPlayers = errors.New("insufficient players")
	ErrNotYourTurn         = errors.New("not your turn")
	ErrInvalidCards        = errors.New("invalid cards")
	ErrColorMismatch       = errors.New("color mismatch")
	ErrPlayerNotFound      = errors.New("player not found")
)
