package engine

import "errors"

var (
	// ErrInvalidOrder is returned when submitted parameters fail validation
	// before any state is touched.
	ErrInvalidOrder = errors.New("invalid order parameters")

	// ErrInsufficientBalance is returned on user-initiated submissions that
	// require more margin than the account holds. System-triggered fills
	// never surface it; they cancel the stale order instead.
	ErrInsufficientBalance = errors.New("insufficient balance")

	ErrPositionNotFound = errors.New("position not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrTPSLNotFound     = errors.New("tp/sl order not found")

	// ErrPositionsOpen rejects position-mode changes while the book is
	// non-empty.
	ErrPositionsOpen = errors.New("cannot change position mode while positions are open")
)
