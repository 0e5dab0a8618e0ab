package game

import "errors"

// Action-boundary errors. All of these are recoverable: they produce a
// user-facing message and leave session state untouched.
var (
	// ErrBetOutOfRange is returned when a bet falls outside the table limits
	ErrBetOutOfRange = errors.New("bet is outside the table limits")

	// ErrBettingClosed is returned for bets submitted outside a betting window
	ErrBettingClosed = errors.New("betting is closed")

	// ErrNoPreviousBet is returned for a repeat bet with no archived bet
	ErrNoPreviousBet = errors.New("no previous bet to repeat")

	// ErrSeatOccupied is returned when the requested seat is held by another player
	ErrSeatOccupied = errors.New("seat is occupied")

	// ErrAlreadySeated is returned when the player already holds a seat
	ErrAlreadySeated = errors.New("player is already seated")

	// ErrTableFull is returned when no seat is free
	ErrTableFull = errors.New("table is full")

	// ErrNotSeated is returned when a player acts without holding a seat
	ErrNotSeated = errors.New("player is not seated at this table")

	// ErrIllegalAction is returned for a turn action the current hand
	// cannot accept (wrong player, wrong phase, ineligible hand)
	ErrIllegalAction = errors.New("action is not legal right now")
)
