package apperror

import "errors"

var (
	ErrGameFinished      = errors.New("game is already finished")
	ErrGameIsNotStarted  = errors.New("game is not started")
	ErrNotYourTurn       = errors.New("it's not your turn")
	ErrGameAlreadyExists = errors.New("game already exists")

	// ErrInvalidCellWrite - a mark was written over an occupied cell.
	ErrInvalidCellWrite = errors.New("cell is already occupied")
	// ErrNoMovesAvailable - a move was requested on a full board.
	ErrNoMovesAvailable = errors.New("no moves available")
)
