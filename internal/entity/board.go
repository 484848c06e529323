package entity

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-bot/internal/apperror"
)

// BoardSize - the board is always 3x3.
const BoardSize = 3

type Mark string

const (
	EmptyCell Mark = ""
	PlayerX   Mark = "X"
	PlayerO   Mark = "O"
	PlayerTie Mark = "-"
)

var (
	ErrInvalidCell  = errors.New("invalid cell index")
	ErrInvalidMark  = errors.New("invalid mark")
	ErrInvalidBoard = errors.New("invalid board")

	// WinCombos - rows, then columns, then diagonals.
	WinCombos = [8][3]int{
		{0, 1, 2},
		{3, 4, 5},
		{6, 7, 8},
		{0, 3, 6},
		{1, 4, 7},
		{2, 5, 8},
		{0, 4, 8},
		{2, 4, 6},
	}
)

// Opponent returns the other player's mark, or EmptyCell for anything that is not X or O.
func (that Mark) Opponent() Mark {
	switch that {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return EmptyCell
	}
}

func (that Mark) IsPlayer() bool {
	return that == PlayerX || that == PlayerO
}

// Move - coordinates of a cell on the board.
type Move struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func MoveFromIndex(cell int) (Move, error) {
	if cell < 0 || cell >= BoardSize*BoardSize {
		return Move{}, fmt.Errorf("%w: cell %d", ErrInvalidCell, cell)
	}

	return Move{Row: cell / BoardSize, Col: cell % BoardSize}, nil
}

// Index - row-major position of the move in the range 0..8.
func (that Move) Index() int {
	return that.Row*BoardSize + that.Col
}

func (that Move) valid() bool {
	return that.Row >= 0 && that.Row < BoardSize && that.Col >= 0 && that.Col < BoardSize
}

type ResultKind int

const (
	Ongoing ResultKind = iota
	Win
	Draw
)

// GameResult is derived from a Board every time, it is never stored.
type GameResult struct {
	Kind   ResultKind
	Winner Mark
}

// Board - 3x3 grid of cells stored row-major.
type Board [BoardSize * BoardSize]Mark

func (that *Board) Get(row, col int) Mark {
	return that[Move{Row: row, Col: col}.Index()]
}

// Set places mark on an empty cell.
func (that *Board) Set(row, col int, mark Mark) error {
	move := Move{Row: row, Col: col}
	if !move.valid() {
		return fmt.Errorf("%w: row %d col %d", ErrInvalidCell, row, col)
	}

	if !mark.IsPlayer() {
		return fmt.Errorf("%w: %q", ErrInvalidMark, mark)
	}

	if that[move.Index()] != EmptyCell {
		return fmt.Errorf("%w: row %d col %d", apperror.ErrInvalidCellWrite, row, col)
	}

	that[move.Index()] = mark

	return nil
}

// Clear empties a cell, used to take back a trial move.
func (that *Board) Clear(row, col int) {
	that[Move{Row: row, Col: col}.Index()] = EmptyCell
}

func (that *Board) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

// Winner returns the mark of the first completed line.
func (that *Board) Winner() (Mark, bool) {
	for _, combo := range WinCombos {
		a, b, c := that[combo[0]], that[combo[1]], that[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return a, true
		}
	}

	return EmptyCell, false
}

// EmptyCells lists free cells in row-major order.
func (that *Board) EmptyCells() []Move {
	moves := make([]Move, 0, len(that))
	for i, cell := range that {
		if cell == EmptyCell {
			moves = append(moves, Move{Row: i / BoardSize, Col: i % BoardSize})
		}
	}

	return moves
}

func (that *Board) Result() GameResult {
	if winner, ok := that.Winner(); ok {
		return GameResult{Kind: Win, Winner: winner}
	}

	if that.IsFull() {
		return GameResult{Kind: Draw}
	}

	return GameResult{Kind: Ongoing}
}

// NextTurn - X always moves first, so O is on move whenever X has one more mark.
func (that *Board) NextTurn() Mark {
	x, o := that.count()
	if x > o {
		return PlayerO
	}

	return PlayerX
}

// Validate checks that every cell holds a known mark and that turns alternated from X.
func (that *Board) Validate() error {
	for i, cell := range that {
		if cell != EmptyCell && !cell.IsPlayer() {
			return fmt.Errorf("%w: cell %d holds %q", ErrInvalidBoard, i, cell)
		}
	}

	x, o := that.count()
	if diff := x - o; diff != 0 && diff != 1 {
		return fmt.Errorf("%w: %d X marks against %d O marks", ErrInvalidBoard, x, o)
	}

	return nil
}

func (that *Board) count() (int, int) {
	var x, o int
	for _, cell := range that {
		switch cell {
		case PlayerX:
			x++
		case PlayerO:
			o++
		}
	}

	return x, o
}
