package entity

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/rocketscienceinc/tictactoe-bot/internal/apperror"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
	StatusWaiting  = "waiting"
)

const (
	PrivateType = "private"
	WithBotType = "bot"
)

var (
	ErrUnknownGameStatus = errors.New("unknown game status")
	ErrUnknownGameType   = errors.New("unknown game type")
)

type Game struct {
	ID      string    `json:"id"`
	Board   Board     `json:"board"`
	Winner  Mark      `json:"winner"`
	Status  string    `json:"status"`
	Turn    Mark      `json:"player_turn"`
	Players []*Player `json:"players,omitempty"`
	Type    string    `json:"type,omitempty"`
}

func NewGame(id, gameType string) *Game {
	return &Game{
		ID:     id,
		Turn:   PlayerX,
		Status: StatusWaiting,
		Type:   gameType,
	}
}

// DetermineGameResult returns the winner's mark, PlayerTie for a draw or EmptyCell while the game goes on.
func (that *Game) DetermineGameResult() Mark {
	result := that.Board.Result()

	switch result.Kind {
	case Win:
		return result.Winner
	case Draw:
		return PlayerTie
	default:
		return EmptyCell
	}
}

func (that *Game) UpdateGameState() {
	switch winner := that.DetermineGameResult(); winner {
	// one player wins
	case PlayerX, PlayerO:
		that.Winner = winner
		that.Status = StatusFinished
		that.Turn = EmptyCell
	// tie
	case PlayerTie:
		that.Winner = PlayerTie
		that.Status = StatusFinished
		that.Turn = EmptyCell
	// game continue
	default:
		that.Status = StatusOngoing
	}
}

// MakeTurn places playerMark on the cell (row-major index 0..8) and passes the turn.
func (that *Game) MakeTurn(playerMark Mark, cell int) error {
	if that.IsFinished() {
		return apperror.ErrGameFinished
	}

	move, err := MoveFromIndex(cell)
	if err != nil {
		return err
	}

	if that.Turn != playerMark {
		return apperror.ErrNotYourTurn
	}

	if err = that.Board.Set(move.Row, move.Col, playerMark); err != nil {
		return fmt.Errorf("failed to place mark: %w", err)
	}

	that.Turn = playerMark.Opponent()

	that.UpdateGameState()

	return nil
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) ConfirmOngoingState() error {
	switch {
	case that.IsWaiting():
		return apperror.ErrGameIsNotStarted
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}

func (that *Game) IsWithBot() bool {
	return that.Type == WithBotType
}

// BotPlayer returns the bot seated in the game, if any.
func (that *Game) BotPlayer() (*Player, bool) {
	for _, player := range that.Players {
		if player.IsBot() {
			return player, true
		}
	}

	return nil, false
}

func (that *Game) GetRandomMarks() (Mark, Mark) {
	if rand.Intn(2) == 0 { //nolint: gosec // it's ok
		return PlayerX, PlayerO
	}
	return PlayerO, PlayerX
}
