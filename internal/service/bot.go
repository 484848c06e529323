package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/tictactoe-bot/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-bot/internal/entity"
	"github.com/rocketscienceinc/tictactoe-bot/internal/minimax"
)

var ErrBotNotFound = errors.New("bot player not found")

type BotService interface {
	// MakeTurn plays the bot's best move on a live game.
	MakeTurn(ctx context.Context, game *entity.Game) error
	// BestMove picks a move for mark on a standalone board. It is the bot's turn by the board's counts.
	BestMove(ctx context.Context, board entity.Board, mark entity.Mark) (entity.Move, error)
}

type botService struct {
	logger *slog.Logger

	parallelSearch bool
}

func NewBotService(logger *slog.Logger, parallelSearch bool) BotService {
	return &botService{
		logger:         logger.With("component", "bot"),
		parallelSearch: parallelSearch,
	}
}

func (that *botService) MakeTurn(ctx context.Context, game *entity.Game) error {
	bot, ok := game.BotPlayer()
	if !ok {
		return ErrBotNotFound
	}

	if game.Turn != bot.Mark {
		return apperror.ErrNotYourTurn
	}

	move, err := that.BestMove(ctx, game.Board, bot.Mark)
	if err != nil {
		return fmt.Errorf("failed to find move: %w", err)
	}

	if err = game.MakeTurn(bot.Mark, move.Index()); err != nil {
		return fmt.Errorf("bot failed to make turn: %w", err)
	}

	return nil
}

func (that *botService) BestMove(ctx context.Context, board entity.Board, mark entity.Mark) (entity.Move, error) {
	log := that.logger.With("method", "BestMove", "mark", mark)

	if err := board.Validate(); err != nil {
		return entity.Move{}, err
	}

	if board.Result().Kind != entity.Ongoing {
		return entity.Move{}, apperror.ErrGameFinished
	}

	if board.NextTurn() != mark {
		return entity.Move{}, apperror.ErrNotYourTurn
	}

	engine, err := minimax.New(mark)
	if err != nil {
		return entity.Move{}, fmt.Errorf("failed to create engine: %w", err)
	}

	started := time.Now()

	var move entity.Move
	if that.parallelSearch {
		move, err = engine.FindBestMoveParallel(ctx, board)
	} else {
		move, err = engine.FindBestMove(&board)
	}
	if err != nil {
		return entity.Move{}, fmt.Errorf("search failed: %w", err)
	}

	log.Debug("bot chose move", "row", move.Row, "col", move.Col, "parallel", that.parallelSearch, "elapsed", time.Since(started))

	return move, nil
}
