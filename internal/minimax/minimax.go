// Package minimax implements an exhaustive minimax search for tic-tac-toe.
//
// The engine plays a fixed mark and scores positions from that mark's point of view:
// 1 for a forced win, 0 for a draw, -1 for a forced loss. The whole remaining game tree
// is visited on every call, no pruning and no depth preference.
package minimax

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/tictactoe-bot/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-bot/internal/entity"
)

const (
	ScoreWin  = 1
	ScoreDraw = 0
	ScoreLoss = -1
)

var ErrInvalidMark = errors.New("engine mark must be X or O")

type Engine struct {
	mark     entity.Mark
	opponent entity.Mark
}

// Evaluation - score of a position together with the number of positions visited to get it.
type Evaluation struct {
	Score int
	Nodes int
}

func New(mark entity.Mark) (*Engine, error) {
	if !mark.IsPlayer() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMark, mark)
	}

	return &Engine{
		mark:     mark,
		opponent: mark.Opponent(),
	}, nil
}

func (that *Engine) Mark() entity.Mark {
	return that.mark
}

// Score evaluates board with the engine's mark to move when maximizing is true.
// The board is mutated during the search and is left exactly as it was passed in.
func (that *Engine) Score(board *entity.Board, maximizing bool) (int, error) {
	evaluation, err := that.Evaluate(board, maximizing)
	if err != nil {
		return 0, err
	}

	return evaluation.Score, nil
}

func (that *Engine) Evaluate(board *entity.Board, maximizing bool) (Evaluation, error) {
	var nodes int

	score, err := that.score(board, maximizing, &nodes)
	if err != nil {
		return Evaluation{}, err
	}

	return Evaluation{Score: score, Nodes: nodes}, nil
}

// FindBestMove returns the first move, in row-major order, with the highest score.
func (that *Engine) FindBestMove(board *entity.Board) (entity.Move, error) {
	candidates := board.EmptyCells()
	if len(candidates) == 0 {
		return entity.Move{}, apperror.ErrNoMovesAvailable
	}

	bestScore := math.MinInt
	var bestMove entity.Move

	for _, move := range candidates {
		score, err := that.tryMove(board, move)
		if err != nil {
			return entity.Move{}, err
		}

		if score > bestScore {
			bestScore = score
			bestMove = move
		}
	}

	return bestMove, nil
}

// FindBestMoveParallel scores every root move in its own goroutine on a private copy of the board.
// The selection rule is the same as FindBestMove, so both always agree.
func (that *Engine) FindBestMoveParallel(ctx context.Context, board entity.Board) (entity.Move, error) {
	candidates := board.EmptyCells()
	if len(candidates) == 0 {
		return entity.Move{}, apperror.ErrNoMovesAvailable
	}

	scores := make([]int, len(candidates))

	group, groupCtx := errgroup.WithContext(ctx)
	for i, move := range candidates {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			branch := board

			score, err := that.tryMove(&branch, move)
			if err != nil {
				return err
			}

			scores[i] = score

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return entity.Move{}, fmt.Errorf("root search failed: %w", err)
	}

	bestScore := math.MinInt
	var bestMove entity.Move

	for i, move := range candidates {
		if scores[i] > bestScore {
			bestScore = scores[i]
			bestMove = move
		}
	}

	return bestMove, nil
}

// tryMove plays the engine's mark on move, scores the reply position and takes the mark back.
func (that *Engine) tryMove(board *entity.Board, move entity.Move) (int, error) {
	var nodes int

	if err := board.Set(move.Row, move.Col, that.mark); err != nil {
		return 0, fmt.Errorf("failed to try move %+v: %w", move, err)
	}
	defer board.Clear(move.Row, move.Col)

	return that.score(board, false, &nodes)
}

func (that *Engine) score(board *entity.Board, maximizing bool, nodes *int) (int, error) {
	*nodes++

	switch winner, _ := board.Winner(); winner {
	case that.mark:
		return ScoreWin, nil
	case that.opponent:
		return ScoreLoss, nil
	}

	candidates := board.EmptyCells()
	if len(candidates) == 0 {
		return ScoreDraw, nil
	}

	mark, best := that.opponent, math.MaxInt
	if maximizing {
		mark, best = that.mark, math.MinInt
	}

	for _, move := range candidates {
		score, err := that.child(board, move, mark, maximizing, nodes)
		if err != nil {
			return 0, err
		}

		if maximizing {
			best = max(best, score)
		} else {
			best = min(best, score)
		}
	}

	return best, nil
}

func (that *Engine) child(board *entity.Board, move entity.Move, mark entity.Mark, maximizing bool, nodes *int) (int, error) {
	if err := board.Set(move.Row, move.Col, mark); err != nil {
		return 0, fmt.Errorf("search wrote over %+v: %w", move, err)
	}
	defer board.Clear(move.Row, move.Col)

	return that.score(board, !maximizing, nodes)
}
