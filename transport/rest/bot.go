package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/rocketscienceinc/tictactoe-bot/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-bot/internal/entity"
)

const maxBodyBytes = 1 << 10

var (
	errBoardSize = errors.New("board must hold 9 cells")
	errBadMark   = errors.New("mark must be X or O")
)

type botMoveRequest struct {
	Board []entity.Mark `json:"board"`
	Mark  entity.Mark   `json:"mark"`
}

type botMoveResponse struct {
	Row  int `json:"row"`
	Col  int `json:"col"`
	Cell int `json:"cell"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// botMoveHandler answers with the bot's move for the posted board. The board is not stored.
func (that *Server) botMoveHandler(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "botMoveHandler", "requestID", middleware.GetReqID(r.Context()))

	var req botMoveRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		that.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	if len(req.Board) != len(entity.Board{}) {
		that.writeError(w, http.StatusBadRequest, errBoardSize)
		return
	}

	if !req.Mark.IsPlayer() {
		that.writeError(w, http.StatusBadRequest, errBadMark)
		return
	}

	var board entity.Board
	copy(board[:], req.Board)

	move, err := that.botService.BestMove(r.Context(), board, req.Mark)
	switch {
	case errors.Is(err, apperror.ErrGameFinished), errors.Is(err, apperror.ErrNoMovesAvailable):
		that.writeError(w, http.StatusConflict, err)
		return
	case errors.Is(err, entity.ErrInvalidBoard), errors.Is(err, apperror.ErrNotYourTurn):
		that.writeError(w, http.StatusBadRequest, err)
		return
	case err != nil:
		log.Error("failed to find bot move", "error", err)
		that.writeError(w, http.StatusInternalServerError, errors.New(http.StatusText(http.StatusInternalServerError)))
		return
	}

	that.writeJSON(w, http.StatusOK, botMoveResponse{Row: move.Row, Col: move.Col, Cell: move.Index()})
}

func (that *Server) writeError(w http.ResponseWriter, status int, err error) {
	that.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
