package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-bot/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-bot/internal/entity"
)

func (that *Server) handleConnect(ctx context.Context, msg *Message, c *client) error {
	log := that.logger.With("method", "handleConnect")

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		that.sendErrorResponse(c, msg.Action, "invalid payload")
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	var playerID string
	if payloadReq.Player != nil {
		playerID = payloadReq.Player.ID
	}

	player, err := that.gameUseCase.GetOrCreatePlayer(ctx, playerID)
	if err != nil {
		that.sendErrorResponse(c, msg.Action, "failed to create a new player")
		return fmt.Errorf("failed to get or create player: %w", err)
	}

	that.register(player.ID, c)
	that.sendMessage(c, msg.Action, Payload{Player: player})

	log.Info("player connected", "playerID", player.ID, "new", playerID == "")

	return nil
}

func (that *Server) handleNewGame(ctx context.Context, msg *Message, c *client) error {
	payloadReq, err := that.decodePlayerPayload(msg, c)
	if err != nil {
		return err
	}

	if payloadReq.Game == nil {
		that.sendErrorResponse(c, msg.Action, "game is required")
		return nil
	}

	game, err := that.gameUseCase.GetOrCreateGame(ctx, payloadReq.Player.ID, payloadReq.Game.Type)
	if err != nil {
		that.sendErrorResponse(c, msg.Action, err.Error())
		return fmt.Errorf("failed to create game: %w", err)
	}

	that.broadcast(msg.Action, game)

	that.logger.Info("game started", "gameID", game.ID, "type", game.Type, "playerID", payloadReq.Player.ID)

	return nil
}

func (that *Server) handleJoinGame(ctx context.Context, msg *Message, c *client) error {
	payloadReq, err := that.decodePlayerPayload(msg, c)
	if err != nil {
		return err
	}

	if payloadReq.Game == nil || payloadReq.Game.ID == "" {
		that.sendErrorResponse(c, msg.Action, "game id is required")
		return nil
	}

	game, err := that.gameUseCase.JoinGame(ctx, payloadReq.Game.ID, payloadReq.Player.ID)
	if err != nil {
		that.sendErrorResponse(c, msg.Action, fmt.Sprintf("game %s: %v", payloadReq.Game.ID, err))
		return fmt.Errorf("failed to join game: %w", err)
	}

	that.broadcast(msg.Action, game)

	that.logger.Info("player joined game", "gameID", game.ID, "playerID", payloadReq.Player.ID)

	return nil
}

func (that *Server) handleGameTurn(ctx context.Context, msg *Message, c *client) error {
	payloadReq, err := that.decodePlayerPayload(msg, c)
	if err != nil {
		return err
	}

	if payloadReq.Cell == nil {
		that.sendErrorResponse(c, msg.Action, "cell is required")
		return nil
	}

	game, err := that.gameUseCase.MakeTurn(ctx, payloadReq.Player.ID, *payloadReq.Cell)
	switch {
	case errors.Is(err, apperror.ErrGameFinished) && game != nil:
		that.broadcast(msg.Action, game)
		that.logger.Info("game finished", "gameID", game.ID, "winner", game.Winner)

		return nil
	case err != nil:
		that.sendErrorResponse(c, msg.Action, err.Error())
		return fmt.Errorf("failed to make turn: %w", err)
	}

	that.broadcast(msg.Action, game)

	return nil
}

// decodePlayerPayload reads the payload and registers the connection for the player it names.
func (that *Server) decodePlayerPayload(msg *Message, c *client) (*Payload, error) {
	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		that.sendErrorResponse(c, msg.Action, "invalid payload")
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.Player == nil || payloadReq.Player.ID == "" {
		that.sendErrorResponse(c, msg.Action, "player is required")
		return nil, errPlayerRequired
	}

	that.register(payloadReq.Player.ID, c)

	return &payloadReq, nil
}

// broadcast sends the game to every human seated in it.
func (that *Server) broadcast(action string, game *entity.Game) {
	for _, player := range game.Players {
		if player.IsBot() {
			continue
		}

		conn, ok := that.connection(player.ID)
		if !ok {
			that.logger.Warn("connection not found for player", "playerID", player.ID, "gameID", game.ID)
			continue
		}

		that.sendMessage(conn, action, Payload{
			Player: player,
			Game:   maskGameDetails(game),
		})
	}
}
