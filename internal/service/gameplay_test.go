package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-bot/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-bot/internal/entity"
)

var errStorageDown = errors.New("storage down")

func newGamePlay(t *testing.T) (*mockPlayerService, *mockGameService, GamePlayService) {
	t.Helper()

	players := &mockPlayerService{}
	games := &mockGameService{}
	t.Cleanup(func() {
		players.AssertExpectations(t)
		games.AssertExpectations(t)
	})

	return players, games, NewGamePlayService(discardLogger(), players, games, NewBotService(discardLogger(), false))
}

func TestGamePlayService_MakeTurn(t *testing.T) {
	ctx := context.Background()

	t.Run("Bot answers the human's move", func(t *testing.T) {
		// Given: a fresh bot game where the human plays X
		players, games, gamePlay := newGamePlay(t)
		game := newBotGame(entity.Board{}, o)
		human := game.Players[0]

		players.On("GetPlayerByID", ctx, "human").Return(human, nil).Once()
		games.On("GetGameByID", ctx, "g1").Return(game, nil).Once()
		games.On("UpdateGame", ctx, game).Return(nil).Once()

		// When: the human opens in the corner
		updated, err := gamePlay.MakeTurn(ctx, "human", 0)

		// Then: the bot replies in the centre and it is X's turn again
		require.NoError(t, err)
		assert.Equal(t, x, updated.Board.Get(0, 0))
		assert.Equal(t, o, updated.Board.Get(1, 1))
		assert.Equal(t, x, updated.Turn)
		assert.True(t, updated.IsOngoing())
	})

	t.Run("Bot stays quiet after the human wins", func(t *testing.T) {
		players, games, gamePlay := newGamePlay(t)
		game := newBotGame(entity.Board{
			x, x, e,
			o, o, e,
			e, e, e,
		}, o)

		players.On("GetPlayerByID", ctx, "human").Return(game.Players[0], nil).Once()
		games.On("GetGameByID", ctx, "g1").Return(game, nil).Once()
		games.On("UpdateGame", ctx, game).Return(nil).Once()

		updated, err := gamePlay.MakeTurn(ctx, "human", 2)

		require.NoError(t, err)
		assert.True(t, updated.IsFinished())
		assert.Equal(t, x, updated.Winner)
		assert.Equal(t, e, updated.Board.Get(1, 2))
	})

	t.Run("Rejects a move in a finished game", func(t *testing.T) {
		players, games, gamePlay := newGamePlay(t)
		game := newBotGame(entity.Board{}, o)
		game.Status = entity.StatusFinished

		players.On("GetPlayerByID", ctx, "human").Return(game.Players[0], nil).Once()
		games.On("GetGameByID", ctx, "g1").Return(game, nil).Once()

		_, err := gamePlay.MakeTurn(ctx, "human", 0)

		assert.ErrorIs(t, err, apperror.ErrGameFinished)
	})

	t.Run("Rejects a move into an occupied cell", func(t *testing.T) {
		players, games, gamePlay := newGamePlay(t)
		game := newBotGame(entity.Board{x, e, e, e, o}, o)

		players.On("GetPlayerByID", ctx, "human").Return(game.Players[0], nil).Once()
		games.On("GetGameByID", ctx, "g1").Return(game, nil).Once()

		_, err := gamePlay.MakeTurn(ctx, "human", 4)

		assert.ErrorIs(t, err, apperror.ErrInvalidCellWrite)
	})

	t.Run("Surfaces storage errors", func(t *testing.T) {
		players, _, gamePlay := newGamePlay(t)

		players.On("GetPlayerByID", ctx, "human").Return(nil, errStorageDown).Once()

		_, err := gamePlay.MakeTurn(ctx, "human", 0)

		assert.ErrorIs(t, err, errStorageDown)
	})
}

func TestGamePlayService_GetOrCreateGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Seats the bot in a new bot game", func(t *testing.T) {
		// Given: a player without a game
		players, games, gamePlay := newGamePlay(t)
		player := &entity.Player{ID: "human"}
		created := entity.NewGame("g1", entity.WithBotType)
		created.Players = []*entity.Player{player}

		games.On("CreateGame", ctx, player, entity.WithBotType).Return(created, player, nil).Once()
		players.On("UpdatePlayer", ctx, mock.AnythingOfType("*entity.Player")).Return(nil)
		games.On("UpdateGame", ctx, created).Return(nil).Once()

		// When: a bot game is requested
		game, err := gamePlay.GetOrCreateGame(ctx, player, entity.WithBotType)
		require.NoError(t, err)

		// Then: the game is ongoing with the human and the bot holding opposite marks
		require.Len(t, game.Players, 2)
		bot, ok := game.BotPlayer()
		require.True(t, ok)
		assert.Equal(t, player.Mark.Opponent(), bot.Mark)
		assert.True(t, game.IsOngoing())

		// And: the bot has already opened when it holds X
		if bot.Mark == x {
			assert.Equal(t, x, game.Board.Get(0, 0))
			assert.Equal(t, o, game.Turn)
		} else {
			assert.Equal(t, entity.Board{}, game.Board)
			assert.Equal(t, x, game.Turn)
		}
	})

	t.Run("Leaves a private game waiting for the second player", func(t *testing.T) {
		players, games, gamePlay := newGamePlay(t)
		player := &entity.Player{ID: "p1"}
		created := entity.NewGame("g2", entity.PrivateType)
		created.Players = []*entity.Player{player}

		games.On("CreateGame", ctx, player, entity.PrivateType).Return(created, player, nil).Once()
		players.On("UpdatePlayer", ctx, player).Return(nil).Once()

		game, err := gamePlay.GetOrCreateGame(ctx, player, entity.PrivateType)

		require.NoError(t, err)
		assert.True(t, game.IsWaiting())
		assert.Len(t, game.Players, 1)
	})

	t.Run("Returns the game the player is already in", func(t *testing.T) {
		_, games, gamePlay := newGamePlay(t)
		player := &entity.Player{ID: "p1", GameID: "g3"}
		existing := &entity.Game{ID: "g3", Status: entity.StatusOngoing}

		games.On("GetGameByID", ctx, "g3").Return(existing, nil).Once()

		game, err := gamePlay.GetOrCreateGame(ctx, player, entity.WithBotType)

		require.NoError(t, err)
		assert.Equal(t, existing, game)
	})
}

func TestGamePlayService_JoinGameByID(t *testing.T) {
	ctx := context.Background()

	t.Run("Second player joins as O and the game starts", func(t *testing.T) {
		players, games, gamePlay := newGamePlay(t)
		game := entity.NewGame("g1", entity.PrivateType)
		game.Players = []*entity.Player{{ID: "p1", Mark: x, GameID: "g1"}}
		joiner := &entity.Player{ID: "p2"}

		games.On("GetGameByID", ctx, "g1").Return(game, nil).Once()
		players.On("GetPlayerByID", ctx, "p2").Return(joiner, nil).Once()
		players.On("UpdatePlayer", ctx, joiner).Return(nil).Once()
		games.On("UpdateGame", ctx, game).Return(nil).Once()

		joined, err := gamePlay.JoinGameByID(ctx, "g1", "p2")

		require.NoError(t, err)
		assert.True(t, joined.IsOngoing())
		assert.Equal(t, o, joiner.Mark)
		assert.Equal(t, "g1", joiner.GameID)
	})

	t.Run("Refuses a third player", func(t *testing.T) {
		players, games, gamePlay := newGamePlay(t)
		game := newBotGame(entity.Board{}, o)

		games.On("GetGameByID", ctx, "g1").Return(game, nil).Once()
		players.On("GetPlayerByID", ctx, "p3").Return(&entity.Player{ID: "p3"}, nil).Once()

		_, err := gamePlay.JoinGameByID(ctx, "g1", "p3")

		assert.ErrorIs(t, err, apperror.ErrGameAlreadyExists)
	})
}

func TestGamePlayService_CleanupGame(t *testing.T) {
	t.Run("Frees the players even when the game cannot be deleted", func(t *testing.T) {
		ctx := context.Background()
		players, games, gamePlay := newGamePlay(t)
		game := newBotGame(entity.Board{}, o)

		games.On("DeleteGame", ctx, "g1").Return(errStorageDown).Once()
		players.On("UpdatePlayer", ctx, mock.MatchedBy(func(player *entity.Player) bool {
			return player.GameID == "" && player.Mark == e
		})).Return(nil).Twice()

		gamePlay.CleanupGame(ctx, game)

		for _, player := range game.Players {
			assert.Empty(t, player.GameID)
		}
	})
}
