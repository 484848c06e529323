package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-bot/internal/entity"
)

func TestGameService_CreateGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Stores a waiting game with the creator as X", func(t *testing.T) {
		// Given: a repository that accepts writes
		repo := &mockGameRepo{}
		repo.On("CreateOrUpdate", ctx, mock.AnythingOfType("*entity.Game")).Return(nil).Once()
		gameService := NewGameService(repo)
		player := &entity.Player{ID: "p1"}

		// When: a game is created
		game, updated, err := gameService.CreateGame(ctx, player, entity.WithBotType)

		// Then: the creator holds X and points at the new game
		require.NoError(t, err)
		assert.NotEmpty(t, game.ID)
		assert.True(t, game.IsWaiting())
		assert.Equal(t, entity.WithBotType, game.Type)
		assert.Equal(t, x, game.Turn)
		assert.Equal(t, x, updated.Mark)
		assert.Equal(t, game.ID, updated.GameID)
		repo.AssertExpectations(t)
	})

	t.Run("Wraps storage errors", func(t *testing.T) {
		repo := &mockGameRepo{}
		repo.On("CreateOrUpdate", ctx, mock.Anything).Return(errStorageDown).Once()
		gameService := NewGameService(repo)

		_, _, err := gameService.CreateGame(ctx, &entity.Player{ID: "p1"}, entity.PrivateType)

		assert.ErrorIs(t, err, errStorageDown)
	})
}

func TestGameService_GetUpdateDelete(t *testing.T) {
	ctx := context.Background()
	repo := &mockGameRepo{}
	gameService := NewGameService(repo)
	game := &entity.Game{ID: "g1"}

	repo.On("GetByID", ctx, "g1").Return(game, nil).Once()
	repo.On("GetByID", ctx, "missing").Return(nil, errStorageDown).Once()
	repo.On("CreateOrUpdate", ctx, game).Return(nil).Once()
	repo.On("DeleteByID", ctx, "g1").Return(nil).Once()

	found, err := gameService.GetGameByID(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, game, found)

	_, err = gameService.GetGameByID(ctx, "missing")
	require.ErrorIs(t, err, errStorageDown)

	require.NoError(t, gameService.UpdateGame(ctx, game))
	require.NoError(t, gameService.DeleteGame(ctx, "g1"))

	repo.AssertExpectations(t)
}
