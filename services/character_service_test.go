package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mrdatawolf/DM-Helper/models"
)

func newCharacterFixture() (*fakeStore, CharacterService) {
	store := newFakeStore()
	service := NewCharacterService(
		&fakeTxManager{store: store},
		&fakeCharacterRepo{store: store},
		&fakePoolRepo{store: store},
	)
	return store, service
}

func TestCreateCharacterSeedsDefaultPool(t *testing.T) {
	store, characters := newCharacterFixture()

	character, err := characters.CreateCharacter(context.Background(), CreateCharacterInput{Name: "  Aria  "})
	require.NoError(t, err)
	require.Equal(t, "Aria", character.Name)
	require.NotZero(t, character.ID)

	pool, ok := store.pools[character.ID]
	require.True(t, ok)
	require.Equal(t, models.DefaultPoolPoints, pool.TotalPoints)
	require.Equal(t, 0, pool.SpentPoints)
}

func TestCreateCharacterRequiresName(t *testing.T) {
	_, characters := newCharacterFixture()

	_, err := characters.CreateCharacter(context.Background(), CreateCharacterInput{Name: "   "})
	require.ErrorIs(t, err, ErrCharacterNameRequired)
}

func TestGetCharacterNotFound(t *testing.T) {
	_, characters := newCharacterFixture()

	_, err := characters.GetCharacter(context.Background(), 42)
	require.ErrorIs(t, err, ErrCharacterNotFound)
}

func TestDeleteCharacter(t *testing.T) {
	store, characters := newCharacterFixture()
	ctx := context.Background()

	character, err := characters.CreateCharacter(ctx, CreateCharacterInput{Name: "Aria"})
	require.NoError(t, err)

	require.NoError(t, characters.DeleteCharacter(ctx, character.ID))
	_, ok := store.pools[character.ID]
	require.False(t, ok)

	require.ErrorIs(t, characters.DeleteCharacter(ctx, character.ID), ErrCharacterNotFound)
}
