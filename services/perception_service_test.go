package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func newPerceptionFixture() (*claimFixture, PerceptionService) {
	f := newClaimFixture()
	return f, NewPerceptionService(&fakePerceptionRepo{store: f.store}, &fakeClaimRepo{store: f.store})
}

func TestRecordPerceptionUpsertsLatestBelief(t *testing.T) {
	f, perceptions := newPerceptionFixture()
	ctx := context.Background()

	aria := f.store.addCharacter("Aria")
	borin := f.store.addCharacter("Borin")

	first, err := perceptions.RecordPerception(ctx, PerceptionInput{
		ObserverCharacterID: aria.ID,
		TargetCharacterID:   borin.ID,
		AttributeName:       "Stealth",
		PerceivedPoints:     4,
		PerceptionNotes:     "Moves quietly for a dwarf",
	})
	require.NoError(t, err)

	// Perceptions are not accumulative; recording again replaces outright.
	second, err := perceptions.RecordPerception(ctx, PerceptionInput{
		ObserverCharacterID: aria.ID,
		TargetCharacterID:   borin.ID,
		AttributeName:       "Stealth",
		PerceivedPoints:     1,
		PerceptionNotes:     "Tripped over the tavern bench",
	})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, 1, second.PerceivedPoints)

	view, err := perceptions.PerceivedRankings(ctx, aria.ID, "Stealth")
	require.NoError(t, err)
	require.Len(t, view.PerceivedOthers, 1)
	require.Equal(t, 1, view.PerceivedOthers[0].PerceivedPoints)
	require.Equal(t, "Tripped over the tavern bench", view.PerceivedOthers[0].PerceptionNotes)
}

func TestRecordPerceptionValidation(t *testing.T) {
	f, perceptions := newPerceptionFixture()
	aria := f.store.addCharacter("Aria")
	borin := f.store.addCharacter("Borin")

	tests := []struct {
		name    string
		input   PerceptionInput
		wantErr error
	}{
		{
			name:    "self perception",
			input:   PerceptionInput{ObserverCharacterID: aria.ID, TargetCharacterID: aria.ID, AttributeName: "Stealth", PerceivedPoints: 2},
			wantErr: ErrSelfPerception,
		},
		{
			name:    "missing observer",
			input:   PerceptionInput{TargetCharacterID: borin.ID, AttributeName: "Stealth", PerceivedPoints: 2},
			wantErr: ErrCharacterNotFound,
		},
		{
			name:    "blank attribute",
			input:   PerceptionInput{ObserverCharacterID: aria.ID, TargetCharacterID: borin.ID, AttributeName: " ", PerceivedPoints: 2},
			wantErr: ErrAttributeNameRequired,
		},
		{
			name:    "negative points",
			input:   PerceptionInput{ObserverCharacterID: aria.ID, TargetCharacterID: borin.ID, AttributeName: "Stealth", PerceivedPoints: -1},
			wantErr: ErrPerceivedPointsInvalid,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := perceptions.RecordPerception(context.Background(), tc.input)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestPerceivedRankingsIncludeOwnActualInvestment(t *testing.T) {
	f, perceptions := newPerceptionFixture()
	ctx := context.Background()

	aria := f.store.addCharacter("Aria")
	borin := f.store.addCharacter("Borin")
	cass := f.store.addCharacter("Cass")
	f.store.addPool(aria.ID, 10, 0)

	_, err := f.service.Allocate(ctx, AllocateInput{CharacterID: aria.ID, AttributeName: "Stealth", PointsToAdd: 3, Justification: "Shadow work"})
	require.NoError(t, err)

	_, err = perceptions.RecordPerception(ctx, PerceptionInput{ObserverCharacterID: aria.ID, TargetCharacterID: borin.ID, AttributeName: "Stealth", PerceivedPoints: 5})
	require.NoError(t, err)
	_, err = perceptions.RecordPerception(ctx, PerceptionInput{ObserverCharacterID: aria.ID, TargetCharacterID: cass.ID, AttributeName: "Stealth", PerceivedPoints: 2})
	require.NoError(t, err)

	view, err := perceptions.PerceivedRankings(ctx, aria.ID, "Stealth")
	require.NoError(t, err)
	require.Equal(t, 3, view.OwnPoints)
	require.Len(t, view.PerceivedOthers, 2)
	require.Equal(t, borin.ID, view.PerceivedOthers[0].TargetCharacterID)
	require.Equal(t, "Borin", view.PerceivedOthers[0].TargetCharacterName)
	require.Equal(t, cass.ID, view.PerceivedOthers[1].TargetCharacterID)
}

func TestPerceivedRankingsWithoutOwnClaim(t *testing.T) {
	f, perceptions := newPerceptionFixture()
	aria := f.store.addCharacter("Aria")

	view, err := perceptions.PerceivedRankings(context.Background(), aria.ID, "Stealth")
	require.NoError(t, err)
	require.Equal(t, 0, view.OwnPoints)
	require.Empty(t, view.PerceivedOthers)
}
