package services

import (
	"context"
	"testing"

	"github.com/JustArys/tennis/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateBracketPersistsFullTree(t *testing.T) {
	f := newFixture()
	tournament := f.seedTournament(models.TierFutures, models.CategorySinglesMale, 16)

	matches, err := f.bracketService.GenerateBracket(context.Background(), tournament.ID)
	require.NoError(t, err)
	require.Len(t, matches, 15)

	byID := make(map[int]*models.Match, len(matches))
	for _, m := range matches {
		byID[m.ID] = m
	}
	for _, m := range matches {
		if m.RoundNumber == 4 {
			assert.Nil(t, m.NextMatchID)
			continue
		}
		require.NotNil(t, m.NextMatchID, "match %d", m.ID)
		next, ok := byID[*m.NextMatchID]
		require.True(t, ok, "next match id %d does not exist", *m.NextMatchID)
		assert.Equal(t, m.RoundNumber+1, next.RoundNumber)
		require.NotNil(t, m.NextMatchSlot)
		assert.Contains(t, []int{1, 2}, *m.NextMatchSlot)
	}

	// Round one is scheduled on the tournament's start date.
	for _, m := range matches {
		if m.RoundNumber == 1 {
			require.NotNil(t, m.ScheduledTime)
			assert.Equal(t, tournament.StartDate, *m.ScheduledTime)
		}
	}

	// Seeding was written back: four seeds, strongest player first.
	regs, err := f.regs.ListByTournament(context.Background(), nil, tournament.ID, nil)
	require.NoError(t, err)
	seeded := 0
	for _, reg := range regs {
		require.NotNil(t, reg.SeedingRating)
		if reg.SeedNumber != nil {
			seeded++
			if *reg.SeedNumber == 1 {
				assert.Equal(t, 1, reg.UserID)
			}
		}
	}
	assert.Equal(t, 4, seeded)
}

func TestGenerateBracketIsNotRepeatable(t *testing.T) {
	f := newFixture()
	tournament := f.seedTournament(models.TierFutures, models.CategorySinglesMale, 8)

	_, err := f.bracketService.GenerateBracket(context.Background(), tournament.ID)
	require.NoError(t, err)

	_, err = f.bracketService.GenerateBracket(context.Background(), tournament.ID)
	assert.ErrorIs(t, err, ErrBracketAlreadyGenerated)
}

func TestGenerateBracketUnderFullFieldPersistsResolvedByes(t *testing.T) {
	f := newFixture()
	tournament := f.seedTournament(models.TierFutures, models.CategorySinglesMale, 9)

	matches, err := f.bracketService.GenerateBracket(context.Background(), tournament.ID)
	require.NoError(t, err)
	require.Len(t, matches, 15)

	walkovers := 0
	for _, m := range matches {
		if m.RoundNumber == 1 && m.Status == models.MatchWalkover {
			walkovers++
			require.NotNil(t, m.CompletedTime)
			require.NotNil(t, m.Score)
			assert.Equal(t, models.ScoreBye, *m.Score)
		}
	}
	assert.Equal(t, 7, walkovers)

	// No second-round match waits on a bye that can never arrive.
	for _, m := range matches {
		if m.RoundNumber == 2 {
			switch m.Status {
			case models.MatchScheduled:
				assert.NotNil(t, m.Participant1RegID)
				assert.NotNil(t, m.Participant2RegID)
			case models.MatchPendingParticipants:
				// At least one feeder is a real match still to be played.
			default:
				t.Fatalf("unexpected second-round status %s", m.Status)
			}
		}
	}
}

func TestGenerateBracketUnknownTournament(t *testing.T) {
	f := newFixture()
	_, err := f.bracketService.GenerateBracket(context.Background(), 99)
	assert.Error(t, err)
}
