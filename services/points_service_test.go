package services

import (
	"context"
	"testing"

	"github.com/JustArys/tennis/models"
	"github.com/JustArys/tennis/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// playOut finishes every scheduled match; the participant with the lower
// registration id (the stronger player in these fixtures) always wins.
func playOut(t *testing.T, f *fixture, tournamentID int) {
	t.Helper()
	ctx := context.Background()
	for {
		matches, err := f.matches.ListByTournament(ctx, tournamentID)
		require.NoError(t, err)

		played := false
		for _, m := range matches {
			if m.Status != models.MatchScheduled {
				continue
			}
			winner := *m.Participant1RegID
			if *m.Participant2RegID < winner {
				winner = *m.Participant2RegID
			}
			_, err := f.matchService.RecordResult(ctx, m.ID, winner, "6-4 6-4")
			require.NoError(t, err)
			played = true
		}
		if !played {
			return
		}
	}
}

func TestCalculateAndAwardPointsFullDraw(t *testing.T) {
	f := newFixture()
	tournament := f.seedTournament(models.TierFutures, models.CategorySinglesMale, 16)
	ctx := context.Background()

	_, err := f.bracketService.GenerateBracket(ctx, tournament.ID)
	require.NoError(t, err)
	playOut(t, f, tournament.ID)

	awards, err := f.pointsService.CalculateAndAwardPoints(ctx, tournament.ID)
	require.NoError(t, err)
	require.Len(t, awards, 16)

	// The strongest player wins every match in these fixtures.
	champion, err := f.users.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1200.0, champion.Rating)

	// The tier curve over a sixteen draw: one champion, one finalist, two
	// semifinalists, four quarterfinalists, eight first-round exits.
	byPoints := map[float64]int{}
	for _, award := range awards {
		byPoints[award.Points]++
	}
	assert.Equal(t, map[float64]int{200: 1, 120: 1, 72: 2, 38: 4, 20: 8}, byPoints)

	// The finalist's rating moved by exactly the finalist share.
	for _, award := range awards {
		if award.Points == 120 {
			user, err := f.users.GetByID(ctx, award.UserID)
			require.NoError(t, err)
			assert.Equal(t, float64(1000-(award.UserID-1)*10)+120, user.Rating)
		}
	}
}

func TestCalculateAndAwardPointsOnlyOnce(t *testing.T) {
	f := newFixture()
	tournament := f.seedTournament(models.TierFutures, models.CategorySinglesMale, 8)
	ctx := context.Background()

	_, err := f.bracketService.GenerateBracket(ctx, tournament.ID)
	require.NoError(t, err)
	playOut(t, f, tournament.ID)

	_, err = f.pointsService.CalculateAndAwardPoints(ctx, tournament.ID)
	require.NoError(t, err)

	before, err := f.users.GetByID(ctx, 1)
	require.NoError(t, err)

	_, err = f.pointsService.CalculateAndAwardPoints(ctx, tournament.ID)
	assert.ErrorIs(t, err, repositories.ErrPointsAlreadyAwarded)

	after, err := f.users.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, before.Rating, after.Rating)
}

func TestCalculateAndAwardPointsRequiresFinishedFinal(t *testing.T) {
	f := newFixture()
	tournament := f.seedTournament(models.TierFutures, models.CategorySinglesMale, 16)
	ctx := context.Background()

	_, err := f.bracketService.GenerateBracket(ctx, tournament.ID)
	require.NoError(t, err)

	_, err = f.pointsService.CalculateAndAwardPoints(ctx, tournament.ID)
	assert.ErrorIs(t, err, ErrTournamentNotFinished)
}

func TestCalculateAndAwardPointsUnderFullDraw(t *testing.T) {
	f := newFixture()
	tournament := f.seedTournament(models.TierFutures, models.CategorySinglesMale, 9)
	ctx := context.Background()

	_, err := f.bracketService.GenerateBracket(ctx, tournament.ID)
	require.NoError(t, err)
	playOut(t, f, tournament.ID)

	awards, err := f.pointsService.CalculateAndAwardPoints(ctx, tournament.ID)
	require.NoError(t, err)
	require.Len(t, awards, 9)

	var championAward *PointsAward
	for _, award := range awards {
		if award.RoundReached == 5 {
			championAward = award
		}
	}
	require.NotNil(t, championAward)
	assert.Equal(t, 200.0, championAward.Points)
}
