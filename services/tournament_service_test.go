package services

import (
	"context"
	"testing"
	"time"

	"github.com/JustArys/tennis/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTournamentFixture() (*fixture, TournamentService) {
	f := newFixture()
	svc := NewTournamentService(f.tournaments, f.regs, f.matches, nil, testLogger())
	return f, svc
}

func validTournament() *models.Tournament {
	return &models.Tournament{
		StartDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 6, 7, 0, 0, 0, 0, time.UTC),
		Tier:      models.TierChallenger,
		Category:  models.CategorySinglesAll,
		AuthorID:  1,
	}
}

func TestCreateTournamentValidation(t *testing.T) {
	_, svc := newTournamentFixture()
	ctx := context.Background()

	created, err := svc.Create(ctx, validTournament())
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, 32, created.MaxParticipants())

	noTier := validTournament()
	noTier.Tier = ""
	_, err = svc.Create(ctx, noTier)
	assert.ErrorIs(t, err, ErrTournamentTierRequired)

	badCategory := validTournament()
	badCategory.Category = "TRIPLES"
	_, err = svc.Create(ctx, badCategory)
	assert.ErrorIs(t, err, ErrTournamentCategoryRequired)

	backwards := validTournament()
	backwards.EndDate = backwards.StartDate.AddDate(0, 0, -1)
	_, err = svc.Create(ctx, backwards)
	assert.ErrorIs(t, err, ErrTournamentInvalidDateRange)

	badLevels := validTournament()
	minLevel, maxLevel := 100.0, 50.0
	badLevels.MinLevel, badLevels.MaxLevel = &minLevel, &maxLevel
	_, err = svc.Create(ctx, badLevels)
	assert.ErrorIs(t, err, ErrTournamentInvalidLevel)

	negativeCost := validTournament()
	negativeCost.Cost = -10
	_, err = svc.Create(ctx, negativeCost)
	assert.ErrorIs(t, err, ErrTournamentInvalidCost)
}

func TestGetByIDLoadsRelations(t *testing.T) {
	f, svc := newTournamentFixture()
	tournament := f.seedTournament(models.TierFutures, models.CategorySinglesMale, 16)
	ctx := context.Background()

	_, err := f.bracketService.GenerateBracket(ctx, tournament.ID)
	require.NoError(t, err)

	loaded, err := svc.GetByID(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Registrations, 16)
	assert.Len(t, loaded.Matches, 15)
}

func TestUpdatePreservesOwnershipAndAwardFlag(t *testing.T) {
	f, svc := newTournamentFixture()
	ctx := context.Background()

	created, err := svc.Create(ctx, validTournament())
	require.NoError(t, err)
	require.NoError(t, f.tournaments.MarkPointsAwarded(ctx, nil, created.ID))

	patch := validTournament()
	patch.ID = created.ID
	patch.AuthorID = 999
	city := "Almaty"
	patch.City = &city

	updated, err := svc.Update(ctx, patch)
	require.NoError(t, err)
	assert.Equal(t, created.AuthorID, updated.AuthorID)
	assert.True(t, updated.PointsAwarded)
	assert.Equal(t, "Almaty", *updated.City)
}

func TestUploadPosterWithoutStorage(t *testing.T) {
	_, svc := newTournamentFixture()
	ctx := context.Background()
	created, err := svc.Create(ctx, validTournament())
	require.NoError(t, err)

	_, err = svc.UploadPoster(ctx, created.ID, "poster.png", "image/png", nil)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}
