package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierTable(t *testing.T) {
	assert.Equal(t, 200, TierFutures.TotalPoints())
	assert.Equal(t, 16, TierFutures.MaxParticipants())
	assert.Equal(t, 4, TierFutures.NumberOfSeeds())

	assert.Equal(t, 400, TierChallenger.TotalPoints())
	assert.Equal(t, 32, TierChallenger.MaxParticipants())
	assert.Equal(t, 8, TierChallenger.NumberOfSeeds())

	assert.Equal(t, 600, TierMasters.TotalPoints())
	assert.Equal(t, 64, TierMasters.MaxParticipants())
	assert.Equal(t, 16, TierMasters.NumberOfSeeds())

	assert.True(t, TierFutures.Valid())
	assert.False(t, TournamentTier("AMATEUR").Valid())
}

func TestPointsForRoundFuturesCurve(t *testing.T) {
	// A sixteen draw runs four rounds; the champion reports round five.
	totalRounds := 4

	assert.Equal(t, 200, TierFutures.PointsForRound(5, totalRounds))
	assert.Equal(t, 120, TierFutures.PointsForRound(4, totalRounds))
	assert.Equal(t, 72, TierFutures.PointsForRound(3, totalRounds))
	assert.Equal(t, 38, TierFutures.PointsForRound(2, totalRounds))
	assert.Equal(t, 20, TierFutures.PointsForRound(1, totalRounds))
}

func TestPointsForRoundChallengerCurve(t *testing.T) {
	totalRounds := 5

	assert.Equal(t, 400, TierChallenger.PointsForRound(6, totalRounds))
	assert.Equal(t, 240, TierChallenger.PointsForRound(5, totalRounds))
	assert.Equal(t, 144, TierChallenger.PointsForRound(4, totalRounds))
	assert.Equal(t, 76, TierChallenger.PointsForRound(3, totalRounds))
	assert.Equal(t, 40, TierChallenger.PointsForRound(2, totalRounds))
	assert.Equal(t, 22, TierChallenger.PointsForRound(1, totalRounds))
}

func TestPointsForRoundMastersCurve(t *testing.T) {
	totalRounds := 6

	assert.Equal(t, 600, TierMasters.PointsForRound(7, totalRounds))
	assert.Equal(t, 360, TierMasters.PointsForRound(6, totalRounds))
	assert.Equal(t, 216, TierMasters.PointsForRound(5, totalRounds))
	assert.Equal(t, 114, TierMasters.PointsForRound(4, totalRounds))
	assert.Equal(t, 60, TierMasters.PointsForRound(3, totalRounds))
	assert.Equal(t, 33, TierMasters.PointsForRound(2, totalRounds))
	assert.Equal(t, 6, TierMasters.PointsForRound(1, totalRounds))
}

func TestPointsForRoundEdges(t *testing.T) {
	assert.Equal(t, 0, TierFutures.PointsForRound(1, 0))
	assert.Equal(t, 0, TournamentTier("AMATEUR").PointsForRound(3, 4))

	// A first-round exit below the named rounds only pays at the lowest
	// tier.
	assert.Equal(t, 4, TierFutures.PointsForRound(1, 7))
	assert.Equal(t, 0, TierMasters.PointsForRound(1, 7))
}
