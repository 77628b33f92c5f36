package models

import "math"

// TournamentTier classifies a tournament and fixes its capacity, seed count
// and ranking-point pool.
type TournamentTier string

const (
	TierFutures    TournamentTier = "FUTURES"
	TierChallenger TournamentTier = "CHALLENGER"
	TierMasters    TournamentTier = "MASTERS"
)

type tierInfo struct {
	totalPoints     int
	maxParticipants int
	numberOfSeeds   int
}

var tierTable = map[TournamentTier]tierInfo{
	TierFutures:    {totalPoints: 200, maxParticipants: 16, numberOfSeeds: 4},
	TierChallenger: {totalPoints: 400, maxParticipants: 32, numberOfSeeds: 8},
	TierMasters:    {totalPoints: 600, maxParticipants: 64, numberOfSeeds: 16},
}

func (t TournamentTier) Valid() bool {
	_, ok := tierTable[t]
	return ok
}

func (t TournamentTier) TotalPoints() int {
	return tierTable[t].totalPoints
}

func (t TournamentTier) MaxParticipants() int {
	return tierTable[t].maxParticipants
}

func (t TournamentTier) NumberOfSeeds() int {
	return tierTable[t].numberOfSeeds
}

// PointsForRound returns the ranking points awarded to a participant whose
// run ended in roundReached. The champion is reported as totalRounds+1.
// The percentages are fixed tier-curve constants, not a formula.
func (t TournamentTier) PointsForRound(roundReached, totalRounds int) int {
	if totalRounds <= 0 {
		return 0
	}
	info, ok := tierTable[t]
	if !ok {
		return 0
	}
	total := float64(info.totalPoints)

	switch {
	case roundReached > totalRounds: // champion
		return info.totalPoints
	case roundReached == totalRounds: // finalist
		return int(math.Round(total * 0.60))
	case roundReached == totalRounds-1: // semifinalist
		return int(math.Round(total * 0.36))
	case roundReached == totalRounds-2 && totalRounds >= 3: // quarterfinalist
		return int(math.Round(total * 0.19))
	case roundReached == totalRounds-3 && totalRounds >= 4: // round of 16
		return int(math.Round(total * 0.10))
	case roundReached == totalRounds-4 && totalRounds >= 5: // round of 32
		return int(math.Round(total * 0.055))
	case roundReached == totalRounds-5 && totalRounds >= 6: // round of 64
		return int(math.Round(total * 0.01))
	}

	// First-round exits only collect a participation bonus at the lowest tier.
	if roundReached == 1 && totalRounds > 1 && t == TierFutures {
		return int(math.Round(total * 0.02))
	}
	return 0
}
