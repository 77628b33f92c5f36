package brackets

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/JustArys/tennis/models"
)

type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// GenerateBracket plans a full single-elimination tree for the given
// capacity: capacity-1 matches over log2(capacity) rounds, numbered with a
// single counter spanning the whole tree (round 1 first). Match i of round
// r feeds match i/2 of round r+1, slot (i%2)+1. The seeded slot array is
// paired into round 1: slot 2k becomes participant 1 of match k, slot 2k+1
// participant 2.
func (g *SingleEliminationGenerator) GenerateBracket(_ context.Context, params GenerateBracketParams) ([]*BracketMatch, error) {
	capacity := params.Capacity
	if capacity < 2 || capacity&(capacity-1) != 0 {
		return nil, fmt.Errorf("bracket capacity must be a power of two, got %d", capacity)
	}
	n := len(params.Registrations)
	if n < 2 {
		return nil, ErrNotEnoughParticipants
	}
	if n > capacity {
		return nil, ErrTooManyParticipants
	}

	if err := ComputeSeeding(params.Registrations, params.Doubles, params.NumberOfSeeds); err != nil {
		return nil, err
	}

	rng := params.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	slots := PlaceInSlots(params.Registrations, capacity, rng)

	totalRounds := int(math.Log2(float64(capacity)))

	all := make([]*BracketMatch, 0, capacity-1)
	byRound := make([][]*BracketMatch, totalRounds+1)
	counter := 1
	for round := 1; round <= totalRounds; round++ {
		matchesInRound := capacity >> uint(round)
		byRound[round] = make([]*BracketMatch, 0, matchesInRound)
		for i := 0; i < matchesInRound; i++ {
			bm := &BracketMatch{
				Round:           round,
				NumberInBracket: counter,
				Status:          models.MatchPendingParticipants,
			}
			counter++
			all = append(all, bm)
			byRound[round] = append(byRound[round], bm)
		}
	}

	for round := 1; round < totalRounds; round++ {
		for i, bm := range byRound[round] {
			next := byRound[round+1][i/2]
			num := next.NumberInBracket
			slot := (i % 2) + 1
			bm.NextMatchNumber = &num
			bm.NextMatchSlot = &slot
		}
	}

	for i, bm := range byRound[1] {
		if reg := slots[2*i]; reg != nil {
			id := reg.ID
			bm.Participant1RegID = &id
		}
		if reg := slots[2*i+1]; reg != nil {
			id := reg.ID
			bm.Participant2RegID = &id
		}
	}

	g.resolveByes(byRound, totalRounds)

	return all, nil
}

// resolveByes settles every planned match whose outcome is already forced.
// Rounds are walked in order, so a match's feeders are settled first. A
// slot is permanently empty when it has no participant and its feeder
// (none in round 1) can no longer produce one. A match with one participant
// against a permanently empty slot is a walkover for the participant, whose
// id propagates into the next round; a match between two permanently empty
// slots is closed with no winner.
func (g *SingleEliminationGenerator) resolveByes(byRound [][]*BracketMatch, totalRounds int) {
	score := models.ScoreBye
	for round := 1; round <= totalRounds; round++ {
		for i, bm := range byRound[round] {
			empty1 := bm.Participant1RegID == nil
			empty2 := bm.Participant2RegID == nil

			dead1, dead2 := empty1, empty2
			if round > 1 {
				f1 := byRound[round-1][2*i]
				f2 := byRound[round-1][2*i+1]
				dead1 = empty1 && f1.Status.IsTerminal() && f1.WinnerRegID == nil
				dead2 = empty2 && f2.Status.IsTerminal() && f2.WinnerRegID == nil
			}

			switch {
			case !empty1 && !empty2:
				bm.Status = models.MatchScheduled
			case dead1 && dead2:
				bm.Status = models.MatchWalkover
				bm.Score = &score
			case (!empty1 && dead2) || (!empty2 && dead1):
				bm.Status = models.MatchWalkover
				bm.WinnerRegID = bm.SoleParticipant()
				bm.Score = &score
			}

			if bm.WinnerRegID != nil && bm.NextMatchNumber != nil {
				next := byRound[round+1][i/2]
				if *bm.NextMatchSlot == 1 {
					next.Participant1RegID = bm.WinnerRegID
				} else {
					next.Participant2RegID = bm.WinnerRegID
				}
			}
		}
	}
}
