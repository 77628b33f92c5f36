package brackets

import (
	"context"
	"math/rand"
	"testing"

	"github.com/JustArys/tennis/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generate(t *testing.T, capacity, seeds int, regs []*models.TournamentRegistration) []*BracketMatch {
	t.Helper()
	gen := NewSingleEliminationGenerator()
	plan, err := gen.GenerateBracket(context.Background(), GenerateBracketParams{
		Capacity:      capacity,
		NumberOfSeeds: seeds,
		Registrations: regs,
		Rand:          rand.New(rand.NewSource(1)),
	})
	require.NoError(t, err)
	return plan
}

func planByNumber(plan []*BracketMatch) map[int]*BracketMatch {
	byNumber := make(map[int]*BracketMatch, len(plan))
	for _, bm := range plan {
		byNumber[bm.NumberInBracket] = bm
	}
	return byNumber
}

func TestGenerateBracketFullDraw(t *testing.T) {
	regs := singlesRegs(160, 150, 140, 130, 120, 110, 100, 90, 80, 70, 60, 50, 40, 30, 20, 10)
	plan := generate(t, 16, 4, regs)

	require.Len(t, plan, 15)

	roundSizes := map[int]int{}
	for _, bm := range plan {
		roundSizes[bm.Round]++
	}
	assert.Equal(t, map[int]int{1: 8, 2: 4, 3: 2, 4: 1}, roundSizes)

	// Numbers are a single sequence across the tree.
	byNumber := planByNumber(plan)
	for n := 1; n <= 15; n++ {
		require.Contains(t, byNumber, n)
	}

	for _, bm := range plan {
		if bm.Round == 4 {
			assert.Nil(t, bm.NextMatchNumber)
			assert.Nil(t, bm.NextMatchSlot)
			continue
		}
		require.NotNil(t, bm.NextMatchNumber)
		require.NotNil(t, bm.NextMatchSlot)
		next := byNumber[*bm.NextMatchNumber]
		require.NotNil(t, next)
		assert.Equal(t, bm.Round+1, next.Round)
		assert.Contains(t, []int{1, 2}, *bm.NextMatchSlot)
	}

	// A full field plays every first-round match.
	for _, bm := range plan {
		if bm.Round == 1 {
			assert.Equal(t, models.MatchScheduled, bm.Status)
			assert.Equal(t, 2, bm.ParticipantCount())
			assert.Nil(t, bm.WinnerRegID)
		} else {
			assert.Equal(t, models.MatchPendingParticipants, bm.Status)
		}
	}
}

func TestGenerateBracketEachFirstRoundPairGetsTwoFeeders(t *testing.T) {
	regs := singlesRegs(80, 70, 60, 50, 40, 30, 20, 10)
	plan := generate(t, 8, 4, regs)
	byNumber := planByNumber(plan)

	feeders := map[int][]int{}
	for _, bm := range plan {
		if bm.NextMatchNumber != nil {
			feeders[*bm.NextMatchNumber] = append(feeders[*bm.NextMatchNumber], *bm.NextMatchSlot)
		}
	}
	for number, slots := range feeders {
		require.NotNil(t, byNumber[number])
		assert.ElementsMatch(t, []int{1, 2}, slots, "match %d", number)
	}
}

func TestGenerateBracketUnderFullDrawResolvesByes(t *testing.T) {
	regs := singlesRegs(90, 80, 70, 60, 50, 40, 30, 20, 10)
	plan := generate(t, 16, 4, regs)

	var scheduled, walkovers int
	for _, bm := range plan {
		if bm.Round != 1 {
			continue
		}
		switch bm.Status {
		case models.MatchScheduled:
			scheduled++
		case models.MatchWalkover:
			walkovers++
			require.NotNil(t, bm.WinnerRegID)
			require.NotNil(t, bm.Score)
			assert.Equal(t, models.ScoreBye, *bm.Score)
		default:
			t.Fatalf("first-round match %d left %s", bm.NumberInBracket, bm.Status)
		}
	}
	// Nine entries in a sixteen draw: one playable match, seven byes.
	assert.Equal(t, 1, scheduled)
	assert.Equal(t, 7, walkovers)

	// Every bye winner is already waiting in the next round.
	byNumber := planByNumber(plan)
	for _, bm := range plan {
		if bm.Round == 1 && bm.Status == models.MatchWalkover {
			next := byNumber[*bm.NextMatchNumber]
			if *bm.NextMatchSlot == 1 {
				assert.Equal(t, bm.WinnerRegID, next.Participant1RegID)
			} else {
				assert.Equal(t, bm.WinnerRegID, next.Participant2RegID)
			}
		}
	}
}

func TestGenerateBracketByeCascade(t *testing.T) {
	// Two entries in a sixteen draw: byes must cascade all the way to a
	// playable final.
	regs := singlesRegs(90, 80)
	plan := generate(t, 16, 2, regs)

	var final *BracketMatch
	for _, bm := range plan {
		if bm.Round == 4 {
			final = bm
		}
	}
	require.NotNil(t, final)
	assert.Equal(t, models.MatchScheduled, final.Status)
	assert.Equal(t, 2, final.ParticipantCount())

	// Nothing below the final is left undecided.
	for _, bm := range plan {
		if bm.Round < 4 {
			assert.True(t, bm.Status.IsTerminal(), "match %d in round %d is %s", bm.NumberInBracket, bm.Round, bm.Status)
		}
	}
}

func TestGenerateBracketRejectsInvalidFields(t *testing.T) {
	gen := NewSingleEliminationGenerator()
	ctx := context.Background()

	_, err := gen.GenerateBracket(ctx, GenerateBracketParams{Capacity: 16, Registrations: singlesRegs(50)})
	assert.ErrorIs(t, err, ErrNotEnoughParticipants)

	tooMany := singlesRegs(17, 16, 15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1)
	_, err = gen.GenerateBracket(ctx, GenerateBracketParams{Capacity: 16, Registrations: tooMany})
	assert.ErrorIs(t, err, ErrTooManyParticipants)

	_, err = gen.GenerateBracket(ctx, GenerateBracketParams{Capacity: 12, Registrations: singlesRegs(20, 10)})
	assert.Error(t, err)
}
