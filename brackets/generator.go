package brackets

import (
	"context"
	"math/rand"

	"github.com/JustArys/tennis/models"
)

// GenerateBracketParams carries everything the generator needs. Rand drives
// the shuffle of unseeded participants; callers pass a seeded source in
// tests for deterministic brackets.
type GenerateBracketParams struct {
	Capacity      int
	NumberOfSeeds int
	Doubles       bool
	Registrations []*models.TournamentRegistration
	Rand          *rand.Rand
}

// BracketMatch is one planned node of the bracket tree, before persistence.
// NextMatchNumber refers to the NumberInBracket of the match the winner
// advances to; it is nil only for the final. Byes are resolved inside the
// plan: a one-participant match comes out WALKOVER with the winner already
// propagated into its next match's slot, so generated brackets never start
// with a round stuck waiting on a bye.
type BracketMatch struct {
	Round             int
	NumberInBracket   int
	Participant1RegID *int
	Participant2RegID *int
	NextMatchNumber   *int
	NextMatchSlot     *int
	Status            models.MatchStatus
	WinnerRegID       *int
	Score             *string
}

// ParticipantCount reports how many slots of the planned match are filled.
func (bm *BracketMatch) ParticipantCount() int {
	n := 0
	if bm.Participant1RegID != nil {
		n++
	}
	if bm.Participant2RegID != nil {
		n++
	}
	return n
}

// SoleParticipant returns the only filled slot of a one-participant match.
func (bm *BracketMatch) SoleParticipant() *int {
	if bm.Participant1RegID != nil && bm.Participant2RegID == nil {
		return bm.Participant1RegID
	}
	if bm.Participant2RegID != nil && bm.Participant1RegID == nil {
		return bm.Participant2RegID
	}
	return nil
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error)

	GetName() string
}
