package models

import (
	"fmt"
	"time"
)

type MatchStatus string

const (
	// MatchPendingParticipants: one or both slots still wait for a winner
	// from an earlier round.
	MatchPendingParticipants MatchStatus = "PENDING_PARTICIPANTS"
	// MatchScheduled: both slots filled, no result yet.
	MatchScheduled MatchStatus = "SCHEDULED"
	// MatchCompleted and MatchWalkover are terminal.
	MatchCompleted MatchStatus = "COMPLETED"
	MatchWalkover  MatchStatus = "WALKOVER"
)

// IsTerminal reports whether no further transition may leave the status.
func (s MatchStatus) IsTerminal() bool {
	return s == MatchCompleted || s == MatchWalkover
}

const (
	ScoreWalkover = "W/O"
	ScoreBye      = "BYE"
)

// Match is one node of a single-elimination bracket. NextMatchID is an
// id-based back-link inside the same tournament; it is nil only for the
// final. NextMatchSlot says which slot (1 or 2) of the next match the
// winner fills.
type Match struct {
	ID                   int         `json:"id" db:"id"`
	TournamentID         int         `json:"tournament_id" db:"tournament_id"`
	RoundNumber          int         `json:"round_number" db:"round_number"`
	MatchNumberInBracket int         `json:"match_number_in_bracket" db:"match_number_in_bracket"`
	Participant1RegID    *int        `json:"participant1_reg_id,omitempty" db:"participant1_reg_id"`
	Participant2RegID    *int        `json:"participant2_reg_id,omitempty" db:"participant2_reg_id"`
	WinnerRegID          *int        `json:"winner_reg_id,omitempty" db:"winner_reg_id"`
	NextMatchID          *int        `json:"next_match_id,omitempty" db:"next_match_id"`
	NextMatchSlot        *int        `json:"next_match_slot,omitempty" db:"next_match_slot"`
	Score                *string     `json:"score,omitempty" db:"score"`
	Status               MatchStatus `json:"status" db:"status"`
	ScheduledTime        *time.Time  `json:"scheduled_time,omitempty" db:"scheduled_time"`
	CompletedTime        *time.Time  `json:"completed_time,omitempty" db:"completed_time"`

	Participant1 *TournamentRegistration `json:"participant1,omitempty" db:"-"`
	Participant2 *TournamentRegistration `json:"participant2,omitempty" db:"-"`
	Winner       *TournamentRegistration `json:"winner,omitempty" db:"-"`
}

// HasParticipant reports whether the registration plays in this match.
func (m *Match) HasParticipant(regID int) bool {
	return (m.Participant1RegID != nil && *m.Participant1RegID == regID) ||
		(m.Participant2RegID != nil && *m.Participant2RegID == regID)
}

// RoundName names the round for display given the tournament's depth.
func RoundName(roundNumber, totalRounds int) string {
	switch roundNumber {
	case totalRounds:
		return "Final"
	case totalRounds - 1:
		return "Semifinal"
	case totalRounds - 2:
		return "Quarterfinal"
	}
	drawSize := 1 << uint(totalRounds-roundNumber+1)
	return fmt.Sprintf("Round of %d", drawSize)
}
