package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/JustArys/tennis/brackets"
	"github.com/JustArys/tennis/models"
	"github.com/JustArys/tennis/repositories"
	"golang.org/x/sync/errgroup"
)

// BracketEntry is the read-only projection of one bracket node, resolved
// with participant names and seed numbers for rendering.
type BracketEntry struct {
	ID                   int                `json:"id"`
	RoundNumber          int                `json:"round_number"`
	RoundName            string             `json:"round_name"`
	MatchNumberInBracket int                `json:"match_number_in_bracket"`
	Participant1         *BracketSide       `json:"participant1,omitempty"`
	Participant2         *BracketSide       `json:"participant2,omitempty"`
	Winner               *BracketSide       `json:"winner,omitempty"`
	NextMatchID          *int               `json:"next_match_id,omitempty"`
	NextMatchSlot        *int               `json:"next_match_slot,omitempty"`
	Score                *string            `json:"score,omitempty"`
	Status               models.MatchStatus `json:"status"`
	ScheduledTime        *time.Time         `json:"scheduled_time,omitempty"`
	CompletedTime        *time.Time         `json:"completed_time,omitempty"`
}

type BracketSide struct {
	RegistrationID int    `json:"registration_id"`
	Name           string `json:"name"`
	SeedNumber     *int   `json:"seed_number,omitempty"`
}

type MatchService interface {
	// RecordResult finishes a scheduled match and advances the winner into
	// its next-match slot, all in one transaction.
	RecordResult(ctx context.Context, matchID, winnerRegID int, score string) (*models.Match, error)
	// RecordWalkover finishes a match without play; the score is the
	// literal "W/O".
	RecordWalkover(ctx context.Context, matchID, winnerRegID int) (*models.Match, error)
	GetTournamentBracket(ctx context.Context, tournamentID int) ([]*BracketEntry, error)
}

type matchService struct {
	txRunner         repositories.TxRunner
	matchRepo        repositories.MatchRepository
	registrationRepo repositories.RegistrationRepository
	tournamentRepo   repositories.TournamentRepository
	hub              *brackets.Hub
	logger           *slog.Logger
}

func NewMatchService(
	txRunner repositories.TxRunner,
	matchRepo repositories.MatchRepository,
	registrationRepo repositories.RegistrationRepository,
	tournamentRepo repositories.TournamentRepository,
	hub *brackets.Hub,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		txRunner:         txRunner,
		matchRepo:        matchRepo,
		registrationRepo: registrationRepo,
		tournamentRepo:   tournamentRepo,
		hub:              hub,
		logger:           logger,
	}
}

func (s *matchService) RecordResult(ctx context.Context, matchID, winnerRegID int, score string) (*models.Match, error) {
	if strings.TrimSpace(score) == "" {
		return nil, ErrScoreRequired
	}
	return s.recordOutcome(ctx, matchID, winnerRegID, score, models.MatchCompleted)
}

func (s *matchService) RecordWalkover(ctx context.Context, matchID, winnerRegID int) (*models.Match, error) {
	return s.recordOutcome(ctx, matchID, winnerRegID, models.ScoreWalkover, models.MatchWalkover)
}

func (s *matchService) recordOutcome(ctx context.Context, matchID, winnerRegID int, score string, status models.MatchStatus) (*models.Match, error) {
	var match *models.Match
	err := s.txRunner.RunInTx(ctx, func(tx repositories.SQLExecutor) error {
		var err error
		// Lock the match row: concurrent submissions for the same match
		// serialize here, and the advancement below stays atomic with the
		// match's own update.
		match, err = s.matchRepo.GetByIDForUpdate(ctx, tx, matchID)
		if err != nil {
			return err
		}

		if match.Status.IsTerminal() {
			return ErrMatchAlreadyFinished
		}
		if match.Participant1RegID == nil || match.Participant2RegID == nil {
			return ErrMatchParticipantsNotSet
		}

		winner, err := s.registrationRepo.GetByID(ctx, winnerRegID)
		if err != nil {
			return err
		}
		if !match.HasParticipant(winner.ID) {
			return ErrWinnerNotInMatch
		}

		completed := nowFunc()
		if err := s.matchRepo.UpdateResult(ctx, tx, match.ID, winner.ID, score, status, completed); err != nil {
			return err
		}
		match.WinnerRegID = &winner.ID
		match.Score = &score
		match.Status = status
		match.CompletedTime = &completed

		return advanceWinner(ctx, tx, s.matchRepo, match, winner.ID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("match result recorded",
		slog.Int("match_id", match.ID),
		slog.Int("tournament_id", match.TournamentID),
		slog.Int("winner_registration_id", winnerRegID),
		slog.String("status", string(match.Status)))
	if s.hub != nil {
		s.hub.BroadcastToRoom(strconv.Itoa(match.TournamentID), brackets.Message{
			Type:    brackets.EventMatchUpdated,
			Payload: match,
		})
	}
	return match, nil
}

// advanceWinner moves a finished match's winner into the linked slot of the
// next match. A nil next match means the final was just decided. When the
// opposing slot can never fill (its feeder ended with no winner), the next
// match resolves as a walkover on the spot. Broken links are integrity
// violations: they indicate a corrupted bracket, and retrying will not fix
// them.
func advanceWinner(ctx context.Context, exec repositories.SQLExecutor, matchRepo repositories.MatchRepository, completed *models.Match, winnerRegID int) error {
	if completed.NextMatchID == nil {
		return nil
	}
	if completed.NextMatchSlot == nil {
		return fmt.Errorf("%w: match %d has a next match but no slot", ErrBracketIntegrity, completed.ID)
	}
	slot := *completed.NextMatchSlot
	if slot != 1 && slot != 2 {
		return fmt.Errorf("%w: match %d has slot %d, want 1 or 2", ErrBracketIntegrity, completed.ID, slot)
	}

	next, err := matchRepo.GetByIDForUpdate(ctx, exec, *completed.NextMatchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return fmt.Errorf("%w: next match %d of match %d not found", ErrBracketIntegrity, *completed.NextMatchID, completed.ID)
		}
		return err
	}

	if slot == 1 {
		next.Participant1RegID = &winnerRegID
	} else {
		next.Participant2RegID = &winnerRegID
	}
	status := models.MatchPendingParticipants
	if next.Participant1RegID != nil && next.Participant2RegID != nil {
		status = models.MatchScheduled
	}
	if err := matchRepo.SetParticipantSlot(ctx, exec, next.ID, slot, winnerRegID, status); err != nil {
		return err
	}
	if status == models.MatchScheduled {
		return nil
	}

	// The other slot is still empty. If its feeder is already settled with
	// no winner, nobody will ever fill it: the arriving winner walks over
	// and the cascade continues upward, same as bye resolution at
	// generation time.
	otherSlot := 3 - slot
	feeder, err := matchRepo.FindFeeder(ctx, exec, next.ID, otherSlot)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return fmt.Errorf("%w: match %d has no feeder for slot %d", ErrBracketIntegrity, next.ID, otherSlot)
		}
		return err
	}
	if !feeder.Status.IsTerminal() || feeder.WinnerRegID != nil {
		return nil
	}

	score := models.ScoreBye
	completedAt := nowFunc()
	if err := matchRepo.UpdateResult(ctx, exec, next.ID, winnerRegID, score, models.MatchWalkover, completedAt); err != nil {
		return err
	}
	next.WinnerRegID = &winnerRegID
	next.Score = &score
	next.Status = models.MatchWalkover
	next.CompletedTime = &completedAt
	return advanceWinner(ctx, exec, matchRepo, next, winnerRegID)
}

func (s *matchService) GetTournamentBracket(ctx context.Context, tournamentID int) ([]*BracketEntry, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	var (
		matches []*models.Match
		regs    []*models.TournamentRegistration
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListByTournament(gCtx, tournamentID)
		return err
	})
	g.Go(func() error {
		var err error
		regs, err = s.registrationRepo.ListByTournament(gCtx, nil, tournamentID, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	regByID := make(map[int]*models.TournamentRegistration, len(regs))
	for _, reg := range regs {
		regByID[reg.ID] = reg
	}

	totalRounds := tournament.TotalRounds()
	entries := make([]*BracketEntry, 0, len(matches))
	for _, m := range matches {
		entries = append(entries, &BracketEntry{
			ID:                   m.ID,
			RoundNumber:          m.RoundNumber,
			RoundName:            models.RoundName(m.RoundNumber, totalRounds),
			MatchNumberInBracket: m.MatchNumberInBracket,
			Participant1:         bracketSide(m.Participant1RegID, regByID),
			Participant2:         bracketSide(m.Participant2RegID, regByID),
			Winner:               bracketSide(m.WinnerRegID, regByID),
			NextMatchID:          m.NextMatchID,
			NextMatchSlot:        m.NextMatchSlot,
			Score:                m.Score,
			Status:               m.Status,
			ScheduledTime:        m.ScheduledTime,
			CompletedTime:        m.CompletedTime,
		})
	}
	return entries, nil
}

func bracketSide(regID *int, regByID map[int]*models.TournamentRegistration) *BracketSide {
	if regID == nil {
		return nil
	}
	side := &BracketSide{RegistrationID: *regID, Name: "N/A"}
	if reg, ok := regByID[*regID]; ok {
		side.Name = reg.ParticipantName()
		side.SeedNumber = reg.SeedNumber
	}
	return side
}
