package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"

	"github.com/JustArys/tennis/brackets"
	"github.com/JustArys/tennis/models"
	"github.com/JustArys/tennis/repositories"
)

type BracketService interface {
	// GenerateBracket builds and persists the whole single-elimination tree
	// for a tournament in one transaction. A second call for the same
	// tournament fails with ErrBracketAlreadyGenerated.
	GenerateBracket(ctx context.Context, tournamentID int) ([]*models.Match, error)
}

type bracketService struct {
	txRunner         repositories.TxRunner
	tournamentRepo   repositories.TournamentRepository
	registrationRepo repositories.RegistrationRepository
	matchRepo        repositories.MatchRepository
	generator        brackets.BracketGenerator
	hub              *brackets.Hub
	logger           *slog.Logger
	rng              *rand.Rand
}

// NewBracketService wires the generation pipeline. rng may be nil; pass a
// seeded source to make the unseeded shuffle reproducible.
func NewBracketService(
	txRunner repositories.TxRunner,
	tournamentRepo repositories.TournamentRepository,
	registrationRepo repositories.RegistrationRepository,
	matchRepo repositories.MatchRepository,
	generator brackets.BracketGenerator,
	hub *brackets.Hub,
	logger *slog.Logger,
	rng *rand.Rand,
) BracketService {
	return &bracketService{
		txRunner:         txRunner,
		tournamentRepo:   tournamentRepo,
		registrationRepo: registrationRepo,
		matchRepo:        matchRepo,
		generator:        generator,
		hub:              hub,
		logger:           logger,
		rng:              rng,
	}
}

func (s *bracketService) GenerateBracket(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	err := s.txRunner.RunInTx(ctx, func(tx repositories.SQLExecutor) error {
		// The row lock serializes concurrent generation attempts for the
		// same tournament; the loser of the race sees the winner's matches.
		tournament, err := s.tournamentRepo.GetByIDForUpdate(ctx, tx, tournamentID)
		if err != nil {
			return err
		}

		existing, err := s.matchRepo.CountByTournament(ctx, tx, tournamentID)
		if err != nil {
			return err
		}
		if existing > 0 {
			return ErrBracketAlreadyGenerated
		}

		status := models.RegistrationRegistered
		regs, err := s.registrationRepo.ListByTournament(ctx, tx, tournamentID, &status)
		if err != nil {
			return fmt.Errorf("failed to list registered participants for tournament %d: %w", tournamentID, err)
		}

		capacity := tournament.MaxParticipants()
		if len(regs) != capacity {
			s.logger.Warn("participant count does not match tier capacity, empty slots become byes",
				slog.Int("tournament_id", tournamentID),
				slog.Int("registered", len(regs)),
				slog.Int("capacity", capacity))
		}

		plan, err := s.generator.GenerateBracket(ctx, brackets.GenerateBracketParams{
			Capacity:      capacity,
			NumberOfSeeds: tournament.NumberOfSeeds(),
			Doubles:       tournament.IsDoubles(),
			Registrations: regs,
			Rand:          s.rng,
		})
		if err != nil {
			return err
		}

		// The generator mutated seeding rating and seed numbers in place.
		for _, reg := range regs {
			if err := s.registrationRepo.UpdateSeeding(ctx, tx, reg.ID, reg.SeedingRating, reg.SeedNumber); err != nil {
				return err
			}
		}

		// First pass: create every match. Byes come out of the plan already
		// resolved (winner set, walkover, winner propagated into the next
		// round), so no round starts stuck waiting on one.
		now := nowFunc()
		byNumber := make(map[int]*models.Match, len(plan))
		for _, bm := range plan {
			match := &models.Match{
				TournamentID:         tournamentID,
				RoundNumber:          bm.Round,
				MatchNumberInBracket: bm.NumberInBracket,
				Participant1RegID:    bm.Participant1RegID,
				Participant2RegID:    bm.Participant2RegID,
				WinnerRegID:          bm.WinnerRegID,
				Score:                bm.Score,
				Status:               bm.Status,
			}
			if bm.Round == 1 {
				scheduled := tournament.StartDate
				match.ScheduledTime = &scheduled
			}
			if bm.Status.IsTerminal() {
				completed := now
				match.CompletedTime = &completed
			}
			if err := s.matchRepo.Create(ctx, tx, match); err != nil {
				return err
			}
			byNumber[bm.NumberInBracket] = match
		}

		// Second pass: resolve the plan's bracket numbers into row ids.
		for _, bm := range plan {
			if bm.NextMatchNumber == nil {
				continue
			}
			next, ok := byNumber[*bm.NextMatchNumber]
			if !ok {
				return fmt.Errorf("%w: planned next match %d was not created", ErrBracketIntegrity, *bm.NextMatchNumber)
			}
			current := byNumber[bm.NumberInBracket]
			if err := s.matchRepo.UpdateNextMatchInfo(ctx, tx, current.ID, &next.ID, bm.NextMatchSlot); err != nil {
				return err
			}
			current.NextMatchID = &next.ID
			current.NextMatchSlot = bm.NextMatchSlot
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("bracket saved but failed to reload matches for tournament %d: %w", tournamentID, err)
	}

	s.logger.Info("bracket generated",
		slog.Int("tournament_id", tournamentID),
		slog.Int("matches", len(matches)))
	if s.hub != nil {
		s.hub.BroadcastToRoom(strconv.Itoa(tournamentID), brackets.Message{
			Type:    brackets.EventBracketGenerated,
			Payload: map[string]interface{}{"tournament_id": tournamentID, "matches": len(matches)},
		})
	}
	return matches, nil
}
