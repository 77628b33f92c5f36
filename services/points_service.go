package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/JustArys/tennis/brackets"
	"github.com/JustArys/tennis/models"
	"github.com/JustArys/tennis/repositories"
)

// PointsAward reports what one entry earned when a tournament was settled.
type PointsAward struct {
	RegistrationID int     `json:"registration_id"`
	UserID         int     `json:"user_id"`
	PartnerID      *int    `json:"partner_id,omitempty"`
	Participant    string  `json:"participant"`
	RoundReached   int     `json:"round_reached"`
	Points         float64 `json:"points"`
}

type PointsService interface {
	// CalculateAndAwardPoints settles a finished tournament: every entry's
	// furthest round is priced by the tier curve and added to the player
	// ratings. A tournament settles at most once.
	CalculateAndAwardPoints(ctx context.Context, tournamentID int) ([]*PointsAward, error)
}

type pointsService struct {
	txRunner         repositories.TxRunner
	tournamentRepo   repositories.TournamentRepository
	registrationRepo repositories.RegistrationRepository
	matchRepo        repositories.MatchRepository
	userRepo         repositories.UserRepository
	hub              *brackets.Hub
	logger           *slog.Logger
}

func NewPointsService(
	txRunner repositories.TxRunner,
	tournamentRepo repositories.TournamentRepository,
	registrationRepo repositories.RegistrationRepository,
	matchRepo repositories.MatchRepository,
	userRepo repositories.UserRepository,
	hub *brackets.Hub,
	logger *slog.Logger,
) PointsService {
	return &pointsService{
		txRunner:         txRunner,
		tournamentRepo:   tournamentRepo,
		registrationRepo: registrationRepo,
		matchRepo:        matchRepo,
		userRepo:         userRepo,
		hub:              hub,
		logger:           logger,
	}
}

func (s *pointsService) CalculateAndAwardPoints(ctx context.Context, tournamentID int) ([]*PointsAward, error) {
	var awards []*PointsAward
	err := s.txRunner.RunInTx(ctx, func(tx repositories.SQLExecutor) error {
		tournament, err := s.tournamentRepo.GetByIDForUpdate(ctx, tx, tournamentID)
		if err != nil {
			return err
		}
		if tournament.PointsAwarded {
			return repositories.ErrPointsAlreadyAwarded
		}

		matches, err := s.matchRepo.ListByTournament(ctx, tournamentID)
		if err != nil {
			return err
		}
		registered := models.RegistrationRegistered
		regs, err := s.registrationRepo.ListByTournament(ctx, tx, tournamentID, &registered)
		if err != nil {
			return err
		}

		totalRounds := tournament.TotalRounds()
		final := findFinal(matches, totalRounds)
		if final == nil {
			return fmt.Errorf("%w: tournament %d has no final match", ErrBracketIntegrity, tournamentID)
		}
		if !final.Status.IsTerminal() || final.WinnerRegID == nil {
			return ErrTournamentNotFinished
		}

		// The flag flip doubles as the concurrency guard: a second settle
		// attempt updates zero rows and fails here.
		if err := s.tournamentRepo.MarkPointsAwarded(ctx, tx, tournamentID); err != nil {
			return err
		}

		for _, reg := range regs {
			roundReached, err := roundReachedBy(reg.ID, matches, final)
			if err != nil {
				return err
			}
			points := float64(tournament.Tier.PointsForRound(roundReached, totalRounds))
			if points > 0 {
				if err := s.userRepo.AddRatingPoints(ctx, tx, reg.UserID, points); err != nil {
					return err
				}
				if tournament.IsDoubles() && reg.PartnerID != nil {
					if err := s.userRepo.AddRatingPoints(ctx, tx, *reg.PartnerID, points); err != nil {
						return err
					}
				}
			}
			awards = append(awards, &PointsAward{
				RegistrationID: reg.ID,
				UserID:         reg.UserID,
				PartnerID:      reg.PartnerID,
				Participant:    reg.ParticipantName(),
				RoundReached:   roundReached,
				Points:         points,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tournament points awarded",
		slog.Int("tournament_id", tournamentID),
		slog.Int("entries", len(awards)))
	if s.hub != nil {
		s.hub.BroadcastToRoom(strconv.Itoa(tournamentID), brackets.Message{
			Type:    brackets.EventPointsAwarded,
			Payload: awards,
		})
	}
	return awards, nil
}

func findFinal(matches []*models.Match, totalRounds int) *models.Match {
	for _, m := range matches {
		if m.RoundNumber == totalRounds {
			return m
		}
	}
	return nil
}

// roundReachedBy is the furthest round the entry appeared in; the champion
// reports one past the final so the curve prices the title.
func roundReachedBy(regID int, matches []*models.Match, final *models.Match) (int, error) {
	if final.WinnerRegID != nil && *final.WinnerRegID == regID {
		return final.RoundNumber + 1, nil
	}
	furthest := 0
	for _, m := range matches {
		if m.HasParticipant(regID) && m.RoundNumber > furthest {
			furthest = m.RoundNumber
		}
	}
	if furthest == 0 {
		return 0, fmt.Errorf("%w: registration %d appears in no match", ErrBracketIntegrity, regID)
	}
	return furthest, nil
}
