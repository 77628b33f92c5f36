package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/JustArys/tennis/models"
	"github.com/JustArys/tennis/repositories"
)

type RegistrationService interface {
	// Register enters callerID into the tournament. Singles entries become
	// REGISTERED immediately; doubles entries start as PENDING_PARTNER and
	// wait for the partner to confirm.
	Register(ctx context.Context, tournamentID, callerID int, partnerID *int) (*models.TournamentRegistration, error)
	// ConfirmPartner and RejectPartner may only be called by the invited
	// partner of a PENDING_PARTNER entry.
	ConfirmPartner(ctx context.Context, registrationID, callerID int) (*models.TournamentRegistration, error)
	RejectPartner(ctx context.Context, registrationID, callerID int) (*models.TournamentRegistration, error)
	// Withdraw cancels the caller's own entry while the draw is still open.
	Withdraw(ctx context.Context, tournamentID, callerID int) error
	ListByTournament(ctx context.Context, tournamentID int, status *models.RegistrationStatus) ([]*models.TournamentRegistration, error)
}

type registrationService struct {
	txRunner         repositories.TxRunner
	registrationRepo repositories.RegistrationRepository
	tournamentRepo   repositories.TournamentRepository
	matchRepo        repositories.MatchRepository
	userRepo         repositories.UserRepository
	logger           *slog.Logger
}

func NewRegistrationService(
	txRunner repositories.TxRunner,
	registrationRepo repositories.RegistrationRepository,
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	userRepo repositories.UserRepository,
	logger *slog.Logger,
) RegistrationService {
	return &registrationService{
		txRunner:         txRunner,
		registrationRepo: registrationRepo,
		tournamentRepo:   tournamentRepo,
		matchRepo:        matchRepo,
		userRepo:         userRepo,
		logger:           logger,
	}
}

func (s *registrationService) Register(ctx context.Context, tournamentID, callerID int, partnerID *int) (*models.TournamentRegistration, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureDrawOpen(ctx, nil, tournamentID); err != nil {
		return nil, err
	}

	if tournament.IsDoubles() {
		if partnerID == nil {
			return nil, ErrPartnerRequired
		}
		if *partnerID == callerID {
			return nil, ErrSelfPartner
		}
	} else if partnerID != nil {
		return nil, ErrPartnerNotAllowed
	}

	caller, err := s.userRepo.GetByID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	var partner *models.User
	if partnerID != nil {
		partner, err = s.userRepo.GetByID(ctx, *partnerID)
		if err != nil {
			return nil, err
		}
	}

	if err := checkEntryEligibility(tournament, caller, partner); err != nil {
		return nil, err
	}

	if existing, err := s.registrationRepo.FindByTournamentAndUser(ctx, tournamentID, callerID); err == nil && isActive(existing.Status) {
		return nil, repositories.ErrRegistrationConflict
	} else if err != nil && !errors.Is(err, repositories.ErrRegistrationNotFound) {
		return nil, err
	}
	if partner != nil {
		if existing, err := s.registrationRepo.FindByTournamentAndUser(ctx, tournamentID, partner.ID); err == nil && isActive(existing.Status) {
			return nil, repositories.ErrRegistrationConflict
		} else if err != nil && !errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, err
		}
	}

	if err := s.ensureCapacity(ctx, tournament); err != nil {
		return nil, err
	}

	status := models.RegistrationRegistered
	if tournament.IsDoubles() {
		status = models.RegistrationPendingPartner
	}
	reg := &models.TournamentRegistration{
		TournamentID: tournamentID,
		UserID:       callerID,
		PartnerID:    partnerID,
		Status:       status,
	}
	if err := s.registrationRepo.Create(ctx, reg); err != nil {
		return nil, err
	}
	reg.User = caller
	reg.Partner = partner

	s.logger.Info("tournament registration created",
		slog.Int("tournament_id", tournamentID),
		slog.Int("registration_id", reg.ID),
		slog.Int("user_id", callerID),
		slog.String("status", string(reg.Status)))
	return reg, nil
}

func (s *registrationService) ConfirmPartner(ctx context.Context, registrationID, callerID int) (*models.TournamentRegistration, error) {
	return s.answerInvite(ctx, registrationID, callerID, models.RegistrationRegistered)
}

func (s *registrationService) RejectPartner(ctx context.Context, registrationID, callerID int) (*models.TournamentRegistration, error) {
	return s.answerInvite(ctx, registrationID, callerID, models.RegistrationRejected)
}

func (s *registrationService) answerInvite(ctx context.Context, registrationID, callerID int, status models.RegistrationStatus) (*models.TournamentRegistration, error) {
	reg, err := s.registrationRepo.GetByID(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if reg.Status != models.RegistrationPendingPartner {
		return nil, ErrRegistrationNotPending
	}
	if reg.PartnerID == nil || *reg.PartnerID != callerID {
		return nil, ErrPartnerMismatch
	}
	// The PENDING_PARTNER entry claimed its slot at registration time;
	// confirming flips its status, it does not take a new slot. Only the
	// draw still has to be open, checked under the tournament row lock so
	// a concurrent bracket generation cannot slip in between.
	err = s.txRunner.RunInTx(ctx, func(tx repositories.SQLExecutor) error {
		if status == models.RegistrationRegistered {
			if _, err := s.tournamentRepo.GetByIDForUpdate(ctx, tx, reg.TournamentID); err != nil {
				return err
			}
			if err := s.ensureDrawOpen(ctx, tx, reg.TournamentID); err != nil {
				return err
			}
		}
		return s.registrationRepo.UpdateStatus(ctx, tx, registrationID, status)
	})
	if err != nil {
		return nil, err
	}
	reg.Status = status

	s.logger.Info("partner invite answered",
		slog.Int("registration_id", registrationID),
		slog.Int("partner_id", callerID),
		slog.String("status", string(status)))
	return reg, nil
}

func (s *registrationService) Withdraw(ctx context.Context, tournamentID, callerID int) error {
	reg, err := s.registrationRepo.FindByTournamentAndUser(ctx, tournamentID, callerID)
	if err != nil {
		return err
	}
	if reg.Status == models.RegistrationCanceled || reg.Status == models.RegistrationRejected {
		return ErrRegistrationClosed
	}
	// Lock the tournament row before the draw-open check: a bracket
	// generation in flight holds the same lock, so a withdrawal either
	// lands before the draw is read or sees the generated matches and
	// fails.
	err = s.txRunner.RunInTx(ctx, func(tx repositories.SQLExecutor) error {
		if _, err := s.tournamentRepo.GetByIDForUpdate(ctx, tx, tournamentID); err != nil {
			return err
		}
		if err := s.ensureDrawOpen(ctx, tx, tournamentID); err != nil {
			return err
		}
		return s.registrationRepo.UpdateStatus(ctx, tx, reg.ID, models.RegistrationCanceled)
	})
	if err != nil {
		return err
	}
	s.logger.Info("registration withdrawn",
		slog.Int("tournament_id", tournamentID),
		slog.Int("registration_id", reg.ID),
		slog.Int("user_id", callerID))
	return nil
}

func (s *registrationService) ListByTournament(ctx context.Context, tournamentID int, status *models.RegistrationStatus) ([]*models.TournamentRegistration, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return nil, err
	}
	return s.registrationRepo.ListByTournament(ctx, nil, tournamentID, status)
}

// ensureDrawOpen rejects registration changes once matches exist: the draw
// is frozen the moment the bracket is generated.
func (s *registrationService) ensureDrawOpen(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	count, err := s.matchRepo.CountByTournament(ctx, exec, tournamentID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrBracketAlreadyGenerated
	}
	return nil
}

// ensureCapacity counts entries that hold or may still claim a draw slot.
// One registration is one slot; a doubles pair shares its slot.
func (s *registrationService) ensureCapacity(ctx context.Context, tournament *models.Tournament) error {
	regs, err := s.registrationRepo.ListByTournament(ctx, nil, tournament.ID, nil)
	if err != nil {
		return err
	}
	taken := 0
	for _, reg := range regs {
		if isActive(reg.Status) {
			taken++
		}
	}
	if taken >= tournament.MaxParticipants() {
		return ErrTournamentFull
	}
	return nil
}

func isActive(status models.RegistrationStatus) bool {
	return status == models.RegistrationRegistered || status == models.RegistrationPendingPartner
}

func checkEntryEligibility(t *models.Tournament, caller, partner *models.User) error {
	if err := checkLevel(t, caller.Rating); err != nil {
		return err
	}
	if partner != nil {
		if err := checkLevel(t, partner.Rating); err != nil {
			return err
		}
	}
	return checkGender(t.Category, caller, partner)
}

func checkLevel(t *models.Tournament, rating float64) error {
	if t.MinLevel != nil && rating < *t.MinLevel {
		return ErrRatingOutOfLevel
	}
	if t.MaxLevel != nil && rating > *t.MaxLevel {
		return ErrRatingOutOfLevel
	}
	return nil
}

func checkGender(category models.Category, caller, partner *models.User) error {
	switch category {
	case models.CategorySinglesMale:
		if caller.Gender != models.GenderMale {
			return ErrGenderMismatch
		}
	case models.CategorySinglesFemale:
		if caller.Gender != models.GenderFemale {
			return ErrGenderMismatch
		}
	case models.CategoryDoubleMale:
		if caller.Gender != models.GenderMale || (partner != nil && partner.Gender != models.GenderMale) {
			return ErrGenderMismatch
		}
	case models.CategoryDoubleFemale:
		if caller.Gender != models.GenderFemale || (partner != nil && partner.Gender != models.GenderFemale) {
			return ErrGenderMismatch
		}
	case models.CategoryDoubleMixed:
		if partner != nil && caller.Gender == partner.Gender {
			return ErrGenderMismatch
		}
	}
	return nil
}
