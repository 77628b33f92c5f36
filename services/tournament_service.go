package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/JustArys/tennis/models"
	"github.com/JustArys/tennis/repositories"
	"github.com/JustArys/tennis/storage"
	"golang.org/x/sync/errgroup"
)

type TournamentService interface {
	Create(ctx context.Context, t *models.Tournament) (*models.Tournament, error)
	// GetByID loads the tournament together with its registrations and
	// matches.
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context) ([]*models.Tournament, error)
	Update(ctx context.Context, t *models.Tournament) (*models.Tournament, error)
	Delete(ctx context.Context, id int) error
	// UploadPoster stores the tournament poster in object storage and
	// replaces the previous one.
	UploadPoster(ctx context.Context, id int, filename, contentType string, file io.Reader) (*models.Tournament, error)
}

type tournamentService struct {
	tournamentRepo   repositories.TournamentRepository
	registrationRepo repositories.RegistrationRepository
	matchRepo        repositories.MatchRepository
	uploader         storage.FileUploader
	logger           *slog.Logger
}

// NewTournamentService wires tournament CRUD. uploader may be nil; poster
// handling is then disabled and logo URLs stay empty.
func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	registrationRepo repositories.RegistrationRepository,
	matchRepo repositories.MatchRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo:   tournamentRepo,
		registrationRepo: registrationRepo,
		matchRepo:        matchRepo,
		uploader:         uploader,
		logger:           logger,
	}
}

func (s *tournamentService) Create(ctx context.Context, t *models.Tournament) (*models.Tournament, error) {
	if err := validateTournament(t); err != nil {
		return nil, err
	}
	if err := s.tournamentRepo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.logger.Info("tournament created",
		slog.Int("tournament_id", t.ID),
		slog.String("tier", string(t.Tier)),
		slog.String("category", string(t.Category)))
	return t, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var (
		regs    []*models.TournamentRegistration
		matches []*models.Match
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		regs, err = s.registrationRepo.ListByTournament(gCtx, nil, id, nil)
		return err
	})
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListByTournament(gCtx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tournament.Registrations = make([]models.TournamentRegistration, 0, len(regs))
	for _, reg := range regs {
		tournament.Registrations = append(tournament.Registrations, *reg)
	}
	tournament.Matches = make([]models.Match, 0, len(matches))
	for _, m := range matches {
		tournament.Matches = append(tournament.Matches, *m)
	}
	s.populatePosterURL(tournament)
	return tournament, nil
}

func (s *tournamentService) List(ctx context.Context) ([]*models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range tournaments {
		s.populatePosterURL(t)
	}
	return tournaments, nil
}

func (s *tournamentService) Update(ctx context.Context, t *models.Tournament) (*models.Tournament, error) {
	if err := validateTournament(t); err != nil {
		return nil, err
	}
	current, err := s.tournamentRepo.GetByID(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	t.AuthorID = current.AuthorID
	t.PointsAwarded = current.PointsAwarded
	t.LogoKey = current.LogoKey
	if err := s.tournamentRepo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.populatePosterURL(t)
	return t, nil
}

func (s *tournamentService) Delete(ctx context.Context, id int) error {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.tournamentRepo.Delete(ctx, id); err != nil {
		return err
	}
	if s.uploader != nil && tournament.LogoKey != nil {
		if err := s.uploader.Delete(ctx, *tournament.LogoKey); err != nil {
			s.logger.Warn("failed to delete tournament poster from storage",
				slog.Int("tournament_id", id),
				slog.String("key", *tournament.LogoKey),
				slog.String("error", err.Error()))
		}
	}
	s.logger.Info("tournament deleted", slog.Int("tournament_id", id))
	return nil
}

func (s *tournamentService) UploadPoster(ctx context.Context, id int, filename, contentType string, file io.Reader) (*models.Tournament, error) {
	if s.uploader == nil {
		return nil, ErrStorageUnavailable
	}
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(path.Ext(filename))
	key := fmt.Sprintf("tournaments/%d/poster_%d%s", id, nowFunc().UnixNano(), ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, err
	}

	oldKey := tournament.LogoKey
	if err := s.tournamentRepo.UpdateLogoKey(ctx, id, &key); err != nil {
		return nil, err
	}
	if oldKey != nil && *oldKey != key {
		if err := s.uploader.Delete(ctx, *oldKey); err != nil {
			s.logger.Warn("failed to delete replaced poster",
				slog.Int("tournament_id", id),
				slog.String("key", *oldKey),
				slog.String("error", err.Error()))
		}
	}

	tournament.LogoKey = &key
	s.populatePosterURL(tournament)
	s.logger.Info("tournament poster uploaded",
		slog.Int("tournament_id", id),
		slog.String("key", key))
	return tournament, nil
}

func (s *tournamentService) populatePosterURL(t *models.Tournament) {
	if s.uploader == nil || t == nil || t.LogoKey == nil || *t.LogoKey == "" {
		return
	}
	if url := s.uploader.PublicURL(*t.LogoKey); url != "" {
		t.LogoURL = &url
	}
}

func validateTournament(t *models.Tournament) error {
	if !t.Tier.Valid() {
		return ErrTournamentTierRequired
	}
	if !t.Category.Valid() {
		return ErrTournamentCategoryRequired
	}
	if t.StartDate.IsZero() || t.EndDate.IsZero() || t.EndDate.Before(t.StartDate) {
		return ErrTournamentInvalidDateRange
	}
	if t.MinLevel != nil && t.MaxLevel != nil && *t.MaxLevel < *t.MinLevel {
		return ErrTournamentInvalidLevel
	}
	if t.Cost < 0 {
		return ErrTournamentInvalidCost
	}
	return nil
}
