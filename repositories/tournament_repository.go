package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/JustArys/tennis/models"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound       = errors.New("tournament not found")
	ErrPointsAlreadyAwarded     = errors.New("points have already been awarded for this tournament")
	ErrTournamentAuthorInvalid  = errors.New("tournament author does not exist")
	ErrTournamentInvalidColumns = errors.New("tournament has invalid column values")
)

type TournamentRepository interface {
	Create(ctx context.Context, t *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	// GetByIDForUpdate locks the tournament row for the lifetime of the
	// surrounding transaction; bracket generation and points award use it to
	// serialize concurrent calls against the same tournament.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	List(ctx context.Context) ([]*models.Tournament, error)
	Update(ctx context.Context, t *models.Tournament) error
	UpdateLogoKey(ctx context.Context, id int, logoKey *string) error
	// MarkPointsAwarded flips the double-award guard. When the flag is
	// already set it reports ErrPointsAlreadyAwarded.
	MarkPointsAwarded(ctx context.Context, exec SQLExecutor, id int) error
	Delete(ctx context.Context, id int) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

const tournamentColumns = `id, description, start_date, end_date, start_time, tier, category,
		city, location, min_level, max_level, cost, author_id, points_awarded,
		logo_key, created_at, updated_at`

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments
			(description, start_date, end_date, start_time, tier, category,
			 city, location, min_level, max_level, cost, author_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, points_awarded, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		t.Description,
		t.StartDate,
		t.EndDate,
		t.StartTime,
		t.Tier,
		t.Category,
		t.City,
		t.Location,
		t.MinLevel,
		t.MaxLevel,
		t.Cost,
		t.AuthorID,
	).Scan(&t.ID, &t.PointsAwarded, &t.CreatedAt, &t.UpdatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23503": // foreign_key_violation
				return ErrTournamentAuthorInvalid
			case "23514": // check_violation
				return ErrTournamentInvalidColumns
			}
		}
		return fmt.Errorf("failed to create tournament: %w", err)
	}
	return nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	return scanTournament(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresTournamentRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1 FOR UPDATE`
	return scanTournament(exec.QueryRowContext(ctx, query, id))
}

func (r *postgresTournamentRepository) List(ctx context.Context) ([]*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		t, scanErr := scanTournamentRow(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	query := `
		UPDATE tournaments
		SET description = $1, start_date = $2, end_date = $3, start_time = $4,
		    category = $5, city = $6, location = $7, min_level = $8,
		    max_level = $9, cost = $10, updated_at = NOW()
		WHERE id = $11`

	result, err := r.db.ExecContext(ctx, query,
		t.Description, t.StartDate, t.EndDate, t.StartTime,
		t.Category, t.City, t.Location, t.MinLevel,
		t.MaxLevel, t.Cost, t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update tournament %d: %w", t.ID, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	query := `UPDATE tournaments SET logo_key = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, logoKey, id)
	if err != nil {
		return fmt.Errorf("failed to update tournament %d logo: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) MarkPointsAwarded(ctx context.Context, exec SQLExecutor, id int) error {
	query := `UPDATE tournaments SET points_awarded = TRUE, updated_at = NOW()
		WHERE id = $1 AND points_awarded = FALSE`
	result, err := exec.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark points awarded for tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrPointsAlreadyAwarded)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id int) error {
	// Matches and registrations go with it (ON DELETE CASCADE).
	query := `DELETE FROM tournaments WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTournament(row *sql.Row) (*models.Tournament, error) {
	t, err := scanTournamentRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func scanTournamentRow(s rowScanner) (*models.Tournament, error) {
	t := &models.Tournament{}
	err := s.Scan(
		&t.ID,
		&t.Description,
		&t.StartDate,
		&t.EndDate,
		&t.StartTime,
		&t.Tier,
		&t.Category,
		&t.City,
		&t.Location,
		&t.MinLevel,
		&t.MaxLevel,
		&t.Cost,
		&t.AuthorID,
		&t.PointsAwarded,
		&t.LogoKey,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan tournament: %w", err)
	}
	return t, nil
}
