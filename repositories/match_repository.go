package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/JustArys/tennis/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound           = errors.New("match not found")
	ErrMatchParticipantInvalid = errors.New("match references a registration that does not exist")
	ErrMatchInvalidSlot        = errors.New("match slot must be 1 or 2")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	// GetByIDForUpdate locks the match row; result recording uses it so two
	// concurrent submissions for one match serialize.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error)
	// CountByTournament accepts a nil exec; it then reads from the pool.
	CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
	// FindFeeder returns the match whose winner advances into the given
	// slot of nextMatchID. Every slot above round 1 has exactly one feeder.
	FindFeeder(ctx context.Context, exec SQLExecutor, nextMatchID, slot int) (*models.Match, error)
	UpdateNextMatchInfo(ctx context.Context, exec SQLExecutor, matchID int, nextMatchID, nextMatchSlot *int) error
	UpdateResult(ctx context.Context, exec SQLExecutor, matchID int, winnerRegID int, score string, status models.MatchStatus, completedTime time.Time) error
	// SetParticipantSlot places a registration into slot 1 or 2 of a match
	// and moves the match's status in the same statement.
	SetParticipantSlot(ctx context.Context, exec SQLExecutor, matchID, slot, regID int, status models.MatchStatus) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, tournament_id, round_number, match_number_in_bracket,
		participant1_reg_id, participant2_reg_id, winner_reg_id,
		next_match_id, next_match_slot, score, status, scheduled_time, completed_time`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches
			(tournament_id, round_number, match_number_in_bracket,
			 participant1_reg_id, participant2_reg_id, winner_reg_id,
			 next_match_id, next_match_slot, score, status, scheduled_time, completed_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`

	err := exec.QueryRowContext(ctx, query,
		match.TournamentID,
		match.RoundNumber,
		match.MatchNumberInBracket,
		match.Participant1RegID,
		match.Participant2RegID,
		match.WinnerRegID,
		match.NextMatchID,
		match.NextMatchSlot,
		match.Score,
		match.Status,
		match.ScheduledTime,
		match.CompletedTime,
	).Scan(&match.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return ErrMatchParticipantInvalid
		}
		return fmt.Errorf("failed to create match: %w", err)
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	return r.scanMatchRow(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1 FOR UPDATE`
	return r.scanMatchRow(exec.QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE tournament_id = $1
		ORDER BY round_number ASC, match_number_in_bracket ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match := &models.Match{}
		if scanErr := scanMatch(rows, match); scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, match)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	if exec == nil {
		exec = r.db
	}
	var count int
	query := `SELECT COUNT(*) FROM matches WHERE tournament_id = $1`
	if err := exec.QueryRowContext(ctx, query, tournamentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count matches for tournament %d: %w", tournamentID, err)
	}
	return count, nil
}

func (r *postgresMatchRepository) FindFeeder(ctx context.Context, exec SQLExecutor, nextMatchID, slot int) (*models.Match, error) {
	if exec == nil {
		exec = r.db
	}
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE next_match_id = $1 AND next_match_slot = $2`
	return r.scanMatchRow(exec.QueryRowContext(ctx, query, nextMatchID, slot))
}

func (r *postgresMatchRepository) UpdateNextMatchInfo(ctx context.Context, exec SQLExecutor, matchID int, nextMatchID, nextMatchSlot *int) error {
	query := `UPDATE matches SET next_match_id = $1, next_match_slot = $2 WHERE id = $3`
	result, err := exec.ExecContext(ctx, query, nextMatchID, nextMatchSlot, matchID)
	if err != nil {
		return fmt.Errorf("failed to link match %d to its next match: %w", matchID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, matchID int, winnerRegID int, score string, status models.MatchStatus, completedTime time.Time) error {
	query := `UPDATE matches
		SET winner_reg_id = $1, score = $2, status = $3, completed_time = $4
		WHERE id = $5`
	result, err := exec.ExecContext(ctx, query, winnerRegID, score, status, completedTime, matchID)
	if err != nil {
		return fmt.Errorf("failed to record result for match %d: %w", matchID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) SetParticipantSlot(ctx context.Context, exec SQLExecutor, matchID, slot, regID int, status models.MatchStatus) error {
	var query string
	switch slot {
	case 1:
		query = `UPDATE matches SET participant1_reg_id = $1, status = $2 WHERE id = $3`
	case 2:
		query = `UPDATE matches SET participant2_reg_id = $1, status = $2 WHERE id = $3`
	default:
		return ErrMatchInvalidSlot
	}
	result, err := exec.ExecContext(ctx, query, regID, status, matchID)
	if err != nil {
		return fmt.Errorf("failed to set participant slot %d of match %d: %w", slot, matchID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) scanMatchRow(row *sql.Row) (*models.Match, error) {
	match := &models.Match{}
	if err := scanMatch(row, match); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func scanMatch(s rowScanner, match *models.Match) error {
	err := s.Scan(
		&match.ID,
		&match.TournamentID,
		&match.RoundNumber,
		&match.MatchNumberInBracket,
		&match.Participant1RegID,
		&match.Participant2RegID,
		&match.WinnerRegID,
		&match.NextMatchID,
		&match.NextMatchSlot,
		&match.Score,
		&match.Status,
		&match.ScheduledTime,
		&match.CompletedTime,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("failed to scan match: %w", err)
	}
	return nil
}
