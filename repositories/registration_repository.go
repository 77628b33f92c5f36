package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/JustArys/tennis/models"
	"github.com/lib/pq"
)

var (
	ErrRegistrationNotFound     = errors.New("tournament registration not found")
	ErrRegistrationConflict     = errors.New("user is already registered for this tournament")
	ErrRegistrationUserInvalid  = errors.New("registration references a user that does not exist")
	ErrRegistrationTournInvalid = errors.New("registration references a tournament that does not exist")
)

type RegistrationRepository interface {
	Create(ctx context.Context, reg *models.TournamentRegistration) error
	GetByID(ctx context.Context, id int) (*models.TournamentRegistration, error)
	// ListByTournament loads registrations with their user (and partner)
	// details; the seeding engine needs the ratings. A nil exec reads from
	// the pool.
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, statusFilter *models.RegistrationStatus) ([]*models.TournamentRegistration, error)
	FindByTournamentAndUser(ctx context.Context, tournamentID, userID int) (*models.TournamentRegistration, error)
	// UpdateStatus accepts a nil exec; it then writes through the pool.
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.RegistrationStatus) error
	// UpdateSeeding persists the generation-time mutations (seeding rating,
	// seed number) inside the bracket-generation transaction.
	UpdateSeeding(ctx context.Context, exec SQLExecutor, id int, seedingRating *float64, seedNumber *int) error
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

// Every read joins the primary user and, when present, the partner, so a
// registration comes back ready for seeding and name display.
const registrationSelect = `
	SELECT r.id, r.tournament_id, r.user_id, r.partner_id, r.status,
	       r.seeding_rating, r.seed_number, r.created_at,
	       u.id, u.email, u.password_hash, u.role, u.first_name, u.last_name,
	       u.gender, u.phone, u.rating, u.created_at,
	       p.id, p.email, p.password_hash, p.role, p.first_name, p.last_name,
	       p.gender, p.phone, p.rating, p.created_at
	FROM tournament_registrations r
	JOIN users u ON u.id = r.user_id
	LEFT JOIN users p ON p.id = r.partner_id`

func (r *postgresRegistrationRepository) Create(ctx context.Context, reg *models.TournamentRegistration) error {
	query := `
		INSERT INTO tournament_registrations (tournament_id, user_id, partner_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		reg.TournamentID,
		reg.UserID,
		reg.PartnerID,
		reg.Status,
	).Scan(&reg.ID, &reg.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505": // unique_violation
				return ErrRegistrationConflict
			case "23503": // foreign_key_violation
				switch pqErr.Constraint {
				case "tournament_registrations_tournament_id_fkey":
					return ErrRegistrationTournInvalid
				default:
					return ErrRegistrationUserInvalid
				}
			}
		}
		return fmt.Errorf("failed to create registration: %w", err)
	}
	return nil
}

func (r *postgresRegistrationRepository) GetByID(ctx context.Context, id int) (*models.TournamentRegistration, error) {
	query := registrationSelect + ` WHERE r.id = $1`
	row := r.db.QueryRowContext(ctx, query, id)
	reg, err := scanRegistration(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *postgresRegistrationRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, statusFilter *models.RegistrationStatus) ([]*models.TournamentRegistration, error) {
	if exec == nil {
		exec = r.db
	}
	var queryBuilder strings.Builder
	queryBuilder.WriteString(registrationSelect)
	queryBuilder.WriteString(` WHERE r.tournament_id = $1`)

	args := []interface{}{tournamentID}
	if statusFilter != nil {
		queryBuilder.WriteString(` AND r.status = $` + strconv.Itoa(len(args)+1))
		args = append(args, *statusFilter)
	}
	queryBuilder.WriteString(` ORDER BY r.id ASC`)

	rows, err := exec.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query registrations for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	regs := make([]*models.TournamentRegistration, 0)
	for rows.Next() {
		reg, scanErr := scanRegistration(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		regs = append(regs, reg)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during registration rows iteration: %w", err)
	}
	return regs, nil
}

func (r *postgresRegistrationRepository) FindByTournamentAndUser(ctx context.Context, tournamentID, userID int) (*models.TournamentRegistration, error) {
	query := registrationSelect + `
		WHERE r.tournament_id = $1 AND (r.user_id = $2 OR r.partner_id = $2)
		ORDER BY r.id DESC LIMIT 1`
	row := r.db.QueryRowContext(ctx, query, tournamentID, userID)
	reg, err := scanRegistration(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *postgresRegistrationRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.RegistrationStatus) error {
	if exec == nil {
		exec = r.db
	}
	query := `UPDATE tournament_registrations SET status = $1 WHERE id = $2`
	result, err := exec.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update registration %d status: %w", id, err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) UpdateSeeding(ctx context.Context, exec SQLExecutor, id int, seedingRating *float64, seedNumber *int) error {
	query := `UPDATE tournament_registrations SET seeding_rating = $1, seed_number = $2 WHERE id = $3`
	result, err := exec.ExecContext(ctx, query, seedingRating, seedNumber, id)
	if err != nil {
		return fmt.Errorf("failed to update seeding for registration %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func scanRegistration(s rowScanner) (*models.TournamentRegistration, error) {
	reg := &models.TournamentRegistration{}
	user := &models.User{}

	var partnerID, partnerIDDup sql.NullInt64
	var pEmail, pHash, pRole, pFirst, pLast, pGender sql.NullString
	var pPhone sql.NullString
	var pRating sql.NullFloat64
	var pCreated sql.NullTime

	err := s.Scan(
		&reg.ID,
		&reg.TournamentID,
		&reg.UserID,
		&partnerID,
		&reg.Status,
		&reg.SeedingRating,
		&reg.SeedNumber,
		&reg.CreatedAt,
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.FirstName,
		&user.LastName,
		&user.Gender,
		&user.Phone,
		&user.Rating,
		&user.CreatedAt,
		&partnerIDDup,
		&pEmail,
		&pHash,
		&pRole,
		&pFirst,
		&pLast,
		&pGender,
		&pPhone,
		&pRating,
		&pCreated,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan registration: %w", err)
	}

	reg.User = user
	if partnerID.Valid {
		id := int(partnerID.Int64)
		reg.PartnerID = &id
		partner := &models.User{
			ID:        id,
			Email:     pEmail.String,
			Role:      models.UserRole(pRole.String),
			FirstName: pFirst.String,
			LastName:  pLast.String,
			Gender:    models.Gender(pGender.String),
			Rating:    pRating.Float64,
		}
		if pPhone.Valid {
			phone := pPhone.String
			partner.Phone = &phone
		}
		if pCreated.Valid {
			partner.CreatedAt = pCreated.Time
		}
		reg.Partner = partner
	}
	return reg, nil
}
