package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"github.com/JustArys/tennis/brackets"
	"github.com/JustArys/tennis/models"
	"github.com/JustArys/tennis/repositories"
)

// The fakes below run the services against in-memory state. The tx runner
// hands the callback a nil executor; the fakes ignore it.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeTxRunner struct{}

func (fakeTxRunner) RunInTx(ctx context.Context, fn func(tx repositories.SQLExecutor) error) error {
	return fn(nil)
}

type fakeTournamentRepo struct {
	tournaments map[int]*models.Tournament
	nextID      int
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{tournaments: map[int]*models.Tournament{}, nextID: 1}
}

func (f *fakeTournamentRepo) Create(_ context.Context, t *models.Tournament) error {
	t.ID = f.nextID
	f.nextID++
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	f.tournaments[t.ID] = t
	return nil
}

func (f *fakeTournamentRepo) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	t, ok := f.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *t
	return &copied, nil
}

func (f *fakeTournamentRepo) GetByIDForUpdate(ctx context.Context, _ repositories.SQLExecutor, id int) (*models.Tournament, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeTournamentRepo) List(_ context.Context) ([]*models.Tournament, error) {
	out := make([]*models.Tournament, 0, len(f.tournaments))
	for _, t := range f.tournaments {
		copied := *t
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTournamentRepo) Update(_ context.Context, t *models.Tournament) error {
	if _, ok := f.tournaments[t.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	f.tournaments[t.ID] = t
	return nil
}

func (f *fakeTournamentRepo) UpdateLogoKey(_ context.Context, id int, logoKey *string) error {
	t, ok := f.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.LogoKey = logoKey
	return nil
}

func (f *fakeTournamentRepo) MarkPointsAwarded(_ context.Context, _ repositories.SQLExecutor, id int) error {
	t, ok := f.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	if t.PointsAwarded {
		return repositories.ErrPointsAlreadyAwarded
	}
	t.PointsAwarded = true
	return nil
}

func (f *fakeTournamentRepo) Delete(_ context.Context, id int) error {
	if _, ok := f.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(f.tournaments, id)
	return nil
}

type fakeRegistrationRepo struct {
	regs   map[int]*models.TournamentRegistration
	nextID int
}

func newFakeRegistrationRepo() *fakeRegistrationRepo {
	return &fakeRegistrationRepo{regs: map[int]*models.TournamentRegistration{}, nextID: 1}
}

func (f *fakeRegistrationRepo) Create(_ context.Context, reg *models.TournamentRegistration) error {
	for _, existing := range f.regs {
		if existing.TournamentID == reg.TournamentID && existing.UserID == reg.UserID {
			return repositories.ErrRegistrationConflict
		}
	}
	reg.ID = f.nextID
	f.nextID++
	reg.CreatedAt = time.Now()
	f.regs[reg.ID] = reg
	return nil
}

func (f *fakeRegistrationRepo) GetByID(_ context.Context, id int) (*models.TournamentRegistration, error) {
	reg, ok := f.regs[id]
	if !ok {
		return nil, repositories.ErrRegistrationNotFound
	}
	return reg, nil
}

func (f *fakeRegistrationRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int, statusFilter *models.RegistrationStatus) ([]*models.TournamentRegistration, error) {
	var out []*models.TournamentRegistration
	for _, reg := range f.regs {
		if reg.TournamentID != tournamentID {
			continue
		}
		if statusFilter != nil && reg.Status != *statusFilter {
			continue
		}
		out = append(out, reg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRegistrationRepo) FindByTournamentAndUser(_ context.Context, tournamentID, userID int) (*models.TournamentRegistration, error) {
	for _, reg := range f.regs {
		if reg.TournamentID != tournamentID {
			continue
		}
		if reg.UserID == userID || (reg.PartnerID != nil && *reg.PartnerID == userID) {
			return reg, nil
		}
	}
	return nil, repositories.ErrRegistrationNotFound
}

func (f *fakeRegistrationRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.RegistrationStatus) error {
	reg, ok := f.regs[id]
	if !ok {
		return repositories.ErrRegistrationNotFound
	}
	reg.Status = status
	return nil
}

func (f *fakeRegistrationRepo) UpdateSeeding(_ context.Context, _ repositories.SQLExecutor, id int, seedingRating *float64, seedNumber *int) error {
	reg, ok := f.regs[id]
	if !ok {
		return repositories.ErrRegistrationNotFound
	}
	reg.SeedingRating = seedingRating
	reg.SeedNumber = seedNumber
	return nil
}

type fakeMatchRepo struct {
	matches map[int]*models.Match
	nextID  int
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: map[int]*models.Match{}, nextID: 1}
}

func (f *fakeMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	match.ID = f.nextID
	f.nextID++
	copied := *match
	f.matches[match.ID] = &copied
	return nil
}

func (f *fakeMatchRepo) GetByID(_ context.Context, id int) (*models.Match, error) {
	m, ok := f.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := *m
	return &copied, nil
}

func (f *fakeMatchRepo) GetByIDForUpdate(ctx context.Context, _ repositories.SQLExecutor, id int) (*models.Match, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeMatchRepo) ListByTournament(_ context.Context, tournamentID int) ([]*models.Match, error) {
	var out []*models.Match
	for _, m := range f.matches {
		if m.TournamentID == tournamentID {
			copied := *m
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RoundNumber != out[j].RoundNumber {
			return out[i].RoundNumber < out[j].RoundNumber
		}
		return out[i].MatchNumberInBracket < out[j].MatchNumberInBracket
	})
	return out, nil
}

func (f *fakeMatchRepo) CountByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) (int, error) {
	count := 0
	for _, m := range f.matches {
		if m.TournamentID == tournamentID {
			count++
		}
	}
	return count, nil
}

func (f *fakeMatchRepo) FindFeeder(_ context.Context, _ repositories.SQLExecutor, nextMatchID, slot int) (*models.Match, error) {
	for _, m := range f.matches {
		if m.NextMatchID != nil && *m.NextMatchID == nextMatchID &&
			m.NextMatchSlot != nil && *m.NextMatchSlot == slot {
			copied := *m
			return &copied, nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (f *fakeMatchRepo) UpdateNextMatchInfo(_ context.Context, _ repositories.SQLExecutor, matchID int, nextMatchID, nextMatchSlot *int) error {
	m, ok := f.matches[matchID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.NextMatchID = nextMatchID
	m.NextMatchSlot = nextMatchSlot
	return nil
}

func (f *fakeMatchRepo) UpdateResult(_ context.Context, _ repositories.SQLExecutor, matchID int, winnerRegID int, score string, status models.MatchStatus, completedTime time.Time) error {
	m, ok := f.matches[matchID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.WinnerRegID = &winnerRegID
	m.Score = &score
	m.Status = status
	m.CompletedTime = &completedTime
	return nil
}

func (f *fakeMatchRepo) SetParticipantSlot(_ context.Context, _ repositories.SQLExecutor, matchID, slot, regID int, status models.MatchStatus) error {
	m, ok := f.matches[matchID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	switch slot {
	case 1:
		m.Participant1RegID = &regID
	case 2:
		m.Participant2RegID = &regID
	default:
		return repositories.ErrMatchInvalidSlot
	}
	m.Status = status
	return nil
}

type fakeUserRepo struct {
	users  map[int]*models.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int]*models.User{}, nextID: 1}
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	user.ID = f.nextID
	f.nextID++
	user.CreatedAt = time.Now()
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepo) AddRatingPoints(_ context.Context, _ repositories.SQLExecutor, userID int, points float64) error {
	u, ok := f.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.Rating += points
	return nil
}

type fixture struct {
	tournaments *fakeTournamentRepo
	regs        *fakeRegistrationRepo
	matches     *fakeMatchRepo
	users       *fakeUserRepo

	bracketService BracketService
	matchService   MatchService
	pointsService  PointsService
}

func newFixture() *fixture {
	f := &fixture{
		tournaments: newFakeTournamentRepo(),
		regs:        newFakeRegistrationRepo(),
		matches:     newFakeMatchRepo(),
		users:       newFakeUserRepo(),
	}
	logger := testLogger()
	generator := brackets.NewSingleEliminationGenerator()
	f.bracketService = NewBracketService(fakeTxRunner{}, f.tournaments, f.regs, f.matches, generator, nil, logger, rand.New(rand.NewSource(1)))
	f.matchService = NewMatchService(fakeTxRunner{}, f.matches, f.regs, f.tournaments, nil, logger)
	f.pointsService = NewPointsService(fakeTxRunner{}, f.tournaments, f.regs, f.matches, f.users, nil, logger)
	return f
}

// seedTournament creates a tournament with n registered singles players,
// ratings strictly descending so user 1 is the strongest.
func (f *fixture) seedTournament(tier models.TournamentTier, category models.Category, n int) *models.Tournament {
	ctx := context.Background()
	tournament := &models.Tournament{
		StartDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 6, 7, 0, 0, 0, 0, time.UTC),
		Tier:      tier,
		Category:  category,
		AuthorID:  1,
	}
	_ = f.tournaments.Create(ctx, tournament)

	for i := 0; i < n; i++ {
		user := &models.User{
			Email:     fmt.Sprintf("player%d@example.com", i+1),
			FirstName: "P",
			LastName:  fmt.Sprintf("Player%d", i+1),
			Gender:    models.GenderMale,
			Rating:    float64(1000 - i*10),
		}
		_ = f.users.Create(ctx, user)
		_ = f.regs.Create(ctx, &models.TournamentRegistration{
			TournamentID: tournament.ID,
			UserID:       user.ID,
			Status:       models.RegistrationRegistered,
			User:         user,
		})
	}
	return tournament
}
