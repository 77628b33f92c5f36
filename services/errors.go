package services

import "errors"

// Shared sentinel errors; handlers map them onto HTTP statuses with
// errors.Is.
var (
	// Bracket generation
	ErrBracketAlreadyGenerated = errors.New("bracket has already been generated for this tournament")

	// Match results
	ErrMatchAlreadyFinished    = errors.New("match is already completed or ended in a walkover")
	ErrMatchParticipantsNotSet = errors.New("cannot record a result before both participants are known")
	ErrWinnerNotInMatch        = errors.New("declared winner is not a participant of this match")
	ErrScoreRequired           = errors.New("match score must not be empty")

	// Points
	ErrTournamentNotFinished = errors.New("tournament is not finished: final match is not completed")

	// ErrBracketIntegrity marks corrupted bracket state (dangling next-match
	// reference, missing slot). Surfaced as a server error, never retried.
	ErrBracketIntegrity = errors.New("bracket integrity violation")

	// Registration lifecycle
	ErrPartnerRequired          = errors.New("a partner is required for a doubles category")
	ErrPartnerNotAllowed        = errors.New("a partner cannot be specified for a singles category")
	ErrSelfPartner              = errors.New("a player cannot partner with themselves")
	ErrTournamentFull           = errors.New("tournament has no free spots left")
	ErrRatingOutOfLevel         = errors.New("rating does not fit the tournament level window")
	ErrRegistrationNotPending   = errors.New("registration is not awaiting partner confirmation")
	ErrPartnerMismatch          = errors.New("only the invited partner can act on this registration")
	ErrRegistrationClosed       = errors.New("registration is already canceled or rejected")
	ErrGenderMismatch           = errors.New("player gender does not match the tournament category")

	// Tournament validation
	ErrTournamentTierRequired     = errors.New("tournament tier must be specified")
	ErrTournamentCategoryRequired = errors.New("tournament category must be specified")
	ErrTournamentInvalidDateRange = errors.New("tournament end date must not be before its start date")
	ErrTournamentInvalidLevel     = errors.New("tournament level window is invalid")
	ErrTournamentInvalidCost      = errors.New("tournament cost must not be negative")
	ErrStorageUnavailable         = errors.New("object storage is not configured")

	// Auth
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")
	ErrPasswordTooShort       = errors.New("password is too short")
)
