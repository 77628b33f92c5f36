package models

import (
	"fmt"
	"time"
)

type RegistrationStatus string

const (
	// RegistrationPendingPartner waits for the partner of a doubles entry
	// to confirm.
	RegistrationPendingPartner RegistrationStatus = "PENDING_PARTNER"
	RegistrationRegistered     RegistrationStatus = "REGISTERED"
	RegistrationRejected       RegistrationStatus = "REJECTED"
	RegistrationCanceled       RegistrationStatus = "CANCELED"
)

// TournamentRegistration is one entry in the draw: a single player, or a
// user/partner pair for doubles. SeedingRating and SeedNumber are written
// once, at bracket-generation time.
type TournamentRegistration struct {
	ID            int                `json:"id" db:"id"`
	TournamentID  int                `json:"tournament_id" db:"tournament_id"`
	UserID        int                `json:"user_id" db:"user_id"`
	PartnerID     *int               `json:"partner_id,omitempty" db:"partner_id"`
	Status        RegistrationStatus `json:"status" db:"status"`
	SeedingRating *float64           `json:"seeding_rating,omitempty" db:"seeding_rating"`
	SeedNumber    *int               `json:"seed_number,omitempty" db:"seed_number"`
	CreatedAt     time.Time          `json:"created_at" db:"created_at"`

	User    *User `json:"user,omitempty" db:"-"`
	Partner *User `json:"partner,omitempty" db:"-"`
}

// ParticipantName renders "Last F." or "Last F. / Last F." for doubles.
func (r *TournamentRegistration) ParticipantName() string {
	if r.User == nil {
		return "N/A"
	}
	name := displayName(r.User)
	if r.Partner != nil {
		name = name + " / " + displayName(r.Partner)
	}
	return name
}

func displayName(u *User) string {
	if u.FirstName == "" {
		return u.LastName
	}
	return fmt.Sprintf("%s %c.", u.LastName, []rune(u.FirstName)[0])
}
