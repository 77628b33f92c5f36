package models

import (
	"math"
	"time"
)

type Category string

const (
	CategorySinglesMale   Category = "SINGLES_MALE"
	CategorySinglesFemale Category = "SINGLES_FEMALE"
	CategorySinglesAll    Category = "SINGLES_ALL"
	CategoryDoubleMale    Category = "DOUBLE_MALE"
	CategoryDoubleFemale  Category = "DOUBLE_FEMALE"
	CategoryDoubleMixed   Category = "DOUBLE_MIXED"
	CategoryDoubleAll     Category = "DOUBLE_ALL"
)

func (c Category) IsDoubles() bool {
	switch c {
	case CategoryDoubleMale, CategoryDoubleFemale, CategoryDoubleMixed, CategoryDoubleAll:
		return true
	}
	return false
}

func (c Category) IsSingles() bool {
	return c.Valid() && !c.IsDoubles()
}

func (c Category) Valid() bool {
	switch c {
	case CategorySinglesMale, CategorySinglesFemale, CategorySinglesAll,
		CategoryDoubleMale, CategoryDoubleFemale, CategoryDoubleMixed, CategoryDoubleAll:
		return true
	}
	return false
}

// Tournament owns its matches and registrations; both are cascade-deleted
// with the tournament row.
type Tournament struct {
	ID            int            `json:"id" db:"id"`
	Description   *string        `json:"description,omitempty" db:"description"`
	StartDate     time.Time      `json:"start_date" db:"start_date"`
	EndDate       time.Time      `json:"end_date" db:"end_date"`
	StartTime     *string        `json:"start_time,omitempty" db:"start_time"`
	Tier          TournamentTier `json:"tier" db:"tier"`
	Category      Category       `json:"category" db:"category"`
	City          *string        `json:"city,omitempty" db:"city"`
	Location      *string        `json:"location,omitempty" db:"location"`
	MinLevel      *float64       `json:"min_level,omitempty" db:"min_level"`
	MaxLevel      *float64       `json:"max_level,omitempty" db:"max_level"`
	Cost          int            `json:"cost" db:"cost"`
	AuthorID      int            `json:"author_id" db:"author_id"`
	PointsAwarded bool           `json:"points_awarded" db:"points_awarded"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
	LogoKey       *string        `json:"-" db:"logo_key"`
	LogoURL       *string        `json:"logo_url,omitempty" db:"-"`

	// Optional related entities, loaded on demand.
	Author        *User                    `json:"author,omitempty" db:"-"`
	Registrations []TournamentRegistration `json:"registrations,omitempty" db:"-"`
	Matches       []Match                  `json:"matches,omitempty" db:"-"`
}

// MaxParticipants and NumberOfSeeds derive solely from the tier.
func (t *Tournament) MaxParticipants() int {
	return t.Tier.MaxParticipants()
}

func (t *Tournament) NumberOfSeeds() int {
	return t.Tier.NumberOfSeeds()
}

func (t *Tournament) IsDoubles() bool {
	return t.Category.IsDoubles()
}

// TotalRounds is log2 of the tier capacity.
func (t *Tournament) TotalRounds() int {
	participants := t.MaxParticipants()
	if participants <= 1 {
		return 0
	}
	return int(math.Log2(float64(participants)))
}
