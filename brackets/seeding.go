package brackets

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/JustArys/tennis/models"
)

var (
	ErrNotEnoughParticipants = errors.New("not enough participants to generate a bracket (minimum 2)")
	ErrTooManyParticipants   = errors.New("more registered participants than the tier capacity allows")
	ErrMissingDoublesPartner = errors.New("doubles registration has no partner")
)

// ComputeSeeding writes the seeding rating into every registration, sorts
// the slice by rating descending (registration id ascending on ties, so the
// order is reproducible) and assigns seed numbers 1..numberOfSeeds.
//
// For singles the rating is the player's rating, zero when absent. For
// doubles it is the sum of both partners' ratings; a doubles entry without
// a partner is a hard error — the pairing must be settled before the draw.
func ComputeSeeding(regs []*models.TournamentRegistration, doubles bool, numberOfSeeds int) error {
	for _, reg := range regs {
		rating := 0.0
		if reg.User != nil {
			rating += reg.User.Rating
		}
		if doubles {
			if reg.Partner == nil {
				return fmt.Errorf("%w: registration %d", ErrMissingDoublesPartner, reg.ID)
			}
			rating += reg.Partner.Rating
		}
		r := rating
		reg.SeedingRating = &r
		reg.SeedNumber = nil
	}

	sort.SliceStable(regs, func(i, j int) bool {
		ri, rj := *regs[i].SeedingRating, *regs[j].SeedingRating
		if ri != rj {
			return ri > rj
		}
		return regs[i].ID < regs[j].ID
	})

	for i := 0; i < numberOfSeeds && i < len(regs); i++ {
		seed := i + 1
		regs[i].SeedNumber = &seed
	}
	return nil
}

// PlaceInSlots spreads the sorted, seed-annotated participants over a slot
// array of length capacity. The four anchor seeds take the classic
// protected positions: seed 1 the first slot, seed 2 the last, seed 3 the
// top of the bottom half, seed 4 the bottom of the top half. Seeds past the
// anchors fill remaining slots in seed order; the unseeded pool is shuffled
// before filling what is left. Unfilled slots stay nil and become byes.
func PlaceInSlots(sorted []*models.TournamentRegistration, capacity int, rng *rand.Rand) []*models.TournamentRegistration {
	slots := make([]*models.TournamentRegistration, capacity)

	var seeds, others []*models.TournamentRegistration
	for _, reg := range sorted {
		if reg.SeedNumber != nil {
			seeds = append(seeds, reg)
		} else {
			others = append(others, reg)
		}
	}

	if len(seeds) >= 1 {
		slots[0] = seeds[0]
	}
	if len(seeds) >= 2 {
		slots[capacity-1] = seeds[1]
	}
	if len(seeds) >= 3 {
		slots[capacity/2] = seeds[2]
	}
	if len(seeds) >= 4 {
		idx := capacity/2 - 1
		if idx == 0 && slots[0] != nil {
			idx = 1
		}
		slots[idx] = seeds[3]
	}

	// Seeds beyond the anchors keep their seed order; only the truly
	// unseeded pool is randomized.
	var unplaced []*models.TournamentRegistration
	for _, seed := range seeds {
		placed := false
		for _, s := range slots {
			if s == seed {
				placed = true
				break
			}
		}
		if !placed {
			unplaced = append(unplaced, seed)
		}
	}
	sort.SliceStable(unplaced, func(i, j int) bool {
		return *unplaced[i].SeedNumber < *unplaced[j].SeedNumber
	})

	shuffled := make([]*models.TournamentRegistration, len(others))
	copy(shuffled, others)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	unplaced = append(unplaced, shuffled...)

	for _, i := range fillOrder(slots) {
		if len(unplaced) == 0 {
			break
		}
		slots[i] = unplaced[0]
		unplaced = unplaced[1:]
	}
	return slots
}

// fillOrder lists the empty slot indices, but gives every first-round pair
// one occupant before any pair gets its second. With an under-full field
// this spreads the holes so each first-round match keeps at least one
// participant (a bye) instead of two empty slots pairing into a match
// nobody can ever win.
func fillOrder(slots []*models.TournamentRegistration) []int {
	order := make([]int, 0, len(slots))
	taken := make(map[int]bool)
	for k := 0; k+1 < len(slots); k += 2 {
		if slots[k] == nil && slots[k+1] == nil {
			order = append(order, k)
			taken[k] = true
		}
	}
	for i := range slots {
		if slots[i] == nil && !taken[i] {
			order = append(order, i)
		}
	}
	return order
}
