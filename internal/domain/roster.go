package domain

// Exclusion reasons attached by the availability and conflict resolver.
const (
	ExclusionUnavailable = "unavailable"
	ExclusionConflict    = "conflict"
	ExclusionBlocked     = "blocked"
)

// MusicianExclusion explains why a musician is not in the free partition.
// Conflicts carries the overlapping events for UI display.
type MusicianExclusion struct {
	Musician  *Musician `json:"musician"`
	Reason    string    `json:"reason"`
	Conflicts []*Event  `json:"conflicts,omitempty"`
}

// AvailabilityResult partitions a church's musician pool for an event
// window. Both partitions are always returned so a director can override.
type AvailabilityResult struct {
	Free     []*Musician          `json:"free"`
	Excluded []*MusicianExclusion `json:"excluded"`
}

// RosterNeeds maps a role to the number of musicians required for it.
type RosterNeeds map[string]int

// RosterAssignment assigns one musician to one role.
type RosterAssignment struct {
	Role     string    `json:"role"`
	Musician *Musician `json:"musician"`
}

// RosterSuggestion is the planner's output. Unfilled lists roles whose
// demand could not be met; shortfall is never hidden from the caller.
type RosterSuggestion struct {
	Assigned   []RosterAssignment   `json:"assigned"`
	Unassigned []*Musician          `json:"unassigned"`
	Unfilled   RosterNeeds          `json:"unfilled"`
	Excluded   []*MusicianExclusion `json:"excluded"`
}
