package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"ministryroster/internal/domain"
)

// SlotLabel derives the coarse weekly availability slot for an instant,
// e.g. "saturday_morning". Morning is before 12:00, afternoon before 18:00,
// evening otherwise.
func SlotLabel(t time.Time) string {
	day := strings.ToLower(t.Weekday().String())
	switch hour := t.Hour(); {
	case hour < 12:
		return day + "_morning"
	case hour < 18:
		return day + "_afternoon"
	default:
		return day + "_evening"
	}
}

// RosterPlanner resolves availability and conflicts for an event window and
// greedily assigns free musicians to requested roles.
type RosterPlanner struct {
	musicianRepo   domain.MusicianRepository
	invitationRepo domain.InvitationRepository
	clock          domain.Clock
}

// NewRosterPlanner returns a roster planner over the given pool and
// commitment storage.
func NewRosterPlanner(
	musicianRepo domain.MusicianRepository,
	invitationRepo domain.InvitationRepository,
	clock domain.Clock,
) *RosterPlanner {
	return &RosterPlanner{
		musicianRepo:   musicianRepo,
		invitationRepo: invitationRepo,
		clock:          clock,
	}
}

// ResolveAvailability partitions the event's church pool into free musicians
// and excluded ones. Both partitions are returned so the director can
// override an exclusion; nobody is silently dropped.
func (p *RosterPlanner) ResolveAvailability(ctx context.Context, event *domain.Event) (*domain.AvailabilityResult, error) {
	pool, err := p.musicianRepo.ListByChurchID(ctx, event.ChurchID)
	if err != nil {
		return nil, fmt.Errorf("list musicians: %w", err)
	}

	start, end := event.Window()
	slot := SlotLabel(start)

	overlapping, err := p.invitationRepo.ListConfirmedOverlapping(ctx, event.ChurchID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list overlapping commitments: %w", err)
	}
	conflicts := make(map[string][]*domain.Event)
	for _, iwe := range overlapping {
		// A confirmed spot on this very event is not a conflict with itself.
		if iwe.Event.ID == event.ID {
			continue
		}
		conflicts[iwe.Invitation.MusicianID] = append(conflicts[iwe.Invitation.MusicianID], iwe.Event)
	}

	now := p.clock.Now()
	result := &domain.AvailabilityResult{
		Free:     []*domain.Musician{},
		Excluded: []*domain.MusicianExclusion{},
	}
	for _, m := range pool {
		switch {
		case m.BlockedAt(now):
			result.Excluded = append(result.Excluded, &domain.MusicianExclusion{
				Musician: m, Reason: domain.ExclusionBlocked,
			})
		case !m.AvailableForSlot(slot):
			result.Excluded = append(result.Excluded, &domain.MusicianExclusion{
				Musician: m, Reason: domain.ExclusionUnavailable,
			})
		case len(conflicts[m.ID]) > 0:
			result.Excluded = append(result.Excluded, &domain.MusicianExclusion{
				Musician: m, Reason: domain.ExclusionConflict, Conflicts: conflicts[m.ID],
			})
		default:
			result.Free = append(result.Free, m)
		}
	}
	return result, nil
}

// Suggest builds a roster for the event. Free musicians are ranked by
// penalty points ascending (the sole ranking signal) and assigned greedily
// per role; a musician fills at most one role per event. Unmet demand is
// returned in Unfilled, never invented.
func (p *RosterPlanner) Suggest(ctx context.Context, event *domain.Event, needs domain.RosterNeeds) (*domain.RosterSuggestion, error) {
	availability, err := p.ResolveAvailability(ctx, event)
	if err != nil {
		return nil, err
	}

	free := make([]*domain.Musician, len(availability.Free))
	copy(free, availability.Free)
	sort.SliceStable(free, func(i, j int) bool {
		return free[i].PenaltyPoints < free[j].PenaltyPoints
	})

	// Map iteration order is randomized, so walk roles in sorted order for
	// deterministic output.
	roles := make([]string, 0, len(needs))
	for role := range needs {
		roles = append(roles, role)
	}
	sort.Strings(roles)

	assigned := make(map[string]struct{})
	suggestion := &domain.RosterSuggestion{
		Assigned:   []domain.RosterAssignment{},
		Unassigned: []*domain.Musician{},
		Unfilled:   domain.RosterNeeds{},
		Excluded:   availability.Excluded,
	}
	for _, role := range roles {
		remaining := needs[role]
		for _, m := range free {
			if remaining == 0 {
				break
			}
			if _, taken := assigned[m.ID]; taken {
				continue
			}
			if !m.PlaysRole(role) {
				continue
			}
			assigned[m.ID] = struct{}{}
			suggestion.Assigned = append(suggestion.Assigned, domain.RosterAssignment{Role: role, Musician: m})
			remaining--
		}
		if remaining > 0 {
			suggestion.Unfilled[role] = remaining
		}
	}
	for _, m := range free {
		if _, taken := assigned[m.ID]; !taken {
			suggestion.Unassigned = append(suggestion.Unassigned, m)
		}
	}
	return suggestion, nil
}
