package event

import (
	"sort"
	"time"

	"github.com/morpheus-mall/mall-backend/internal/domain"
)

// WithDetails attaches record counts and the active flag to an event.
func WithDetails(e domain.Event, today time.Time) EventWithDetails {
	registrations, assignments := domain.CountRecords(e.Records)
	return EventWithDetails{
		Event:             e,
		RegistrationCount: registrations,
		AssignmentCount:   assignments,
		IsActive:          domain.IsActive(e, today),
	}
}

// FilterEvents keeps the events matching c. A designer or boutique id keeps
// only events with a registration row for it; with both ids a single row must
// match both. Without ids, OnlyWithRegistrations keeps events that have any
// registration row. Assignment rows never match. Order is preserved.
func FilterEvents(events []EventWithDetails, c FilterCriteria) []EventWithDetails {
	out := make([]EventWithDetails, 0, len(events))
	for _, e := range events {
		if matches(e, c) {
			out = append(out, e)
		}
	}
	return out
}

func matches(e EventWithDetails, c FilterCriteria) bool {
	if c.DesignerID != nil || c.BoutiqueID != nil {
		_, ok := domain.FindRegistration(e.Records, c.DesignerID, c.BoutiqueID)
		return ok
	}
	if c.OnlyWithRegistrations {
		return e.RegistrationCount > 0
	}
	return true
}

// SortByStartDesc orders events by start date, latest first. Ties keep
// their order.
func SortByStartDesc(events []EventWithDetails) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StartDate.After(events[j].StartDate)
	})
}

// normalizePaging applies the page defaults and bounds.
func normalizePaging(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

func newPage(events []EventWithDetails, total int64, page, size int) EventPage {
	totalPages := int((total + int64(size) - 1) / int64(size))
	return EventPage{
		Events:      events,
		TotalCount:  total,
		TotalPages:  totalPages,
		Page:        page,
		PageSize:    size,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
}
