package event

import (
	"github.com/morpheus-mall/mall-backend/internal/domain"
)

// ============================
// Query types

// EventWithDetails is an event with its event_detail rows and their counts.
type EventWithDetails struct {
	domain.Event
	RegistrationCount int  `json:"registration_count"`
	AssignmentCount   int  `json:"assignment_count"`
	IsActive          bool `json:"is_active"`
}

// FilterCriteria is the client-side part of an event query.
type FilterCriteria struct {
	DesignerID            *uint `json:"designer_id,omitempty"`
	BoutiqueID            *uint `json:"boutique_id,omitempty"`
	OnlyWithRegistrations bool  `json:"only_with_registrations"`
}

// EventFilter is the input of FetchEvents.
type EventFilter struct {
	FilterCriteria
	OnlyActive bool `json:"only_active"`
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// EventPage is one page of FetchEvents. TotalCount counts the events the
// backend returned for the query before participant filtering.
type EventPage struct {
	Events      []EventWithDetails `json:"events"`
	TotalCount  int64              `json:"total_count"`
	TotalPages  int                `json:"total_pages"`
	Page        int                `json:"page"`
	PageSize    int                `json:"page_size"`
	HasNext     bool               `json:"has_next"`
	HasPrevious bool               `json:"has_previous"`
}

// ============================
// Validation types

type ReasonCode string

const (
	ReasonOK                     ReasonCode = "ok"
	ReasonMissingEventID         ReasonCode = "missing_event_id"
	ReasonMissingParticipant     ReasonCode = "missing_participant"
	ReasonEventNotFound          ReasonCode = "event_not_found"
	ReasonEventNotActive         ReasonCode = "event_not_active"
	ReasonNoMatchingRegistration ReasonCode = "no_matching_registration"
	ReasonRegistrationNoMall     ReasonCode = "registration_missing_mall"
	ReasonDesignerNotRegistered  ReasonCode = "designer_not_registered"
	ReasonBoutiqueNotRegistered  ReasonCode = "boutique_not_registered"
)

var reasonMessages = map[ReasonCode]string{
	ReasonOK:                     "registration is valid",
	ReasonMissingEventID:         "event id is required",
	ReasonMissingParticipant:     "no designer or boutique specified",
	ReasonEventNotFound:          "event not found",
	ReasonEventNotActive:         "event not active",
	ReasonNoMatchingRegistration: "no matching registration for this designer/boutique pair",
	ReasonRegistrationNoMall:     "registration missing mall",
	ReasonDesignerNotRegistered:  "designer not registered",
	ReasonBoutiqueNotRegistered:  "boutique not registered",
}

func (r ReasonCode) Message() string {
	return reasonMessages[r]
}

// ValidationResult is the outcome of Validate. Business rule failures are
// reported here, never as errors. Event is set whenever the event was loaded;
// Registration is the matched row when one was found.
type ValidationResult struct {
	IsValid      bool                       `json:"is_valid"`
	Reason       ReasonCode                 `json:"reason"`
	Message      string                     `json:"message"`
	Event        *EventWithDetails          `json:"event,omitempty"`
	Registration *domain.RegistrationRecord `json:"registration,omitempty"`
}

func result(reason ReasonCode) ValidationResult {
	return ValidationResult{IsValid: reason == ReasonOK, Reason: reason, Message: reason.Message()}
}

// ============================
// Admin requests

// CreateEventRequest carries dates as "2006-01-02".
type CreateEventRequest struct {
	Code      string `json:"code" binding:"required" example:"AW24"`
	Name      string `json:"name" binding:"required" example:"Autumn Week"`
	StartDate string `json:"start_date" binding:"required" example:"2024-09-01"`
	EndDate   string `json:"end_date" binding:"required" example:"2024-09-07"`
}

// UpdateEventRequest changes only the fields that are set.
type UpdateEventRequest struct {
	Name      *string `json:"name,omitempty"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
}

type RegistrationRequest struct {
	DesignerID uint `json:"designer_id" binding:"required"`
	BoutiqueID uint `json:"boutique_id" binding:"required"`
}
