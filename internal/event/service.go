package event

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/morpheus-mall/mall-backend/internal/auditlog"
	"github.com/morpheus-mall/mall-backend/internal/cache"
	"github.com/morpheus-mall/mall-backend/internal/domain"
	"github.com/morpheus-mall/mall-backend/internal/metrics"
	"github.com/morpheus-mall/mall-backend/internal/notification"
	"github.com/morpheus-mall/mall-backend/internal/tracing"
)

// OpFetchEvents names FetchEvents results in the query cache.
const OpFetchEvents = "fetch_events"

// Service wraps event queries, registration validation and event administration.
type Service struct {
	Repo      Repository
	AuditSvc  auditlog.Service
	Publisher notification.Publisher
	Cache     *cache.Cache
	// Now is the clock; tests pin it.
	Now func() time.Time
	// InvalidateOps are the cached operations dropped after a write.
	InvalidateOps []string
}

func NewService(r Repository, auditSvc auditlog.Service, publisher notification.Publisher, c *cache.Cache) *Service {
	return &Service{
		Repo:          r,
		AuditSvc:      auditSvc,
		Publisher:     publisher,
		Cache:         c,
		Now:           time.Now,
		InvalidateOps: []string{OpFetchEvents},
	}
}

func (s *Service) today() time.Time {
	return domain.DateOnly(s.Now())
}

// ===========================
// Fetch Events

// FetchEvents returns one page of events with their counts, filtered by the
// participant criteria and ordered by start date, latest first.
func (s *Service) FetchEvents(ctx context.Context, f EventFilter) (EventPage, error) {
	ctx, span := tracing.Tracer().Start(ctx, "event.FetchEvents")
	defer span.End()

	f.Page, f.PageSize = normalizePaging(f.Page, f.PageSize)
	today := s.today()

	key := struct {
		EventFilter
		Today string `json:"today"`
	}{f, today.Format(time.DateOnly)}

	page, err := cache.Remember(ctx, s.Cache, OpFetchEvents, key, func(ctx context.Context) (EventPage, error) {
		events, total, err := s.Repo.ListPage(ctx, f.OnlyActive, today, f.PageSize, (f.Page-1)*f.PageSize)
		if err != nil {
			return EventPage{}, fmt.Errorf("fetch events: %w", err)
		}

		detailed := make([]EventWithDetails, 0, len(events))
		for _, e := range events {
			detailed = append(detailed, WithDetails(e, today))
		}
		detailed = FilterEvents(detailed, f.FilterCriteria)
		SortByStartDesc(detailed)

		return newPage(detailed, total, f.Page, f.PageSize), nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return EventPage{}, err
	}
	span.SetAttributes(attribute.Int("events", len(page.Events)))
	return page, nil
}

// ===========================
// Validate

// Validate decides whether (eventID, designerID, boutiqueID) is a valid
// registration for the event today. Only backend failures return an error.
//
// With both ids a single registration row must match both and carry a mall.
// With one id any registration row for it suffices; the mall is not checked
// on that path.
func (s *Service) Validate(ctx context.Context, eventID uint, designerID, boutiqueID *uint) (ValidationResult, error) {
	ctx, span := tracing.Tracer().Start(ctx, "event.Validate")
	defer span.End()
	span.SetAttributes(attribute.Int64("event_id", int64(eventID)))

	res, err := s.validate(ctx, eventID, designerID, boutiqueID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ValidationResult{}, err
	}

	span.SetAttributes(attribute.String("reason", string(res.Reason)))
	metrics.ObserveValidation(string(res.Reason))

	evt := zerolog.Ctx(ctx).Debug()
	if !res.IsValid {
		evt = zerolog.Ctx(ctx).Info()
	}
	evt.Uint("event_id", eventID).
		Interface("designer_id", designerID).
		Interface("boutique_id", boutiqueID).
		Bool("valid", res.IsValid).
		Str("reason", string(res.Reason)).
		Msg("registration validated")
	return res, nil
}

func (s *Service) validate(ctx context.Context, eventID uint, designerID, boutiqueID *uint) (ValidationResult, error) {
	if eventID == 0 {
		return result(ReasonMissingEventID), nil
	}
	if designerID == nil && boutiqueID == nil {
		return result(ReasonMissingParticipant), nil
	}

	e, err := s.Repo.FindWithRecords(ctx, eventID)
	if errors.Is(err, ErrEventNotFound) {
		return result(ReasonEventNotFound), nil
	}
	if err != nil {
		return ValidationResult{}, fmt.Errorf("load event %d: %w", eventID, err)
	}

	details := WithDetails(*e, s.today())
	withEvent := func(reason ReasonCode, rec *domain.RegistrationRecord) ValidationResult {
		r := result(reason)
		r.Event = &details
		r.Registration = rec
		return r
	}

	if !details.IsActive {
		return withEvent(ReasonEventNotActive, nil), nil
	}

	rec, found := domain.FindRegistration(e.Records, designerID, boutiqueID)
	switch {
	case designerID != nil && boutiqueID != nil:
		if !found {
			return withEvent(ReasonNoMatchingRegistration, nil), nil
		}
		if rec.MallID == nil {
			return withEvent(ReasonRegistrationNoMall, &rec), nil
		}
	case designerID != nil:
		if !found {
			return withEvent(ReasonDesignerNotRegistered, nil), nil
		}
	default:
		if !found {
			return withEvent(ReasonBoutiqueNotRegistered, nil), nil
		}
	}
	return withEvent(ReasonOK, &rec), nil
}

// ===========================
// Event administration

func (s *Service) GetEvent(ctx context.Context, id uint) (*EventWithDetails, error) {
	e, err := s.Repo.FindWithRecords(ctx, id)
	if err != nil {
		return nil, err
	}
	d := WithDetails(*e, s.today())
	return &d, nil
}

func parseRange(start, end string) (time.Time, time.Time, error) {
	startDate, err := time.Parse(time.DateOnly, start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date %q, use YYYY-MM-DD", start)
	}
	endDate, err := time.Parse(time.DateOnly, end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date %q, use YYYY-MM-DD", end)
	}
	if startDate.After(endDate) {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	return startDate, endDate, nil
}

func (s *Service) CreateEvent(ctx context.Context, req CreateEventRequest, actorID uint, ip string) (*domain.Event, error) {
	details := map[string]interface{}{
		"code":       req.Code,
		"name":       req.Name,
		"start_date": req.StartDate,
		"end_date":   req.EndDate,
	}

	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		details["error"] = err.Error()
		s.audit(ctx, actorID, nil, "EVENT_CREATED", details, ip, auditlog.StatusFailure)
		return nil, &InputError{err}
	}

	e := &domain.Event{
		Code:      strings.TrimSpace(req.Code),
		Name:      strings.TrimSpace(req.Name),
		StartDate: start,
		EndDate:   end,
	}
	if err := s.Repo.Create(ctx, e); err != nil {
		details["error"] = err.Error()
		s.audit(ctx, actorID, nil, "EVENT_CREATED", details, ip, auditlog.StatusFailure)
		return nil, err
	}

	s.audit(ctx, actorID, &e.ID, "EVENT_CREATED", details, ip, auditlog.StatusSuccess)
	s.changed(ctx, notification.NewMessage(notification.TypeEventCreated, e.ID, actorID))
	return e, nil
}

func (s *Service) UpdateEvent(ctx context.Context, id uint, req UpdateEventRequest, actorID uint, ip string) (*domain.Event, error) {
	e, err := s.Repo.FindWithRecords(ctx, id)
	if err != nil {
		return nil, err
	}

	details := map[string]interface{}{"event_id": id}
	start, end := e.StartDate.Format(time.DateOnly), e.EndDate.Format(time.DateOnly)
	if req.Name != nil {
		e.Name = strings.TrimSpace(*req.Name)
		details["name"] = e.Name
	}
	if req.StartDate != nil {
		start = *req.StartDate
		details["start_date"] = start
	}
	if req.EndDate != nil {
		end = *req.EndDate
		details["end_date"] = end
	}

	e.StartDate, e.EndDate, err = parseRange(start, end)
	if err != nil {
		details["error"] = err.Error()
		s.audit(ctx, actorID, &id, "EVENT_UPDATED", details, ip, auditlog.StatusFailure)
		return nil, &InputError{err}
	}

	if err := s.Repo.Update(ctx, e); err != nil {
		details["error"] = err.Error()
		s.audit(ctx, actorID, &id, "EVENT_UPDATED", details, ip, auditlog.StatusFailure)
		return nil, err
	}

	s.audit(ctx, actorID, &id, "EVENT_UPDATED", details, ip, auditlog.StatusSuccess)
	s.changed(ctx, notification.NewMessage(notification.TypeEventUpdated, id, actorID))
	return e, nil
}

func (s *Service) DeleteEvent(ctx context.Context, id uint, actorID uint, ip string) error {
	details := map[string]interface{}{"event_id": id}
	if err := s.Repo.Delete(ctx, id); err != nil {
		details["error"] = err.Error()
		s.audit(ctx, actorID, &id, "EVENT_DELETED", details, ip, auditlog.StatusFailure)
		return err
	}

	s.audit(ctx, actorID, &id, "EVENT_DELETED", details, ip, auditlog.StatusSuccess)
	s.changed(ctx, notification.NewMessage(notification.TypeEventDeleted, id, actorID))
	return nil
}

// ===========================
// Registration administration

// Register links a designer and boutique to an event. The registration takes
// the boutique's mall.
func (s *Service) Register(ctx context.Context, eventID uint, req RegistrationRequest, actorID uint, ip string) (*domain.RegistrationRecord, error) {
	details := map[string]interface{}{
		"designer_id": req.DesignerID,
		"boutique_id": req.BoutiqueID,
	}
	fail := func(err error) (*domain.RegistrationRecord, error) {
		details["error"] = err.Error()
		s.audit(ctx, actorID, &eventID, "REGISTRATION_CREATED", details, ip, auditlog.StatusFailure)
		return nil, err
	}

	if _, err := s.Repo.FindWithRecords(ctx, eventID); err != nil {
		return fail(err)
	}
	ok, err := s.Repo.DesignerExists(ctx, req.DesignerID)
	if err != nil {
		return fail(err)
	}
	if !ok {
		return fail(ErrDesignerNotFound)
	}
	mallID, err := s.Repo.BoutiqueMall(ctx, req.BoutiqueID)
	if err != nil {
		return fail(err)
	}

	if _, err := s.Repo.FindRegistration(ctx, eventID, req.DesignerID, req.BoutiqueID); err == nil {
		return fail(ErrAlreadyRegistered)
	} else if !errors.Is(err, ErrRegistrationNotFound) {
		return fail(err)
	}

	designerID, boutiqueID := req.DesignerID, req.BoutiqueID
	rec := &domain.RegistrationRecord{
		EventID:    eventID,
		DesignerID: &designerID,
		BoutiqueID: &boutiqueID,
		MallID:     mallID,
	}
	if err := s.Repo.CreateRecord(ctx, rec); err != nil {
		return fail(err)
	}

	if mallID == nil {
		zerolog.Ctx(ctx).Warn().Uint("boutique_id", boutiqueID).Msg("registered boutique has no mall")
	}
	s.audit(ctx, actorID, &eventID, "REGISTRATION_CREATED", details, ip, auditlog.StatusSuccess)
	s.changed(ctx, notification.NewMessage(notification.TypeRegistrationCreated, eventID, actorID).
		WithParticipant(&designerID, &boutiqueID))
	return rec, nil
}

// Unregister removes a registration row. Registrations with assignments
// under them are kept.
func (s *Service) Unregister(ctx context.Context, eventID uint, req RegistrationRequest, actorID uint, ip string) error {
	details := map[string]interface{}{
		"designer_id": req.DesignerID,
		"boutique_id": req.BoutiqueID,
	}
	fail := func(err error) error {
		details["error"] = err.Error()
		s.audit(ctx, actorID, &eventID, "REGISTRATION_REMOVED", details, ip, auditlog.StatusFailure)
		return err
	}

	rec, err := s.Repo.FindRegistration(ctx, eventID, req.DesignerID, req.BoutiqueID)
	if err != nil {
		return fail(err)
	}
	n, err := s.Repo.CountAssignments(ctx, eventID, req.DesignerID, req.BoutiqueID)
	if err != nil {
		return fail(err)
	}
	if n > 0 {
		return fail(ErrHasAssignments)
	}
	if err := s.Repo.DeleteRecord(ctx, rec.ID); err != nil {
		return fail(err)
	}

	s.audit(ctx, actorID, &eventID, "REGISTRATION_REMOVED", details, ip, auditlog.StatusSuccess)
	s.changed(ctx, notification.NewMessage(notification.TypeRegistrationRemoved, eventID, actorID).
		WithParticipant(rec.DesignerID, rec.BoutiqueID))
	return nil
}

// InputError marks a request the caller can fix.
type InputError struct{ Err error }

func (e *InputError) Error() string { return e.Err.Error() }
func (e *InputError) Unwrap() error { return e.Err }

// ===========================
// Helpers

func (s *Service) audit(ctx context.Context, actorID uint, eventID *uint, action string, details map[string]interface{}, ip, status string) {
	if s.AuditSvc == nil {
		return
	}
	if err := s.AuditSvc.LogAction(ctx, &actorID, eventID, action, details, ip, status); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("action", action).Msg("audit log write failed")
	}
}

// changed drops cached query results and announces the change.
func (s *Service) changed(ctx context.Context, msg notification.Message) {
	for _, op := range s.InvalidateOps {
		if _, err := s.Cache.InvalidateOperation(ctx, op); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("operation", op).Msg("cache invalidation failed")
		}
	}
	notification.PublishQuietly(ctx, s.Publisher, msg)
}
