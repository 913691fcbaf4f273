package event

import (
	"context"
	"time"

	"github.com/morpheus-mall/mall-backend/internal/auditlog"
	"github.com/morpheus-mall/mall-backend/internal/domain"
	"github.com/morpheus-mall/mall-backend/internal/notification"
)

func ptr(v uint) *uint { return &v }

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func clock(s string) func() time.Time {
	return func() time.Time { return date(s).Add(15 * time.Hour) }
}

// fakeRepo keeps events in memory and counts every call.
type fakeRepo struct {
	events    map[uint]*domain.Event
	designers map[uint]bool
	boutiques map[uint]*uint
	nextID    uint
	calls     int
	err       error
}

func newFakeRepo(events ...domain.Event) *fakeRepo {
	r := &fakeRepo{events: map[uint]*domain.Event{}, designers: map[uint]bool{}, boutiques: map[uint]*uint{}, nextID: 1000}
	for i := range events {
		e := events[i]
		r.events[e.ID] = &e
	}
	return r
}

func (r *fakeRepo) ListPage(_ context.Context, onlyActive bool, today time.Time, limit, offset int) ([]domain.Event, int64, error) {
	r.calls++
	if r.err != nil {
		return nil, 0, r.err
	}
	var all []domain.Event
	for _, e := range r.events {
		if onlyActive && !domain.IsActive(*e, today) {
			continue
		}
		all = append(all, *e)
	}
	// repository order: start date desc, id desc
	for i := 1; i < len(all); i++ {
		for j := i; j > 0; j-- {
			a, b := all[j-1], all[j]
			if a.StartDate.Before(b.StartDate) || (a.StartDate.Equal(b.StartDate) && a.ID < b.ID) {
				all[j-1], all[j] = b, a
			}
		}
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *fakeRepo) FindWithRecords(_ context.Context, id uint) (*domain.Event, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	e, ok := r.events[id]
	if !ok {
		return nil, ErrEventNotFound
	}
	cp := *e
	cp.Records = append([]domain.RegistrationRecord(nil), e.Records...)
	return &cp, nil
}

func (r *fakeRepo) Create(_ context.Context, e *domain.Event) error {
	r.calls++
	for _, existing := range r.events {
		if existing.Code == e.Code {
			return ErrDuplicateCode
		}
	}
	r.nextID++
	e.ID = r.nextID
	cp := *e
	r.events[e.ID] = &cp
	return nil
}

func (r *fakeRepo) Update(_ context.Context, e *domain.Event) error {
	r.calls++
	existing, ok := r.events[e.ID]
	if !ok {
		return ErrEventNotFound
	}
	existing.Name, existing.StartDate, existing.EndDate = e.Name, e.StartDate, e.EndDate
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id uint) error {
	r.calls++
	if _, ok := r.events[id]; !ok {
		return ErrEventNotFound
	}
	delete(r.events, id)
	return nil
}

func (r *fakeRepo) DesignerExists(_ context.Context, id uint) (bool, error) {
	r.calls++
	return r.designers[id], nil
}

func (r *fakeRepo) BoutiqueMall(_ context.Context, id uint) (*uint, error) {
	r.calls++
	mall, ok := r.boutiques[id]
	if !ok {
		return nil, ErrBoutiqueNotFound
	}
	return mall, nil
}

func (r *fakeRepo) FindRegistration(_ context.Context, eventID, designerID, boutiqueID uint) (*domain.RegistrationRecord, error) {
	r.calls++
	e, ok := r.events[eventID]
	if !ok {
		return nil, ErrRegistrationNotFound
	}
	for _, rec := range e.Records {
		if rec.Kind() == domain.KindRegistration && rec.HasDesigner(designerID) && rec.HasBoutique(boutiqueID) {
			cp := rec
			return &cp, nil
		}
	}
	return nil, ErrRegistrationNotFound
}

func (r *fakeRepo) CreateRecord(_ context.Context, rec *domain.RegistrationRecord) error {
	r.calls++
	r.nextID++
	rec.ID = r.nextID
	e := r.events[rec.EventID]
	e.Records = append(e.Records, *rec)
	return nil
}

func (r *fakeRepo) CountAssignments(_ context.Context, eventID, designerID, boutiqueID uint) (int64, error) {
	r.calls++
	var n int64
	for _, rec := range r.events[eventID].Records {
		if rec.Kind() == domain.KindAssignment && rec.HasDesigner(designerID) && rec.HasBoutique(boutiqueID) {
			n++
		}
	}
	return n, nil
}

func (r *fakeRepo) DeleteRecord(_ context.Context, id uint) error {
	r.calls++
	for _, e := range r.events {
		for i, rec := range e.Records {
			if rec.ID == id {
				e.Records = append(e.Records[:i], e.Records[i+1:]...)
				return nil
			}
		}
	}
	return ErrRegistrationNotFound
}

type auditCall struct {
	Action string
	Status string
}

type fakeAudit struct{ calls []auditCall }

func (a *fakeAudit) LogAction(_ context.Context, _ *uint, _ *uint, action string, _ map[string]interface{}, _ string, status string) error {
	a.calls = append(a.calls, auditCall{action, status})
	return nil
}

func (a *fakeAudit) GetAuditLogs(context.Context, auditlog.AuditLogFilter) (*auditlog.PaginatedAuditLogs, error) {
	return nil, nil
}

func (a *fakeAudit) GetAuditLogByID(context.Context, uint) (*auditlog.AuditLogResponse, error) {
	return nil, nil
}

type fakePublisher struct{ msgs []notification.Message }

func (p *fakePublisher) Publish(_ context.Context, msg notification.Message) error {
	p.msgs = append(p.msgs, msg)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func newTestService(repo *fakeRepo, today string) (*Service, *fakeAudit, *fakePublisher) {
	audit := &fakeAudit{}
	pub := &fakePublisher{}
	svc := NewService(repo, audit, pub, nil)
	svc.Now = clock(today)
	return svc, audit, pub
}
