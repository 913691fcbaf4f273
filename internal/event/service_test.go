package event

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morpheus-mall/mall-backend/internal/auditlog"
	"github.com/morpheus-mall/mall-backend/internal/cache"
	"github.com/morpheus-mall/mall-backend/internal/domain"
	"github.com/morpheus-mall/mall-backend/internal/notification"
)

func catalogue() *fakeRepo {
	return newFakeRepo(
		domain.Event{ID: 1, Code: "SPR", StartDate: date("2024-03-01"), EndDate: date("2024-05-31"),
			Records: []domain.RegistrationRecord{
				{ID: 1, EventID: 1, DesignerID: ptr(10), BoutiqueID: ptr(20), MallID: ptr(30)},
			}},
		domain.Event{ID: 2, Code: "SUM", StartDate: date("2024-06-01"), EndDate: date("2024-08-31"),
			Records: []domain.RegistrationRecord{
				{ID: 2, EventID: 2, DesignerID: ptr(10), BoutiqueID: ptr(20), MallID: ptr(30), ProductID: ptr(7)},
			}},
		domain.Event{ID: 3, Code: "AUT", StartDate: date("2024-09-01"), EndDate: date("2024-11-30")},
	)
}

func TestFetchEvents(t *testing.T) {
	ctx := context.Background()

	t.Run("sorted with counts", func(t *testing.T) {
		svc, _, _ := newTestService(catalogue(), "2024-06-15")
		page, err := svc.FetchEvents(ctx, EventFilter{})
		require.NoError(t, err)
		assert.Equal(t, []uint{3, 2, 1}, ids(page.Events))
		assert.Equal(t, int64(3), page.TotalCount)
		assert.Equal(t, 1, page.TotalPages)
		assert.Equal(t, DefaultPageSize, page.PageSize)
		assert.Equal(t, 1, page.Events[1].AssignmentCount)
		assert.Equal(t, 0, page.Events[1].RegistrationCount)
	})

	t.Run("only active", func(t *testing.T) {
		svc, _, _ := newTestService(catalogue(), "2024-06-15")
		page, err := svc.FetchEvents(ctx, EventFilter{OnlyActive: true})
		require.NoError(t, err)
		assert.Equal(t, []uint{2}, ids(page.Events))
		assert.True(t, page.Events[0].IsActive)
	})

	t.Run("designer filter skips assignment rows", func(t *testing.T) {
		svc, _, _ := newTestService(catalogue(), "2024-06-15")
		page, err := svc.FetchEvents(ctx, EventFilter{FilterCriteria: FilterCriteria{DesignerID: ptr(10)}})
		require.NoError(t, err)
		assert.Equal(t, []uint{1}, ids(page.Events))
	})

	t.Run("paging", func(t *testing.T) {
		svc, _, _ := newTestService(catalogue(), "2024-06-15")
		page, err := svc.FetchEvents(ctx, EventFilter{Page: 2, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, []uint{1}, ids(page.Events))
		assert.Equal(t, 2, page.TotalPages)
		assert.False(t, page.HasNext)
		assert.True(t, page.HasPrevious)
	})

	t.Run("backend failure", func(t *testing.T) {
		repo := catalogue()
		repo.err = errors.New("permission denied for schema morpheus")
		svc, _, _ := newTestService(repo, "2024-06-15")
		_, err := svc.FetchEvents(ctx, EventFilter{})
		assert.ErrorContains(t, err, "permission denied for schema morpheus")
	})
}

func TestFetchEvents_Cached(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := catalogue()
	svc, _, _ := newTestService(repo, "2024-06-15")
	svc.Cache = cache.New(client, 30*time.Second)
	ctx := context.Background()

	first, err := svc.FetchEvents(ctx, EventFilter{})
	require.NoError(t, err)
	second, err := svc.FetchEvents(ctx, EventFilter{})
	require.NoError(t, err)
	assert.Equal(t, ids(first.Events), ids(second.Events))
	assert.Equal(t, 1, repo.calls)

	// a write drops the cached pages
	_, err = svc.CreateEvent(ctx, CreateEventRequest{Code: "WIN", Name: "Winter", StartDate: "2024-12-01", EndDate: "2024-12-31"}, 1, "")
	require.NoError(t, err)

	third, err := svc.FetchEvents(ctx, EventFilter{})
	require.NoError(t, err)
	assert.Len(t, third.Events, 4)
}

func TestCreateEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("created and audited", func(t *testing.T) {
		svc, audit, pub := newTestService(catalogue(), "2024-06-15")
		e, err := svc.CreateEvent(ctx, CreateEventRequest{Code: " WIN ", Name: "Winter", StartDate: "2024-12-01", EndDate: "2024-12-31"}, 1, "10.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, "WIN", e.Code)
		assert.Equal(t, []auditCall{{"EVENT_CREATED", auditlog.StatusSuccess}}, audit.calls)
		require.Len(t, pub.msgs, 1)
		assert.Equal(t, notification.TypeEventCreated, pub.msgs[0].Type)
	})

	t.Run("end before start", func(t *testing.T) {
		svc, audit, pub := newTestService(catalogue(), "2024-06-15")
		_, err := svc.CreateEvent(ctx, CreateEventRequest{Code: "BAD", Name: "Bad", StartDate: "2024-12-31", EndDate: "2024-12-01"}, 1, "")
		assert.ErrorIs(t, err, ErrInvalidDateRange)
		var inputErr *InputError
		assert.ErrorAs(t, err, &inputErr)
		assert.Equal(t, []auditCall{{"EVENT_CREATED", auditlog.StatusFailure}}, audit.calls)
		assert.Empty(t, pub.msgs)
	})

	t.Run("duplicate code", func(t *testing.T) {
		svc, _, _ := newTestService(catalogue(), "2024-06-15")
		_, err := svc.CreateEvent(ctx, CreateEventRequest{Code: "SPR", Name: "Again", StartDate: "2024-12-01", EndDate: "2024-12-31"}, 1, "")
		assert.ErrorIs(t, err, ErrDuplicateCode)
	})
}

func TestUpdateAndDeleteEvent(t *testing.T) {
	ctx := context.Background()
	repo := catalogue()
	svc, audit, _ := newTestService(repo, "2024-06-15")

	name := "Autumn Week"
	end := "2024-09-07"
	e, err := svc.UpdateEvent(ctx, 3, UpdateEventRequest{Name: &name, EndDate: &end}, 1, "")
	require.NoError(t, err)
	assert.Equal(t, "Autumn Week", repo.events[3].Name)
	assert.Equal(t, date("2024-09-07"), e.EndDate)

	early := "2024-08-01"
	_, err = svc.UpdateEvent(ctx, 3, UpdateEventRequest{EndDate: &early}, 1, "")
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	require.NoError(t, svc.DeleteEvent(ctx, 3, 1, ""))
	assert.NotContains(t, repo.events, uint(3))
	assert.ErrorIs(t, svc.DeleteEvent(ctx, 3, 1, ""), ErrEventNotFound)

	assert.Equal(t, []auditCall{
		{"EVENT_UPDATED", auditlog.StatusSuccess},
		{"EVENT_UPDATED", auditlog.StatusFailure},
		{"EVENT_DELETED", auditlog.StatusSuccess},
		{"EVENT_DELETED", auditlog.StatusFailure},
	}, audit.calls)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	repo := catalogue()
	repo.designers[10] = true
	repo.designers[11] = true
	repo.boutiques[20] = ptr(30)
	repo.boutiques[25] = nil
	svc, audit, pub := newTestService(repo, "2024-06-15")

	rec, err := svc.Register(ctx, 3, RegistrationRequest{DesignerID: 11, BoutiqueID: 20}, 1, "")
	require.NoError(t, err)
	require.NotNil(t, rec.MallID)
	assert.Equal(t, uint(30), *rec.MallID, "mall comes from the boutique")
	require.Len(t, pub.msgs, 1)
	assert.Equal(t, notification.TypeRegistrationCreated, pub.msgs[0].Type)

	res, err := svc.Validate(ctx, 3, ptr(11), ptr(20))
	require.NoError(t, err)
	assert.Equal(t, ReasonEventNotActive, res.Reason)

	_, err = svc.Register(ctx, 3, RegistrationRequest{DesignerID: 11, BoutiqueID: 20}, 1, "")
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	_, err = svc.Register(ctx, 3, RegistrationRequest{DesignerID: 99, BoutiqueID: 20}, 1, "")
	assert.ErrorIs(t, err, ErrDesignerNotFound)

	_, err = svc.Register(ctx, 3, RegistrationRequest{DesignerID: 10, BoutiqueID: 404}, 1, "")
	assert.ErrorIs(t, err, ErrBoutiqueNotFound)

	_, err = svc.Register(ctx, 404, RegistrationRequest{DesignerID: 10, BoutiqueID: 20}, 1, "")
	assert.ErrorIs(t, err, ErrEventNotFound)

	mallless, err := svc.Register(ctx, 3, RegistrationRequest{DesignerID: 10, BoutiqueID: 25}, 1, "")
	require.NoError(t, err)
	assert.Nil(t, mallless.MallID)

	successes := 0
	for _, c := range audit.calls {
		if c.Status == auditlog.StatusSuccess {
			successes++
		}
	}
	assert.Equal(t, 2, successes)
	assert.Len(t, audit.calls, 6)
}

func TestUnregister(t *testing.T) {
	ctx := context.Background()
	repo := catalogue()
	repo.events[2].Records = append(repo.events[2].Records,
		domain.RegistrationRecord{ID: 50, EventID: 2, DesignerID: ptr(10), BoutiqueID: ptr(20), MallID: ptr(30)})
	svc, _, _ := newTestService(repo, "2024-06-15")

	err := svc.Unregister(ctx, 2, RegistrationRequest{DesignerID: 10, BoutiqueID: 20}, 1, "")
	assert.ErrorIs(t, err, ErrHasAssignments)

	require.NoError(t, svc.Unregister(ctx, 1, RegistrationRequest{DesignerID: 10, BoutiqueID: 20}, 1, ""))
	assert.Empty(t, repo.events[1].Records)

	err = svc.Unregister(ctx, 1, RegistrationRequest{DesignerID: 10, BoutiqueID: 20}, 1, "")
	assert.ErrorIs(t, err, ErrRegistrationNotFound)
}

func TestHandlers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := catalogue()
	svc, _, _ := newTestService(repo, "2024-04-01")
	h := NewHandler(svc)

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("user_id", uint(1)) })
	r.GET("/events", h.ListEvents)
	r.GET("/events/:id", h.GetEvent)
	r.GET("/events/:id/validate", h.ValidateRegistration)
	r.POST("/events", h.CreateEvent)
	r.POST("/events/:id/registrations", h.Register)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(method, path, strings.NewReader(body)))
		return w
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
		expect string
	}{
		{"list", http.MethodGet, "/events?only_active=true", "", http.StatusOK, `"code":"SPR"`},
		{"list bad designer", http.MethodGet, "/events?designer_id=x", "", http.StatusBadRequest, ""},
		{"get", http.MethodGet, "/events/1", "", http.StatusOK, `"registration_count":1`},
		{"get missing", http.MethodGet, "/events/42", "", http.StatusNotFound, ""},
		{"get bad id", http.MethodGet, "/events/zero", "", http.StatusBadRequest, ""},
		{"validate ok", http.MethodGet, "/events/1/validate?designer_id=10&boutique_id=20", "", http.StatusOK, `"is_valid":true`},
		{"validate no participant", http.MethodGet, "/events/1/validate", "", http.StatusOK, `"reason":"missing_participant"`},
		{"create bad range", http.MethodPost, "/events", `{"code":"X","name":"X","start_date":"2024-02-02","end_date":"2024-02-01"}`, http.StatusBadRequest, ""},
		{"create missing field", http.MethodPost, "/events", `{"code":"X"}`, http.StatusBadRequest, ""},
		{"create duplicate", http.MethodPost, "/events", `{"code":"SPR","name":"X","start_date":"2024-02-01","end_date":"2024-02-02"}`, http.StatusConflict, ""},
		{"register unknown designer", http.MethodPost, "/events/1/registrations", `{"designer_id":77,"boutique_id":20}`, http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			if tt.expect != "" {
				assert.Contains(t, w.Body.String(), tt.expect)
			}
		})
	}
}
