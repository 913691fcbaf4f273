package event

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/morpheus-mall/mall-backend/middleware"
)

type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

// ===========================
// Param helpers

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event ID"})
		return 0, false
	}
	return uint(id), true
}

func queryID(c *gin.Context, name string) (*uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return nil, false
	}
	id := uint(v)
	return &id, true
}

func (h *Handler) fail(c *gin.Context, err error, msg string) {
	var inputErr *InputError
	switch {
	case errors.As(err, &inputErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrEventNotFound), errors.Is(err, ErrDesignerNotFound),
		errors.Is(err, ErrBoutiqueNotFound), errors.Is(err, ErrRegistrationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrAlreadyRegistered), errors.Is(err, ErrDuplicateCode):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrHasAssignments):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg(msg)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

// ===========================
// List Events - GET /events

// ListEvents godoc
// @Summary List events with registration counts
// @Tags Events
// @Produce json
// @Param designer_id query int false "only events the designer is registered for"
// @Param boutique_id query int false "only events the boutique is registered for"
// @Param only_with_registrations query bool false "only events with registrations"
// @Param only_active query bool false "only events running today"
// @Param page query int false "page, from 1"
// @Param page_size query int false "page size, max 100"
// @Success 200 {object} EventPage
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/events [get]
func (h *Handler) ListEvents(c *gin.Context) {
	var f EventFilter
	var ok bool
	if f.DesignerID, ok = queryID(c, "designer_id"); !ok {
		return
	}
	if f.BoutiqueID, ok = queryID(c, "boutique_id"); !ok {
		return
	}
	f.OnlyWithRegistrations, _ = strconv.ParseBool(c.Query("only_with_registrations"))
	f.OnlyActive, _ = strconv.ParseBool(c.Query("only_active"))
	f.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	f.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(DefaultPageSize)))

	page, err := h.Service.FetchEvents(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err, "failed to fetch events")
		return
	}
	c.JSON(http.StatusOK, page)
}

// ===========================
// Get Event - GET /events/:id

// GetEvent godoc
// @Summary Get an event with its registrations
// @Tags Events
// @Produce json
// @Param id path int true "event id"
// @Success 200 {object} EventWithDetails
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/events/{id} [get]
func (h *Handler) GetEvent(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	e, err := h.Service.GetEvent(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "failed to load event")
		return
	}
	c.JSON(http.StatusOK, e)
}

// ===========================
// Validate - GET /events/:id/validate

// ValidateRegistration godoc
// @Summary Validate a designer/boutique registration for an event
// @Description Business rule failures are returned as is_valid=false with a reason code.
// @Tags Events
// @Produce json
// @Param id path int true "event id"
// @Param designer_id query int false "designer id"
// @Param boutique_id query int false "boutique id"
// @Success 200 {object} ValidationResult
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/events/{id}/validate [get]
func (h *Handler) ValidateRegistration(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	designerID, ok := queryID(c, "designer_id")
	if !ok {
		return
	}
	boutiqueID, ok := queryID(c, "boutique_id")
	if !ok {
		return
	}

	res, err := h.Service.Validate(c.Request.Context(), id, designerID, boutiqueID)
	if err != nil {
		h.fail(c, err, "failed to validate registration")
		return
	}
	c.JSON(http.StatusOK, res)
}

// ===========================
// Create Event - POST /events

// CreateEvent godoc
// @Summary Create an event
// @Tags Events
// @Accept json
// @Produce json
// @Param body body CreateEventRequest true "event"
// @Success 201 {object} domain.Event
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/events [post]
func (h *Handler) CreateEvent(c *gin.Context) {
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	e, err := h.Service.CreateEvent(c.Request.Context(), req, c.GetUint("user_id"), middleware.GetIPFromContext(c))
	if err != nil {
		h.fail(c, err, "failed to create event")
		return
	}
	c.JSON(http.StatusCreated, e)
}

// ===========================
// Update Event - PUT /events/:id

// UpdateEvent godoc
// @Summary Update an event
// @Tags Events
// @Accept json
// @Produce json
// @Param id path int true "event id"
// @Param body body UpdateEventRequest true "changes"
// @Success 200 {object} domain.Event
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/events/{id} [put]
func (h *Handler) UpdateEvent(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	e, err := h.Service.UpdateEvent(c.Request.Context(), id, req, c.GetUint("user_id"), middleware.GetIPFromContext(c))
	if err != nil {
		h.fail(c, err, "failed to update event")
		return
	}
	c.JSON(http.StatusOK, e)
}

// ===========================
// Delete Event - DELETE /events/:id

// DeleteEvent godoc
// @Summary Delete an event and its registrations
// @Tags Events
// @Param id path int true "event id"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/events/{id} [delete]
func (h *Handler) DeleteEvent(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Service.DeleteEvent(c.Request.Context(), id, c.GetUint("user_id"), middleware.GetIPFromContext(c)); err != nil {
		h.fail(c, err, "failed to delete event")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "event deleted successfully"})
}

// ===========================
// Registrations - /events/:id/registrations

// Register godoc
// @Summary Register a designer and boutique for an event
// @Tags Events
// @Accept json
// @Produce json
// @Param id path int true "event id"
// @Param body body RegistrationRequest true "participants"
// @Success 201 {object} domain.RegistrationRecord
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/events/{id}/registrations [post]
func (h *Handler) Register(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	rec, err := h.Service.Register(c.Request.Context(), id, req, c.GetUint("user_id"), middleware.GetIPFromContext(c))
	if err != nil {
		h.fail(c, err, "failed to register")
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// Unregister godoc
// @Summary Remove a registration
// @Tags Events
// @Accept json
// @Param id path int true "event id"
// @Param body body RegistrationRequest true "participants"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/events/{id}/registrations [delete]
func (h *Handler) Unregister(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	if err := h.Service.Unregister(c.Request.Context(), id, req, c.GetUint("user_id"), middleware.GetIPFromContext(c)); err != nil {
		h.fail(c, err, "failed to unregister")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "registration removed"})
}
