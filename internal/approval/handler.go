package approval

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/morpheus-mall/mall-backend/middleware"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) respond(c *gin.Context, err error, msg string) {
	var rule *RuleError
	switch {
	case errors.As(err, &rule):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   rule.Result.Message,
			"reason":  rule.Result.Reason,
			"details": rule.Result,
		})
	case errors.Is(err, ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrMissingEventID):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrDesignerMismatch), errors.Is(err, ErrProductNotPending):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, ErrAlreadyAssigned):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg(msg)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

// ApproveAssignment godoc
// @Summary Approve a product for a boutique during an event
// @Description The designer and boutique must hold a registration with a mall for the event.
// @Tags Approvals
// @Accept json
// @Produce json
// @Param body body AssignmentRequest true "assignment"
// @Success 201 {object} domain.RegistrationRecord
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/v1/approvals [post]
func (h *Handler) ApproveAssignment(c *gin.Context) {
	var req AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	rec, err := h.service.ApproveAssignment(c.Request.Context(), req, c.GetUint("user_id"), middleware.GetIPFromContext(c))
	if err != nil {
		h.respond(c, err, "failed to approve assignment")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":    "Assignment approved",
		"assignment": rec,
	})
}

// ListPending godoc
// @Summary Products awaiting approval for an event
// @Tags Approvals
// @Produce json
// @Param event_id query int true "event id"
// @Success 200 {array} PendingProduct
// @Security BearerAuth
// @Router /api/v1/approvals/pending [get]
func (h *Handler) ListPending(c *gin.Context) {
	eventID, err := strconv.ParseUint(c.Query("event_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event_id"})
		return
	}

	products, err := h.service.ListPending(c.Request.Context(), uint(eventID))
	if err != nil {
		h.respond(c, err, "failed to list pending products")
		return
	}
	if products == nil {
		products = []PendingProduct{}
	}
	c.JSON(http.StatusOK, products)
}

// Reject godoc
// @Summary Reject a pending product
// @Tags Approvals
// @Accept json
// @Produce json
// @Param id path int true "product id"
// @Param body body RejectRequest false "reason"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/approvals/products/{id}/reject [post]
func (h *Handler) Reject(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
		return
	}

	var req RejectRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.service.Reject(c.Request.Context(), uint(id), req.Reason, c.GetUint("user_id"), middleware.GetIPFromContext(c)); err != nil {
		h.respond(c, err, "failed to reject product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product rejected"})
}
