package store

import (
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

func optionalID(c *gin.Context, name string) (*uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, false
	}
	id := uint(v)
	return &id, true
}

// ListStores godoc
// @Summary List boutiques visible to the caller
// @Description Admins see every boutique, annotated with the registered designer when event_id is given. Store admins see the boutiques their designer is registered with for event_id.
// @Tags Stores
// @Produce json
// @Param event_id query int false "event id"
// @Param mall_id query int false "mall id"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/stores [get]
func (h *Handler) ListStores(c *gin.Context) {
	eventID, ok := optionalID(c, "event_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event_id"})
		return
	}
	mallID, ok := optionalID(c, "mall_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mall_id"})
		return
	}

	ac, _ := middleware.GetAccessContext(c)
	stores, err := h.service.ListStores(c.Request.Context(), StoreQuery{
		EventID: eventID,
		MallID:  mallID,
		Role:    ac.RoleName,
		UserID:  ac.UserID,
	})
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("list stores")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list stores"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stores})
}

// ListMalls godoc
// @Summary List malls
// @Tags Stores
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/v1/malls [get]
func (h *Handler) ListMalls(c *gin.Context) {
	malls, err := h.service.ListMalls(c.Request.Context())
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("list malls")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list malls"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": malls})
}
