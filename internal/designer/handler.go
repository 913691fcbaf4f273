package designer

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/morpheus-mall/mall-backend/internal/domain"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ListDesigners godoc
// @Summary List designers
// @Tags Designers
// @Produce json
// @Param search query string false "name or brand"
// @Param page query int false "page"
// @Param limit query int false "page size"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/v1/designers [get]
func (h *Handler) ListDesigners(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	designers, total, err := h.service.ListDesigners(c.Request.Context(), c.Query("search"), page, limit)
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("list designers")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list designers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": designers, "total": total})
}

// GetDesigner godoc
// @Summary Get a designer
// @Tags Designers
// @Produce json
// @Param id path int true "designer id"
// @Success 200 {object} domain.Designer
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/designers/{id} [get]
func (h *Handler) GetDesigner(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid designer id"})
		return
	}
	d, err := h.service.GetDesigner(c.Request.Context(), uint(id))
	h.respond(c, d, err)
}

// GetMe godoc
// @Summary Designer profile of the current account
// @Tags Designers
// @Produce json
// @Success 200 {object} domain.Designer
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/designers/me [get]
func (h *Handler) GetMe(c *gin.Context) {
	d, err := h.service.ResolveAccount(c.Request.Context(), c.GetUint("user_id"))
	h.respond(c, d, err)
}

type paletteReq struct {
	Colors []domain.PaletteColor `json:"colors" binding:"required"`
}

// UpdateMyPalette godoc
// @Summary Replace the brand palette of the current designer
// @Tags Designers
// @Accept json
// @Produce json
// @Param body body paletteReq true "palette"
// @Success 200 {object} domain.Designer
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/designers/me/palette [put]
func (h *Handler) UpdateMyPalette(c *gin.Context) {
	var req paletteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d, err := h.service.UpdatePalette(c.Request.Context(), c.GetUint("user_id"), req.Colors)
	h.respond(c, d, err)
}

func (h *Handler) respond(c *gin.Context, d *domain.Designer, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, d)
	case errors.Is(err, ErrDesignerNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrPaletteTooLarge), errors.Is(err, ErrInvalidColor):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("designer request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
