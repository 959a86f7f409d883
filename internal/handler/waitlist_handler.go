package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/byebilly/waitlist-api/internal/dto"
	"github.com/byebilly/waitlist-api/internal/middleware"
	"github.com/byebilly/waitlist-api/internal/models"
	appErrors "github.com/byebilly/waitlist-api/pkg/errors"
	"github.com/byebilly/waitlist-api/pkg/response"
)

type waitlistService interface {
	Enroll(ctx context.Context, req dto.EnrollRequest) (*dto.EnrollResult, error)
	Stats(ctx context.Context) (*dto.WaitlistStatsResponse, bool, error)
	List(ctx context.Context, filter models.WaitlistFilter) ([]models.WaitlistEntry, *models.Pagination, error)
	Export(ctx context.Context, format dto.ExportFormat) (*dto.ExportFile, error)
}

// WaitlistHandler exposes enrollment and admin waitlist endpoints.
type WaitlistHandler struct {
	waitlist waitlistService
}

// NewWaitlistHandler constructs WaitlistHandler.
func NewWaitlistHandler(waitlist waitlistService) *WaitlistHandler {
	return &WaitlistHandler{waitlist: waitlist}
}

// Enroll godoc
// @Summary Join the waitlist
// @Description Records the email once and returns its position. Repeating an email returns the original position.
// @Tags Waitlist
// @Accept json
// @Produce json
// @Param payload body dto.EnrollRequest true "Enrollment payload"
// @Success 200 {object} dto.EnrollResult
// @Failure 400 {object} response.ErrorBody
// @Failure 429 {object} response.ErrorBody
// @Failure 500 {object} response.ErrorBody
// @Router /waitlist [post]
func (h *WaitlistHandler) Enroll(c *gin.Context) {
	var req dto.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInvalidInput.Kind, http.StatusBadRequest, "invalid JSON body"))
		return
	}
	result, err := h.waitlist.Enroll(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Stats godoc
// @Summary Waitlist overview
// @Tags Waitlist
// @Produce json
// @Success 200 {object} dto.WaitlistStatsResponse
// @Failure 500 {object} response.ErrorBody
// @Router /waitlist [get]
func (h *WaitlistHandler) Stats(c *gin.Context) {
	stats, hit, err := h.waitlist.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, stats)
}

// List godoc
// @Summary List waitlist entries
// @Tags Waitlist
// @Produce json
// @Param status query string false "Filter by status (pending, invited, activated)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Page
// @Failure 400 {object} response.ErrorBody
// @Router /waitlist/entries [get]
func (h *WaitlistHandler) List(c *gin.Context) {
	var filter models.WaitlistFilter
	filter.Status = models.WaitlistStatus(strings.ToLower(strings.TrimSpace(c.Query("status"))))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	entries, pagination, err := h.waitlist.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, entries, pagination)
}

// Export godoc
// @Summary Export the waitlist
// @Tags Waitlist
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.ErrorBody
// @Router /waitlist/export [get]
func (h *WaitlistHandler) Export(c *gin.Context) {
	format := dto.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(dto.ExportFormatCSV))))
	file, err := h.waitlist.Export(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}
