package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pzkpfw44/Pulse360-sub000/internal/models"
	"github.com/pzkpfw44/Pulse360-sub000/internal/repositories"
	"github.com/pzkpfw44/Pulse360-sub000/internal/services"
	"github.com/pzkpfw44/Pulse360-sub000/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CampaignHandler is the admin surface for managing feedback campaigns.
type CampaignHandler struct {
	BaseHandler
	campaignService services.CampaignService
	exportService   services.ExportService
	validator       *utils.Validator
}

func NewCampaignHandler(
	campaignService services.CampaignService,
	exportService services.ExportService,
	validator *utils.Validator,
	logger utils.Logger,
) *CampaignHandler {
	return &CampaignHandler{
		BaseHandler:     NewBaseHandler(logger),
		campaignService: campaignService,
		exportService:   exportService,
		validator:       validator,
	}
}

// CreateCampaign creates a new feedback campaign
// @Summary Create campaign
// @Tags campaigns
// @Accept json
// @Produce json
// @Param campaign body services.CreateCampaignRequest true "Campaign data"
// @Success 201 {object} models.Campaign
// @Failure 400 {object} ErrorResponse
// @Router /campaigns [post]
func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	var req services.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	campaign, err := h.campaignService.Create(c.Request.Context(), &req, userID.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, campaign)
}

// GetCampaign retrieves a campaign by ID
// @Summary Get campaign
// @Tags campaigns
// @Produce json
// @Param id path uint true "Campaign ID"
// @Success 200 {object} models.Campaign
// @Failure 404 {object} ErrorResponse
// @Router /campaigns/{id} [get]
func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	campaign, err := h.campaignService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, campaign)
}

// ListCampaigns lists campaigns with filtering and pagination
// @Summary List campaigns
// @Tags campaigns
// @Produce json
// @Param status query string false "Campaign status"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} PagedResponse
// @Router /campaigns [get]
func (h *CampaignHandler) ListCampaigns(c *gin.Context) {
	filters := h.parseCampaignFilters(c)

	campaigns, total, err := h.campaignService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, PagedResponse{Items: campaigns, Total: total})
}

// UpdateCampaign updates a draft campaign
// @Summary Update campaign
// @Tags campaigns
// @Accept json
// @Produce json
// @Param id path uint true "Campaign ID"
// @Param campaign body services.UpdateCampaignRequest true "Campaign update data"
// @Success 200 {object} models.Campaign
// @Failure 422 {object} ErrorResponse
// @Router /campaigns/{id} [put]
func (h *CampaignHandler) UpdateCampaign(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	campaign, err := h.campaignService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, campaign)
}

// DeleteCampaign deletes a campaign without collected feedback
// @Summary Delete campaign
// @Tags campaigns
// @Param id path uint true "Campaign ID"
// @Success 204
// @Failure 422 {object} ErrorResponse
// @Router /campaigns/{id} [delete]
func (h *CampaignHandler) DeleteCampaign(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.campaignService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ActivateCampaign opens a campaign for feedback
// @Summary Activate campaign
// @Tags campaigns
// @Produce json
// @Param id path uint true "Campaign ID"
// @Success 200 {object} models.Campaign
// @Failure 422 {object} ErrorResponse
// @Router /campaigns/{id}/activate [post]
func (h *CampaignHandler) ActivateCampaign(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Activating campaign", "campaign_id", id)

	campaign, err := h.campaignService.Activate(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, campaign)
}

// CompleteCampaign closes an active campaign
// @Summary Complete campaign
// @Tags campaigns
// @Produce json
// @Param id path uint true "Campaign ID"
// @Success 200 {object} models.Campaign
// @Failure 422 {object} ErrorResponse
// @Router /campaigns/{id}/complete [post]
func (h *CampaignHandler) CompleteCampaign(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	campaign, err := h.campaignService.Complete(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, campaign)
}

// AddAssessor invites an assessor and issues their access token
// @Summary Add assessor
// @Tags campaigns
// @Accept json
// @Produce json
// @Param id path uint true "Campaign ID"
// @Param assessor body services.AddAssessorRequest true "Assessor data"
// @Success 201 {object} services.AssessorInvite
// @Failure 409 {object} ErrorResponse
// @Router /campaigns/{id}/assessors [post]
func (h *CampaignHandler) AddAssessor(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.AddAssessorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	invite, err := h.campaignService.AddAssessor(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, invite)
}

// ResetToken revokes an assessor's tokens and issues a fresh one
// @Summary Reset access token
// @Tags campaigns
// @Produce json
// @Param id path uint true "Campaign ID"
// @Param submission_id path uint true "Submission ID"
// @Success 200 {object} services.AssessorInvite
// @Failure 404 {object} ErrorResponse
// @Router /campaigns/{id}/submissions/{submission_id}/reset-token [post]
func (h *CampaignHandler) ResetToken(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	submissionID := h.parseIDParam(c, "submission_id")
	if submissionID == 0 {
		return
	}

	h.LogRequest(c, "Resetting access token", "campaign_id", id, "submission_id", submissionID)

	invite, err := h.campaignService.ResetToken(c.Request.Context(), id, submissionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, invite)
}

// ListSubmissions lists a campaign's submissions
// @Summary List submissions
// @Tags campaigns
// @Produce json
// @Param id path uint true "Campaign ID"
// @Param status query string false "Submission status"
// @Success 200 {object} PagedResponse
// @Router /campaigns/{id}/submissions [get]
func (h *CampaignHandler) ListSubmissions(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", 20)
	filters := repositories.SubmissionFilters{
		Limit:  size,
		Offset: (page - 1) * size,
	}
	if status := c.Query("status"); status != "" {
		s := models.SubmissionStatus(status)
		filters.Status = &s
	}

	submissions, total, err := h.campaignService.ListSubmissions(c.Request.Context(), id, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, PagedResponse{Items: submissions, Total: total})
}

// ExportResults downloads the campaign's feedback as a spreadsheet
// @Summary Export campaign results
// @Tags campaigns
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path uint true "Campaign ID"
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse
// @Router /campaigns/{id}/export [get]
func (h *CampaignHandler) ExportResults(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Exporting campaign results", "campaign_id", id)

	data, filename, err := h.exportService.ExportCampaignResults(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *CampaignHandler) parseCampaignFilters(c *gin.Context) repositories.CampaignFilters {
	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", 20)

	filters := repositories.CampaignFilters{
		Limit:     size,
		Offset:    (page - 1) * size,
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}

	if status := c.Query("status"); status != "" {
		s := models.CampaignStatus(status)
		filters.Status = &s
	}
	if creator := c.Query("created_by"); creator != "" {
		filters.CreatedBy = &creator
	}

	return filters
}
