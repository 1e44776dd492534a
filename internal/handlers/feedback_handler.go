package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pzkpfw44/Pulse360-sub000/internal/models"
	"github.com/pzkpfw44/Pulse360-sub000/internal/services"
	"github.com/pzkpfw44/Pulse360-sub000/internal/utils"
)

// FeedbackHandler is the assessor-facing surface: everything is keyed by the
// access token, no login required.
type FeedbackHandler struct {
	BaseHandler
	sessionService services.SessionService
	validator      *utils.Validator
}

func NewFeedbackHandler(
	sessionService services.SessionService,
	validator *utils.Validator,
	logger utils.Logger,
) *FeedbackHandler {
	return &FeedbackHandler{
		BaseHandler:    NewBaseHandler(logger),
		sessionService: sessionService,
		validator:      validator,
	}
}

// SetResponsesRequest carries a batch of response updates from the form.
type SetResponsesRequest struct {
	Responses []models.Response `json:"responses" validate:"required,min=1,dive"`
}

// GetForm returns the feedback form for one access token
// @Summary Get feedback form
// @Description Returns the question set, saved responses and gate state for one access token
// @Tags feedback
// @Produce json
// @Param token path string true "Access token"
// @Success 200 {object} services.SessionView
// @Failure 404 {object} ErrorResponse
// @Failure 410 {object} ErrorResponse
// @Router /feedback/form/{token} [get]
func (h *FeedbackHandler) GetForm(c *gin.Context) {
	token := h.parseToken(c)
	if token == "" {
		return
	}

	view, err := h.sessionService.Open(c.Request.Context(), token)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// SetResponses records the assessor's current answers
// @Summary Update responses
// @Description Records rating/text answers; any edit after a quality check discards the active review
// @Tags feedback
// @Accept json
// @Produce json
// @Param token path string true "Access token"
// @Param responses body SetResponsesRequest true "Response updates"
// @Success 200 {object} services.SessionView
// @Failure 400 {object} ErrorResponse
// @Router /feedback/form/{token}/responses [put]
func (h *FeedbackHandler) SetResponses(c *gin.Context) {
	token := h.parseToken(c)
	if token == "" {
		return
	}

	var req SetResponsesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	view, err := h.sessionService.SetResponses(c.Request.Context(), token, req.Responses)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// SaveDraft persists the current responses server-side
// @Summary Save draft
// @Description Persists the current responses so the assessor can resume later
// @Tags feedback
// @Produce json
// @Param token path string true "Access token"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /feedback/form/{token}/draft [post]
func (h *FeedbackHandler) SaveDraft(c *gin.Context) {
	token := h.parseToken(c)
	if token == "" {
		return
	}

	if err := h.sessionService.SaveDraft(c.Request.Context(), token); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Draft saved", nil)
}

// Evaluate runs the quality check over the current responses
// @Summary Check feedback quality
// @Description Validates the responses and runs the quality review; returns the formatted verdict
// @Tags feedback
// @Produce json
// @Param token path string true "Access token"
// @Success 200 {object} aireview.FormattedFeedback
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /feedback/form/{token}/evaluate [post]
func (h *FeedbackHandler) Evaluate(c *gin.Context) {
	token := h.parseToken(c)
	if token == "" {
		return
	}

	h.LogRequest(c, "Running feedback quality check")

	review, err := h.sessionService.CheckWithAI(c.Request.Context(), token)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// Submit finalizes the feedback
// @Summary Submit feedback
// @Description Submits the feedback; a non-good quality verdict blocks until the assessor confirms the bypass
// @Tags feedback
// @Produce json
// @Param token path string true "Access token"
// @Success 200 {object} services.SubmitResult
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /feedback/form/{token}/submit [post]
func (h *FeedbackHandler) Submit(c *gin.Context) {
	token := h.parseToken(c)
	if token == "" {
		return
	}

	result, err := h.sessionService.Submit(c.Request.Context(), token)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ConfirmBypass submits despite an unfavorable quality verdict
// @Summary Confirm bypass
// @Description Submits the feedback after the assessor explicitly acknowledged the quality concerns
// @Tags feedback
// @Produce json
// @Param token path string true "Access token"
// @Success 200 {object} services.SubmitResult
// @Failure 422 {object} ErrorResponse
// @Router /feedback/form/{token}/submit/bypass [post]
func (h *FeedbackHandler) ConfirmBypass(c *gin.Context) {
	token := h.parseToken(c)
	if token == "" {
		return
	}

	h.LogRequest(c, "Submitting with quality bypass")

	result, err := h.sessionService.ConfirmBypass(c.Request.Context(), token)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *FeedbackHandler) parseToken(c *gin.Context) string {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid token",
			Details: "token cannot be empty",
		})
	}
	return token
}
