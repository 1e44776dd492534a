package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/pzkpfw44/Pulse360-sub000/internal/services"
	"github.com/pzkpfw44/Pulse360-sub000/internal/utils"
)

type HandlerManager struct {
	feedbackHandler *FeedbackHandler
	campaignHandler *CampaignHandler
	employeeHandler *EmployeeHandler
	logger          utils.Logger
}

func NewHandlerManager(
	sessionService services.SessionService,
	campaignService services.CampaignService,
	employeeService services.EmployeeService,
	exportService services.ExportService,
	validator *utils.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		feedbackHandler: NewFeedbackHandler(sessionService, validator, logger),
		campaignHandler: NewCampaignHandler(campaignService, exportService, validator, logger),
		employeeHandler: NewEmployeeHandler(employeeService, logger),
		logger:          logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "feedback-service",
		})
	})

	v1 := router.Group("/api/v1")
	{
		// Assessor routes: token-authenticated, no login
		feedback := v1.Group("/feedback/form/:token")
		{
			feedback.GET("", hm.feedbackHandler.GetForm)
			feedback.PUT("/responses", hm.feedbackHandler.SetResponses)
			feedback.POST("/draft", hm.feedbackHandler.SaveDraft)
			feedback.POST("/evaluate", hm.feedbackHandler.Evaluate)
			feedback.POST("/submit", hm.feedbackHandler.Submit)
			feedback.POST("/submit/bypass", hm.feedbackHandler.ConfirmBypass)
		}

		// Admin routes: Casdoor-authenticated
		campaigns := v1.Group("/campaigns", AuthMiddleware(hm.logger))
		{
			campaigns.POST("", hm.campaignHandler.CreateCampaign)
			campaigns.GET("", hm.campaignHandler.ListCampaigns)
			campaigns.GET("/:id", hm.campaignHandler.GetCampaign)
			campaigns.PUT("/:id", hm.campaignHandler.UpdateCampaign)
			campaigns.DELETE("/:id", hm.campaignHandler.DeleteCampaign)
			campaigns.POST("/:id/activate", hm.campaignHandler.ActivateCampaign)
			campaigns.POST("/:id/complete", hm.campaignHandler.CompleteCampaign)

			campaigns.POST("/:id/assessors", hm.campaignHandler.AddAssessor)
			campaigns.GET("/:id/submissions", hm.campaignHandler.ListSubmissions)
			campaigns.POST("/:id/submissions/:submission_id/reset-token", hm.campaignHandler.ResetToken)
			campaigns.GET("/:id/export", hm.campaignHandler.ExportResults)
		}

		employees := v1.Group("/employees", AuthMiddleware(hm.logger))
		{
			employees.POST("", hm.employeeHandler.CreateEmployee)
			employees.GET("", hm.employeeHandler.ListEmployees)
			employees.GET("/:id", hm.employeeHandler.GetEmployee)
		}
	}
}
