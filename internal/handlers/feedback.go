package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/showtrail/agjournal-backend/internal/requestdata"
	"github.com/showtrail/agjournal-backend/internal/services"
)

type FeedbackHandler struct {
	feedbackService services.FeedbackService
	trendService    services.TrendService
}

func NewFeedbackHandler(feedbackService services.FeedbackService, trendService services.TrendService) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackService: feedbackService,
		trendService:    trendService,
	}
}

// Record serves POST /api/suggestions/feedback.
func (fh *FeedbackHandler) Record(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var in services.FeedbackInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, http.StatusBadRequest, services.CodeValidationError, err)
		return
	}
	if in.SessionID == "" {
		in.SessionID = rd.SessionID
	}

	result, err := fh.feedbackService.Record(c.Request.Context(), rd.UserID, in)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}

// Engagement serves GET /api/suggestions/insights/engagement.
func (fh *FeedbackHandler) Engagement(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	trend, err := fh.trendService.EngagementTrend(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, trend)
}

// TemplatePerformance serves GET /api/templates/:id/performance.
func (fh *FeedbackHandler) TemplatePerformance(c *gin.Context) {
	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, services.CodeValidationError, err)
		return
	}
	change, err := fh.trendService.TemplatePerformanceChange(c.Request.Context(), templateID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, change)
}

// TemplateImprovements serves GET /api/templates/:id/improvements.
func (fh *FeedbackHandler) TemplateImprovements(c *gin.Context) {
	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, services.CodeValidationError, err)
		return
	}
	suggestions, phrases, err := fh.trendService.ImprovementSuggestions(c.Request.Context(), templateID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"suggestions":          suggestions,
		"modification_phrases": phrases,
	})
}
