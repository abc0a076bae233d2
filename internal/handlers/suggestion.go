package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/showtrail/agjournal-backend/internal/requestdata"
	"github.com/showtrail/agjournal-backend/internal/services"
)

type SuggestionHandler struct {
	suggestionService services.SuggestionService
}

func NewSuggestionHandler(suggestionService services.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{suggestionService: suggestionService}
}

// GetSuggestions serves GET /api/suggestions. All request dimensions come in
// as query parameters.
func (sh *SuggestionHandler) GetSuggestions(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	req := services.SuggestionRequest{
		Category:        c.Query("category"),
		Species:         c.Query("species"),
		Weather:         c.Query("weather"),
		CompetencyLevel: c.Query("competency_level"),
	}
	if raw := c.Query("animal_id"); raw != "" {
		animalID, err := uuid.Parse(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, services.CodeValidationError, err)
			return
		}
		req.AnimalID = &animalID
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, services.CodeValidationError, err)
			return
		}
		req.Limit = limit
	}

	resp, err := sh.suggestionService.GetSuggestions(c.Request.Context(), rd.UserID, req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, resp)
}

// GenerateEntry serves POST /api/suggestions/generate.
func (sh *SuggestionHandler) GenerateEntry(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req services.GenerateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, services.CodeValidationError, err)
		return
	}

	resp, err := sh.suggestionService.GenerateEntry(c.Request.Context(), rd.UserID, req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, resp)
}
