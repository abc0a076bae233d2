package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/showtrail/agjournal-backend/internal/repos"
	"github.com/showtrail/agjournal-backend/internal/requestdata"
)

// AnimalHandler is a read-only projection over the caller's animals. It backs
// client pickers for the suggestion request's animal_id dimension.
type AnimalHandler struct {
	animalRepo repos.AnimalRepo
}

func NewAnimalHandler(animalRepo repos.AnimalRepo) *AnimalHandler {
	return &AnimalHandler{animalRepo: animalRepo}
}

func (ah *AnimalHandler) List(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	animals, err := ah.animalRepo.ListByOwner(c.Request.Context(), nil, rd.UserID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "", err)
		return
	}
	RespondOK(c, gin.H{"animals": animals})
}
