package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/showtrail/agjournal-backend/internal/repos"
	"github.com/showtrail/agjournal-backend/internal/requestdata"
)

// JournalHandler is a read-only projection over the caller's journal entries.
type JournalHandler struct {
	journalRepo repos.JournalEntryRepo
}

func NewJournalHandler(journalRepo repos.JournalEntryRepo) *JournalHandler {
	return &JournalHandler{journalRepo: journalRepo}
}

func (jh *JournalHandler) ListEntries(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	entries, err := jh.journalRepo.ListByUser(c.Request.Context(), nil, rd.UserID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "", err)
		return
	}
	RespondOK(c, gin.H{"entries": entries})
}
