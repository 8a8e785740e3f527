package handler

import (
	"net/http"
	"time"

	"taskboard/internal/feed"
	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
)

type NoteHandler struct {
	repo *repository.NoteRepository
	pub  Events
}

func NewNoteHandler(repo *repository.NoteRepository, pub Events) *NoteHandler {
	return &NoteHandler{repo: repo, pub: pub}
}

// NoteRequest представляет запрос на сохранение заметок
type NoteRequest struct {
	Content string `json:"content"`
}

// Get возвращает единственную заметку пользователя
func (h *NoteHandler) Get(c *gin.Context) {
	owner, ok := currentUser(c)
	if !ok {
		return
	}

	note, err := h.repo.GetByOwner(c.Request.Context(), owner)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve note"})
		return
	}
	if note == nil {
		note = &model.Note{Owner: owner}
	}
	c.JSON(http.StatusOK, note)
}

// Put сохраняет заметку целиком (upsert единственной строки)
func (h *NoteHandler) Put(c *gin.Context) {
	owner, ok := currentUser(c)
	if !ok {
		return
	}

	var req NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	note := &model.Note{Owner: owner, Content: req.Content, UpdatedAt: time.Now().UTC()}
	if err := h.repo.Upsert(c.Request.Context(), note); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save note"})
		return
	}
	_ = h.pub.Publish(c.Request.Context(), feed.TableNotes, owner, feed.Updated, *note)

	c.JSON(http.StatusOK, note)
}
