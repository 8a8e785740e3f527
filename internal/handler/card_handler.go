package handler

import (
	"context"
	"errors"
	"net/http"

	"taskboard/internal/feed"
	"taskboard/internal/middleware"
	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Events публикует события об изменениях строк в канал изменений
type Events interface {
	Publish(ctx context.Context, table string, owner uuid.UUID, kind feed.Kind, row any) error
	PublishDelete(ctx context.Context, table string, owner uuid.UUID, id string) error
}

type CardHandler struct {
	repo repository.CardRepositoryInterface
	pub  Events
}

func NewCardHandler(repo repository.CardRepositoryInterface, pub Events) *CardHandler {
	return &CardHandler{repo: repo, pub: pub}
}

// CardRequest представляет запрос на создание карточки
type CardRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	ColumnID    string `json:"column_id" binding:"required"`
}

// CardUpdateRequest представляет запрос на редактирование карточки
type CardUpdateRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

// CardMoveRequest представляет запрос на перемещение карточки
type CardMoveRequest struct {
	ColumnID string `json:"column_id" binding:"required"`
	Position *int   `json:"position" binding:"required"`
}

// CardReorderRequest представляет запрос на смену порядка внутри колонки
type CardReorderRequest struct {
	ColumnID string   `json:"column_id" binding:"required"`
	CardIDs  []string `json:"card_ids" binding:"required"`
}

// Create создает новую карточку в конце колонки
func (h *CardHandler) Create(c *gin.Context) {
	owner, ok := currentUser(c)
	if !ok {
		return
	}

	var req CardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	column := model.ColumnID(req.ColumnID)
	if !column.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown column"})
		return
	}

	// Позиция новой карточки - текущая длина колонки
	existing, err := h.repo.GetByColumn(c.Request.Context(), owner, column)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve cards"})
		return
	}

	card := &model.Card{
		ID:          uuid.New(),
		Owner:       owner,
		Title:       req.Title,
		Description: req.Description,
		ColumnID:    column,
		Position:    len(existing),
	}
	if err := h.repo.Create(c.Request.Context(), card); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create card"})
		return
	}
	h.publish(c, owner, feed.Created, *card)

	c.JSON(http.StatusCreated, card)
}

// GetAll возвращает все карточки пользователя, отсортированные по колонкам и позициям
func (h *CardHandler) GetAll(c *gin.Context) {
	owner, ok := currentUser(c)
	if !ok {
		return
	}

	cards, err := h.repo.GetByOwner(c.Request.Context(), owner)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve cards"})
		return
	}
	c.JSON(http.StatusOK, cards)
}

// Update редактирует заголовок и описание карточки
func (h *CardHandler) Update(c *gin.Context) {
	owner, ok := currentUser(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid card ID format"})
		return
	}

	var req CardUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	card, err := h.repo.GetByID(c.Request.Context(), owner, id)
	if err != nil {
		respondRepoError(c, err)
		return
	}

	card.Title = req.Title
	card.Description = req.Description
	if err := h.repo.Update(c.Request.Context(), card); err != nil {
		respondRepoError(c, err)
		return
	}
	h.publish(c, owner, feed.Updated, *card)

	c.JSON(http.StatusOK, card)
}

// Delete удаляет карточку и уплотняет позиции оставшихся
func (h *CardHandler) Delete(c *gin.Context) {
	owner, ok := currentUser(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid card ID format"})
		return
	}

	removed, displaced, err := h.repo.Delete(c.Request.Context(), owner, id)
	if err != nil {
		respondRepoError(c, err)
		return
	}

	// Доставка событий не влияет на ответ клиенту
	_ = h.pub.PublishDelete(c.Request.Context(), feed.TableCards, owner, removed.ID.String())
	for _, sibling := range displaced {
		h.publish(c, owner, feed.Updated, sibling)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Card deleted"})
}

// Move перемещает карточку в колонку на указанную позицию
func (h *CardHandler) Move(c *gin.Context) {
	owner, ok := currentUser(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid card ID format"})
		return
	}

	var req CardMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	column := model.ColumnID(req.ColumnID)
	if !column.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown column"})
		return
	}

	changed, err := h.repo.Move(c.Request.Context(), owner, id, column, *req.Position)
	if err != nil {
		respondRepoError(c, err)
		return
	}
	for _, card := range changed {
		h.publish(c, owner, feed.Updated, card)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Card moved"})
}

// Reorder заменяет порядок карточек колонки явной последовательностью
func (h *CardHandler) Reorder(c *gin.Context) {
	owner, ok := currentUser(c)
	if !ok {
		return
	}

	var req CardReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	column := model.ColumnID(req.ColumnID)
	if !column.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown column"})
		return
	}

	ids := make([]uuid.UUID, 0, len(req.CardIDs))
	for _, raw := range req.CardIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid card ID format"})
			return
		}
		ids = append(ids, id)
	}

	changed, err := h.repo.Reorder(c.Request.Context(), owner, column, ids)
	if err != nil {
		if errors.Is(err, repository.ErrStaleOrder) {
			// Устаревший запрос, проигравший гонку с другим изменением
			c.JSON(http.StatusConflict, gin.H{"error": "Column membership changed"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reorder cards"})
		return
	}
	for _, card := range changed {
		h.publish(c, owner, feed.Updated, card)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cards reordered"})
}

func (h *CardHandler) publish(c *gin.Context, owner uuid.UUID, kind feed.Kind, card model.Card) {
	_ = h.pub.Publish(c.Request.Context(), feed.TableCards, owner, kind, card)
}

// currentUser извлекает ID аутентифицированного пользователя из контекста
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return uuid.Nil, false
	}
	id, ok := raw.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return uuid.Nil, false
	}
	return id, true
}

func respondRepoError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrCardNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Card not found"})
		return
	}
	if errors.Is(err, repository.ErrTodoNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "DB error"})
}
