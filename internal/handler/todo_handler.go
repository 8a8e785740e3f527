package handler

import (
	"errors"
	"net/http"

	"taskboard/internal/feed"
	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TodoHandler struct {
	repo *repository.TodoRepository
	pub  Events
}

func NewTodoHandler(repo *repository.TodoRepository, pub Events) *TodoHandler {
	return &TodoHandler{repo: repo, pub: pub}
}

// TodoRequest представляет запрос на создание пункта списка
type TodoRequest struct {
	Text string `json:"text" binding:"required"`
}

// Create добавляет пункт в список
func (h *TodoHandler) Create(c *gin.Context) {
	owner, ok := currentUser(c)
	if !ok {
		return
	}

	var req TodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	todo := &model.Todo{
		ID:    uuid.New(),
		Owner: owner,
		Text:  req.Text,
	}
	if err := h.repo.Create(c.Request.Context(), todo); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create todo"})
		return
	}
	_ = h.pub.Publish(c.Request.Context(), feed.TableTodos, owner, feed.Created, *todo)

	c.JSON(http.StatusCreated, todo)
}

// GetAll возвращает все пункты пользователя
func (h *TodoHandler) GetAll(c *gin.Context) {
	owner, ok := currentUser(c)
	if !ok {
		return
	}

	todos, err := h.repo.GetByOwner(c.Request.Context(), owner)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve todos"})
		return
	}
	c.JSON(http.StatusOK, todos)
}

// Toggle переключает флаг выполнения
func (h *TodoHandler) Toggle(c *gin.Context) {
	owner, ok := currentUser(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid todo ID format"})
		return
	}

	todo, err := h.repo.GetByID(c.Request.Context(), owner, id)
	if err != nil {
		respondRepoError(c, err)
		return
	}

	todo.Completed = !todo.Completed
	if err := h.repo.Update(c.Request.Context(), todo); err != nil {
		respondRepoError(c, err)
		return
	}
	_ = h.pub.Publish(c.Request.Context(), feed.TableTodos, owner, feed.Updated, *todo)

	c.JSON(http.StatusOK, todo)
}

// Delete удаляет пункт списка
func (h *TodoHandler) Delete(c *gin.Context) {
	owner, ok := currentUser(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid todo ID format"})
		return
	}

	if err := h.repo.Delete(c.Request.Context(), owner, id); err != nil {
		if errors.Is(err, repository.ErrTodoNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "DB error"})
		return
	}
	_ = h.pub.PublishDelete(c.Request.Context(), feed.TableTodos, owner, id.String())

	c.JSON(http.StatusOK, gin.H{"message": "Todo deleted"})
}
