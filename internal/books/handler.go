package books

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bookhub/internal/events"
	"bookhub/pkg/models"
)

type Handler struct {
	Repo *Repo
	Hub  *events.Hub
}

func NewHandler(repo *Repo, hub *events.Hub) *Handler {
	return &Handler{Repo: repo, Hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.create)       // POST /books
	rg.GET("", h.list)          // GET /books
	rg.GET("/:id", h.getByID)   // GET /books/:id
	rg.PATCH("/:id", h.update)  // PATCH /books/:id
	rg.DELETE("/:id", h.delete) // DELETE /books/:id
}

type createReq struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Author = strings.TrimSpace(req.Author)

	if req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title required"})
		return
	}
	if req.Author == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "author required"})
		return
	}

	// advisory duplicate check; the unique index holds under races
	if b, _ := h.Repo.FindByTitleAuthor(c.Request.Context(), req.Title, req.Author); b != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "book already exists"})
		return
	}

	b := models.Book{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Author:      req.Author,
		Description: strings.TrimSpace(req.Description),
	}

	if err := h.Repo.Create(c.Request.Context(), b); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	created, err := h.Repo.GetByID(c.Request.Context(), b.ID)
	if err != nil || created == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	if h.Hub != nil {
		h.Hub.BroadcastJSON(events.BookEvent{Type: events.TypeBookCreated, BookID: b.ID})
	}

	c.JSON(http.StatusCreated, created)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Repo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	c.JSON(http.StatusOK, items)
}

func (h *Handler) getByID(c *gin.Context) {
	id := c.Param("id")

	b, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	if b == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
		return
	}

	c.JSON(http.StatusOK, b)
}

type updateReq struct {
	Title       *string `json:"title"`
	Author      *string `json:"author"`
	Description *string `json:"description"`
}

func (h *Handler) update(c *gin.Context) {
	id := c.Param("id")

	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	existing, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
		return
	}

	next := existing.Book
	changed := false

	if req.Title != nil && strings.TrimSpace(*req.Title) != next.Title {
		next.Title = strings.TrimSpace(*req.Title)
		changed = true
	}
	if req.Author != nil && strings.TrimSpace(*req.Author) != next.Author {
		next.Author = strings.TrimSpace(*req.Author)
		changed = true
	}
	if req.Description != nil && *req.Description != next.Description {
		next.Description = *req.Description
		changed = true
	}

	if !changed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no changes detected"})
		return
	}

	if next.Title == "" || next.Author == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and author must not be empty"})
		return
	}

	if err := h.Repo.Update(c.Request.Context(), next); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	updated, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil || updated == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("id")

	ok, err := h.Repo.Delete(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
		return
	}

	if h.Hub != nil {
		h.Hub.BroadcastJSON(events.BookEvent{Type: events.TypeBookDeleted, BookID: id})
	}

	c.JSON(http.StatusOK, gin.H{"message": "book deleted"})
}
