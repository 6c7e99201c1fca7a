package reviews

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"bookhub/internal/auth"
	"bookhub/internal/books"
	"bookhub/internal/events"
)

const minContentLen = 10

type Handler struct {
	Repo  *Repo
	Books *books.Repo
	Hub   *events.Hub
}

func NewHandler(repo *Repo, bookRepo *books.Repo, hub *events.Hub) *Handler {
	return &Handler{Repo: repo, Books: bookRepo, Hub: hub}
}

// RegisterBookRoutes mounts the per-book review endpoints on the /books group.
func (h *Handler) RegisterBookRoutes(rg *gin.RouterGroup, tokens auth.TokenService) {
	rg.POST("/:id/reviews", auth.AuthMiddleware(tokens), h.create)
	rg.GET("/:id/reviews", h.listByBook)
}

// RegisterReviewRoutes mounts the author-gated mutation endpoints.
func (h *Handler) RegisterReviewRoutes(rg *gin.RouterGroup) {
	rg.PATCH("/:id", h.update)
	rg.DELETE("/:id", h.delete)
}

type createReq struct {
	Content string `json:"content"`
	Rating  int    `json:"rating"`
}

func (h *Handler) create(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bookID := strings.TrimSpace(c.Param("id"))
	if bookID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "book id required"})
		return
	}

	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	req.Content = strings.TrimSpace(req.Content)
	if len(req.Content) < minContentLen {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content must be at least 10 chars"})
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 1 and 5"})
		return
	}

	ok, err := h.Books.Exists(c.Request.Context(), bookID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
		return
	}

	review, err := h.Repo.Create(c.Request.Context(), bookID, claims.UserID, req.Content, req.Rating)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	if h.Hub != nil {
		h.Hub.BroadcastJSON(events.ReviewEvent{
			Type:     events.TypeReviewCreated,
			ReviewID: review.ID,
			BookID:   review.BookID,
		})
	}

	c.JSON(http.StatusCreated, review)
}

func (h *Handler) listByBook(c *gin.Context) {
	bookID := strings.TrimSpace(c.Param("id"))
	if bookID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "book id required"})
		return
	}

	items, err := h.Repo.ListByBook(c.Request.Context(), bookID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	c.JSON(http.StatusOK, items)
}

type updateReq struct {
	Content *string `json:"content"`
	Rating  *int    `json:"rating"`
}

func (h *Handler) update(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	review, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	if review == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "review not found"})
		return
	}

	// ownership gates the write; nothing is applied before this check
	if review.UserID != claims.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized to update this review"})
		return
	}

	content := review.Content
	rating := review.Rating

	if req.Content != nil {
		content = strings.TrimSpace(*req.Content)
		if len(content) < minContentLen {
			c.JSON(http.StatusBadRequest, gin.H{"error": "content must be at least 10 chars"})
			return
		}
	}
	if req.Rating != nil {
		rating = *req.Rating
		if rating < 1 || rating > 5 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 1 and 5"})
			return
		}
	}

	if err := h.Repo.Update(c.Request.Context(), id, content, rating); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	updated, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil || updated == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	if h.Hub != nil {
		h.Hub.BroadcastJSON(events.ReviewEvent{
			Type:     events.TypeReviewUpdated,
			ReviewID: updated.ID,
			BookID:   updated.BookID,
		})
	}

	c.JSON(http.StatusOK, updated)
}

func (h *Handler) delete(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	review, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	if review == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "review not found"})
		return
	}

	if review.UserID != claims.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized to delete this review"})
		return
	}

	ok, err := h.Repo.Delete(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "review not found"})
		return
	}

	if h.Hub != nil {
		h.Hub.BroadcastJSON(events.ReviewEvent{
			Type:     events.TypeReviewDeleted,
			ReviewID: review.ID,
			BookID:   review.BookID,
		})
	}

	c.JSON(http.StatusOK, gin.H{"message": "review deleted"})
}

func parseID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, strconv.ErrSyntax
	}
	return id, nil
}
