package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/trannm/reviewbooks/internal/auth"
	"github.com/trannm/reviewbooks/internal/models"
)

// AddFavorite marks a book as a favorite of the current user
func (h *Handler) AddFavorite(c *gin.Context) {
	bookID := c.Param("bookId")

	book, err := h.resolver.Resolve(c.Request.Context(), bookID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load book"})
		return
	}
	if book == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
		return
	}

	fav := &models.Favorite{
		UserID:    auth.GetUserID(c),
		BookID:    bookID,
		CreatedAt: time.Now(),
	}
	if err := h.db.AddFavorite(c.Request.Context(), fav); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add favorite"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Book favorited"})
}

// RemoveFavorite removes a book from the current user's favorites
func (h *Handler) RemoveFavorite(c *gin.Context) {
	if err := h.db.RemoveFavorite(c.Request.Context(), auth.GetUserID(c), c.Param("bookId")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove favorite"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Favorite removed"})
}

// ListFavorites returns a page of the current user's favorite books
func (h *Handler) ListFavorites(c *gin.Context) {
	pageNumber, pageSize := pagination(c)
	page, err := h.db.ListFavoriteBooks(c.Request.Context(), auth.GetUserID(c), pageNumber, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list favorites"})
		return
	}
	c.JSON(http.StatusOK, page)
}

// CheckFavorite reports whether the current user has favorited a book
func (h *Handler) CheckFavorite(c *gin.Context) {
	favorited, err := h.db.IsFavorite(c.Request.Context(), auth.GetUserID(c), c.Param("bookId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check favorite"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorited": favorited})
}
