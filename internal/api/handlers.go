package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/trannm/reviewbooks/internal/catalog"
	"github.com/trannm/reviewbooks/internal/storage"
)

// Handler contains the book endpoints
type Handler struct {
	db       *storage.Database
	resolver *catalog.Resolver
}

// NewHandler creates a new handler
func NewHandler(db *storage.Database, resolver *catalog.Resolver) *Handler {
	return &Handler{db: db, resolver: resolver}
}

// HealthCheck returns server status
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetBook resolves a book by its catalog volume id
func (h *Handler) GetBook(c *gin.Context) {
	id := c.Param("id")

	book, err := h.resolver.Resolve(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load book"})
		return
	}
	if book == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
		return
	}

	c.JSON(http.StatusOK, book)
}

// SearchBooks searches the catalog and returns a page of books
func (h *Handler) SearchBooks(c *gin.Context) {
	query := catalog.SearchQuery{
		Term:       c.Query("search"),
		PageNumber: intQuery(c, "pageNumber"),
		PageSize:   intQuery(c, "pageSize"),
		SortBy:     c.Query("sortBy"),
		FilterBy:   c.Query("filterBy"),
	}

	page, err := h.resolver.Search(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}

	c.JSON(http.StatusOK, page)
}

// intQuery parses an integer query parameter, 0 when absent or malformed
func intQuery(c *gin.Context, name string) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return n
}

// pagination returns normalized pageNumber and pageSize for local listings
func pagination(c *gin.Context) (int, int) {
	pageNumber := intQuery(c, "pageNumber")
	if pageNumber <= 0 {
		pageNumber = 1
	}
	pageSize := intQuery(c, "pageSize")
	if pageSize <= 0 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return pageNumber, pageSize
}
