package api

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/trannm/reviewbooks/internal/auth"
	"github.com/trannm/reviewbooks/internal/models"
)

// CreatePost starts a new forum thread
func (h *Handler) CreatePost(c *gin.Context) {
	var req struct {
		Title   string `json:"title" binding:"required"`
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and content are required"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title must not be blank"})
		return
	}

	post := &models.ForumPost{
		ID:        uuid.New().String(),
		Title:     req.Title,
		Content:   req.Content,
		UserID:    auth.GetUserID(c),
		CreatedAt: time.Now(),
		Username:  auth.GetUsername(c),
	}
	if err := h.db.CreatePost(c.Request.Context(), post); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	c.JSON(http.StatusCreated, post)
}

// ListPosts returns a page of threads, pinned first
func (h *Handler) ListPosts(c *gin.Context) {
	pageNumber, pageSize := pagination(c)
	page, err := h.db.ListPosts(c.Request.Context(), pageNumber, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list posts"})
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetPost returns a thread and bumps its view counter
func (h *Handler) GetPost(c *gin.Context) {
	post, err := h.db.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load post"})
		return
	}
	if post == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	if err := h.db.IncrementPostViews(c.Request.Context(), post.ID); err != nil {
		log.Printf("Warning: failed to count view for post %s: %v", post.ID, err)
	} else {
		post.ViewCount++
	}

	c.JSON(http.StatusOK, post)
}

// UpdatePost edits a thread; owner or admin only
func (h *Handler) UpdatePost(c *gin.Context) {
	post, err := h.db.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load post"})
		return
	}
	if post == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	if post.UserID != auth.GetUserID(c) && !auth.IsAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only update your own posts"})
		return
	}

	var req struct {
		Title   *string `json:"title"`
		Content *string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		post.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	now := time.Now()
	post.UpdatedAt = &now

	if err := h.db.UpdatePost(c.Request.Context(), post); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update post"})
		return
	}

	c.JSON(http.StatusOK, post)
}

// DeletePost removes a thread; owner or admin only
func (h *Handler) DeletePost(c *gin.Context) {
	post, err := h.db.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load post"})
		return
	}
	if post == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	if post.UserID != auth.GetUserID(c) && !auth.IsAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own posts"})
		return
	}

	if err := h.db.DeletePost(c.Request.Context(), post.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}

// ModeratePost sets the pinned/locked flags; admin only (route-guarded)
func (h *Handler) ModeratePost(c *gin.Context) {
	post, err := h.db.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load post"})
		return
	}
	if post == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	var req struct {
		Pinned *bool `json:"pinned"`
		Locked *bool `json:"locked"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Pinned != nil {
		post.IsPinned = *req.Pinned
	}
	if req.Locked != nil {
		post.IsLocked = *req.Locked
	}

	if err := h.db.SetPostFlags(c.Request.Context(), post.ID, post.IsPinned, post.IsLocked); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update post"})
		return
	}

	c.JSON(http.StatusOK, post)
}

// CreateComment replies to a thread; rejected when the thread is locked
func (h *Handler) CreateComment(c *gin.Context) {
	post, err := h.db.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load post"})
		return
	}
	if post == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	if post.IsLocked {
		c.JSON(http.StatusForbidden, gin.H{"error": "Post is locked"})
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Content is required"})
		return
	}

	comment := &models.ForumComment{
		ID:        uuid.New().String(),
		PostID:    post.ID,
		UserID:    auth.GetUserID(c),
		Content:   req.Content,
		CreatedAt: time.Now(),
		Username:  auth.GetUsername(c),
	}
	if err := h.db.CreateComment(c.Request.Context(), comment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// ListComments returns a page of replies for a thread, oldest first
func (h *Handler) ListComments(c *gin.Context) {
	pageNumber, pageSize := pagination(c)
	page, err := h.db.ListComments(c.Request.Context(), c.Param("id"), pageNumber, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list comments"})
		return
	}
	c.JSON(http.StatusOK, page)
}

// UpdateComment edits a reply; owner or admin only
func (h *Handler) UpdateComment(c *gin.Context) {
	comment, err := h.db.GetComment(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load comment"})
		return
	}
	if comment == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}
	if comment.UserID != auth.GetUserID(c) && !auth.IsAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only update your own comments"})
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Content is required"})
		return
	}
	comment.Content = req.Content
	now := time.Now()
	comment.UpdatedAt = &now

	if err := h.db.UpdateComment(c.Request.Context(), comment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update comment"})
		return
	}

	c.JSON(http.StatusOK, comment)
}

// DeleteComment removes a reply; owner or admin only
func (h *Handler) DeleteComment(c *gin.Context) {
	comment, err := h.db.GetComment(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load comment"})
		return
	}
	if comment == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}
	if comment.UserID != auth.GetUserID(c) && !auth.IsAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own comments"})
		return
	}

	if err := h.db.DeleteComment(c.Request.Context(), comment.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}
