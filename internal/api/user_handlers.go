package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/trannm/reviewbooks/internal/auth"
	"github.com/trannm/reviewbooks/internal/models"
)

// profileFor renders an account for the current viewer. Contact details are
// only included for the account owner and admins; the public routes run
// behind optional auth, so an authenticated owner sees their own email.
func profileFor(c *gin.Context, user *models.User) gin.H {
	profile := gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"role":       user.Role,
		"created_at": user.CreatedAt,
	}
	if user.ID == auth.GetUserID(c) || auth.IsAdmin(c) {
		profile["email"] = user.Email
		profile["email_verified"] = user.EmailVerified
	}
	return profile
}

// GetUser returns a user's public profile
func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.db.GetUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, profileFor(c, user))
}

// UpdateUser edits an account's username and email; owner or admin only
func (h *Handler) UpdateUser(c *gin.Context) {
	user, err := h.db.GetUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if user.ID != auth.GetUserID(c) && !auth.IsAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only update your own profile"})
		return
	}

	var req struct {
		Username *string `json:"username"`
		Email    *string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.Username != nil {
		name := strings.TrimSpace(*req.Username)
		if len(name) < 3 || len(name) > 32 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username must be 3-32 characters"})
			return
		}
		if name != user.Username {
			if other, err := h.db.GetUserByUsername(c.Request.Context(), name); err == nil && other.ID != user.ID {
				c.JSON(http.StatusConflict, gin.H{"error": "Username already taken"})
				return
			}
			user.Username = name
		}
	}
	if req.Email != nil {
		addr := strings.TrimSpace(strings.ToLower(*req.Email))
		if !emailRegex.MatchString(addr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email format"})
			return
		}
		if addr != user.Email {
			if other, err := h.db.GetUserByEmail(c.Request.Context(), addr); err == nil && other.ID != user.ID {
				c.JSON(http.StatusConflict, gin.H{"error": "Email already taken"})
				return
			}
			user.Email = addr
		}
	}

	if err := h.db.UpdateUser(c.Request.Context(), user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	c.JSON(http.StatusOK, profileFor(c, user))
}

// ListUsers returns a page of accounts; admin only (route-guarded)
func (h *Handler) ListUsers(c *gin.Context) {
	pageNumber, pageSize := pagination(c)
	page, err := h.db.ListUsers(c.Request.Context(), pageNumber, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list users"})
		return
	}
	c.JSON(http.StatusOK, page)
}

// SetUserRole assigns a user's role; admin only (route-guarded)
func (h *Handler) SetUserRole(c *gin.Context) {
	user, err := h.db.GetUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Role is required"})
		return
	}
	if req.Role != auth.RoleUser && req.Role != auth.RoleAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
		return
	}

	user.Role = req.Role
	if err := h.db.UpdateUser(c.Request.Context(), user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	c.JSON(http.StatusOK, profileFor(c, user))
}

// DeleteUser removes an account and its content; owner or admin only
func (h *Handler) DeleteUser(c *gin.Context) {
	user, err := h.db.GetUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if user.ID != auth.GetUserID(c) && !auth.IsAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own account"})
		return
	}

	if err := h.db.DeleteUser(c.Request.Context(), user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
