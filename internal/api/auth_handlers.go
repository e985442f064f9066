package api

import (
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/trannm/reviewbooks/internal/auth"
	"github.com/trannm/reviewbooks/internal/email"
	"github.com/trannm/reviewbooks/internal/models"
	"github.com/trannm/reviewbooks/internal/storage"
)

const verifyTokenTTL = 30 * time.Minute

// AuthHandler contains authentication handlers
type AuthHandler struct {
	db      *storage.Database
	mail    email.Sender
	baseURL string // public URL used in verification links
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *storage.Database, mail email.Sender, baseURL string) *AuthHandler {
	return &AuthHandler{db: db, mail: mail, baseURL: strings.TrimRight(baseURL, "/")}
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Register creates an unverified account and sends a verification mail
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username, email, and password are required"})
		return
	}

	// Validate username
	req.Username = strings.TrimSpace(req.Username)
	if len(req.Username) < 3 || len(req.Username) > 32 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username must be 3-32 characters"})
		return
	}

	// Validate email
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if !emailRegex.MatchString(req.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email format"})
		return
	}

	// Validate password
	if len(req.Password) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 8 characters"})
		return
	}

	// Check if user exists
	exists, err := h.db.UserExists(c.Request.Context(), req.Username, req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check user"})
		return
	}
	if exists {
		c.JSON(http.StatusConflict, gin.H{"error": "Username or email already taken"})
		return
	}

	// Hash password
	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	expires := time.Now().Add(verifyTokenTTL)
	user := &models.User{
		ID:                 uuid.New().String(),
		Username:           req.Username,
		Email:              req.Email,
		PasswordHash:       passwordHash,
		Role:               auth.RoleUser,
		EmailVerified:      false,
		VerifyToken:        uuid.New().String(),
		VerifyTokenExpires: &expires,
		CreatedAt:          time.Now(),
	}

	if err := h.db.CreateUser(c.Request.Context(), user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	verifyURL := h.baseURL + "/api/auth/verify-email?token=" + user.VerifyToken
	if err := h.mail.Send(user.Email, "Confirm your email", email.VerificationBody(user.Username, verifyURL)); err != nil {
		// The account exists either way; the token can be re-sent.
		log.Printf("Warning: failed to send verification mail to %s: %v", user.Email, err)
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful, check your email to verify the account",
		"user":    user,
	})
}

// VerifyEmail confirms an account from its verification token
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Verification token required"})
		return
	}

	user, err := h.db.GetUserByVerifyToken(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify email"})
		return
	}
	if user == nil {
		// Unknown or already-consumed token; verification clears it.
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid verification token"})
		return
	}
	if user.VerifyTokenExpires == nil || time.Now().After(*user.VerifyTokenExpires) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Verification token expired"})
		return
	}

	if err := h.db.MarkEmailVerified(c.Request.Context(), user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify email"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email verified, you can now log in"})
}

// ResendVerification issues a fresh token for an unverified account
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
		return
	}

	user, err := h.db.GetUserByEmail(c.Request.Context(), strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil || user.EmailVerified {
		// Don't reveal whether the address exists or its state.
		c.JSON(http.StatusOK, gin.H{"message": "If the account needs verification, a mail has been sent"})
		return
	}

	token := uuid.New().String()
	if err := h.db.SetVerifyToken(c.Request.Context(), user.ID, token, time.Now().Add(verifyTokenTTL)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue verification token"})
		return
	}

	verifyURL := h.baseURL + "/api/auth/verify-email?token=" + token
	if err := h.mail.Send(user.Email, "Confirm your email", email.VerificationBody(user.Username, verifyURL)); err != nil {
		log.Printf("Warning: failed to send verification mail to %s: %v", user.Email, err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "If the account needs verification, a mail has been sent"})
}

// Login handles user authentication
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	// Try to find user by username or email
	user, err := h.db.GetUserByUsername(c.Request.Context(), req.Username)
	if err != nil {
		user, err = h.db.GetUserByEmail(c.Request.Context(), strings.ToLower(req.Username))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
	}

	// Check password
	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !user.EmailVerified {
		c.JSON(http.StatusForbidden, gin.H{"error": "Email not verified"})
		return
	}

	// Generate token
	token, err := auth.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    user,
		"token":   token,
	})
}

// RefreshToken refreshes an existing token
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token is required"})
		return
	}

	newToken, err := auth.RefreshToken(req.Token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": newToken,
	})
}

// GetCurrentUser returns the currently authenticated user
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID := auth.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	user, err := h.db.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
