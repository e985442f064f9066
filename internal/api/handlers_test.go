package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trannm/reviewbooks/internal/auth"
	"github.com/trannm/reviewbooks/internal/catalog"
	"github.com/trannm/reviewbooks/internal/models"
	"github.com/trannm/reviewbooks/internal/storage"
)

const volumeJSON = `{
	"id": "vol1",
	"volumeInfo": {
		"title": "The Go Programming Language",
		"authors": ["Alan Donovan", "Brian Kernighan"],
		"averageRating": 4.5,
		"ratingsCount": 120
	}
}`

// setupTestHandler creates a handler backed by a temporary database and a
// stubbed catalog server.
func setupTestHandler(t *testing.T, catalogFn http.HandlerFunc) (*Handler, func()) {
	tmpFile, err := os.CreateTemp("", "reviewbooks-test-*.db")
	require.NoError(t, err)
	tmpFile.Close()

	db, err := storage.NewDatabase(tmpFile.Name())
	require.NoError(t, err)

	server := httptest.NewServer(catalogFn)
	resolver := catalog.NewResolver(db, catalog.NewClient(), catalog.Config{BaseURL: server.URL})
	handler := NewHandler(db, resolver)

	cleanup := func() {
		server.Close()
		db.Close()
		os.Remove(tmpFile.Name())
	}

	return handler, cleanup
}

// setupTestUser creates a verified user directly in the database
func setupTestUser(t *testing.T, handler *Handler, username string) string {
	user := &models.User{
		ID:            uuid.New().String(),
		Username:      username,
		Email:         username + "@example.com",
		PasswordHash:  "hashedpassword",
		Role:          auth.RoleUser,
		EmailVerified: true,
		CreatedAt:     time.Now(),
	}
	require.NoError(t, handler.db.CreateUser(context.Background(), user))
	return user.ID
}

// testContext builds a gin context around a real request. A non-nil body is
// marshaled to JSON.
func testContext(method, target string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	return c, w
}

func authenticate(c *gin.Context, userID, username, role string) {
	c.Set(auth.ContextUserID, userID)
	c.Set(auth.ContextUsername, username)
	c.Set(auth.ContextRole, role)
}

func TestGetBookFetchesAndCaches(t *testing.T) {
	requests := 0
	handler, cleanup := setupTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(volumeJSON))
	})
	defer cleanup()

	c, w := testContext(http.MethodGet, "/api/books/vol1", nil)
	c.Params = gin.Params{{Key: "id", Value: "vol1"}}
	handler.GetBook(c)

	require.Equal(t, http.StatusOK, w.Code)
	var book models.Book
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &book))
	assert.Equal(t, "vol1", book.ID)
	require.NotNil(t, book.Title)
	assert.Equal(t, "The Go Programming Language", *book.Title)
	assert.Equal(t, 1, requests)

	// Record and snapshot are now cached
	cached, err := handler.db.GetBook(context.Background(), "vol1")
	require.NoError(t, err)
	require.NotNil(t, cached)
	snap, err := handler.db.GetSnapshot(context.Background(), "vol1")
	require.NoError(t, err)
	require.NotNil(t, snap)

	// Second request is served from the cache
	c, w = testContext(http.MethodGet, "/api/books/vol1", nil)
	c.Params = gin.Params{{Key: "id", Value: "vol1"}}
	handler.GetBook(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, requests)
}

func TestGetBookUpstreamFailure(t *testing.T) {
	handler, cleanup := setupTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})
	defer cleanup()

	c, w := testContext(http.MethodGet, "/api/books/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	handler.GetBook(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchBooks(t *testing.T) {
	envelope := `{
		"totalItems": 42,
		"items": [
			{"id": "a1", "volumeInfo": {"title": "First"}},
			{"id": "a2", "volumeInfo": {"title": "Second"}}
		]
	}`
	handler, cleanup := setupTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "go", r.URL.Query().Get("q"))
		w.Write([]byte(envelope))
	})
	defer cleanup()

	c, w := testContext(http.MethodGet, "/api/books?search=go&pageSize=2", nil)
	handler.SearchBooks(c)

	require.Equal(t, http.StatusOK, w.Code)
	var page models.Page[models.Book]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 42, page.TotalCount)
	require.Len(t, page.Items, 2)

	// Every result item was cached along the way
	cached, err := handler.db.GetBook(context.Background(), "a2")
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, "Second", *cached.Title)
}

func TestCreateReviewUpdatesSystemRating(t *testing.T) {
	handler, cleanup := setupTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(volumeJSON))
	})
	defer cleanup()

	userID := setupTestUser(t, handler, "reviewer")

	c, w := testContext(http.MethodPost, "/api/reviews", gin.H{
		"book_id": "vol1",
		"rating":  5,
		"comment": "Excellent",
	})
	authenticate(c, userID, "reviewer", auth.RoleUser)
	handler.CreateReview(c)

	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Review
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "reviewer", created.Username)

	book, err := handler.db.GetBook(context.Background(), "vol1")
	require.NoError(t, err)
	require.NotNil(t, book)
	require.NotNil(t, book.SystemAverageRating)
	assert.Equal(t, 5.0, *book.SystemAverageRating)
	assert.Equal(t, 1, book.SystemRatingsCount)
	// Provider rating is untouched
	require.NotNil(t, book.AverageRating)
	assert.Equal(t, 4.5, *book.AverageRating)
}

func TestCreateReviewInvalidRating(t *testing.T) {
	handler, cleanup := setupTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("catalog should not be called for an invalid rating")
	})
	defer cleanup()

	userID := setupTestUser(t, handler, "reviewer")

	c, w := testContext(http.MethodPost, "/api/reviews", gin.H{
		"book_id": "vol1",
		"rating":  6,
	})
	authenticate(c, userID, "reviewer", auth.RoleUser)
	handler.CreateReview(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteReviewOwnership(t *testing.T) {
	handler, cleanup := setupTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(volumeJSON))
	})
	defer cleanup()

	ownerID := setupTestUser(t, handler, "owner")
	otherID := setupTestUser(t, handler, "other")

	review := &models.Review{
		ID:        uuid.New().String(),
		BookID:    "vol1",
		UserID:    ownerID,
		Rating:    4,
		CreatedAt: time.Now(),
	}
	require.NoError(t, handler.db.CreateReview(context.Background(), review))

	// Another regular user cannot delete it
	c, w := testContext(http.MethodDelete, "/api/reviews/"+review.ID, nil)
	c.Params = gin.Params{{Key: "id", Value: review.ID}}
	authenticate(c, otherID, "other", auth.RoleUser)
	handler.DeleteReview(c)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// An admin can
	c, w = testContext(http.MethodDelete, "/api/reviews/"+review.ID, nil)
	c.Params = gin.Params{{Key: "id", Value: review.ID}}
	authenticate(c, otherID, "other", auth.RoleAdmin)
	handler.DeleteReview(c)
	assert.Equal(t, http.StatusOK, w.Code)

	deleted, err := handler.db.GetReview(context.Background(), review.ID)
	require.NoError(t, err)
	assert.Nil(t, deleted)
}

func TestFavoriteRoundTrip(t *testing.T) {
	handler, cleanup := setupTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(volumeJSON))
	})
	defer cleanup()

	userID := setupTestUser(t, handler, "collector")

	c, w := testContext(http.MethodPost, "/api/favorites/vol1", nil)
	c.Params = gin.Params{{Key: "bookId", Value: "vol1"}}
	authenticate(c, userID, "collector", auth.RoleUser)
	handler.AddFavorite(c)
	require.Equal(t, http.StatusCreated, w.Code)

	c, w = testContext(http.MethodGet, "/api/favorites", nil)
	authenticate(c, userID, "collector", auth.RoleUser)
	handler.ListFavorites(c)
	require.Equal(t, http.StatusOK, w.Code)

	var page models.Page[models.Book]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 1, page.TotalCount)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "vol1", page.Items[0].ID)

	c, w = testContext(http.MethodDelete, "/api/favorites/vol1", nil)
	c.Params = gin.Params{{Key: "bookId", Value: "vol1"}}
	authenticate(c, userID, "collector", auth.RoleUser)
	handler.RemoveFavorite(c)
	assert.Equal(t, http.StatusOK, w.Code)
}
