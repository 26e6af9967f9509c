package api

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	customerrors "github.com/linkshort/linkshort/internal/errors"
	"github.com/linkshort/linkshort/internal/models"
	"github.com/linkshort/linkshort/internal/services"
)

// SetupRoutes configures all Gin API routes and injects necessary dependencies.
// The redirect route is public, link management requires authentication, and
// link creation accepts an optional identity (anonymous links are allowed).
func SetupRoutes(router *gin.Engine, linkService *services.LinkService, authService *services.AuthService, db *gorm.DB, redisClient *redis.Client) {
	// Health routes - used for monitoring service and dependency availability
	router.GET("/health", HealthCheckHandler)
	router.GET("/health/db", DBHealthHandler(db))
	router.GET("/health/redis", RedisHealthHandler(redisClient))

	// User registration and login
	router.POST("/user", RegisterUserHandler(authService))
	router.POST("/auth/login", LoginHandler(authService))

	// Link lifecycle routes
	link := router.Group("/link")
	{
		link.POST("", OptionalAuth(authService), CreateLinkHandler(linkService))
		link.GET("", RequireAuth(authService), ListLinksHandler(linkService))
		link.GET("/:hash", RedirectHandler(linkService))
		link.PATCH("/:hash", RequireAuth(authService), UpdateLinkHandler(linkService))
		link.DELETE("/:hash", RequireAuth(authService), DeleteLinkHandler(linkService))
	}
}

// HealthCheckHandler handles the /health route to verify service status.
func HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// DBHealthHandler pings the underlying SQL database.
func DBHealthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.Ping()
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// RedisHealthHandler pings the Redis server backing the click counter.
func RedisHealthHandler(client *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := client.Ping(c.Request.Context()).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// RegisterUserRequest represents the JSON request body for user registration.
type RegisterUserRequest struct {
	Name     string `json:"name" binding:"omitempty,max=100"`
	Email    string `json:"email" binding:"required,email,max=150"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// LoginRequest represents the JSON request body for login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// CreateLinkRequest represents the JSON request body for creating a link.
// expires_at is optional (RFC 3339); omitted means the link never expires.
type CreateLinkRequest struct {
	OriginalURL string     `json:"original_url" binding:"required,url"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

// UpdateLinkRequest represents the JSON request body for updating a link's
// destination.
type UpdateLinkRequest struct {
	CurrentURL string `json:"current_url" binding:"required,url"`
}

// LinkResponse is the JSON view of a link, including its derived short URL.
type LinkResponse struct {
	OriginalURL  string     `json:"original_url"`
	CurrentURL   string     `json:"current_url"`
	Hash         string     `json:"hash"`
	ShortURL     string     `json:"short_url"`
	TimesClicked int64      `json:"times_clicked"`
	UserID       *string    `json:"user_id"`
	ExpiresAt    *time.Time `json:"expires_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// newLinkResponse builds the response view for a link, deriving the short URL
// from the service's configured base URL.
func newLinkResponse(linkService *services.LinkService, link *models.Link) LinkResponse {
	return LinkResponse{
		OriginalURL:  link.OriginalURL,
		CurrentURL:   link.CurrentURL,
		Hash:         link.Hash,
		ShortURL:     linkService.ShortURL(link.Hash),
		TimesClicked: link.TimesClicked,
		UserID:       link.UserID,
		ExpiresAt:    link.ExpiresAt,
		CreatedAt:    link.CreatedAt,
		UpdatedAt:    link.UpdatedAt,
	}
}

// hashParam extracts and validates the :hash path parameter. Hashes are
// always exactly 6 characters; anything else is rejected before it reaches
// the service layer.
func hashParam(c *gin.Context) (string, bool) {
	hash := c.Param("hash")
	if len(hash) != services.HashLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Hash must be exactly 6 characters"})
		return "", false
	}
	return hash, true
}

// RegisterUserHandler handles new account creation.
func RegisterUserHandler(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}

		user, err := authService.Register(req.Name, req.Email, req.Password)
		if err != nil {
			if errors.Is(err, customerrors.ErrEmailAlreadyUsed) {
				c.JSON(http.StatusConflict, gin.H{"error": "Email is already in use"})
				return
			}
			log.Printf("Error registering user: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
			return
		}

		// models.User excludes the password hash from JSON serialization
		c.JSON(http.StatusCreated, user)
	}
}

// LoginHandler handles credential verification and token issuance.
func LoginHandler(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}

		result, err := authService.Login(req.Email, req.Password)
		if err != nil {
			if errors.Is(err, customerrors.ErrInvalidCredentials) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
				return
			}
			log.Printf("Error during login: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// CreateLinkHandler handles the creation of a shortened link. When the
// request carries a valid token the link is owned by the caller, otherwise it
// is created anonymously and can never be updated or deleted.
func CreateLinkHandler(linkService *services.LinkService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateLinkRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}

		var userID *string
		if callerID := CallerID(c); callerID != "" {
			userID = &callerID
		}

		link, err := linkService.CreateLink(req.OriginalURL, req.ExpiresAt, userID)
		if err != nil {
			if errors.Is(err, customerrors.ErrHashGenerationFailed) {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Unable to generate unique hash. Please try again later."})
				return
			}
			log.Printf("Error creating link: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create short link"})
			return
		}

		c.JSON(http.StatusCreated, newLinkResponse(linkService, link))
	}
}

// RedirectHandler resolves a hash and redirects to the current destination.
// This is the hot path: the click lands in the counter, never in the
// database, and expired links answer 410 instead of 404.
func RedirectHandler(linkService *services.LinkService) gin.HandlerFunc {
	return func(c *gin.Context) {
		hash, ok := hashParam(c)
		if !ok {
			return
		}

		destination, err := linkService.AccessLink(c.Request.Context(), hash)
		if err != nil {
			switch {
			case errors.Is(err, customerrors.ErrLinkNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Short URL not found"})
			case errors.Is(err, customerrors.ErrLinkExpired):
				c.JSON(http.StatusGone, gin.H{"error": "Link expired"})
			default:
				log.Printf("Error accessing link %s: %v", hash, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
			return
		}

		c.Redirect(http.StatusFound, destination)
	}
}

// ListLinksHandler returns every active link owned by the authenticated caller.
func ListLinksHandler(linkService *services.LinkService) gin.HandlerFunc {
	return func(c *gin.Context) {
		links, err := linkService.ListLinksByUser(CallerID(c))
		if err != nil {
			if errors.Is(err, customerrors.ErrNotAllowed) {
				c.JSON(http.StatusForbidden, gin.H{"error": "You must be logged in to list your links"})
				return
			}
			log.Printf("Error listing links: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		responses := make([]LinkResponse, 0, len(links))
		for i := range links {
			responses = append(responses, newLinkResponse(linkService, &links[i]))
		}
		c.JSON(http.StatusOK, responses)
	}
}

// UpdateLinkHandler changes the destination URL of a link owned by the caller.
func UpdateLinkHandler(linkService *services.LinkService) gin.HandlerFunc {
	return func(c *gin.Context) {
		hash, ok := hashParam(c)
		if !ok {
			return
		}

		var req UpdateLinkRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}

		link, err := linkService.UpdateLink(hash, req.CurrentURL, CallerID(c))
		if err != nil {
			switch {
			case errors.Is(err, customerrors.ErrLinkNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Short URL not found"})
			case errors.Is(err, customerrors.ErrNotAllowed):
				c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to update this link"})
			default:
				log.Printf("Error updating link %s: %v", hash, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
			return
		}

		c.JSON(http.StatusOK, newLinkResponse(linkService, link))
	}
}

// DeleteLinkHandler soft-deletes a link owned by the caller.
func DeleteLinkHandler(linkService *services.LinkService) gin.HandlerFunc {
	return func(c *gin.Context) {
		hash, ok := hashParam(c)
		if !ok {
			return
		}

		if err := linkService.DeleteLink(hash, CallerID(c)); err != nil {
			switch {
			case errors.Is(err, customerrors.ErrLinkNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Short URL not found"})
			case errors.Is(err, customerrors.ErrNotAllowed):
				c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to delete this link"})
			default:
				log.Printf("Error deleting link %s: %v", hash, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
			return
		}

		c.Status(http.StatusNoContent)
	}
}
