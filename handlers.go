package main

import (
	"net/http"
	"strings"

	"assettrack/models"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserKey    = "user"
	ctxSessionKey = "session"
)

func setupRoutes(r *gin.Engine) {
	r.POST("/signup", signupHandler)
	r.POST("/login", loginHandler)
	authGroup := r.Group("")
	authGroup.Use(sessionAuthMiddleware())
	authGroup.POST("/logout", logoutHandler)
	authGroup.GET("/dashboard", dashboardHandler)
	authGroup.GET("/assets", listAssetsHandler)
	authGroup.POST("/assets", createAssetHandler)
	authGroup.GET("/assets/:id", getAssetHandler)
	authGroup.PUT("/assets/:id", updateAssetHandler)
	authGroup.DELETE("/assets/:id", deleteAssetHandler)
	authGroup.POST("/assets/:id/documents", uploadDocumentsHandler)
	authGroup.GET("/documents/:id/download", downloadDocumentHandler)
	authGroup.DELETE("/documents/:id", deleteDocumentHandler)
	authGroup.GET("/activity", activityLogHandler)
	authGroup.GET("/api/chart-data", chartDataHandler)
}

// sessionAuthMiddleware authenticates the bearer session token and attaches
// the user and session rows to the request context.
func sessionAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			c.Abort()
			return
		}
		session, user, err := lookupSession(authHeader[7:])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
			c.Abort()
			return
		}
		c.Set(ctxUserKey, user)
		c.Set(ctxSessionKey, session)
		c.Next()
	}
}

// currentUser fetches the authenticated user attached by sessionAuthMiddleware.
func currentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

// getClientIP prefers the first X-Forwarded-For entry, falling back to the
// connection remote address.
func getClientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.SplitN(xff, ",", 2)[0])
	}
	return c.ClientIP()
}

func signupHandler(c *gin.Context) {
	var req struct {
		Username        string `json:"username" binding:"required"`
		Email           string `json:"email" binding:"required,email"`
		Password        string `json:"password" binding:"required"`
		PasswordConfirm string `json:"password_confirm" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Password != req.PasswordConfirm {
		c.JSON(http.StatusBadRequest, gin.H{"error": "passwords do not match"})
		return
	}
	if err := Register(req.Username, req.Email, req.Password); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user registered successfully"})
}

func loginHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := Authenticate(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	token, err := issueSession(&user, getClientIP(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "login successful", "token": token})
}

func logoutHandler(c *gin.Context) {
	v, _ := c.Get(ctxSessionKey)
	session, ok := v.(*models.Session)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "context missing session"})
		return
	}
	if err := revokeSession(session); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
