package controller

import (
	"context"
	"net/http"
	"strings"

	"github.com/coprra/coprra/internal/auth"
	"github.com/coprra/coprra/internal/model"
	"github.com/coprra/coprra/internal/password"
	"github.com/coprra/coprra/internal/repository"
	"github.com/gin-gonic/gin"
)

// UserRepository is the account storage the auth endpoints need.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// AuthController handles registration and login.
type AuthController struct {
	users     UserRepository
	passwords *password.Validator
	tokens    *auth.Manager
}

// NewAuthController creates a new AuthController with its dependencies.
func NewAuthController(users UserRepository, passwords *password.Validator, tokens *auth.Manager) *AuthController {
	return &AuthController{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
	}
}

// RegisterRequest represents the request body for account registration.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register handles the HTTP POST request for creating an account. The
// password policy is enforced before any storage touch.
func (ac *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := ac.passwords.Validate(req.Password)
	if !result.Valid {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":      "password does not meet the policy",
			"violations": result.Violations,
			"score":      result.Score,
		})
		return
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register"})
		return
	}

	user := &model.User{
		Name:         req.Name,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
	}
	if err := ac.users.Create(c.Request.Context(), user); err != nil {
		if repository.IsValidation(err) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data": gin.H{
			"id":    user.ID.String(),
			"name":  user.Name,
			"email": user.Email,
		},
	})
}

// LoginRequest represents the request body for authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login handles the HTTP POST request for authentication, returning a JWT on
// success. Unknown accounts and wrong passwords get the same 401.
func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := ac.users.FindByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log in"})
		return
	}
	if user == nil || !password.Verify(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := ac.tokens.Generate(user.ID.String(), user.Email, user.IsAdmin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log in"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   ac.tokens.TokenTTL(),
	})
}
