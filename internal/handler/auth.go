// internal/handler/auth.go
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"finance-tracker/internal/apierr"
	"finance-tracker/internal/auth"
	"finance-tracker/internal/middleware"
	"finance-tracker/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthHandler struct {
	store  storage.UserStorage
	tokens *auth.TokenService
}

func NewAuthHandler(store storage.UserStorage, tokens *auth.TokenService) *AuthHandler {
	return &AuthHandler{store: store, tokens: tokens}
}

type credentials struct {
	Username string `json:"username" validate:"required,notblank,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// Register godoc
// @Summary Create an account
// @Param request body credentials true "Username and password"
// @Success 200 {object} map[string]string{"token":"..."}
// @Failure 400,409 {object} apierr.Envelope
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req credentials
	if !bindJSON(c, &req, nil) {
		return
	}

	_, err := h.store.FindUserByUsername(c.Request.Context(), req.Username)
	if err == nil {
		respondError(c, http.StatusConflict, apierr.CodeUserExists, "User already exists", nil)
		return
	}
	if !errors.Is(err, storage.ErrNotFound) {
		internalError(c, err, "find user failed")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		internalError(c, err, "hash password failed")
		return
	}
	user, err := h.store.CreateUser(c.Request.Context(), req.Username, hash)
	if errors.Is(err, storage.ErrConflict) {
		respondError(c, http.StatusConflict, apierr.CodeUserExists, "User already exists", nil)
		return
	}
	if err != nil {
		internalError(c, err, "create user failed")
		return
	}

	slog.Info("user registered", "user_id", user.ID)
	h.issueToken(c, user.ID)
}

// Login godoc
// @Summary Exchange credentials for a token
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentials
	if !bindJSON(c, &req, nil) {
		return
	}

	user, err := h.store.FindUserByUsername(c.Request.Context(), req.Username)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(c, http.StatusUnauthorized, apierr.CodeInvalidCredentials, "Invalid credentials", nil)
		return
	}
	if err != nil {
		internalError(c, err, "find user failed")
		return
	}
	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		respondError(c, http.StatusUnauthorized, apierr.CodeInvalidCredentials, "Invalid credentials", nil)
		return
	}

	h.issueToken(c, user.ID)
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.store.GetUser(c.Request.Context(), userID(c))
	if err != nil {
		storageError(c, err, "User")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": user.ID, "username": user.Username})
}

func (h *AuthHandler) issueToken(c *gin.Context, id uuid.UUID) {
	token, err := h.tokens.GenerateToken(id)
	if err != nil {
		internalError(c, err, "token generation failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func userID(c *gin.Context) uuid.UUID {
	return middleware.UserID(c)
}
