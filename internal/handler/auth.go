package handler

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/motor-health-dashboard/internal/config"
	"github.com/iliyamo/motor-health-dashboard/internal/middleware"
	"github.com/iliyamo/motor-health-dashboard/internal/model"
	"github.com/iliyamo/motor-health-dashboard/internal/repository"
	"github.com/iliyamo/motor-health-dashboard/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type registerReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"` // engineer | admin
}
type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

type userPart struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}
type authResp struct {
	User         userPart `json:"user"`
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
}

// issueTokens creates an access/refresh pair and stores the refresh token
// as the single active one for the user. The Redis TTL matches the token
// lifetime, so the store expires stale sessions on its own.
func (h *AuthHandler) issueTokens(ctx context.Context, userID uint64, username, role string) (authResp, error) {
	access, err := utils.NewAccessToken(h.Cfg.AccessSecret, userID, username, role, h.Cfg.AccessTTLMin)
	if err != nil {
		return authResp{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshSecret, userID, h.Cfg.RefreshTTLDays)
	if err != nil {
		return authResp{}, err
	}
	ttl := time.Duration(h.Cfg.RefreshTTLDays) * 24 * time.Hour
	if err := h.Tokens.StoreRefresh(ctx, userID, refresh.Token, ttl); err != nil {
		return authResp{}, err
	}
	return authResp{
		User:         userPart{Username: username, Role: role},
		AccessToken:  access.Token,
		RefreshToken: refresh.Token,
	}, nil
}

// Register creates a user and returns tokens immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role != model.RoleAdmin {
		role = model.RoleEngineer
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), opTimeout)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Username, req.Password, role, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Username already exists"})
		}
		log.Printf("[AUTH] register error: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Registration failed"})
	}

	resp, err := h.issueTokens(ctx, uid, req.Username, role)
	if err != nil {
		log.Printf("[AUTH] register token issue error: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Registration failed"})
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login verifies credentials and returns a fresh token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), opTimeout)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid username or password"})
		}
		log.Printf("[AUTH] login query error: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Login failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid username or password"})
	}

	resp, err := h.issueTokens(ctx, u.ID, u.Username, u.Role)
	if err != nil {
		log.Printf("[AUTH] login token issue error: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Login failed"})
	}
	return c.JSON(http.StatusOK, resp)
}

// Refresh exchanges a valid refresh token for a new access token. The
// presented token must verify AND match the single stored value for the
// user; anything else is rejected. The refresh token is not rotated here,
// so there is exactly one active refresh token per user until logout or
// the next login.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refreshToken required"})
	}
	raw := strings.TrimSpace(req.RefreshToken)

	userID, err := utils.ParseRefreshToken(h.Cfg.RefreshSecret, raw)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid refresh token"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), opTimeout)
	defer cancel()

	stored, err := h.Tokens.GetRefresh(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Expired out of Redis or revoked by logout.
			return c.JSON(http.StatusForbidden, echo.Map{"error": "Refresh token expired or revoked"})
		}
		log.Printf("[AUTH] refresh lookup error: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Refresh failed"})
	}
	if stored != raw {
		// Signed but superseded by a newer login elsewhere.
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Refresh token mismatch"})
	}

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "Refresh token mismatch"})
		}
		log.Printf("[AUTH] refresh user load error: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Refresh failed"})
	}

	access, err := utils.NewAccessToken(h.Cfg.AccessSecret, u.ID, u.Username, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		log.Printf("[AUTH] refresh token issue error: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Refresh failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"accessToken": access.Token})
}

// Logout deletes the stored refresh token for the authenticated user,
// ending the session on every device at once (protected route).
func (h *AuthHandler) Logout(c echo.Context) error {
	uid, ok := c.Get(middleware.CtxUserID).(uint64)
	if !ok || uid == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), opTimeout)
	defer cancel()
	if err := h.Tokens.DeleteRefresh(ctx, uid); err != nil {
		log.Printf("[AUTH] logout error: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Logout failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out"})
}

// Verify is a simple protected endpoint the UI uses to validate a stored
// access token after a reload.
func (h *AuthHandler) Verify(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"valid": true,
		"user": echo.Map{
			"username": c.Get(middleware.CtxUsername),
			"role":     c.Get(middleware.CtxRole),
		},
	})
}
