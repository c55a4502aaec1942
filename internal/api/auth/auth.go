package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	coreauth "tasktracker/internal/auth"
	"tasktracker/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// CredentialService 校验与创建用户凭证（由 internal/auth.Service 实现）。
type CredentialService interface {
	SignUp(ctx context.Context, username, password string) (uint, error)
	ValidateCredentials(ctx context.Context, username, password string) (uint, error)
}

// SignInLimiter 限制登录尝试频率。
type SignInLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Handler 提供注册与登录接口。
type Handler struct {
	svc       CredentialService
	limiter   SignInLimiter
	jwtSecret []byte
	tokenTTL  time.Duration
	logger    *slog.Logger
}

// NewHandler 创建 Auth Handler。
func NewHandler(svc CredentialService, limiter SignInLimiter, jwtSecret string, tokenTTL time.Duration, logger *slog.Logger) *Handler {
	return &Handler{
		svc:       svc,
		limiter:   limiter,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required,min=4,max=20"`
	Password string `json:"password" binding:"required,min=8,max=64"`
}

type signUpResponse struct {
	ID uint `json:"id"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// SignUp 创建新用户。
//
// POST /auth/signup
func (h *Handler) SignUp(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.svc.SignUp(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, coreauth.ErrUsernameTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
			return
		}
		if h.logger != nil {
			h.logger.Error("sign up failed", slog.String("error", err.Error()))
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sign up failed"})
		return
	}

	c.JSON(http.StatusCreated, signUpResponse{ID: id})
}

// SignIn 校验凭证并签发 JWT。
//
// POST /auth/signin
// 未知用户与口令错误都返回 401，响应体相同。
func (h *Handler) SignIn(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if h.limiter != nil {
		allowed, err := h.limiter.Allow(c.Request.Context(), req.Username)
		if err != nil {
			// 限流器故障时放行，登录可用性优先
			if h.logger != nil {
				h.logger.Warn("sign-in limiter unavailable", slog.String("error", err.Error()))
			}
		} else if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many sign-in attempts"})
			return
		}
	}

	id, err := h.svc.ValidateCredentials(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, coreauth.ErrInvalidCredentials) {
			metrics.SignInFailureTotal.Inc()
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		if h.logger != nil {
			h.logger.Error("sign in failed", slog.String("error", err.Error()))
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sign in failed"})
		return
	}

	token, err := h.issueToken(id)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("sign token failed", slog.String("error", err.Error()))
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sign token failed"})
		return
	}

	if h.logger != nil {
		h.logger.Info("user signed in", slog.String("username", req.Username))
	}
	c.JSON(http.StatusOK, tokenResponse{Token: token})
}

// issueToken 签发 HS256 JWT，subject 为用户 ID。
func (h *Handler) issueToken(userID uint) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(h.tokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.jwtSecret)
}
