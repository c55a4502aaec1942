package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tasktracker/internal/model"
)

// 对外错误。调用方只依赖这些哨兵，底层存储错误不跨出本包。
var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInternal           = errors.New("internal auth error")
)

// dummySalt 用于用户不存在时照常执行一次散列，
// 让两条失败路径做等量的工作。
var dummySalt = make([]byte, saltLen)

// Service 负责注册与凭证校验。
type Service struct {
	store  UserStore
	hasher PasswordHasher
	logger *slog.Logger
}

// NewService 创建 Service。
func NewService(store UserStore, hasher PasswordHasher, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		hasher: hasher,
		logger: logger,
	}
}

// SignUp 创建新用户并返回其 ID。
//
// 用户名冲突返回 ErrUsernameTaken；其余持久化失败统一折叠为 ErrInternal。
func (s *Service) SignUp(ctx context.Context, username, password string) (uint, error) {
	salt, err := NewSalt()
	if err != nil {
		s.logger.Error("generate salt failed", slog.String("error", err.Error()))
		return 0, fmt.Errorf("%w: generate salt", ErrInternal)
	}

	u := &model.User{
		Username:     username,
		PasswordHash: s.hasher.Hash(password, salt),
		Salt:         salt,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, errDuplicateUsername) {
			return 0, ErrUsernameTaken
		}
		s.logger.Error("create user failed",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return 0, fmt.Errorf("%w: create user", ErrInternal)
	}

	s.logger.Info("user signed up", slog.String("username", username), slog.Uint64("id", uint64(u.ID)))
	return u.ID, nil
}

// ValidateCredentials 校验用户名与口令，成功时返回用户 ID。
//
// 用户不存在与口令错误返回同一个 ErrInvalidCredentials，
// 调用方无法区分二者，避免用户名枚举。
func (s *Service) ValidateCredentials(ctx context.Context, username, password string) (uint, error) {
	u, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, errUserNotFound) {
			s.logger.Error("find user failed", slog.String("error", err.Error()))
			return 0, fmt.Errorf("%w: find user", ErrInternal)
		}
		// 用户不存在时也散列一次
		s.hasher.Hash(password, dummySalt)
		return 0, ErrInvalidCredentials
	}

	if !s.hasher.Compare(u.PasswordHash, password, u.Salt) {
		return 0, ErrInvalidCredentials
	}
	return u.ID, nil
}
