package auth

import (
	"context"
	"errors"

	"tasktracker/internal/model"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// UserStore 抽象用户持久化。
type UserStore interface {
	CreateUser(ctx context.Context, u *model.User) error
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}

// 存储层信号，由 Service 翻译为对外错误。
var (
	errDuplicateUsername = errors.New("duplicate username")
	errUserNotFound      = errors.New("user not found")
)

// MySQL 唯一键冲突错误码 (ER_DUP_ENTRY)。
const mysqlDuplicateEntry = 1062

type gormUserStore struct {
	db *gorm.DB
}

// NewUserStore 基于 GORM 构建用户存储。
func NewUserStore(db *gorm.DB) UserStore {
	return gormUserStore{db: db}
}

func (s gormUserStore) CreateUser(ctx context.Context, u *model.User) error {
	err := s.db.WithContext(ctx).Create(u).Error
	if err == nil {
		return nil
	}
	var mysqlErr *mysql.MySQLError
	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		(errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry) {
		return errDuplicateUsername
	}
	return err
}

func (s gormUserStore) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errUserNotFound
		}
		return nil, err
	}
	return &u, nil
}
