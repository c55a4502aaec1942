package task

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tasktracker/internal/model"

	"gorm.io/gorm"
)

var (
	// ErrTaskNotFound 任务不存在，或归属于其他用户（二者不可区分）。
	ErrTaskNotFound = errors.New("task not found")
	// ErrEmptyTitle 标题为空。
	ErrEmptyTitle = errors.New("task title must not be empty")
	// ErrInternal 持久化失败，底层错误不跨出本包。
	ErrInternal = errors.New("internal task error")
)

// Store 按所属用户维度读写任务。
//
// 所有查询都隐含 user_id 条件；不加额外的锁，
// 同一任务上的并发写以存储层的单行原子性为准。
type Store interface {
	Create(ctx context.Context, title, description string, ownerID uint) (*model.Task, error)
	GetByID(ctx context.Context, id, ownerID uint) (*model.Task, error)
	List(ctx context.Context, filter Filter, ownerID uint) ([]model.Task, error)
	UpdateStatus(ctx context.Context, id uint, status model.TaskStatus, ownerID uint) (*model.Task, error)
	Delete(ctx context.Context, id, ownerID uint) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore 基于 GORM 构建任务存储。
func NewStore(db *gorm.DB) Store {
	return gormStore{db: db}
}

// Create 创建任务，状态一律初始化为 OPEN，忽略调用方给出的任何状态。
func (s gormStore) Create(ctx context.Context, title, description string, ownerID uint) (*model.Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrEmptyTitle
	}
	t := &model.Task{
		UserID:      ownerID,
		Title:       title,
		Description: description,
		Status:      model.StatusOpen,
	}
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, fmt.Errorf("%w: create task: %v", ErrInternal, err)
	}
	return t, nil
}

// GetByID 返回指定用户名下的任务。
// 任务不存在与归属他人都返回 ErrTaskNotFound。
func (s gormStore) GetByID(ctx context.Context, id, ownerID uint) (*model.Task, error) {
	var t model.Task
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("%w: get task: %v", ErrInternal, err)
	}
	return &t, nil
}

// List 返回归属 ownerID 且命中过滤器的全部任务，一次物化为切片。
func (s gormStore) List(ctx context.Context, filter Filter, ownerID uint) ([]model.Task, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", ownerID)
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}

	var rows []model.Task
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: list tasks: %v", ErrInternal, err)
	}
	if filter.Search == "" {
		return rows, nil
	}

	// 搜索文本在进程内匹配：MySQL 默认排序规则下 LIKE 不区分大小写，
	// 而这里要求区分大小写的子串匹配。
	matched := make([]model.Task, 0, len(rows))
	for i := range rows {
		if filter.Match(&rows[i]) {
			matched = append(matched, rows[i])
		}
	}
	return matched, nil
}

// UpdateStatus 只修改状态字段，其余字段保持不变。
// 继承 GetByID 的 not-found 语义。
func (s gormStore) UpdateStatus(ctx context.Context, id uint, status model.TaskStatus, ownerID uint) (*model.Task, error) {
	t, err := s.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(t).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("%w: update status: %v", ErrInternal, err)
	}
	return t, nil
}

// Delete 删除任务。以受影响行数作为唯一的存在性信号，
// 不做先查后删，避免竞态窗口。
func (s gormStore) Delete(ctx context.Context, id, ownerID uint) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&model.Task{})
	if res.Error != nil {
		return fmt.Errorf("%w: delete task: %v", ErrInternal, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}
