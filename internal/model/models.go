package model

import (
	"time"
)

// TaskStatus 表示任务的生命周期状态。
type TaskStatus string

const (
	StatusOpen       TaskStatus = "OPEN"        // 新建，尚未开始
	StatusInProgress TaskStatus = "IN_PROGRESS" // 进行中
	StatusDone       TaskStatus = "DONE"        // 已完成
)

// Task 表示归属于某个用户的待办任务。
//
// 所有读写操作都以 UserID 为范围过滤；归属在创建后不可变更。
// 其他用户的任务对当前用户表现为"不存在"，而不是"无权访问"。
type Task struct {
	ID        uint      `gorm:"primaryKey"` // 任务唯一标识
	CreatedAt time.Time // 创建时间
	UpdatedAt time.Time // 更新时间

	UserID      uint       `gorm:"not null;index"` // 所属用户 ID
	Title       string     `gorm:"not null"`       // 标题（非空）
	Description string     // 描述
	Status      TaskStatus `gorm:"type:varchar(16);not null;default:OPEN"` // 任务状态
}
