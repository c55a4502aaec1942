package model

import "time"

// User 表示系统用户。
//
// PasswordHash 与 Salt 只在 auth 包内部使用，任何 API 响应都不包含它们。
// Salt 在注册时生成一次，此后不再变更。
type User struct {
	ID           uint      `gorm:"primaryKey"`                             // 用户 ID
	Username     string    `gorm:"type:varchar(191);uniqueIndex;not null"` // 用户名（唯一）
	PasswordHash []byte    `gorm:"type:varbinary(64);not null"`            // argon2id 摘要
	Salt         []byte    `gorm:"type:varbinary(32);not null"`            // 每用户随机盐
	CreatedAt    time.Time // 创建时间

	Tasks []Task `gorm:"foreignKey:UserID"`
}
