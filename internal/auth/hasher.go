package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// argon2id 参数。修改任何一项都会使已存储的摘要失效。
const (
	saltLen     = 16
	digestLen   = 32
	argonTime   = 1
	argonMemory = 64 * 1024
	argonLanes  = 4
)

// PasswordHasher 是口令散列原语。
type PasswordHasher interface {
	Hash(password string, salt []byte) []byte
	Compare(digest []byte, password string, salt []byte) bool
}

// Argon2Hasher 基于 argon2id 实现 PasswordHasher。
// 相同的 (password, salt) 总是产生相同的摘要。
type Argon2Hasher struct{}

func (Argon2Hasher) Hash(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonLanes, digestLen)
}

// Compare 重新计算摘要并做恒定时间比较。
func (h Argon2Hasher) Compare(digest []byte, password string, salt []byte) bool {
	return subtle.ConstantTimeCompare(digest, h.Hash(password, salt)) == 1
}

// NewSalt 生成一个固定长度的随机盐。
func NewSalt() ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}
