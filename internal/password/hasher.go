// Package password はパスワードの一方向ハッシュ化と照合を提供する。
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost はハッシュ化の計算コスト。
const bcryptCost = 10

// Hasher はbcryptによるパスワードハッシュの生成と照合を行う。
type Hasher struct {
	cost int
}

// NewHasher はHasherを生成する。
func NewHasher() *Hasher {
	return &Hasher{cost: bcryptCost}
}

// Hash は平文パスワードのbcryptハッシュを生成する。
func (h *Hasher) Hash(plain string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// Verify は平文パスワードがハッシュと一致するかを返す。
func (h *Hasher) Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
