// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// Passwordにはbcryptハッシュのみを保持し、平文は一切格納しない。
type User struct {
	ID        int64
	Email     string
	Nickname  string
	Password  string // bcryptハッシュ
	Image     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
