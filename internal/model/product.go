package model

import "time"

// Product はマーケットプレイスの商品を表す。
// OwnerIDは作成時に確定し、以後変更されない。
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       int64
	Tags        []string
	Images      []string
	OwnerID     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
