package model

import "time"

// Comment は記事または商品に対するコメントを表す。
// ArticleIDとProductIDはどちらか一方のみが非nilとなる。
// IDはBIGSERIALで作成順に単調増加するため、そのままページネーションの
// カーソルとして利用できる。
type Comment struct {
	ID        int64
	Content   string
	OwnerID   int64
	ArticleID *int64
	ProductID *int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
