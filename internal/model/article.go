package model

import "time"

// Article は掲示板の記事を表す。
// OwnerIDは作成時に確定し、以後変更されない。
type Article struct {
	ID        int64
	Title     string
	Content   string
	OwnerID   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ArticleOrder は記事一覧のソート順を表す。
type ArticleOrder string

const (
	// ArticleOrderRecent は作成日時の降順（新着順）。
	ArticleOrderRecent ArticleOrder = "recent"
	// ArticleOrderOldest はIDの昇順（登録順）。
	ArticleOrderOldest ArticleOrder = "oldest"
)
