// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/pandamarket/internal/model"
)

// ErrDuplicateLike は(ユーザー, 対象)ペアのUNIQUE制約違反を表す。
// 同一ペアに対する並行トグルの負けた側がこのエラーを受け取る。
var ErrDuplicateLike = errors.New("repository: like already exists")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// CountByEmail は指定メールアドレスのユーザー数を返す。
	CountByEmail(ctx context.Context, email string) (int, error)

	// CountByNickname は指定ニックネームのユーザー数を返す。
	CountByNickname(ctx context.Context, nickname string) (int, error)

	// Create はユーザーを作成し、採番されたIDと日時をuserに反映する。
	Create(ctx context.Context, user *model.User) error

	// Update はニックネーム・画像・パスワードハッシュを更新する。
	Update(ctx context.Context, user *model.User) error
}

// ArticleUpdate は記事の部分更新内容。nilフィールドは変更しない。
type ArticleUpdate struct {
	Title   *string
	Content *string
}

// ListArticlesParams は記事一覧取得の条件。
type ListArticlesParams struct {
	Keyword string
	Order   model.ArticleOrder
	Offset  int
	Limit   int
}

// ArticleRepository は記事データの永続化インターフェース。
type ArticleRepository interface {
	// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Article, error)

	// List は条件に合う記事一覧をオフセットページネーションで返す。
	List(ctx context.Context, params ListArticlesParams) ([]*model.Article, error)

	// Count は条件に合う記事の総数を返す。
	Count(ctx context.Context, keyword string) (int, error)

	// Create は記事を作成し、採番されたIDと日時をarticleに反映する。
	Create(ctx context.Context, article *model.Article) error

	// UpdateOwned は所有者一致を条件に記事を部分更新し、更新後の記事を返す。
	// 条件に合う行がない場合はnilを返す（存在しない、または所有者不一致）。
	UpdateOwned(ctx context.Context, id, ownerID int64, update ArticleUpdate) (*model.Article, error)

	// DeleteOwned は所有者一致を条件に記事を削除し、削除の有無を返す。
	DeleteOwned(ctx context.Context, id, ownerID int64) (bool, error)
}

// ProductUpdate は商品の部分更新内容。nilフィールドは変更しない。
type ProductUpdate struct {
	Name        *string
	Description *string
	Price       *int64
	Tags        []string
	Images      []string
}

// ListProductsParams は商品一覧取得の条件。
type ListProductsParams struct {
	Keyword string
	Order   model.ArticleOrder
	Offset  int
	Limit   int
}

// ProductRepository は商品データの永続化インターフェース。
type ProductRepository interface {
	// FindByID は指定IDの商品を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Product, error)

	// List は条件に合う商品一覧をオフセットページネーションで返す。
	// キーワードは商品名または説明文に部分一致する。
	List(ctx context.Context, params ListProductsParams) ([]*model.Product, error)

	// Count は条件に合う商品の総数を返す。
	Count(ctx context.Context, keyword string) (int, error)

	// ListByOwner は指定ユーザーが登録した商品を新着順で返す。
	ListByOwner(ctx context.Context, ownerID int64) ([]*model.Product, error)

	// ListLikedByUser は指定ユーザーがいいねした商品をいいね日時の降順で返す。
	ListLikedByUser(ctx context.Context, userID int64) ([]*model.Product, error)

	// Create は商品を作成し、採番されたIDと日時をproductに反映する。
	Create(ctx context.Context, product *model.Product) error

	// UpdateOwned は所有者一致を条件に商品を部分更新し、更新後の商品を返す。
	// 条件に合う行がない場合はnilを返す（存在しない、または所有者不一致）。
	UpdateOwned(ctx context.Context, id, ownerID int64, update ProductUpdate) (*model.Product, error)

	// DeleteOwned は所有者一致を条件に商品を削除し、削除の有無を返す。
	DeleteOwned(ctx context.Context, id, ownerID int64) (bool, error)
}

// CommentRepository はコメントデータの永続化インターフェース。
type CommentRepository interface {
	// FindByID は指定IDのコメントを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Comment, error)

	// Create はコメントを作成し、採番されたIDと日時をcommentに反映する。
	Create(ctx context.Context, comment *model.Comment) error

	// ListByArticle は記事配下のコメントを作成日時降順（同時刻はID降順）で返す。
	// cursorが正の場合、カーソル行を含むキーセットシークで読み始める。
	// 呼び出し側はページ末尾判定のためlimit+1件を要求する。
	ListByArticle(ctx context.Context, articleID, cursor int64, limit int) ([]*model.Comment, error)

	// ListByProduct は商品配下のコメントをListByArticleと同じ規則で返す。
	ListByProduct(ctx context.Context, productID, cursor int64, limit int) ([]*model.Comment, error)

	// UpdateOwned は所有者一致を条件にコメント本文を更新し、更新後のコメントを返す。
	// 条件に合う行がない場合はnilを返す（存在しない、または所有者不一致）。
	UpdateOwned(ctx context.Context, id, ownerID int64, content string) (*model.Comment, error)

	// DeleteOwned は所有者一致を条件にコメントを削除し、削除の有無を返す。
	DeleteOwned(ctx context.Context, id, ownerID int64) (bool, error)
}

// LikeRepository は(ユーザー, 対象リソース)のいいね関係の永続化インターフェース。
// 記事用と商品用で同一の契約を持ち、対象テーブルだけが異なる。
type LikeRepository interface {
	// Find は指定ペアのいいね行を取得する。見つからない場合はnilを返す。
	Find(ctx context.Context, userID, targetID int64) (*model.Like, error)

	// Create はいいね行を作成する。ペアのUNIQUE制約違反はErrDuplicateLikeを返す。
	Create(ctx context.Context, userID, targetID int64) error

	// Delete は指定ペアのいいね行を削除し、削除の有無を返す。
	Delete(ctx context.Context, userID, targetID int64) (bool, error)
}
