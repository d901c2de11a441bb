package repository

import (
	"errors"
	"testing"
)

// TestPostgresLikeRepo_ImplementsInterface はPostgresLikeRepoがLikeRepositoryを実装することを検証する。
func TestPostgresLikeRepo_ImplementsInterface(t *testing.T) {
	// コンパイル時チェック：PostgresLikeRepoがLikeRepositoryを満たすことを検証
	var _ LikeRepository = (*PostgresLikeRepo)(nil)
}

// 記事用コンストラクタが記事いいねテーブルを指すことを検証
func TestNewPostgresArticleLikeRepo_TargetsArticleTable(t *testing.T) {
	repo := NewPostgresArticleLikeRepo(nil)
	if repo.table != "article_likes" {
		t.Errorf("table = %q, want %q", repo.table, "article_likes")
	}
	if repo.targetColumn != "article_id" {
		t.Errorf("targetColumn = %q, want %q", repo.targetColumn, "article_id")
	}
}

// 商品用コンストラクタが商品いいねテーブルを指すことを検証
func TestNewPostgresProductLikeRepo_TargetsProductTable(t *testing.T) {
	repo := NewPostgresProductLikeRepo(nil)
	if repo.table != "product_likes" {
		t.Errorf("table = %q, want %q", repo.table, "product_likes")
	}
	if repo.targetColumn != "product_id" {
		t.Errorf("targetColumn = %q, want %q", repo.targetColumn, "product_id")
	}
}

// ErrDuplicateLikeがerrors.Isで判別できることを検証
func TestErrDuplicateLike_Identity(t *testing.T) {
	if !errors.Is(ErrDuplicateLike, ErrDuplicateLike) {
		t.Error("ErrDuplicateLike should match itself")
	}
	if errors.Is(errors.New("other"), ErrDuplicateLike) {
		t.Error("unrelated error should not match ErrDuplicateLike")
	}
}
