// Package comment はコメントのドメインロジックを提供する。
// 所有者ゲート付きの更新・削除と、カーソルページネーションの
// ページ構築規則を記事・商品の両サービスに提供する。
package comment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/pandamarket/internal/model"
	"github.com/hitoshi/pandamarket/internal/repository"
	"github.com/hitoshi/pandamarket/internal/security"
)

// DefaultLimit はコメント一覧のデフォルト取得件数。
const DefaultLimit = 10

// MaxLimit はコメント一覧の最大取得件数。
const MaxLimit = 100

// Page はカーソルページネーションによるコメント一覧の1ページ。
// NextCursorがnilの場合、これが最終ページになる。
type Page struct {
	Comments   []*model.Comment
	NextCursor *int64
}

// ClampLimit は取得件数を妥当な範囲に丸める。
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// BuildPage はlimit+1件の取得結果から1ページ分を切り出す。
// limit件を超えた分の先頭IDが次ページのカーソルになる。
// カーソル行を含むキーセットシークと組み合わせることで、
// ページをまたいだ重複も欠落も起きない。
func BuildPage(comments []*model.Comment, limit int) *Page {
	page := &Page{}
	if len(comments) > limit {
		next := comments[limit].ID
		page.NextCursor = &next
		page.Comments = comments[:limit]
	} else {
		page.Comments = comments
	}
	if page.Comments == nil {
		page.Comments = []*model.Comment{}
	}
	return page
}

// Service はコメント単体の更新・削除のサービス層。
type Service struct {
	commentRepo repository.CommentRepository
	sanitizer   security.ContentSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(commentRepo repository.CommentRepository, sanitizer security.ContentSanitizerService) *Service {
	return &Service{
		commentRepo: commentRepo,
		sanitizer:   sanitizer,
	}
}

// Update は所有者ゲートを通してコメント本文を更新する。
// 存在しないコメントは404、所有者以外は403。最終的な書き込みは
// 所有者一致を条件とするストア側の条件付き更新で行われる。
func (s *Service) Update(ctx context.Context, id, userID int64, content string) (*model.Comment, error) {
	comment, err := s.commentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("コメントの取得に失敗しました: %w", err)
	}
	if comment == nil {
		return nil, model.NewNotFoundError(model.ResourceComment, id)
	}
	if comment.OwnerID != userID {
		return nil, model.NewForbiddenError(model.ResourceComment)
	}

	sanitized := s.sanitizer.Sanitize(content)
	if sanitized == "" {
		return nil, model.NewValidationError("コメント本文は必須です")
	}

	updated, err := s.commentRepo.UpdateOwned(ctx, id, userID, sanitized)
	if err != nil {
		return nil, fmt.Errorf("コメントの更新に失敗しました: %w", err)
	}
	if updated == nil {
		// 事前チェック後に行が消えた（並行削除）
		return nil, model.NewNotFoundError(model.ResourceComment, id)
	}
	return updated, nil
}

// Delete は所有者ゲートを通してコメントを削除する。
func (s *Service) Delete(ctx context.Context, id, userID int64) error {
	comment, err := s.commentRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("コメントの取得に失敗しました: %w", err)
	}
	if comment == nil {
		return model.NewNotFoundError(model.ResourceComment, id)
	}
	if comment.OwnerID != userID {
		return model.NewForbiddenError(model.ResourceComment)
	}

	deleted, err := s.commentRepo.DeleteOwned(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("コメントの削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewNotFoundError(model.ResourceComment, id)
	}

	slog.Info("コメントを削除しました",
		slog.Int64("comment_id", id),
		slog.Int64("user_id", userID),
	)
	return nil
}
