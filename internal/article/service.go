// Package article は記事のドメインロジックを提供する。
// CRUD、所有者ゲート、コメント、いいねトグルを扱う。
package article

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/pandamarket/internal/comment"
	"github.com/hitoshi/pandamarket/internal/like"
	"github.com/hitoshi/pandamarket/internal/model"
	"github.com/hitoshi/pandamarket/internal/repository"
	"github.com/hitoshi/pandamarket/internal/security"
)

// Service は記事のサービス層。
type Service struct {
	articleRepo repository.ArticleRepository
	commentRepo repository.CommentRepository
	toggler     *like.Toggler
	sanitizer   security.ContentSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	articleRepo repository.ArticleRepository,
	commentRepo repository.CommentRepository,
	toggler *like.Toggler,
	sanitizer security.ContentSanitizerService,
) *Service {
	return &Service{
		articleRepo: articleRepo,
		commentRepo: commentRepo,
		toggler:     toggler,
		sanitizer:   sanitizer,
	}
}

// CreateInput は記事作成の入力。
type CreateInput struct {
	Title   string
	Content string
}

// Create は記事を作成する。所有者はセッションユーザーに確定し、以後変更されない。
func (s *Service) Create(ctx context.Context, ownerID int64, input CreateInput) (*model.Article, error) {
	title := s.sanitizer.Sanitize(input.Title)
	content := s.sanitizer.Sanitize(input.Content)

	if title == "" {
		return nil, model.NewValidationError("タイトルは必須です")
	}
	if content == "" {
		return nil, model.NewValidationError("本文は必須です")
	}

	article := &model.Article{
		Title:   title,
		Content: content,
		OwnerID: ownerID,
	}
	if err := s.articleRepo.Create(ctx, article); err != nil {
		return nil, fmt.Errorf("記事の作成に失敗しました: %w", err)
	}

	slog.Info("記事を作成しました",
		slog.Int64("article_id", article.ID),
		slog.Int64("user_id", ownerID),
	)
	return article, nil
}

// Get は記事を取得する。viewerIDが正の場合、その閲覧者のいいね状態も返す。
func (s *Service) Get(ctx context.Context, id, viewerID int64) (*model.Article, bool, error) {
	article, err := s.articleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	if article == nil {
		return nil, false, model.NewNotFoundError(model.ResourceArticle, id)
	}

	isLiked, err := s.toggler.IsLiked(ctx, viewerID, id)
	if err != nil {
		return nil, false, fmt.Errorf("いいね状態の取得に失敗しました: %w", err)
	}
	return article, isLiked, nil
}

// ListResult は記事一覧の取得結果。
type ListResult struct {
	Articles   []*model.Article
	TotalCount int
}

// List は条件に合う記事一覧と総数を返す。
func (s *Service) List(ctx context.Context, params repository.ListArticlesParams) (*ListResult, error) {
	if params.Limit <= 0 {
		params.Limit = 10
	}
	if params.Offset < 0 {
		params.Offset = 0
	}
	if params.Order != model.ArticleOrderOldest {
		params.Order = model.ArticleOrderRecent
	}

	articles, err := s.articleRepo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("記事一覧の取得に失敗しました: %w", err)
	}
	total, err := s.articleRepo.Count(ctx, params.Keyword)
	if err != nil {
		return nil, fmt.Errorf("記事数の取得に失敗しました: %w", err)
	}

	return &ListResult{Articles: articles, TotalCount: total}, nil
}

// UpdateInput は記事の部分更新内容。nilフィールドは変更しない。
type UpdateInput struct {
	Title   *string
	Content *string
}

// Update は所有者ゲートを通して記事を更新する。
// 存在しない記事は404、所有者以外は403。最終的な書き込みは
// 所有者一致を条件とするストア側の条件付き更新で行われる。
func (s *Service) Update(ctx context.Context, id, userID int64, input UpdateInput) (*model.Article, error) {
	article, err := s.articleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	if article == nil {
		return nil, model.NewNotFoundError(model.ResourceArticle, id)
	}
	if article.OwnerID != userID {
		return nil, model.NewForbiddenError(model.ResourceArticle)
	}

	update := repository.ArticleUpdate{}
	if input.Title != nil {
		title := s.sanitizer.Sanitize(*input.Title)
		if title == "" {
			return nil, model.NewValidationError("タイトルは必須です")
		}
		update.Title = &title
	}
	if input.Content != nil {
		content := s.sanitizer.Sanitize(*input.Content)
		if content == "" {
			return nil, model.NewValidationError("本文は必須です")
		}
		update.Content = &content
	}

	updated, err := s.articleRepo.UpdateOwned(ctx, id, userID, update)
	if err != nil {
		return nil, fmt.Errorf("記事の更新に失敗しました: %w", err)
	}
	if updated == nil {
		// 事前チェック後に行が消えた（並行削除）
		return nil, model.NewNotFoundError(model.ResourceArticle, id)
	}
	return updated, nil
}

// Delete は所有者ゲートを通して記事を削除する。
func (s *Service) Delete(ctx context.Context, id, userID int64) error {
	article, err := s.articleRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	if article == nil {
		return model.NewNotFoundError(model.ResourceArticle, id)
	}
	if article.OwnerID != userID {
		return model.NewForbiddenError(model.ResourceArticle)
	}

	deleted, err := s.articleRepo.DeleteOwned(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("記事の削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewNotFoundError(model.ResourceArticle, id)
	}

	slog.Info("記事を削除しました",
		slog.Int64("article_id", id),
		slog.Int64("user_id", userID),
	)
	return nil
}

// CreateComment は記事にコメントを追加する。
func (s *Service) CreateComment(ctx context.Context, articleID, userID int64, content string) (*model.Comment, error) {
	article, err := s.articleRepo.FindByID(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	if article == nil {
		return nil, model.NewNotFoundError(model.ResourceArticle, articleID)
	}

	sanitized := s.sanitizer.Sanitize(content)
	if sanitized == "" {
		return nil, model.NewValidationError("コメント本文は必須です")
	}

	comment := &model.Comment{
		Content:   sanitized,
		OwnerID:   userID,
		ArticleID: &articleID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("コメントの作成に失敗しました: %w", err)
	}
	return comment, nil
}

// ListComments は記事配下のコメントをカーソルページネーションで返す。
// limit+1件を取得し、limit件を超えた分の先頭IDを次ページのカーソルにする。
func (s *Service) ListComments(ctx context.Context, articleID, cursor int64, limit int) (*comment.Page, error) {
	article, err := s.articleRepo.FindByID(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	if article == nil {
		return nil, model.NewNotFoundError(model.ResourceArticle, articleID)
	}

	limit = comment.ClampLimit(limit)
	comments, err := s.commentRepo.ListByArticle(ctx, articleID, cursor, limit+1)
	if err != nil {
		return nil, fmt.Errorf("コメント一覧の取得に失敗しました: %w", err)
	}

	return comment.BuildPage(comments, limit), nil
}

// ToggleLike は記事へのいいねをトグルし、トグル後の状態を返す。
func (s *Service) ToggleLike(ctx context.Context, articleID, userID int64) (bool, error) {
	article, err := s.articleRepo.FindByID(ctx, articleID)
	if err != nil {
		return false, fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	if article == nil {
		return false, model.NewNotFoundError(model.ResourceArticle, articleID)
	}

	return s.toggler.Toggle(ctx, userID, articleID)
}
