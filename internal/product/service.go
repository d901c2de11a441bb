// Package product は商品のドメインロジックを提供する。
// CRUD、所有者ゲート、コメント、いいねトグル、いいね済み一覧を扱う。
package product

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

// Service は商品のサービス層。
type Service struct {
	productRepo repository.ProductRepository
	commentRepo repository.CommentRepository
	toggler     *like.Toggler
	sanitizer   security.ContentSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	productRepo repository.ProductRepository,
	commentRepo repository.CommentRepository,
	toggler *like.Toggler,
	sanitizer security.ContentSanitizerService,
) *Service {
	return &Service{
		productRepo: productRepo,
		commentRepo: commentRepo,
		toggler:     toggler,
		sanitizer:   sanitizer,
	}
}

// CreateInput は商品登録の入力。
type CreateInput struct {
	Name        string
	Description string
	Price       int64
	Tags        []string
	Images      []string
}

// Create は商品を登録する。所有者はセッションユーザーに確定し、以後変更されない。
func (s *Service) Create(ctx context.Context, ownerID int64, input CreateInput) (*model.Product, error) {
	name := s.sanitizer.Sanitize(input.Name)
	description := s.sanitizer.Sanitize(input.Description)

	if name == "" {
		return nil, model.NewValidationError("商品名は必須です")
	}
	if description == "" {
		return nil, model.NewValidationError("商品説明は必須です")
	}
	if input.Price < 0 {
		return nil, model.NewValidationError("価格は0以上にしてください")
	}

	product := &model.Product{
		Name:        name,
		Description: description,
		Price:       input.Price,
		Tags:        sanitizeAll(s.sanitizer, input.Tags),
		Images:      input.Images,
		OwnerID:     ownerID,
	}
	if product.Tags == nil {
		product.Tags = []string{}
	}
	if product.Images == nil {
		product.Images = []string{}
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("商品の作成に失敗しました: %w", err)
	}

	slog.Info("商品を登録しました",
		slog.Int64("product_id", product.ID),
		slog.Int64("user_id", ownerID),
	)
	return product, nil
}

// Get は商品を取得する。viewerIDが正の場合、その閲覧者のいいね状態も返す。
func (s *Service) Get(ctx context.Context, id, viewerID int64) (*model.Product, bool, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("商品の取得に失敗しました: %w", err)
	}
	if product == nil {
		return nil, false, model.NewNotFoundError(model.ResourceProduct, id)
	}

	isLiked, err := s.toggler.IsLiked(ctx, viewerID, id)
	if err != nil {
		return nil, false, fmt.Errorf("いいね状態の取得に失敗しました: %w", err)
	}
	return product, isLiked, nil
}

// ListResult は商品一覧の取得結果。
type ListResult struct {
	Products   []*model.Product
	TotalCount int
}

// List は条件に合う商品一覧と総数を返す。
func (s *Service) List(ctx context.Context, params repository.ListProductsParams) (*ListResult, error) {
	if params.Limit <= 0 {
		params.Limit = 10
	}
	if params.Offset < 0 {
		params.Offset = 0
	}
	if params.Order != model.ArticleOrderOldest {
		params.Order = model.ArticleOrderRecent
	}

	products, err := s.productRepo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("商品一覧の取得に失敗しました: %w", err)
	}
	total, err := s.productRepo.Count(ctx, params.Keyword)
	if err != nil {
		return nil, fmt.Errorf("商品数の取得に失敗しました: %w", err)
	}

	return &ListResult{Products: products, TotalCount: total}, nil
}

// ListByOwner はセッションユーザーが登録した商品を新着順で返す。
func (s *Service) ListByOwner(ctx context.Context, ownerID int64) ([]*model.Product, error) {
	products, err := s.productRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("登録商品一覧の取得に失敗しました: %w", err)
	}
	if products == nil {
		products = []*model.Product{}
	}
	return products, nil
}

// ListLiked はセッションユーザーがいいねした商品をいいね日時の降順で返す。
func (s *Service) ListLiked(ctx context.Context, userID int64) ([]*model.Product, error) {
	products, err := s.productRepo.ListLikedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("いいね済み商品一覧の取得に失敗しました: %w", err)
	}
	if products == nil {
		products = []*model.Product{}
	}
	return products, nil
}

// UpdateInput は商品の部分更新内容。nilフィールドは変更しない。
type UpdateInput struct {
	Name        *string
	Description *string
	Price       *int64
	Tags        []string
	Images      []string
}

// Update は所有者ゲートを通して商品を更新する。
// 存在しない商品は404、所有者以外は403。最終的な書き込みは
// 所有者一致を条件とするストア側の条件付き更新で行われる。
func (s *Service) Update(ctx context.Context, id, userID int64, input UpdateInput) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("商品の取得に失敗しました: %w", err)
	}
	if product == nil {
		return nil, model.NewNotFoundError(model.ResourceProduct, id)
	}
	if product.OwnerID != userID {
		return nil, model.NewForbiddenError(model.ResourceProduct)
	}

	update := repository.ProductUpdate{
		Tags:   sanitizeAll(s.sanitizer, input.Tags),
		Images: input.Images,
	}
	if input.Name != nil {
		name := s.sanitizer.Sanitize(*input.Name)
		if name == "" {
			return nil, model.NewValidationError("商品名は必須です")
		}
		update.Name = &name
	}
	if input.Description != nil {
		description := s.sanitizer.Sanitize(*input.Description)
		if description == "" {
			return nil, model.NewValidationError("商品説明は必須です")
		}
		update.Description = &description
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, model.NewValidationError("価格は0以上にしてください")
		}
		update.Price = input.Price
	}

	updated, err := s.productRepo.UpdateOwned(ctx, id, userID, update)
	if err != nil {
		return nil, fmt.Errorf("商品の更新に失敗しました: %w", err)
	}
	if updated == nil {
		// 事前チェック後に行が消えた（並行削除）
		return nil, model.NewNotFoundError(model.ResourceProduct, id)
	}
	return updated, nil
}

// Delete は所有者ゲートを通して商品を削除する。
func (s *Service) Delete(ctx context.Context, id, userID int64) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("商品の取得に失敗しました: %w", err)
	}
	if product == nil {
		return model.NewNotFoundError(model.ResourceProduct, id)
	}
	if product.OwnerID != userID {
		return model.NewForbiddenError(model.ResourceProduct)
	}

	deleted, err := s.productRepo.DeleteOwned(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("商品の削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewNotFoundError(model.ResourceProduct, id)
	}

	slog.Info("商品を削除しました",
		slog.Int64("product_id", id),
		slog.Int64("user_id", userID),
	)
	return nil
}

// CreateComment は商品にコメントを追加する。
func (s *Service) CreateComment(ctx context.Context, productID, userID int64, content string) (*model.Comment, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("商品の取得に失敗しました: %w", err)
	}
	if product == nil {
		return nil, model.NewNotFoundError(model.ResourceProduct, productID)
	}

	sanitized := s.sanitizer.Sanitize(content)
	if sanitized == "" {
		return nil, model.NewValidationError("コメント本文は必須です")
	}

	c := &model.Comment{
		Content:   sanitized,
		OwnerID:   userID,
		ProductID: &productID,
	}
	if err := s.commentRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("コメントの作成に失敗しました: %w", err)
	}
	return c, nil
}

// ListComments は商品配下のコメントをカーソルページネーションで返す。
func (s *Service) ListComments(ctx context.Context, productID, cursor int64, limit int) (*comment.Page, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("商品の取得に失敗しました: %w", err)
	}
	if product == nil {
		return nil, model.NewNotFoundError(model.ResourceProduct, productID)
	}

	limit = comment.ClampLimit(limit)
	comments, err := s.commentRepo.ListByProduct(ctx, productID, cursor, limit+1)
	if err != nil {
		return nil, fmt.Errorf("コメント一覧の取得に失敗しました: %w", err)
	}

	return comment.BuildPage(comments, limit), nil
}

// ToggleLike は商品へのいいねをトグルし、トグル後の状態を返す。
func (s *Service) ToggleLike(ctx context.Context, productID, userID int64) (bool, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return false, fmt.Errorf("商品の取得に失敗しました: %w", err)
	}
	if product == nil {
		return false, model.NewNotFoundError(model.ResourceProduct, productID)
	}

	return s.toggler.Toggle(ctx, userID, productID)
}

// sanitizeAll は各要素をサニタイズし、空になった要素を取り除く。
func sanitizeAll(sanitizer security.ContentSanitizerService, values []string) []string {
	if values == nil {
		return nil
	}
	result := make([]string, 0, len(values))
	for _, v := range values {
		if cleaned := sanitizer.Sanitize(v); cleaned != "" {
			result = append(result, cleaned)
		}
	}
	return result
}
