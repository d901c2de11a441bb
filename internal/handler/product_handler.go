package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/pandamarket/internal/comment"
	"github.com/hitoshi/pandamarket/internal/metrics"
	"github.com/hitoshi/pandamarket/internal/middleware"
	"github.com/hitoshi/pandamarket/internal/model"
	"github.com/hitoshi/pandamarket/internal/product"
	"github.com/hitoshi/pandamarket/internal/repository"
)

// ProductServiceInterface は商品ハンドラーが必要とするサービスインターフェース。
type ProductServiceInterface interface {
	Create(ctx context.Context, ownerID int64, input product.CreateInput) (*model.Product, error)
	Get(ctx context.Context, id, viewerID int64) (*model.Product, bool, error)
	List(ctx context.Context, params repository.ListProductsParams) (*product.ListResult, error)
	ListLiked(ctx context.Context, userID int64) ([]*model.Product, error)
	Update(ctx context.Context, id, userID int64, input product.UpdateInput) (*model.Product, error)
	Delete(ctx context.Context, id, userID int64) error
	CreateComment(ctx context.Context, productID, userID int64, content string) (*model.Comment, error)
	ListComments(ctx context.Context, productID, cursor int64, limit int) (*comment.Page, error)
	ToggleLike(ctx context.Context, productID, userID int64) (bool, error)
}

// ProductHandler は商品のHTTPハンドラー。
type ProductHandler struct {
	service ProductServiceInterface
	metrics metrics.MetricsCollector
}

// NewProductHandler はProductHandlerを生成する。
func NewProductHandler(service ProductServiceInterface, collector metrics.MetricsCollector) *ProductHandler {
	return &ProductHandler{
		service: service,
		metrics: collector,
	}
}

// --- リクエスト・レスポンス型 ---

type createProductRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	Tags        []string `json:"tags"`
	Images      []string `json:"images"`
}

type updateProductRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *int64   `json:"price,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Images      []string `json:"images,omitempty"`
}

type productResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	Tags        []string  `json:"tags"`
	Images      []string  `json:"images"`
	OwnerID     int64     `json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// productDetailResponse は単体取得のレスポンス。閲覧者のいいね状態を含む。
type productDetailResponse struct {
	productResponse
	IsLiked bool `json:"isLiked"`
}

type productListResponse struct {
	TotalCount int               `json:"totalCount"`
	List       []productResponse `json:"list"`
}

func toProductResponse(p *model.Product) productResponse {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Tags:        tags,
		Images:      images,
		OwnerID:     p.OwnerID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toProductListResponse(products []*model.Product) []productResponse {
	list := make([]productResponse, len(products))
	for i, p := range products {
		list[i] = toProductResponse(p)
	}
	return list
}

// --- ハンドラー ---

// Create は商品を登録する。
// POST /products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthenticated(w)
		return
	}

	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("リクエストボディを解析できません"))
		return
	}

	created, err := h.service.Create(r.Context(), userID, product.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Tags:        req.Tags,
		Images:      req.Images,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toProductResponse(created))
}

// Get は商品を取得する。ログイン済みの場合はいいね状態も含む。
// GET /products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	viewerID, _ := middleware.UserIDFromContext(r.Context())

	found, isLiked, err := h.service.Get(r.Context(), id, viewerID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, productDetailResponse{
		productResponse: toProductResponse(found),
		IsLiked:         isLiked,
	})
}

// List は商品一覧をオフセットページネーションで取得する。
// GET /products?page=1&pageSize=10&orderBy=recent&keyword=...
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "pageSize", 10)
	if page < 1 {
		page = 1
	}

	result, err := h.service.List(r.Context(), repository.ListProductsParams{
		Keyword: r.URL.Query().Get("keyword"),
		Order:   model.ArticleOrder(r.URL.Query().Get("orderBy")),
		Offset:  (page - 1) * pageSize,
		Limit:   pageSize,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, productListResponse{
		TotalCount: result.TotalCount,
		List:       toProductListResponse(result.Products),
	})
}

// ListLiked はセッションユーザーがいいねした商品一覧を返す。
// GET /products/liked
func (h *ProductHandler) ListLiked(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthenticated(w)
		return
	}

	products, err := h.service.ListLiked(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProductListResponse(products))
}

// Update は商品を更新する。
// PATCH /products/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthenticated(w)
		return
	}

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req updateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("リクエストボディを解析できません"))
		return
	}

	updated, err := h.service.Update(r.Context(), id, userID, product.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Tags:        req.Tags,
		Images:      req.Images,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProductResponse(updated))
}

// Delete は商品を削除する。
// DELETE /products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthenticated(w)
		return
	}

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id, userID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateComment は商品にコメントを追加する。
// POST /products/{id}/comments
func (h *ProductHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthenticated(w)
		return
	}

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("リクエストボディを解析できません"))
		return
	}

	created, err := h.service.CreateComment(r.Context(), id, userID, req.Content)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCommentResponse(created))
}

// ListComments は商品のコメント一覧をカーソルページネーションで取得する。
// GET /products/{id}/comments?cursor=123&limit=10
func (h *ProductHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	cursor := int64(queryInt(r, "cursor", 0))
	limit := queryInt(r, "limit", 0)

	page, err := h.service.ListComments(r.Context(), id, cursor, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCommentPageResponse(page))
}

// ToggleLike は商品へのいいねをトグルする。
// POST /products/{id}/like
func (h *ProductHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthenticated(w)
		return
	}

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	isLiked, err := h.service.ToggleLike(r.Context(), id, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordLikeToggle(model.ResourceProduct, isLiked)
	}
	writeJSON(w, http.StatusOK, likeResponse{IsLiked: isLiked})
}
