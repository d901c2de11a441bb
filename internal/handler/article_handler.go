package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/pandamarket/internal/article"
	"github.com/hitoshi/pandamarket/internal/comment"
	"github.com/hitoshi/pandamarket/internal/metrics"
	"github.com/hitoshi/pandamarket/internal/middleware"
	"github.com/hitoshi/pandamarket/internal/model"
	"github.com/hitoshi/pandamarket/internal/repository"
)

// ArticleServiceInterface は記事ハンドラーが必要とするサービスインターフェース。
type ArticleServiceInterface interface {
	Create(ctx context.Context, ownerID int64, input article.CreateInput) (*model.Article, error)
	Get(ctx context.Context, id, viewerID int64) (*model.Article, bool, error)
	List(ctx context.Context, params repository.ListArticlesParams) (*article.ListResult, error)
	Update(ctx context.Context, id, userID int64, input article.UpdateInput) (*model.Article, error)
	Delete(ctx context.Context, id, userID int64) error
	CreateComment(ctx context.Context, articleID, userID int64, content string) (*model.Comment, error)
	ListComments(ctx context.Context, articleID, cursor int64, limit int) (*comment.Page, error)
	ToggleLike(ctx context.Context, articleID, userID int64) (bool, error)
}

// ArticleHandler は記事のHTTPハンドラー。
type ArticleHandler struct {
	service ArticleServiceInterface
	metrics metrics.MetricsCollector
}

// NewArticleHandler はArticleHandlerを生成する。
func NewArticleHandler(service ArticleServiceInterface, collector metrics.MetricsCollector) *ArticleHandler {
	return &ArticleHandler{
		service: service,
		metrics: collector,
	}
}

// --- リクエスト・レスポンス型 ---

type createArticleRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type updateArticleRequest struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

type articleResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	OwnerID   int64     `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// articleDetailResponse は単体取得のレスポンス。閲覧者のいいね状態を含む。
type articleDetailResponse struct {
	articleResponse
	IsLiked bool `json:"isLiked"`
}

type articleListResponse struct {
	TotalCount int               `json:"totalCount"`
	List       []articleResponse `json:"list"`
}

type commentRequest struct {
	Content string `json:"content"`
}

type commentResponse struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	OwnerID   int64     `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type commentPageResponse struct {
	NextCursor *int64            `json:"nextCursor"`
	List       []commentResponse `json:"list"`
}

type likeResponse struct {
	IsLiked bool `json:"isLiked"`
}

func toArticleResponse(a *model.Article) articleResponse {
	return articleResponse{
		ID:        a.ID,
		Title:     a.Title,
		Content:   a.Content,
		OwnerID:   a.OwnerID,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func toCommentResponse(c *model.Comment) commentResponse {
	return commentResponse{
		ID:        c.ID,
		Content:   c.Content,
		OwnerID:   c.OwnerID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toCommentPageResponse(page *comment.Page) commentPageResponse {
	list := make([]commentResponse, len(page.Comments))
	for i, c := range page.Comments {
		list[i] = toCommentResponse(c)
	}
	return commentPageResponse{
		NextCursor: page.NextCursor,
		List:       list,
	}
}

// --- ハンドラー ---

// Create は記事を作成する。
// POST /articles
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthenticated(w)
		return
	}

	var req createArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("リクエストボディを解析できません"))
		return
	}

	created, err := h.service.Create(r.Context(), userID, article.CreateInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toArticleResponse(created))
}

// Get は記事を取得する。ログイン済みの場合はいいね状態も含む。
// GET /articles/{id}
func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	// 任意セッション: 未ログインならviewerID=0
	viewerID, _ := middleware.UserIDFromContext(r.Context())

	found, isLiked, err := h.service.Get(r.Context(), id, viewerID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, articleDetailResponse{
		articleResponse: toArticleResponse(found),
		IsLiked:         isLiked,
	})
}

// List は記事一覧をオフセットページネーションで取得する。
// GET /articles?page=1&pageSize=10&orderBy=recent&keyword=...
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "pageSize", 10)
	if page < 1 {
		page = 1
	}

	result, err := h.service.List(r.Context(), repository.ListArticlesParams{
		Keyword: r.URL.Query().Get("keyword"),
		Order:   model.ArticleOrder(r.URL.Query().Get("orderBy")),
		Offset:  (page - 1) * pageSize,
		Limit:   pageSize,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	list := make([]articleResponse, len(result.Articles))
	for i, a := range result.Articles {
		list[i] = toArticleResponse(a)
	}
	writeJSON(w, http.StatusOK, articleListResponse{
		TotalCount: result.TotalCount,
		List:       list,
	})
}

// Update は記事を更新する。
// PATCH /articles/{id}
func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthenticated(w)
		return
	}

	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req updateArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("リクエストボディを解析できません"))
		return
	}

	updated, err := h.service.Update(r.Context(), id, userID, article.UpdateInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toArticleResponse(updated))
}

// Delete は記事を削除する。
// DELETE /articles/{id}
func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// CreateComment は記事にコメントを追加する。
// POST /articles/{id}/comments
func (h *ArticleHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
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

// ListComments は記事のコメント一覧をカーソルページネーションで取得する。
// GET /articles/{id}/comments?cursor=123&limit=10
func (h *ArticleHandler) ListComments(w http.ResponseWriter, r *http.Request) {
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

// ToggleLike は記事へのいいねをトグルする。
// POST /articles/{id}/like
func (h *ArticleHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
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
		h.metrics.RecordLikeToggle(model.ResourceArticle, isLiked)
	}
	writeJSON(w, http.StatusOK, likeResponse{IsLiked: isLiked})
}

// --- 共通ヘルパー ---

// parseIDParam はパスパラメータ{id}を数値IDとして解析する。
// 解析できない場合は400を書き込み、falseを返す。
func parseIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("IDは正の整数で指定してください"))
		return 0, false
	}
	return id, true
}

// queryInt はクエリパラメータを整数として読み取る。不正な値はデフォルトにする。
func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
