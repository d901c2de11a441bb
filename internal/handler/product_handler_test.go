package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/pandamarket/internal/comment"
	"github.com/hitoshi/pandamarket/internal/model"
	"github.com/hitoshi/pandamarket/internal/product"
	"github.com/hitoshi/pandamarket/internal/repository"
)

type mockProductService struct {
	createFn        func(ctx context.Context, ownerID int64, input product.CreateInput) (*model.Product, error)
	getFn           func(ctx context.Context, id, viewerID int64) (*model.Product, bool, error)
	listFn          func(ctx context.Context, params repository.ListProductsParams) (*product.ListResult, error)
	listLikedFn     func(ctx context.Context, userID int64) ([]*model.Product, error)
	updateFn        func(ctx context.Context, id, userID int64, input product.UpdateInput) (*model.Product, error)
	deleteFn        func(ctx context.Context, id, userID int64) error
	createCommentFn func(ctx context.Context, productID, userID int64, content string) (*model.Comment, error)
	listCommentsFn  func(ctx context.Context, productID, cursor int64, limit int) (*comment.Page, error)
	toggleLikeFn    func(ctx context.Context, productID, userID int64) (bool, error)
}

func (m *mockProductService) Create(ctx context.Context, ownerID int64, input product.CreateInput) (*model.Product, error) {
	return m.createFn(ctx, ownerID, input)
}

func (m *mockProductService) Get(ctx context.Context, id, viewerID int64) (*model.Product, bool, error) {
	return m.getFn(ctx, id, viewerID)
}

func (m *mockProductService) List(ctx context.Context, params repository.ListProductsParams) (*product.ListResult, error) {
	return m.listFn(ctx, params)
}

func (m *mockProductService) ListLiked(ctx context.Context, userID int64) ([]*model.Product, error) {
	return m.listLikedFn(ctx, userID)
}

func (m *mockProductService) Update(ctx context.Context, id, userID int64, input product.UpdateInput) (*model.Product, error) {
	return m.updateFn(ctx, id, userID, input)
}

func (m *mockProductService) Delete(ctx context.Context, id, userID int64) error {
	return m.deleteFn(ctx, id, userID)
}

func (m *mockProductService) CreateComment(ctx context.Context, productID, userID int64, content string) (*model.Comment, error) {
	return m.createCommentFn(ctx, productID, userID, content)
}

func (m *mockProductService) ListComments(ctx context.Context, productID, cursor int64, limit int) (*comment.Page, error) {
	return m.listCommentsFn(ctx, productID, cursor, limit)
}

func (m *mockProductService) ToggleLike(ctx context.Context, productID, userID int64) (bool, error) {
	return m.toggleLikeFn(ctx, productID, userID)
}

func newProductTestRouter(service *mockProductService) chi.Router {
	h := NewProductHandler(service, nil)
	r := chi.NewRouter()
	r.Post("/products", h.Create)
	r.Get("/products", h.List)
	r.Get("/products/liked", h.ListLiked)
	r.Get("/products/{id}", h.Get)
	r.Patch("/products/{id}", h.Update)
	r.Delete("/products/{id}", h.Delete)
	return r
}

func TestProductCreate_Created(t *testing.T) {
	service := &mockProductService{
		createFn: func(ctx context.Context, ownerID int64, input product.CreateInput) (*model.Product, error) {
			if input.Price != 4500 {
				t.Errorf("price = %d, want 4500", input.Price)
			}
			return &model.Product{
				ID:          1,
				Name:        input.Name,
				Description: input.Description,
				Price:       input.Price,
				Tags:        input.Tags,
				Images:      []string{},
				OwnerID:     ownerID,
			}, nil
		},
	}
	r := newProductTestRouter(service)

	body := strings.NewReader(`{"name":"camera","description":"used","price":4500,"tags":["electronics"]}`)
	req := withSession(httptest.NewRequest(http.MethodPost, "/products", body), 7)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	var got productResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if got.Name != "camera" || got.Price != 4500 || got.OwnerID != 7 {
		t.Errorf("unexpected body: %+v", got)
	}
}

func TestProductCreate_NegativePrice(t *testing.T) {
	service := &mockProductService{
		createFn: func(ctx context.Context, ownerID int64, input product.CreateInput) (*model.Product, error) {
			return nil, model.NewValidationError("価格は0以上にしてください")
		},
	}
	r := newProductTestRouter(service)

	body := strings.NewReader(`{"name":"camera","description":"used","price":-1}`)
	req := withSession(httptest.NewRequest(http.MethodPost, "/products", body), 7)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

// /products/liked が /products/{id} に吸われないことを確認する。
func TestProductListLiked_NotShadowedByIDRoute(t *testing.T) {
	service := &mockProductService{
		listLikedFn: func(ctx context.Context, userID int64) ([]*model.Product, error) {
			if userID != 7 {
				t.Errorf("userID = %d, want 7", userID)
			}
			return []*model.Product{{ID: 2, Name: "lens"}}, nil
		},
		getFn: func(ctx context.Context, id, viewerID int64) (*model.Product, bool, error) {
			t.Fatal("Get must not be called for /products/liked")
			return nil, false, nil
		},
	}
	r := newProductTestRouter(service)

	req := withSession(httptest.NewRequest(http.MethodGet, "/products/liked", nil), 7)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var list []productResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(list) != 1 || list[0].Name != "lens" {
		t.Errorf("unexpected list: %+v", list)
	}
}

func TestProductUpdate_PartialFields(t *testing.T) {
	service := &mockProductService{
		updateFn: func(ctx context.Context, id, userID int64, input product.UpdateInput) (*model.Product, error) {
			if input.Name != nil {
				t.Errorf("name should stay nil, got %q", *input.Name)
			}
			if input.Price == nil || *input.Price != 3000 {
				t.Errorf("price = %v, want 3000", input.Price)
			}
			return &model.Product{ID: id, Name: "camera", Price: 3000, OwnerID: userID}, nil
		},
	}
	r := newProductTestRouter(service)

	req := withSession(httptest.NewRequest(http.MethodPatch, "/products/5", strings.NewReader(`{"price":3000}`)), 7)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestProductResponse_NilSlicesSerializeAsEmptyArrays(t *testing.T) {
	service := &mockProductService{
		getFn: func(ctx context.Context, id, viewerID int64) (*model.Product, bool, error) {
			return &model.Product{ID: id, Name: "camera"}, false, nil
		},
	}
	r := newProductTestRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/products/5", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, `"tags":[]`) || !strings.Contains(body, `"images":[]`) {
		t.Errorf("nil slices must serialize as []: %s", body)
	}
}
