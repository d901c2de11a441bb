package comment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/pandamarket/internal/model"
	"github.com/hitoshi/pandamarket/internal/security"
)

// --- モック ---

type mockCommentRepo struct {
	findByIDFn    func(ctx context.Context, id int64) (*model.Comment, error)
	updateOwnedFn func(ctx context.Context, id, ownerID int64, content string) (*model.Comment, error)
	deleteOwnedFn func(ctx context.Context, id, ownerID int64) (bool, error)
}

func (m *mockCommentRepo) FindByID(ctx context.Context, id int64) (*model.Comment, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockCommentRepo) Create(ctx context.Context, comment *model.Comment) error {
	return nil
}
func (m *mockCommentRepo) ListByArticle(ctx context.Context, articleID, cursor int64, limit int) ([]*model.Comment, error) {
	return nil, nil
}
func (m *mockCommentRepo) ListByProduct(ctx context.Context, productID, cursor int64, limit int) ([]*model.Comment, error) {
	return nil, nil
}
func (m *mockCommentRepo) UpdateOwned(ctx context.Context, id, ownerID int64, content string) (*model.Comment, error) {
	return m.updateOwnedFn(ctx, id, ownerID, content)
}
func (m *mockCommentRepo) DeleteOwned(ctx context.Context, id, ownerID int64) (bool, error) {
	return m.deleteOwnedFn(ctx, id, ownerID)
}

func newTestService(repo *mockCommentRepo) *Service {
	return NewService(repo, security.NewContentSanitizer())
}

func assertCode(t *testing.T, err error, wantCode string) {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != wantCode {
		t.Errorf("expected %s, got %v", wantCode, err)
	}
}

// --- 所有者ゲート ---

// 所有者によるコメント更新が成功し、本文がサニタイズされることを検証
func TestUpdate_Owner_Succeeds(t *testing.T) {
	repo := &mockCommentRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.Comment, error) {
			return &model.Comment{ID: id, OwnerID: 7, Content: "旧"}, nil
		},
		updateOwnedFn: func(ctx context.Context, id, ownerID int64, content string) (*model.Comment, error) {
			if content != "新しい本文" {
				t.Errorf("content = %q, want sanitized %q", content, "新しい本文")
			}
			return &model.Comment{ID: id, OwnerID: ownerID, Content: content}, nil
		},
	}
	svc := newTestService(repo)

	updated, err := svc.Update(context.Background(), 1, 7, "<b>新しい本文</b>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Content != "新しい本文" {
		t.Errorf("Content = %q, want %q", updated.Content, "新しい本文")
	}
}

// 所有者以外によるコメント更新が403になることを検証
func TestUpdate_NonOwner_Forbidden(t *testing.T) {
	repo := &mockCommentRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.Comment, error) {
			return &model.Comment{ID: id, OwnerID: 7}, nil
		},
	}
	svc := newTestService(repo)

	_, err := svc.Update(context.Background(), 1, 8, "本文")
	assertCode(t, err, model.ErrCodeForbidden)
}

// 存在しないコメントへの更新が404になることを検証
func TestUpdate_Missing_NotFound(t *testing.T) {
	repo := &mockCommentRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.Comment, error) {
			return nil, nil
		},
	}
	svc := newTestService(repo)

	_, err := svc.Update(context.Background(), 99, 7, "本文")
	assertCode(t, err, model.ErrCodeCommentNotFound)
}

// コメント削除の所有者ゲートを検証
func TestDelete_GateMatrix(t *testing.T) {
	tests := []struct {
		name     string
		owner    int64
		caller   int64
		missing  bool
		wantCode string
	}{
		{name: "所有者は削除できる", owner: 7, caller: 7},
		{name: "所有者以外は403", owner: 7, caller: 8, wantCode: model.ErrCodeForbidden},
		{name: "存在しないコメントは404", missing: true, caller: 7, wantCode: model.ErrCodeCommentNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockCommentRepo{
				findByIDFn: func(ctx context.Context, id int64) (*model.Comment, error) {
					if tt.missing {
						return nil, nil
					}
					return &model.Comment{ID: id, OwnerID: tt.owner}, nil
				},
				deleteOwnedFn: func(ctx context.Context, id, ownerID int64) (bool, error) {
					return true, nil
				},
			}
			svc := newTestService(repo)

			err := svc.Delete(context.Background(), 1, tt.caller)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			assertCode(t, err, tt.wantCode)
		})
	}
}

// --- ページ構築 ---

// ClampLimitが範囲外の値をデフォルト・上限に丸めることを検証
func TestClampLimit(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, DefaultLimit},
		{-1, DefaultLimit},
		{5, 5},
		{MaxLimit, MaxLimit},
		{MaxLimit + 1, MaxLimit},
	}
	for _, tt := range tests {
		if got := ClampLimit(tt.in); got != tt.want {
			t.Errorf("ClampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

// BuildPageがlimit+1件目をカーソルにし、最終ページでnilを返すことを検証
func TestBuildPage(t *testing.T) {
	comments := func(ids ...int64) []*model.Comment {
		result := make([]*model.Comment, len(ids))
		for i, id := range ids {
			result[i] = &model.Comment{ID: id}
		}
		return result
	}

	// 超過分あり: 次ページのカーソルは3件目のID
	page := BuildPage(comments(30, 29, 28), 2)
	if len(page.Comments) != 2 {
		t.Fatalf("len = %d, want 2", len(page.Comments))
	}
	if page.NextCursor == nil || *page.NextCursor != 28 {
		t.Errorf("NextCursor = %v, want 28", page.NextCursor)
	}

	// ちょうどlimit件: 最終ページ
	page = BuildPage(comments(30, 29), 2)
	if len(page.Comments) != 2 || page.NextCursor != nil {
		t.Errorf("expected final page without cursor, got %+v", page)
	}

	// 空: 空スライス（nilではない）を返す
	page = BuildPage(nil, 2)
	if page.Comments == nil || len(page.Comments) != 0 || page.NextCursor != nil {
		t.Errorf("expected empty final page, got %+v", page)
	}
}

// 25件をlimit=10で走査すると3ページ(10+10+5)になり、
// 重複も欠落もなく最終ページのカーソルがnilになることを検証
func TestCursorWalk_ExactlyOnce(t *testing.T) {
	// 新しいコメントほどIDと作成日時が大きい全25件（降順で保持）
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	var all []*model.Comment
	for id := int64(25); id >= 1; id-- {
		all = append(all, &model.Comment{ID: id, CreatedAt: base.Add(time.Duration(id) * time.Minute)})
	}

	// カーソル行を含むキーセットシークのインメモリ版
	fetch := func(cursor int64, limit int) []*model.Comment {
		start := 0
		if cursor > 0 {
			for i, c := range all {
				if c.ID == cursor {
					start = i
					break
				}
			}
		}
		end := start + limit
		if end > len(all) {
			end = len(all)
		}
		return all[start:end]
	}

	limit := 10
	var seen []int64
	var cursor int64
	pages := 0
	for {
		page := BuildPage(fetch(cursor, limit+1), limit)
		pages++
		for _, c := range page.Comments {
			seen = append(seen, c.ID)
		}
		if page.NextCursor == nil {
			break
		}
		cursor = *page.NextCursor
	}

	if pages != 3 {
		t.Errorf("pages = %d, want 3", pages)
	}
	if len(seen) != 25 {
		t.Fatalf("len(seen) = %d, want 25", len(seen))
	}
	// 降順で1回ずつ現れる
	for i, id := range seen {
		if want := int64(25 - i); id != want {
			t.Errorf("seen[%d] = %d, want %d", i, id, want)
		}
	}
}
