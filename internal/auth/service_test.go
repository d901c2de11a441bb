package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/pandamarket/internal/model"
	"github.com/hitoshi/pandamarket/internal/token"
)

// --- モック ---

type mockUserRepo struct {
	findByIDFn        func(ctx context.Context, id int64) (*model.User, error)
	findByEmailFn     func(ctx context.Context, email string) (*model.User, error)
	countByEmailFn    func(ctx context.Context, email string) (int, error)
	countByNicknameFn func(ctx context.Context, nickname string) (int, error)
	createFn          func(ctx context.Context, user *model.User) error
	updateFn          func(ctx context.Context, user *model.User) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return m.findByEmailFn(ctx, email)
}
func (m *mockUserRepo) CountByEmail(ctx context.Context, email string) (int, error) {
	if m.countByEmailFn != nil {
		return m.countByEmailFn(ctx, email)
	}
	return 0, nil
}
func (m *mockUserRepo) CountByNickname(ctx context.Context, nickname string) (int, error) {
	if m.countByNicknameFn != nil {
		return m.countByNicknameFn(ctx, nickname)
	}
	return 0, nil
}
func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	user.ID = 1
	return nil
}
func (m *mockUserRepo) Update(ctx context.Context, user *model.User) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, user)
	}
	return nil
}

type mockHasher struct {
	hashFn   func(plain string) (string, error)
	verifyFn func(plain, hash string) bool
}

func (m *mockHasher) Hash(plain string) (string, error) {
	if m.hashFn != nil {
		return m.hashFn(plain)
	}
	return "hashed:" + plain, nil
}
func (m *mockHasher) Verify(plain, hash string) bool {
	if m.verifyFn != nil {
		return m.verifyFn(plain, hash)
	}
	return hash == "hashed:"+plain
}

type mockTokenIssuer struct {
	issuePairFn func(userID int64) (*token.Pair, error)
	verifyFn    func(tokenString string, kind token.Kind) (int64, error)
}

func (m *mockTokenIssuer) IssuePair(userID int64) (*token.Pair, error) {
	if m.issuePairFn != nil {
		return m.issuePairFn(userID)
	}
	return &token.Pair{AccessToken: "access", RefreshToken: "refresh"}, nil
}
func (m *mockTokenIssuer) Verify(tokenString string, kind token.Kind) (int64, error) {
	return m.verifyFn(tokenString, kind)
}

func newTestService(repo *mockUserRepo, tokens *mockTokenIssuer) *Service {
	if tokens == nil {
		tokens = &mockTokenIssuer{}
	}
	return NewService(repo, &mockHasher{}, tokens)
}

// --- Register ---

// 正常な入力で登録が成功し、トークンペアが発行されることを検証
func TestRegister_Success(t *testing.T) {
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			user.ID = 42
			return nil
		},
	}
	svc := newTestService(repo, nil)

	user, pair, err := svc.Register(context.Background(), RegisterInput{
		Email:    "panda@example.com",
		Nickname: "panda",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != 42 {
		t.Errorf("user.ID = %d, want 42", user.ID)
	}
	if user.Password != "hashed:password123" {
		t.Errorf("password should be stored hashed, got %q", user.Password)
	}
	if pair == nil || pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("expected non-empty token pair")
	}
}

// メールアドレス重複で登録が拒否されることを検証
func TestRegister_DuplicateEmail(t *testing.T) {
	repo := &mockUserRepo{
		countByEmailFn: func(ctx context.Context, email string) (int, error) {
			return 1, nil
		},
	}
	svc := newTestService(repo, nil)

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Email:    "taken@example.com",
		Nickname: "panda",
		Password: "password123",
	})
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeEmailTaken {
		t.Errorf("expected EMAIL_TAKEN, got %v", err)
	}
}

// ニックネーム重複で登録が拒否されることを検証
func TestRegister_DuplicateNickname(t *testing.T) {
	repo := &mockUserRepo{
		countByNicknameFn: func(ctx context.Context, nickname string) (int, error) {
			return 1, nil
		},
	}
	svc := newTestService(repo, nil)

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Email:    "panda@example.com",
		Nickname: "taken",
		Password: "password123",
	})
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeNicknameTaken {
		t.Errorf("expected NICKNAME_TAKEN, got %v", err)
	}
}

// 不正な入力が検証エラーになることを検証
func TestRegister_ValidationErrors(t *testing.T) {
	svc := newTestService(&mockUserRepo{}, nil)

	tests := []struct {
		name  string
		input RegisterInput
	}{
		{"メールアドレスなし", RegisterInput{Nickname: "p", Password: "password123"}},
		{"メールアドレス形式不正", RegisterInput{Email: "invalid", Nickname: "p", Password: "password123"}},
		{"ニックネームなし", RegisterInput{Email: "a@b.com", Password: "password123"}},
		{"パスワード短すぎ", RegisterInput{Email: "a@b.com", Nickname: "p", Password: "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Register(context.Background(), tt.input)
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidation {
				t.Errorf("expected VALIDATION_ERROR, got %v", err)
			}
		})
	}
}

// --- Login ---

// 正しい資格情報でログインが成功することを検証
func TestLogin_Success(t *testing.T) {
	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 7, Email: email, Password: "hashed:secret123"}, nil
		},
	}
	svc := newTestService(repo, nil)

	user, pair, err := svc.Login(context.Background(), "panda@example.com", "secret123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != 7 {
		t.Errorf("user.ID = %d, want 7", user.ID)
	}
	if pair == nil {
		t.Fatal("expected token pair")
	}
}

// 存在しないメールアドレスとパスワード不一致が同一エラーになることを検証
func TestLogin_InvalidCredentials(t *testing.T) {
	tests := []struct {
		name string
		repo *mockUserRepo
	}{
		{
			"メールアドレス不在",
			&mockUserRepo{
				findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
					return nil, nil
				},
			},
		},
		{
			"パスワード不一致",
			&mockUserRepo{
				findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
					return &model.User{ID: 7, Password: "hashed:other"}, nil
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(tt.repo, nil)
			_, _, err := svc.Login(context.Background(), "panda@example.com", "secret123")
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidCredentials {
				t.Errorf("expected INVALID_CREDENTIALS, got %v", err)
			}
		})
	}
}

// --- Refresh ---

// 有効なリフレッシュトークンで新しいペアが発行されることを検証
func TestRefresh_Success(t *testing.T) {
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id}, nil
		},
	}
	tokens := &mockTokenIssuer{
		verifyFn: func(tokenString string, kind token.Kind) (int64, error) {
			if kind != token.KindRefresh {
				t.Errorf("kind = %v, want KindRefresh", kind)
			}
			return 7, nil
		},
	}
	svc := newTestService(repo, tokens)

	pair, err := svc.Refresh(context.Background(), "valid-refresh")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pair == nil {
		t.Fatal("expected token pair")
	}
}

// 検証失敗とユーザー不在がどちらもINVALID_REFRESH_TOKENになることを検証
func TestRefresh_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		repo   *mockUserRepo
		tokens *mockTokenIssuer
	}{
		{
			"トークン検証失敗",
			&mockUserRepo{},
			&mockTokenIssuer{
				verifyFn: func(tokenString string, kind token.Kind) (int64, error) {
					return 0, token.ErrInvalid
				},
			},
		},
		{
			"対応ユーザー不在",
			&mockUserRepo{
				findByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
					return nil, nil
				},
			},
			&mockTokenIssuer{
				verifyFn: func(tokenString string, kind token.Kind) (int64, error) {
					return 7, nil
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(tt.repo, tt.tokens)
			_, err := svc.Refresh(context.Background(), "bad-refresh")
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidRefreshToken {
				t.Errorf("expected INVALID_REFRESH_TOKEN, got %v", err)
			}
		})
	}
}

// --- プロフィール ---

// UpdateProfileがnilフィールドを変更しないことを検証
func TestUpdateProfile_PartialUpdate(t *testing.T) {
	image := "https://example.com/old.png"
	var saved *model.User
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Nickname: "old", Image: &image}, nil
		},
		updateFn: func(ctx context.Context, user *model.User) error {
			saved = user
			return nil
		},
	}
	svc := newTestService(repo, nil)

	newNickname := "new"
	user, err := svc.UpdateProfile(context.Background(), 7, ProfileUpdate{Nickname: &newNickname})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Nickname != "new" {
		t.Errorf("Nickname = %q, want %q", user.Nickname, "new")
	}
	if user.Image == nil || *user.Image != image {
		t.Error("Image should be unchanged")
	}
	if saved == nil {
		t.Fatal("expected Update to be called")
	}
}

// 他ユーザーが使用中のニックネームへの変更が拒否されることを検証
func TestUpdateProfile_NicknameTaken(t *testing.T) {
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Nickname: "old"}, nil
		},
		countByNicknameFn: func(ctx context.Context, nickname string) (int, error) {
			return 1, nil
		},
	}
	svc := newTestService(repo, nil)

	taken := "taken"
	_, err := svc.UpdateProfile(context.Background(), 7, ProfileUpdate{Nickname: &taken})
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeNicknameTaken {
		t.Errorf("expected NICKNAME_TAKEN, got %v", err)
	}
}

// 現在のパスワードが一致しない場合に変更が拒否されることを検証
func TestUpdatePassword_WrongCurrent(t *testing.T) {
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Password: "hashed:correct1"}, nil
		},
	}
	svc := newTestService(repo, nil)

	err := svc.UpdatePassword(context.Background(), 7, "wrong", "newpassword1")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidation {
		t.Errorf("expected VALIDATION_ERROR, got %v", err)
	}
}

// パスワード変更が成功し、新しいハッシュが保存されることを検証
func TestUpdatePassword_Success(t *testing.T) {
	var saved *model.User
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Password: "hashed:current1"}, nil
		},
		updateFn: func(ctx context.Context, user *model.User) error {
			saved = user
			return nil
		},
	}
	svc := newTestService(repo, nil)

	if err := svc.UpdatePassword(context.Background(), 7, "current1", "newpassword1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved == nil || saved.Password != "hashed:newpassword1" {
		t.Errorf("expected new hash to be saved, got %+v", saved)
	}
}
