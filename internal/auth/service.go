// Package auth は登録・ログイン・トークン更新・プロフィール管理の
// ドメインロジックを提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hitoshi/pandamarket/internal/model"
	"github.com/hitoshi/pandamarket/internal/repository"
	"github.com/hitoshi/pandamarket/internal/token"
)

// TokenIssuer はトークンペアの発行・検証インターフェース。
type TokenIssuer interface {
	IssuePair(userID int64) (*token.Pair, error)
	Verify(tokenString string, kind token.Kind) (int64, error)
}

// PasswordHasher はパスワードのハッシュ化・照合インターフェース。
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// Service は認証・プロフィール管理のサービス層。
type Service struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository, hasher PasswordHasher, tokens TokenIssuer) *Service {
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
	}
}

// RegisterInput はユーザー登録の入力。
type RegisterInput struct {
	Email    string
	Nickname string
	Password string
}

// Register は新規ユーザーを登録し、トークンペアを発行する。
// メールアドレスとニックネームはそれぞれ一意でなければならない。
func (s *Service) Register(ctx context.Context, input RegisterInput) (*model.User, *token.Pair, error) {
	email := strings.TrimSpace(input.Email)
	nickname := strings.TrimSpace(input.Nickname)

	if err := validateEmail(email); err != nil {
		return nil, nil, err
	}
	if nickname == "" {
		return nil, nil, model.NewValidationError("ニックネームは必須です")
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, nil, err
	}

	emailCount, err := s.userRepo.CountByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("メールアドレスの重複確認に失敗しました: %w", err)
	}
	if emailCount > 0 {
		return nil, nil, model.NewEmailTakenError()
	}

	nicknameCount, err := s.userRepo.CountByNickname(ctx, nickname)
	if err != nil {
		return nil, nil, fmt.Errorf("ニックネームの重複確認に失敗しました: %w", err)
	}
	if nicknameCount > 0 {
		return nil, nil, model.NewNicknameTakenError()
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}

	user := &model.User{
		Email:    email,
		Nickname: nickname,
		Password: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("トークンの発行に失敗しました: %w", err)
	}

	slog.Info("ユーザーを登録しました",
		slog.Int64("user_id", user.ID),
	)

	return user, pair, nil
}

// Login はメールアドレスとパスワードでユーザーを認証し、トークンペアを発行する。
// メールアドレスの不在とパスワードの不一致は同一のエラーで応答する。
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, *token.Pair, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil || !s.hasher.Verify(password, user.Password) {
		return nil, nil, model.NewInvalidCredentialsError()
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("トークンの発行に失敗しました: %w", err)
	}

	slog.Info("ログインしました",
		slog.Int64("user_id", user.ID),
	)

	return user, pair, nil
}

// Refresh はリフレッシュトークンを検証し、新しいトークンペアを発行する。
// 検証失敗・対応ユーザーの不在はどちらもINVALID_REFRESH_TOKENになる。
// リフレッシュトークン自体は失効させない（サーバー側に状態を持たない）。
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*token.Pair, error) {
	userID, err := s.tokens.Verify(refreshToken, token.KindRefresh)
	if err != nil {
		return nil, model.NewInvalidRefreshTokenError()
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewInvalidRefreshTokenError()
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, fmt.Errorf("トークンの発行に失敗しました: %w", err)
	}
	return pair, nil
}

// GetMe はセッションユーザー自身のプロフィールを取得する。
func (s *Service) GetMe(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

// ProfileUpdate はプロフィールの部分更新内容。nilフィールドは変更しない。
type ProfileUpdate struct {
	Nickname *string
	Image    *string
}

// UpdateProfile はニックネームとプロフィール画像を更新する。
// ニックネームを変更する場合は一意性を確認する。
func (s *Service) UpdateProfile(ctx context.Context, userID int64, update ProfileUpdate) (*model.User, error) {
	user, err := s.GetMe(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Nickname != nil {
		nickname := strings.TrimSpace(*update.Nickname)
		if nickname == "" {
			return nil, model.NewValidationError("ニックネームは必須です")
		}
		if nickname != user.Nickname {
			count, err := s.userRepo.CountByNickname(ctx, nickname)
			if err != nil {
				return nil, fmt.Errorf("ニックネームの重複確認に失敗しました: %w", err)
			}
			if count > 0 {
				return nil, model.NewNicknameTakenError()
			}
			user.Nickname = nickname
		}
	}
	if update.Image != nil {
		user.Image = update.Image
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("プロフィールの更新に失敗しました: %w", err)
	}
	return user, nil
}

// UpdatePassword は現在のパスワードを確認したうえで新しいパスワードに変更する。
func (s *Service) UpdatePassword(ctx context.Context, userID int64, current, newPassword string) error {
	user, err := s.GetMe(ctx, userID)
	if err != nil {
		return err
	}

	if !s.hasher.Verify(current, user.Password) {
		return model.NewValidationError("現在のパスワードが正しくありません")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}
	user.Password = hash

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("パスワードの更新に失敗しました: %w", err)
	}

	slog.Info("パスワードを変更しました",
		slog.Int64("user_id", userID),
	)
	return nil
}

// validateEmail はメールアドレスの形式を最低限検証する。
func validateEmail(email string) error {
	if email == "" {
		return model.NewValidationError("メールアドレスは必須です")
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return model.NewValidationError("メールアドレスの形式が正しくありません")
	}
	return nil
}

// validatePassword はパスワードの最低要件を検証する。
func validatePassword(password string) error {
	if len(password) < 8 {
		return model.NewValidationError("パスワードは8文字以上にしてください")
	}
	return nil
}
