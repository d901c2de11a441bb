// Package token はアクセス/リフレッシュトークンの発行と検証を提供する。
//
// トークンはHS256で署名されたJWTで、サブジェクト（ユーザーID）と有効期限を持つ。
// アクセス用とリフレッシュ用は異なる秘密鍵で署名されるため、
// リフレッシュトークンをアクセストークンとして提示しても検証は必ず失敗する。
// 発行・検証はすべて純粋な計算であり、I/Oや副作用を持たない。
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Kind はトークンの種別を表す。
type Kind string

const (
	// KindAccess は認証が必要な全リクエストで提示される短命トークン。
	KindAccess Kind = "access"
	// KindRefresh はトークンペアの再発行にのみ使われる長命トークン。
	KindRefresh Kind = "refresh"
)

// 検証失敗の理由。サービス層の境界でAPIErrorに翻訳される。
var (
	// ErrInvalid は署名不一致・形式不正・種別違いを表す。
	ErrInvalid = errors.New("token: invalid token")
	// ErrExpired は有効期限切れを表す。
	ErrExpired = errors.New("token: token expired")
)

// Config はトークンサービスの設定。
type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Pair は同一サブジェクトに対して同時発行されたトークンの組。
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// Service はトークンの発行と検証を行う。
type Service struct {
	config Config

	// now は現在時刻の取得関数。テストで差し替える。
	now func() time.Time
}

// NewService はServiceを生成する。
func NewService(config Config) *Service {
	return &Service{
		config: config,
		now:    time.Now,
	}
}

// IssuePair は指定ユーザーのアクセス/リフレッシュトークンの組を発行する。
// アクセストークンはAccessTTL、リフレッシュトークンはRefreshTTLで失効する。
func (s *Service) IssuePair(userID int64) (*Pair, error) {
	accessToken, err := s.sign(userID, s.config.AccessSecret, s.config.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken, err := s.sign(userID, s.config.RefreshSecret, s.config.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &Pair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Verify はトークンを指定種別の鍵で検証し、サブジェクトのユーザーIDを返す。
// 失効している場合はErrExpired、それ以外の検証失敗はErrInvalidを返す。
func (s *Service) Verify(tokenString string, kind Kind) (int64, error) {
	secret := s.config.AccessSecret
	if kind == KindRefresh {
		secret = s.config.RefreshSecret
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(secret), nil
		},
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrExpired
		}
		return 0, ErrInvalid
	}
	if !parsed.Valid {
		return 0, ErrInvalid
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalid
	}

	return userID, nil
}

// sign はサブジェクトと有効期限を持つJWTを生成して署名する。
func (s *Service) sign(userID int64, secret string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}
