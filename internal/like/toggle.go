// Package like はいいねのトグル処理を提供する。
//
// 記事用・商品用のLikeRepositoryを同一のロジックで扱い、
// 「押されていなければ付け、押されていれば外す」冪等なトグルを実装する。
package like

import (
	"context"
	"errors"

	"github.com/hitoshi/pandamarket/internal/repository"
)

// Toggler はひとつの対象種別（記事または商品）に対するいいねトグルを提供する。
type Toggler struct {
	likeRepo repository.LikeRepository
}

// NewToggler はTogglerを生成する。
func NewToggler(likeRepo repository.LikeRepository) *Toggler {
	return &Toggler{likeRepo: likeRepo}
}

// Toggle は(userID, targetID)のいいね状態を反転し、反転後の状態を返す。
// trueは「いいね済み」、falseは「いいねなし」を意味する。
//
// 同一ペアに対する並行トグルでINSERTがUNIQUE制約違反になった場合、
// 別のリクエストが先にいいねを付けたことを意味するので、
// エラーにせず「いいね済み」として扱う。
func (t *Toggler) Toggle(ctx context.Context, userID, targetID int64) (bool, error) {
	existing, err := t.likeRepo.Find(ctx, userID, targetID)
	if err != nil {
		return false, err
	}

	if existing != nil {
		if _, err := t.likeRepo.Delete(ctx, userID, targetID); err != nil {
			return false, err
		}
		return false, nil
	}

	if err := t.likeRepo.Create(ctx, userID, targetID); err != nil {
		if errors.Is(err, repository.ErrDuplicateLike) {
			return true, nil
		}
		return false, err
	}
	return true, nil
}

// IsLiked は(userID, targetID)のいいね状態を返す。
// userIDが0以下（未ログイン閲覧）の場合は常にfalseを返す。
func (t *Toggler) IsLiked(ctx context.Context, userID, targetID int64) (bool, error) {
	if userID <= 0 {
		return false, nil
	}
	existing, err := t.likeRepo.Find(ctx, userID, targetID)
	if err != nil {
		return false, err
	}
	return existing != nil, nil
}
