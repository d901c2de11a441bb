package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/pandamarket/internal/model"
)

// uniqueViolation はPostgreSQLのUNIQUE制約違反のエラーコード。
const uniqueViolation = "23505"

// PostgresLikeRepo はPostgreSQLを使用したいいねリポジトリ。
// 記事用・商品用の2テーブルを同一の実装で扱い、テーブル名と対象カラム名
// だけが異なる。
type PostgresLikeRepo struct {
	db           *sql.DB
	table        string
	targetColumn string
}

// NewPostgresArticleLikeRepo は記事いいね用のリポジトリを生成する。
func NewPostgresArticleLikeRepo(db *sql.DB) *PostgresLikeRepo {
	return &PostgresLikeRepo{db: db, table: "article_likes", targetColumn: "article_id"}
}

// NewPostgresProductLikeRepo は商品いいね用のリポジトリを生成する。
func NewPostgresProductLikeRepo(db *sql.DB) *PostgresLikeRepo {
	return &PostgresLikeRepo{db: db, table: "product_likes", targetColumn: "product_id"}
}

// Find は指定ペアのいいね行を取得する。見つからない場合はnilを返す。
func (r *PostgresLikeRepo) Find(ctx context.Context, userID, targetID int64) (*model.Like, error) {
	like := &model.Like{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, `+r.targetColumn+`, created_at FROM `+r.table+
			` WHERE user_id = $1 AND `+r.targetColumn+` = $2`,
		userID, targetID,
	).Scan(&like.ID, &like.UserID, &like.TargetID, &like.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("いいねの取得に失敗しました: %w", err)
	}
	return like, nil
}

// Create はいいね行を作成する。ペアのUNIQUE制約違反はErrDuplicateLikeを返す。
func (r *PostgresLikeRepo) Create(ctx context.Context, userID, targetID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO `+r.table+` (user_id, `+r.targetColumn+`) VALUES ($1, $2)`,
		userID, targetID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateLike
		}
		return fmt.Errorf("いいねの作成に失敗しました: %w", err)
	}
	return nil
}

// Delete は指定ペアのいいね行を削除し、削除の有無を返す。
func (r *PostgresLikeRepo) Delete(ctx context.Context, userID, targetID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM `+r.table+` WHERE user_id = $1 AND `+r.targetColumn+` = $2`,
		userID, targetID)
	if err != nil {
		return false, fmt.Errorf("いいねの削除に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// compile-time interface check
var _ LikeRepository = (*PostgresLikeRepo)(nil)
