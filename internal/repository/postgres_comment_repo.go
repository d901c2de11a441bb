package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/pandamarket/internal/model"
)

// PostgresCommentRepo はPostgreSQLを使用したコメントリポジトリ。
type PostgresCommentRepo struct {
	db *sql.DB
}

// NewPostgresCommentRepo はPostgresCommentRepoを生成する。
func NewPostgresCommentRepo(db *sql.DB) *PostgresCommentRepo {
	return &PostgresCommentRepo{db: db}
}

const commentColumns = `id, content, user_id, article_id, product_id, created_at, updated_at`

// FindByID は指定IDのコメントを取得する。見つからない場合はnilを返す。
func (r *PostgresCommentRepo) FindByID(ctx context.Context, id int64) (*model.Comment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE id = $1`, id)

	comment, err := scanComment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("コメントの取得に失敗しました: %w", err)
	}
	return comment, nil
}

// Create はコメントを作成し、採番されたIDと日時をcommentに反映する。
func (r *PostgresCommentRepo) Create(ctx context.Context, comment *model.Comment) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO comments (content, user_id, article_id, product_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		comment.Content, comment.OwnerID, comment.ArticleID, comment.ProductID,
	).Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("コメントの作成に失敗しました: %w", err)
	}
	return nil
}

// ListByArticle は記事配下のコメントを作成日時降順（同時刻はID降順）で返す。
// cursorが正の場合、カーソル行を含むキーセットシークで読み始める。
func (r *PostgresCommentRepo) ListByArticle(ctx context.Context, articleID, cursor int64, limit int) ([]*model.Comment, error) {
	return r.listByParent(ctx, "article_id", articleID, cursor, limit)
}

// ListByProduct は商品配下のコメントをListByArticleと同じ規則で返す。
func (r *PostgresCommentRepo) ListByProduct(ctx context.Context, productID, cursor int64, limit int) ([]*model.Comment, error) {
	return r.listByParent(ctx, "product_id", productID, cursor, limit)
}

// listByParent はキーセットシークによるコメント一覧取得の共通処理。
// ソートキー(created_at, id)はユニークなので、カーソル行を含む範囲条件が
// 重複も欠落もないページ境界になる。
func (r *PostgresCommentRepo) listByParent(ctx context.Context, parentColumn string, parentID, cursor int64, limit int) ([]*model.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE ` + parentColumn + ` = $1`
	args := []interface{}{parentID}

	if cursor > 0 {
		query += ` AND (created_at, id) <= (SELECT created_at, id FROM comments WHERE id = $2)`
		args = append(args, cursor)
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", len(args)+1)
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("コメント一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var comments []*model.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("コメント行の読み取りに失敗しました: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("コメント一覧の走査に失敗しました: %w", err)
	}

	return comments, nil
}

// UpdateOwned は所有者一致を条件にコメント本文を更新し、更新後のコメントを返す。
func (r *PostgresCommentRepo) UpdateOwned(ctx context.Context, id, ownerID int64, content string) (*model.Comment, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE comments
		 SET content = $3, updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+commentColumns,
		id, ownerID, content)

	comment, err := scanComment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("コメントの更新に失敗しました: %w", err)
	}
	return comment, nil
}

// DeleteOwned は所有者一致を条件にコメントを削除し、削除の有無を返す。
func (r *PostgresCommentRepo) DeleteOwned(ctx context.Context, id, ownerID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM comments WHERE id = $1 AND user_id = $2`,
		id, ownerID,
	)
	if err != nil {
		return false, fmt.Errorf("コメントの削除に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// scanComment は1行分のコメントをスキャンする。
func scanComment(row rowScanner) (*model.Comment, error) {
	comment := &model.Comment{}
	var articleID, productID sql.NullInt64
	if err := row.Scan(
		&comment.ID, &comment.Content, &comment.OwnerID,
		&articleID, &productID,
		&comment.CreatedAt, &comment.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if articleID.Valid {
		comment.ArticleID = &articleID.Int64
	}
	if productID.Valid {
		comment.ProductID = &productID.Int64
	}
	return comment, nil
}

// compile-time interface check
var _ CommentRepository = (*PostgresCommentRepo)(nil)
