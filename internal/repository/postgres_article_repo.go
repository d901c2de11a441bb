package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/pandamarket/internal/model"
)

// PostgresArticleRepo はPostgreSQLを使用した記事リポジトリ。
type PostgresArticleRepo struct {
	db *sql.DB
}

// NewPostgresArticleRepo はPostgresArticleRepoを生成する。
func NewPostgresArticleRepo(db *sql.DB) *PostgresArticleRepo {
	return &PostgresArticleRepo{db: db}
}

// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
func (r *PostgresArticleRepo) FindByID(ctx context.Context, id int64) (*model.Article, error) {
	article := &model.Article{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, content, user_id, created_at, updated_at
		 FROM articles WHERE id = $1`,
		id,
	).Scan(&article.ID, &article.Title, &article.Content, &article.OwnerID,
		&article.CreatedAt, &article.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("記事の取得に失敗しました: %w", err)
	}

	return article, nil
}

// List は条件に合う記事一覧をオフセットページネーションで返す。
func (r *PostgresArticleRepo) List(ctx context.Context, params ListArticlesParams) ([]*model.Article, error) {
	query := `SELECT id, title, content, user_id, created_at, updated_at FROM articles`

	args := []interface{}{}
	argIndex := 1

	if params.Keyword != "" {
		query += fmt.Sprintf(" WHERE title ILIKE '%%' || $%d || '%%'", argIndex)
		args = append(args, params.Keyword)
		argIndex++
	}

	// recent: 作成日時降順（同時刻はID降順）、それ以外: ID昇順
	if params.Order == model.ArticleOrderRecent {
		query += " ORDER BY created_at DESC, id DESC"
	} else {
		query += " ORDER BY id ASC"
	}

	query += fmt.Sprintf(" OFFSET $%d LIMIT $%d", argIndex, argIndex+1)
	args = append(args, params.Offset, params.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("記事一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var articles []*model.Article
	for rows.Next() {
		article := &model.Article{}
		if err := rows.Scan(&article.ID, &article.Title, &article.Content,
			&article.OwnerID, &article.CreatedAt, &article.UpdatedAt); err != nil {
			return nil, fmt.Errorf("記事行の読み取りに失敗しました: %w", err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("記事一覧の走査に失敗しました: %w", err)
	}

	return articles, nil
}

// Count は条件に合う記事の総数を返す。
func (r *PostgresArticleRepo) Count(ctx context.Context, keyword string) (int, error) {
	query := `SELECT COUNT(*) FROM articles`
	args := []interface{}{}
	if keyword != "" {
		query += ` WHERE title ILIKE '%' || $1 || '%'`
		args = append(args, keyword)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("記事数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// Create は記事を作成し、採番されたIDと日時をarticleに反映する。
func (r *PostgresArticleRepo) Create(ctx context.Context, article *model.Article) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO articles (title, content, user_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		article.Title, article.Content, article.OwnerID,
	).Scan(&article.ID, &article.CreatedAt, &article.UpdatedAt)
	if err != nil {
		return fmt.Errorf("記事の作成に失敗しました: %w", err)
	}
	return nil
}

// UpdateOwned は所有者一致を条件に記事を部分更新し、更新後の記事を返す。
// WHERE句で所有者を照合する条件付き更新のため、読み取りと変更の間に
// 行が消えた場合でも他人の記事を書き換えることはない。
func (r *PostgresArticleRepo) UpdateOwned(ctx context.Context, id, ownerID int64, update ArticleUpdate) (*model.Article, error) {
	article := &model.Article{}
	err := r.db.QueryRowContext(ctx,
		`UPDATE articles
		 SET title = COALESCE($3, title),
		     content = COALESCE($4, content),
		     updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING id, title, content, user_id, created_at, updated_at`,
		id, ownerID, update.Title, update.Content,
	).Scan(&article.ID, &article.Title, &article.Content, &article.OwnerID,
		&article.CreatedAt, &article.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("記事の更新に失敗しました: %w", err)
	}

	return article, nil
}

// DeleteOwned は所有者一致を条件に記事を削除し、削除の有無を返す。
func (r *PostgresArticleRepo) DeleteOwned(ctx context.Context, id, ownerID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM articles WHERE id = $1 AND user_id = $2`,
		id, ownerID,
	)
	if err != nil {
		return false, fmt.Errorf("記事の削除に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// compile-time interface check
var _ ArticleRepository = (*PostgresArticleRepo)(nil)
