package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/pandamarket/internal/model"
)

// PostgresProductRepo はPostgreSQLを使用した商品リポジトリ。
type PostgresProductRepo struct {
	db *sql.DB
}

// NewPostgresProductRepo はPostgresProductRepoを生成する。
func NewPostgresProductRepo(db *sql.DB) *PostgresProductRepo {
	return &PostgresProductRepo{db: db}
}

const productColumns = `id, name, description, price, tags, images, user_id, created_at, updated_at`

// FindByID は指定IDの商品を取得する。見つからない場合はnilを返す。
func (r *PostgresProductRepo) FindByID(ctx context.Context, id int64) (*model.Product, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)

	product, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("商品の取得に失敗しました: %w", err)
	}
	return product, nil
}

// List は条件に合う商品一覧をオフセットページネーションで返す。
// キーワードは商品名または説明文に部分一致する。
func (r *PostgresProductRepo) List(ctx context.Context, params ListProductsParams) ([]*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`

	args := []interface{}{}
	argIndex := 1

	if params.Keyword != "" {
		query += fmt.Sprintf(
			" WHERE (name ILIKE '%%' || $%d || '%%' OR description ILIKE '%%' || $%d || '%%')",
			argIndex, argIndex)
		args = append(args, params.Keyword)
		argIndex++
	}

	if params.Order == model.ArticleOrderRecent {
		query += " ORDER BY created_at DESC, id DESC"
	} else {
		query += " ORDER BY id ASC"
	}

	query += fmt.Sprintf(" OFFSET $%d LIMIT $%d", argIndex, argIndex+1)
	args = append(args, params.Offset, params.Limit)

	return r.queryProducts(ctx, query, args...)
}

// Count は条件に合う商品の総数を返す。
func (r *PostgresProductRepo) Count(ctx context.Context, keyword string) (int, error) {
	query := `SELECT COUNT(*) FROM products`
	args := []interface{}{}
	if keyword != "" {
		query += ` WHERE (name ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%')`
		args = append(args, keyword)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("商品数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// ListByOwner は指定ユーザーが登録した商品を新着順で返す。
func (r *PostgresProductRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*model.Product, error) {
	return r.queryProducts(ctx,
		`SELECT `+productColumns+` FROM products
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC`,
		ownerID)
}

// ListLikedByUser は指定ユーザーがいいねした商品をいいね日時の降順で返す。
func (r *PostgresProductRepo) ListLikedByUser(ctx context.Context, userID int64) ([]*model.Product, error) {
	return r.queryProducts(ctx,
		`SELECT p.id, p.name, p.description, p.price, p.tags, p.images, p.user_id, p.created_at, p.updated_at
		 FROM product_likes l
		 JOIN products p ON p.id = l.product_id
		 WHERE l.user_id = $1
		 ORDER BY l.created_at DESC, l.id DESC`,
		userID)
}

// Create は商品を作成し、採番されたIDと日時をproductに反映する。
func (r *PostgresProductRepo) Create(ctx context.Context, product *model.Product) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO products (name, description, price, tags, images, user_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		product.Name, product.Description, product.Price,
		pq.Array(product.Tags), pq.Array(product.Images), product.OwnerID,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("商品の作成に失敗しました: %w", err)
	}
	return nil
}

// UpdateOwned は所有者一致を条件に商品を部分更新し、更新後の商品を返す。
// tags/imagesはnilの場合のみ既存値を維持する。
func (r *PostgresProductRepo) UpdateOwned(ctx context.Context, id, ownerID int64, update ProductUpdate) (*model.Product, error) {
	var tags, images interface{}
	if update.Tags != nil {
		tags = pq.Array(update.Tags)
	}
	if update.Images != nil {
		images = pq.Array(update.Images)
	}

	row := r.db.QueryRowContext(ctx,
		`UPDATE products
		 SET name = COALESCE($3, name),
		     description = COALESCE($4, description),
		     price = COALESCE($5, price),
		     tags = COALESCE($6, tags),
		     images = COALESCE($7, images),
		     updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+productColumns,
		id, ownerID, update.Name, update.Description, update.Price, tags, images)

	product, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("商品の更新に失敗しました: %w", err)
	}
	return product, nil
}

// DeleteOwned は所有者一致を条件に商品を削除し、削除の有無を返す。
func (r *PostgresProductRepo) DeleteOwned(ctx context.Context, id, ownerID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM products WHERE id = $1 AND user_id = $2`,
		id, ownerID,
	)
	if err != nil {
		return false, fmt.Errorf("商品の削除に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// queryProducts は複数商品を取得する共通処理。
func (r *PostgresProductRepo) queryProducts(ctx context.Context, query string, args ...interface{}) ([]*model.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("商品一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var products []*model.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("商品行の読み取りに失敗しました: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("商品一覧の走査に失敗しました: %w", err)
	}

	return products, nil
}

// rowScanner はsql.Rowとsql.Rowsの共通部分。
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanProduct は1行分の商品をスキャンする。
func scanProduct(row rowScanner) (*model.Product, error) {
	product := &model.Product{}
	if err := row.Scan(
		&product.ID, &product.Name, &product.Description, &product.Price,
		pq.Array(&product.Tags), pq.Array(&product.Images),
		&product.OwnerID, &product.CreatedAt, &product.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return product, nil
}

// compile-time interface check
var _ ProductRepository = (*PostgresProductRepo)(nil)
