package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/slmn-lf/east-stress-store/internal/models"
)

const productColumns = `id, name, description, price, images, total_pre_order, status, valid_until, whatsapp, created_at, updated_at`

func (s *Postgres) CreateProduct(ctx context.Context, p models.Product) error {
	images, err := json.Marshal(p.Images)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	q := `INSERT INTO products (` + productColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	if _, err := tx.ExecContext(ctx, q,
		p.ID, p.Name, p.Description, p.Price, string(images), p.TotalPreOrder, p.Status,
		nullTime(p.ValidUntil), p.WhatsApp, p.CreatedAt, p.UpdatedAt,
	); err != nil {
		return mapError(err)
	}
	if err := insertFields(ctx, tx, p.ID, p.AdditionalFields); err != nil {
		return mapError(err)
	}
	return tx.Commit()
}

func (s *Postgres) GetProduct(ctx context.Context, id string) (models.Product, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id)
	p, err := scanProduct(row)
	if err != nil {
		return models.Product{}, mapError(err)
	}
	fields, err := loadFields(ctx, s.db, []string{p.ID})
	if err != nil {
		return models.Product{}, err
	}
	p.AdditionalFields = fields[p.ID]
	return p, nil
}

func (s *Postgres) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	where, args := productWhere(f.Status, f.After)
	args = append(args, f.Limit)
	q := fmt.Sprintf(`SELECT %s FROM products %s ORDER BY created_at DESC, id DESC LIMIT $%d`,
		productColumns, where, len(args))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.Product, 0, f.Limit)
	ids := make([]string, 0, f.Limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	fields, err := loadFields(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].AdditionalFields = fields[items[i].ID]
	}
	return items, nil
}

func (s *Postgres) UpdateProduct(ctx context.Context, p models.Product, replaceFields bool) error {
	images, err := json.Marshal(p.Images)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `UPDATE products
		SET name=$2, description=$3, price=$4, images=$5, status=$6, valid_until=$7, whatsapp=$8, updated_at=$9
		WHERE id=$1`,
		p.ID, p.Name, p.Description, p.Price, string(images), p.Status, nullTime(p.ValidUntil), p.WhatsApp, p.UpdatedAt,
	)
	if err != nil {
		return mapError(err)
	}
	if err := checkAffected(res); err != nil {
		return err
	}
	if replaceFields {
		if _, err := tx.ExecContext(ctx, `DELETE FROM additional_fields WHERE product_id=$1`, p.ID); err != nil {
			return err
		}
		if err := insertFields(ctx, tx, p.ID, p.AdditionalFields); err != nil {
			return mapError(err)
		}
	}
	return tx.Commit()
}

func (s *Postgres) SetProductStatus(ctx context.Context, id, status string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE products SET status=$2, updated_at=$3 WHERE id=$1`, id, status, at)
	if err != nil {
		return mapError(err)
	}
	return checkAffected(res)
}

// DeleteProduct relies on ON DELETE CASCADE for fields and pre-orders.
func (s *Postgres) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (s *Postgres) ExplainProductList(ctx context.Context, status string) (any, error) {
	where, args := productWhere(status, Cursor{})
	planQuery := fmt.Sprintf(`EXPLAIN (ANALYZE FALSE, FORMAT JSON)
		SELECT %s FROM products %s
		ORDER BY created_at DESC, id DESC
		LIMIT 50`, productColumns, where)

	var planRaw []byte
	if err := s.db.QueryRowContext(ctx, planQuery, args...).Scan(&planRaw); err != nil {
		return nil, err
	}
	var parsed any
	if err := json.Unmarshal(planRaw, &parsed); err != nil {
		return string(planRaw), nil
	}
	return parsed, nil
}

func productWhere(status string, after Cursor) (string, []any) {
	var (
		where []string
		args  []any
	)
	if status != "" {
		args = append(args, status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if !after.IsZero() {
		args = append(args, after.Time, after.ID)
		where = append(where, fmt.Sprintf("(created_at, id) < ($%d, $%d)", len(args)-1, len(args)))
	}
	if len(where) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(where, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (models.Product, error) {
	var (
		p          models.Product
		images     string
		validUntil sql.NullTime
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &images, &p.TotalPreOrder,
		&p.Status, &validUntil, &p.WhatsApp, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return models.Product{}, err
	}
	if err := json.Unmarshal([]byte(images), &p.Images); err != nil {
		return models.Product{}, fmt.Errorf("product %s images: %w", p.ID, err)
	}
	if validUntil.Valid {
		t := validUntil.Time.UTC()
		p.ValidUntil = &t
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

func insertFields(ctx context.Context, tx *sql.Tx, productID string, fields []models.AdditionalField) error {
	for i, f := range fields {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO additional_fields (id, product_id, label, type, options, position) VALUES ($1,$2,$3,$4,$5,$6)`,
			f.ID, productID, f.Label, f.Type, nilIfEmpty(f.Options), i,
		); err != nil {
			return err
		}
	}
	return nil
}

// loadFields returns the additional fields of each product, in position order.
func loadFields(ctx context.Context, q queryer, productIDs []string) (map[string][]models.AdditionalField, error) {
	out := make(map[string][]models.AdditionalField, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	rows, err := q.QueryContext(ctx,
		`SELECT id, product_id, label, type, options, position FROM additional_fields
		WHERE product_id = ANY($1) ORDER BY product_id, position`, productIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			f       models.AdditionalField
			options sql.NullString
		)
		if err := rows.Scan(&f.ID, &f.ProductID, &f.Label, &f.Type, &options, &f.Position); err != nil {
			return nil, err
		}
		f.Options = options.String
		out[f.ProductID] = append(out[f.ProductID], f)
	}
	return out, rows.Err()
}
