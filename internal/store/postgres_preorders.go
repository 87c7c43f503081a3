package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/slmn-lf/east-stress-store/internal/models"
)

const preOrderSelect = `SELECT o.id, o.product_id, p.name, o.name, o.email, o.phone, o.address, o.quantity, o.custom_fields, o.created_at
	FROM pre_orders o JOIN products p ON p.id = o.product_id`

func (s *Postgres) CreatePreOrder(ctx context.Context, o models.PreOrder) error {
	custom, err := json.Marshal(o.CustomFields)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE products SET total_pre_order = total_pre_order + $2 WHERE id=$1`, o.ProductID, o.Quantity)
	if err != nil {
		return mapError(err)
	}
	if err := checkAffected(res); err != nil {
		return fmt.Errorf("product %s: %w", o.ProductID, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO pre_orders (id, product_id, name, email, phone, address, quantity, custom_fields, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		o.ID, o.ProductID, o.Name, nilIfEmpty(o.Email), o.Phone, nilIfEmpty(o.Address), o.Quantity,
		string(custom), o.CreatedAt,
	); err != nil {
		return mapError(err)
	}
	return tx.Commit()
}

func (s *Postgres) GetPreOrder(ctx context.Context, id string) (models.PreOrder, error) {
	o, err := scanPreOrder(s.db.QueryRowContext(ctx, preOrderSelect+` WHERE o.id=$1`, id))
	if err != nil {
		return models.PreOrder{}, mapError(err)
	}
	fields, err := loadFields(ctx, s.db, []string{o.ProductID})
	if err != nil {
		return models.PreOrder{}, err
	}
	o.ProductFields = fields[o.ProductID]
	return o, nil
}

func (s *Postgres) ListPreOrders(ctx context.Context, f PreOrderFilter) ([]models.PreOrder, error) {
	var (
		where []string
		args  []any
	)
	if f.ProductID != "" {
		args = append(args, f.ProductID)
		where = append(where, fmt.Sprintf("o.product_id = $%d", len(args)))
	}
	if !f.After.IsZero() {
		args = append(args, f.After.Time, f.After.ID)
		where = append(where, fmt.Sprintf("(o.created_at, o.id) < ($%d, $%d)", len(args)-1, len(args)))
	}
	q := preOrderSelect
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, f.Limit)
	q += fmt.Sprintf(" ORDER BY o.created_at DESC, o.id DESC LIMIT $%d", len(args))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.PreOrder, 0, f.Limit)
	seen := make(map[string]bool)
	productIDs := make([]string, 0)
	for rows.Next() {
		o, err := scanPreOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, o)
		if !seen[o.ProductID] {
			seen[o.ProductID] = true
			productIDs = append(productIDs, o.ProductID)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	fields, err := loadFields(ctx, s.db, productIDs)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].ProductFields = fields[items[i].ProductID]
	}
	return items, nil
}

func (s *Postgres) DeletePreOrder(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var productID string
	if err := tx.QueryRowContext(ctx, `DELETE FROM pre_orders WHERE id=$1 RETURNING product_id`, id).Scan(&productID); err != nil {
		return mapError(err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE products
		SET total_pre_order = (SELECT COALESCE(SUM(quantity), 0) FROM pre_orders WHERE product_id=$1)
		WHERE id=$1`, productID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Postgres) Totals(ctx context.Context) (Totals, error) {
	var t Totals
	err := s.db.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM pre_orders),
		(SELECT COALESCE(SUM(quantity), 0) FROM pre_orders),
		(SELECT COUNT(*) FROM products)`).Scan(&t.Orders, &t.Quantity, &t.Products)
	return t, err
}

func scanPreOrder(row rowScanner) (models.PreOrder, error) {
	var (
		o                     models.PreOrder
		email, address, extra sql.NullString
	)
	if err := row.Scan(&o.ID, &o.ProductID, &o.ProductName, &o.Name, &email, &o.Phone, &address,
		&o.Quantity, &extra, &o.CreatedAt); err != nil {
		return models.PreOrder{}, err
	}
	o.Email = email.String
	o.Address = address.String
	o.CreatedAt = o.CreatedAt.UTC()
	if extra.Valid && extra.String != "" {
		if err := json.Unmarshal([]byte(extra.String), &o.CustomFields); err != nil {
			return models.PreOrder{}, fmt.Errorf("pre-order %s custom fields: %w", o.ID, err)
		}
	}
	return o, nil
}
