package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/goccy/go-json"

	"github.com/slmn-lf/east-stress-store/internal/models"
)

// cmsLockKey serializes profile read-modify-write across connections,
// including the first insert when no row exists yet.
const cmsLockKey = `SELECT pg_advisory_xact_lock(hashtext('cms_profiles'))`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Postgres) GetCMSProfile(ctx context.Context) (models.CMSProfile, error) {
	return loadProfile(s.db.QueryRowContext(ctx, `SELECT document FROM cms_profiles WHERE id=$1`, models.ProfileID))
}

func (s *Postgres) SaveCMSProfile(ctx context.Context, p models.CMSProfile) error {
	return saveProfile(ctx, s.db, p)
}

func (s *Postgres) UpdateCMSProfile(ctx context.Context, fn func(models.CMSProfile, bool) (models.CMSProfile, error)) (models.CMSProfile, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.CMSProfile{}, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, cmsLockKey); err != nil {
		return models.CMSProfile{}, err
	}
	cur, err := loadProfile(tx.QueryRowContext(ctx, `SELECT document FROM cms_profiles WHERE id=$1`, models.ProfileID))
	found := err == nil
	if err != nil && !errors.Is(err, ErrNotFound) {
		return models.CMSProfile{}, err
	}
	next, err := fn(cur, found)
	if err != nil {
		return models.CMSProfile{}, err
	}
	if err := saveProfile(ctx, tx, next); err != nil {
		return models.CMSProfile{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.CMSProfile{}, err
	}
	return next, nil
}

func loadProfile(row *sql.Row) (models.CMSProfile, error) {
	var doc string
	if err := row.Scan(&doc); err != nil {
		return models.CMSProfile{}, mapError(err)
	}
	var p models.CMSProfile
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return models.CMSProfile{}, err
	}
	return p, nil
}

func saveProfile(ctx context.Context, db execer, p models.CMSProfile) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `INSERT INTO cms_profiles (id, document, updated_at) VALUES ($1,$2,$3)
		ON CONFLICT (id) DO UPDATE SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at`,
		models.ProfileID, string(doc), p.UpdatedAt)
	return err
}

func (s *Postgres) CreateContactMessage(ctx context.Context, m models.ContactMessage) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO contact_messages (id, name, email, message, created_at) VALUES ($1,$2,$3,$4,$5)`,
		m.ID, m.Name, m.Email, m.Message, m.CreatedAt)
	return mapError(err)
}

func (s *Postgres) ListContactMessages(ctx context.Context, limit int) ([]models.ContactMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, message, created_at FROM contact_messages ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]models.ContactMessage, 0, limit)
	for rows.Next() {
		var m models.ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.CreatedAt = m.CreatedAt.UTC()
		out = append(out, m)
	}
	return out, rows.Err()
}
