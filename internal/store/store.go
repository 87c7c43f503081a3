// Package store persists products, pre-orders, the CMS profile and contact
// messages. Postgres is used when a database is configured and reachable;
// otherwise the in-memory implementation keeps the service usable.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/slmn-lf/east-stress-store/internal/models"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// Storage modes reported by Mode.
const (
	ModePostgres = "postgres"
	ModeMemory   = "memory"
)

// ProductFilter selects a page of products, newest first.
type ProductFilter struct {
	Status string
	After  Cursor
	Limit  int
}

// PreOrderFilter selects a page of pre-orders, newest first.
type PreOrderFilter struct {
	ProductID string
	After     Cursor
	Limit     int
}

// Totals are the aggregate counters shown on the admin dashboard.
type Totals struct {
	Orders   int
	Quantity int
	Products int
}

type Store interface {
	Mode() string
	Ping(ctx context.Context) error
	Close() error

	CreateProduct(ctx context.Context, p models.Product) error
	GetProduct(ctx context.Context, id string) (models.Product, error)
	ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, error)
	// UpdateProduct overwrites the scalar columns and images. Additional
	// fields are replaced only when replaceFields is set.
	UpdateProduct(ctx context.Context, p models.Product, replaceFields bool) error
	SetProductStatus(ctx context.Context, id, status string, at time.Time) error
	// DeleteProduct removes the product with its fields and pre-orders.
	DeleteProduct(ctx context.Context, id string) error
	ExplainProductList(ctx context.Context, status string) (any, error)

	// CreatePreOrder stores o and adds its quantity to the product total
	// atomically. ErrNotFound when the product does not exist.
	CreatePreOrder(ctx context.Context, o models.PreOrder) error
	GetPreOrder(ctx context.Context, id string) (models.PreOrder, error)
	ListPreOrders(ctx context.Context, f PreOrderFilter) ([]models.PreOrder, error)
	// DeletePreOrder removes the pre-order and recomputes the product total
	// from the remaining pre-orders.
	DeletePreOrder(ctx context.Context, id string) error
	Totals(ctx context.Context) (Totals, error)

	// GetCMSProfile returns ErrNotFound until a profile has been saved.
	GetCMSProfile(ctx context.Context) (models.CMSProfile, error)
	SaveCMSProfile(ctx context.Context, p models.CMSProfile) error
	// UpdateCMSProfile reads the profile, applies fn and saves the result
	// with no other profile write in between. found is false when nothing
	// has been saved yet. An error from fn aborts the update.
	UpdateCMSProfile(ctx context.Context, fn func(p models.CMSProfile, found bool) (models.CMSProfile, error)) (models.CMSProfile, error)

	CreateContactMessage(ctx context.Context, m models.ContactMessage) error
	ListContactMessages(ctx context.Context, limit int) ([]models.ContactMessage, error)
}

var (
	_ Store = (*Memory)(nil)
	_ Store = (*Postgres)(nil)
)
