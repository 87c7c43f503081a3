// Package catalog manages products and their additional order fields.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/slmn-lf/east-stress-store/internal/logging"
	"github.com/slmn-lf/east-stress-store/internal/metrics"
	"github.com/slmn-lf/east-stress-store/internal/models"
	"github.com/slmn-lf/east-stress-store/internal/store"
	"github.com/slmn-lf/east-stress-store/internal/validation"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
	MaxFields    = 20
)

// FieldInput describes one additional field in a create or update request.
type FieldInput struct {
	Label   string `json:"label" validate:"required,max=100"`
	Type    string `json:"type" validate:"required,fieldtype"`
	Options string `json:"options" validate:"max=1000"`
}

type CreateProductInput struct {
	Name             string       `json:"name" validate:"required,min=3,max=200"`
	Description      string       `json:"description" validate:"required,min=10,max=2000"`
	Price            int64        `json:"price" validate:"gt=0,lte=999999999"`
	Images           []string     `json:"images" validate:"min=1,max=3,dive,httpurl"`
	ValidUntil       *time.Time   `json:"valid_until" validate:"omitempty,future"`
	WhatsApp         string       `json:"whatsapp" validate:"required,whatsapp"`
	AdditionalFields []FieldInput `json:"additional_fields" validate:"max=20,dive"`
}

// UpdateProductInput replaces the product's editable columns. Images and
// AdditionalFields are left untouched when omitted.
type UpdateProductInput struct {
	Name             string       `json:"name" validate:"required,min=3,max=200"`
	Description      string       `json:"description" validate:"required,min=10,max=2000"`
	Price            int64        `json:"price" validate:"gt=0,lte=999999999"`
	Images           []string     `json:"images" validate:"omitempty,max=3,dive,httpurl"`
	ValidUntil       *time.Time   `json:"valid_until" validate:"required,future"`
	WhatsApp         string       `json:"whatsapp" validate:"required,whatsapp"`
	AdditionalFields []FieldInput `json:"additional_fields" validate:"omitempty,max=20,dive"`
}

type ListFilter struct {
	Status string
	Cursor string
	Limit  int
}

type ListResult struct {
	Items      []models.Product `json:"items"`
	NextCursor string           `json:"next_cursor,omitempty"`
	Cached     bool             `json:"cached"`
}

type cacheItem struct {
	Result  ListResult
	Expires time.Time
}

type Service struct {
	store     store.Store
	cacheTTL  time.Duration
	cacheMu   sync.RWMutex
	cacheGen  uint64
	listCache map[string]cacheItem
	now       func() time.Time
}

func NewService(s store.Store, cacheTTL time.Duration) *Service {
	return &Service{
		store:     s,
		cacheTTL:  cacheTTL,
		listCache: make(map[string]cacheItem),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Create(ctx context.Context, in CreateProductInput) (models.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.WhatsApp = strings.TrimSpace(in.WhatsApp)
	in.Images = trimAll(in.Images)
	normalizeFields(in.AdditionalFields)
	if err := validation.ValidateStruct(&in); err != nil {
		return models.Product{}, err
	}
	if err := checkRadioOptions(in.AdditionalFields); err != nil {
		return models.Product{}, err
	}

	now := s.now()
	p := models.Product{
		ID:          models.NewID(models.PrefixProduct),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Images:      in.Images,
		Status:      models.StatusActive,
		ValidUntil:  utcPtr(in.ValidUntil),
		WhatsApp:    in.WhatsApp,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	p.AdditionalFields = buildFields(p.ID, in.AdditionalFields)

	if err := s.store.CreateProduct(ctx, p); err != nil {
		return models.Product{}, storeErr("create_product", err)
	}
	s.Invalidate()
	logging.Ctx(ctx).Info().Str("product_id", p.ID).Int("fields", len(p.AdditionalFields)).Msg("product created")
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (models.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.Product{}, validation.New("id", "product id is required")
	}
	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return models.Product{}, storeErr("get_product", err)
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, id string, in UpdateProductInput) (models.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.WhatsApp = strings.TrimSpace(in.WhatsApp)
	in.Images = trimAll(in.Images)
	normalizeFields(in.AdditionalFields)
	if err := validation.ValidateStruct(&in); err != nil {
		return models.Product{}, err
	}
	if in.Images != nil && len(in.Images) == 0 {
		return models.Product{}, validation.New("images", "images must contain at least 1 items")
	}
	if in.AdditionalFields != nil && len(in.AdditionalFields) == 0 {
		return models.Product{}, validation.New("additional_fields", "additional_fields must contain at least 1 items")
	}
	if err := checkRadioOptions(in.AdditionalFields); err != nil {
		return models.Product{}, err
	}

	cur, err := s.Get(ctx, id)
	if err != nil {
		return models.Product{}, err
	}
	cur.Name = in.Name
	cur.Description = in.Description
	cur.Price = in.Price
	cur.ValidUntil = utcPtr(in.ValidUntil)
	cur.WhatsApp = in.WhatsApp
	cur.UpdatedAt = s.now()
	if in.Images != nil {
		cur.Images = in.Images
	}
	replaceFields := in.AdditionalFields != nil
	if replaceFields {
		cur.AdditionalFields = buildFields(cur.ID, in.AdditionalFields)
	}

	if err := s.store.UpdateProduct(ctx, cur, replaceFields); err != nil {
		return models.Product{}, storeErr("update_product", err)
	}
	s.Invalidate()
	logging.Ctx(ctx).Info().Str("product_id", cur.ID).Bool("fields_replaced", replaceFields).Msg("product updated")
	return cur, nil
}

// SetStatus toggles a product between active and inactive.
func (s *Service) SetStatus(ctx context.Context, id, status string) (models.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.Product{}, validation.New("id", "product id is required")
	}
	status = normalizeStatus(status)
	if status == "" {
		return models.Product{}, validation.New("status", "status must be active or inactive")
	}
	if err := s.store.SetProductStatus(ctx, id, status, s.now()); err != nil {
		return models.Product{}, storeErr("set_product_status", err)
	}
	s.Invalidate()
	logging.Ctx(ctx).Info().Str("product_id", id).Str("status", status).Msg("product status changed")
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return validation.New("id", "product id is required")
	}
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return storeErr("delete_product", err)
	}
	s.Invalidate()
	logging.Ctx(ctx).Info().Str("product_id", id).Msg("product deleted")
	return nil
}

// List returns one page of products, newest first. First pages are served
// from a short-lived cache that every write clears.
func (s *Service) List(ctx context.Context, f ListFilter) (ListResult, error) {
	status := strings.TrimSpace(f.Status)
	if status != "" {
		if status = normalizeStatus(status); status == "" {
			return ListResult{}, validation.New("status", "status must be active or inactive")
		}
	}
	limit := clampLimit(f.Limit)
	cursor := strings.TrimSpace(f.Cursor)

	if cursor == "" {
		if cached, ok := s.getListCache(status, limit); ok {
			metrics.ListCacheHits.Inc()
			cached.Cached = true
			return cached, nil
		}
		metrics.ListCacheMisses.Inc()
	}

	after, err := store.ParseCursor(cursor)
	if err != nil {
		return ListResult{}, validation.New("cursor", err.Error())
	}
	gen := s.cacheGeneration()
	items, err := s.store.ListProducts(ctx, store.ProductFilter{Status: status, After: after, Limit: limit + 1})
	if err != nil {
		return ListResult{}, storeErr("list_products", err)
	}

	res := ListResult{Items: items}
	if len(items) > limit {
		last := items[limit-1]
		res.Items = items[:limit]
		res.NextCursor = store.EncodeCursor(last.CreatedAt, last.ID)
	}
	if cursor == "" {
		s.setListCache(status, limit, gen, res)
	}
	return res, nil
}

// Explain returns the database plan for the list query.
func (s *Service) Explain(ctx context.Context, status string) (any, error) {
	status = strings.TrimSpace(status)
	if status != "" {
		if status = normalizeStatus(status); status == "" {
			return nil, validation.New("status", "status must be active or inactive")
		}
	}
	plan, err := s.store.ExplainProductList(ctx, status)
	if err != nil {
		return nil, storeErr("explain_products", err)
	}
	return plan, nil
}

func normalizeStatus(status string) string {
	s := strings.ToLower(strings.TrimSpace(status))
	switch s {
	case models.StatusActive, models.StatusInactive:
		return s
	default:
		return ""
	}
}

func clampLimit(n int) int {
	switch {
	case n <= 0:
		return DefaultLimit
	case n > MaxLimit:
		return MaxLimit
	}
	return n
}

func normalizeFields(fields []FieldInput) {
	for i := range fields {
		fields[i].Label = strings.TrimSpace(fields[i].Label)
		fields[i].Type = strings.ToLower(strings.TrimSpace(fields[i].Type))
		fields[i].Options = strings.TrimSpace(fields[i].Options)
	}
}

func checkRadioOptions(fields []FieldInput) error {
	for _, f := range fields {
		if f.Type != models.FieldRadio || f.Options == "" {
			continue
		}
		if len(models.SplitOptions(f.Options)) < 2 {
			return validation.New("additional_fields", fmt.Sprintf("radio field %q needs at least 2 options", f.Label))
		}
	}
	return nil
}

func buildFields(productID string, in []FieldInput) []models.AdditionalField {
	out := make([]models.AdditionalField, 0, len(in))
	for i, f := range in {
		out = append(out, models.AdditionalField{
			ID:        models.NewID(models.PrefixField),
			ProductID: productID,
			Label:     f.Label,
			Type:      f.Type,
			Options:   strings.Join(models.SplitOptions(f.Options), ","),
			Position:  i,
		})
	}
	return out
}

func trimAll(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// storeErr counts unexpected persistence failures and wraps them with the
// operation name. ErrNotFound passes through unwrapped.
func storeErr(op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return err
	}
	metrics.RecordStoreError(op)
	return fmt.Errorf("%s: %w", op, err)
}
