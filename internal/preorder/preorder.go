// Package preorder takes customer orders for products and hands them off to
// the seller's WhatsApp. It also backs the pre-order pages of the back office.
package preorder

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/slmn-lf/east-stress-store/internal/logging"
	"github.com/slmn-lf/east-stress-store/internal/metrics"
	"github.com/slmn-lf/east-stress-store/internal/models"
	"github.com/slmn-lf/east-stress-store/internal/store"
	"github.com/slmn-lf/east-stress-store/internal/validation"
	"github.com/slmn-lf/east-stress-store/internal/whatsapp"
)

// ErrProductUnavailable is returned for orders on inactive or expired products.
var ErrProductUnavailable = errors.New("product is not accepting pre-orders")

const (
	DefaultLimit = 50
	MaxLimit     = 200
	RecentLimit  = 6
)

type SubmitInput struct {
	Name         string              `json:"name" validate:"required,max=100"`
	Email        string              `json:"email" validate:"omitempty,email,max=200"`
	Phone        string              `json:"phone" validate:"required,max=30"`
	Address      string              `json:"address" validate:"max=500"`
	Quantity     int                 `json:"quantity" validate:"gte=1,lte=10000"`
	CustomFields models.CustomFields `json:"custom_fields"`
}

// SubmitResult carries everything the client needs to open WhatsApp.
type SubmitResult struct {
	CustomerID      string          `json:"customer_id"`
	WhatsAppMessage string          `json:"whatsapp_message"`
	WhatsAppURL     string          `json:"whatsapp_url"`
	ProductWhatsApp string          `json:"product_whatsapp"`
	PreOrder        models.PreOrder `json:"pre_order"`
}

type ListFilter struct {
	ProductID string
	Cursor    string
	Limit     int
}

type ListResult struct {
	Items      []models.PreOrder `json:"items"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// ProductCache is told when product totals change.
type ProductCache interface {
	Invalidate()
}

type Service struct {
	store       store.Store
	products    ProductCache
	countryCode string
	now         func() time.Time
}

// NewService builds the service. products may be nil.
func NewService(st store.Store, products ProductCache, countryCode string) *Service {
	if countryCode == "" {
		countryCode = whatsapp.DefaultCountryCode
	}
	return &Service{
		store:       st,
		products:    products,
		countryCode: countryCode,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Submit records a pre-order, bumps the product's total and returns the
// WhatsApp hand-off.
func (s *Service) Submit(ctx context.Context, productID string, in SubmitInput) (SubmitResult, error) {
	productID = strings.TrimSpace(productID)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
	if productID == "" {
		return SubmitResult{}, validation.New("product_id", "product_id is required")
	}
	if err := validation.ValidateStruct(&in); err != nil {
		return SubmitResult{}, err
	}

	product, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		return SubmitResult{}, storeErr("get_product", err)
	}
	now := s.now()
	if !product.IsOpen(now) {
		return SubmitResult{}, fmt.Errorf("product %s: %w", product.ID, ErrProductUnavailable)
	}
	answers, err := NormalizeCustomFields(product.AdditionalFields, in.CustomFields)
	if err != nil {
		return SubmitResult{}, err
	}

	order := models.PreOrder{
		ID:           models.NewID(models.PrefixPreOrder),
		ProductID:    product.ID,
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		Address:      in.Address,
		Quantity:     in.Quantity,
		CustomFields: answers,
		CreatedAt:    now,
	}
	if err := s.store.CreatePreOrder(ctx, order); err != nil {
		return SubmitResult{}, storeErr("create_preorder", err)
	}
	s.invalidate()
	metrics.RecordPreOrder(order.Quantity)

	order.ProductName = product.Name
	order.ProductFields = product.AdditionalFields
	msg := whatsapp.Message(product, order)
	phone := whatsapp.NormalizePhone(product.WhatsApp, s.countryCode)

	logging.Ctx(ctx).Info().
		Str("preorder_id", order.ID).
		Str("product_id", product.ID).
		Int("quantity", order.Quantity).
		Msg("pre-order submitted")

	return SubmitResult{
		CustomerID:      order.ID,
		WhatsAppMessage: msg,
		WhatsAppURL:     whatsapp.URL(phone, msg),
		ProductWhatsApp: product.WhatsApp,
		PreOrder:        order,
	}, nil
}

// NormalizeCustomFields keeps the answers that match the product's fields,
// in field order. Blank answers are dropped. Number answers must parse and
// radio answers must be one of the options.
func NormalizeCustomFields(fields []models.AdditionalField, answers models.CustomFields) (models.CustomFields, error) {
	out := make(models.CustomFields, 0, len(fields))
	for _, f := range fields {
		v, ok := answers.Get(f.Label)
		v = strings.TrimSpace(v)
		if !ok || v == "" {
			continue
		}
		switch f.Type {
		case models.FieldNumber:
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				return nil, validation.New("custom_fields", fmt.Sprintf("%s must be a number", f.Label))
			}
		case models.FieldRadio:
			if opts := f.OptionList(); len(opts) > 0 && !slices.Contains(opts, v) {
				return nil, validation.New("custom_fields", fmt.Sprintf("%s must be one of: %s", f.Label, strings.Join(opts, ", ")))
			}
		}
		out = append(out, models.CustomField{Label: f.Label, Value: v})
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (models.PreOrder, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.PreOrder{}, validation.New("id", "pre-order id is required")
	}
	o, err := s.store.GetPreOrder(ctx, id)
	if err != nil {
		return models.PreOrder{}, storeErr("get_preorder", err)
	}
	return o, nil
}

// List returns pre-orders newest first, optionally for one product.
func (s *Service) List(ctx context.Context, f ListFilter) (ListResult, error) {
	limit := f.Limit
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	after, err := store.ParseCursor(strings.TrimSpace(f.Cursor))
	if err != nil {
		return ListResult{}, validation.New("cursor", err.Error())
	}
	items, err := s.store.ListPreOrders(ctx, store.PreOrderFilter{
		ProductID: strings.TrimSpace(f.ProductID),
		After:     after,
		Limit:     limit + 1,
	})
	if err != nil {
		return ListResult{}, storeErr("list_preorders", err)
	}
	res := ListResult{Items: items}
	if len(items) > limit {
		last := items[limit-1]
		res.Items = items[:limit]
		res.NextCursor = store.EncodeCursor(last.CreatedAt, last.ID)
	}
	return res, nil
}

// Delete removes a pre-order; the product total is recomputed by the store.
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return validation.New("id", "pre-order id is required")
	}
	if err := s.store.DeletePreOrder(ctx, id); err != nil {
		return storeErr("delete_preorder", err)
	}
	s.invalidate()
	logging.Ctx(ctx).Info().Str("preorder_id", id).Msg("pre-order deleted")
	return nil
}

// Stats feeds the admin dashboard.
func (s *Service) Stats(ctx context.Context) (models.PreOrderStats, error) {
	totals, err := s.store.Totals(ctx)
	if err != nil {
		return models.PreOrderStats{}, storeErr("totals", err)
	}
	recent, err := s.store.ListPreOrders(ctx, store.PreOrderFilter{Limit: RecentLimit})
	if err != nil {
		return models.PreOrderStats{}, storeErr("list_preorders", err)
	}
	return models.PreOrderStats{
		TotalOrders:   totals.Orders,
		TotalQuantity: totals.Quantity,
		TotalProducts: totals.Products,
		Recent:        recent,
	}, nil
}

func (s *Service) invalidate() {
	if s.products != nil {
		s.products.Invalidate()
	}
}

func storeErr(op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return err
	}
	metrics.RecordStoreError(op)
	return fmt.Errorf("%s: %w", op, err)
}
