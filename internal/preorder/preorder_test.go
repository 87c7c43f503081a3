package preorder

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/slmn-lf/east-stress-store/internal/models"
	"github.com/slmn-lf/east-stress-store/internal/store"
	"github.com/slmn-lf/east-stress-store/internal/validation"
)

type countingCache struct{ n int }

func (c *countingCache) Invalidate() { c.n++ }

func setup(t *testing.T) (*Service, *store.Memory, *countingCache, models.Product) {
	t.Helper()
	st := store.NewMemory()
	now := time.Now().UTC()
	p := models.Product{
		ID:          "prd_1",
		Name:        "Kaos Polos",
		Description: "Kaos katun combed",
		Price:       150000,
		Images:      []string{"https://img.example/a.jpg"},
		Status:      models.StatusActive,
		WhatsApp:    "0812-3456-7890",
		AdditionalFields: []models.AdditionalField{
			{ID: "f1", ProductID: "prd_1", Label: "Ukuran", Type: models.FieldRadio, Options: "S,M,L", Position: 0},
			{ID: "f2", ProductID: "prd_1", Label: "Umur", Type: models.FieldNumber, Position: 1},
			{ID: "f3", ProductID: "prd_1", Label: "Catatan", Type: models.FieldTextarea, Position: 2},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := st.CreateProduct(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	cache := &countingCache{}
	return NewService(st, cache, ""), st, cache, p
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()
	svc, st, cache, p := setup(t)

	res, err := svc.Submit(ctx, p.ID, SubmitInput{
		Name:     " Budi ",
		Phone:    "0811",
		Quantity: 2,
		CustomFields: models.CustomFields{
			{Label: "Catatan", Value: "lengan panjang"},
			{Label: "Unknown", Value: "x"},
			{Label: "Ukuran", Value: "M"},
		},
	})
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if !strings.HasPrefix(res.CustomerID, "po_") || res.ProductWhatsApp != p.WhatsApp {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !strings.HasPrefix(res.WhatsAppURL, "https://wa.me/6281234567890?text=") {
		t.Fatalf("unexpected url %q", res.WhatsAppURL)
	}
	if !strings.Contains(res.WhatsAppMessage, "• Ukuran: M\n• Catatan: lengan panjang\n") {
		t.Fatalf("custom fields not in product order:\n%s", res.WhatsAppMessage)
	}
	if _, ok := res.PreOrder.CustomFields.Get("Unknown"); ok {
		t.Fatal("unknown label should be dropped")
	}

	got, _ := st.GetProduct(ctx, p.ID)
	if got.TotalPreOrder != 2 {
		t.Fatalf("total = %d, want 2", got.TotalPreOrder)
	}
	if cache.n != 1 {
		t.Fatalf("cache invalidated %d times", cache.n)
	}
}

func TestSubmitRejects(t *testing.T) {
	ctx := context.Background()
	svc, st, _, p := setup(t)
	valid := SubmitInput{Name: "Budi", Phone: "0811", Quantity: 1}

	cases := []struct {
		name   string
		mutate func(*SubmitInput)
	}{
		{"missing name", func(in *SubmitInput) { in.Name = "  " }},
		{"missing phone", func(in *SubmitInput) { in.Phone = "" }},
		{"zero quantity", func(in *SubmitInput) { in.Quantity = 0 }},
		{"bad email", func(in *SubmitInput) { in.Email = "budi@" }},
		{"bad number", func(in *SubmitInput) { in.CustomFields = models.CustomFields{{Label: "Umur", Value: "dua"}} }},
		{"bad radio", func(in *SubmitInput) { in.CustomFields = models.CustomFields{{Label: "Ukuran", Value: "XXL"}} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)
			_, err := svc.Submit(ctx, p.ID, in)
			var ve *validation.RequestValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	if _, err := svc.Submit(ctx, "prd_missing", valid); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := st.SetProductStatus(ctx, p.ID, models.StatusInactive, time.Now()); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Submit(ctx, p.ID, valid); !errors.Is(err, ErrProductUnavailable) {
		t.Fatalf("expected ErrProductUnavailable, got %v", err)
	}
}

func TestSubmitExpiredProduct(t *testing.T) {
	ctx := context.Background()
	svc, _, _, p := setup(t)
	svc.now = func() time.Time { return time.Now().Add(24 * time.Hour) }
	until := time.Now().UTC()
	p.ValidUntil = &until
	if err := svc.store.UpdateProduct(ctx, p, false); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Submit(ctx, p.ID, SubmitInput{Name: "Budi", Phone: "0811", Quantity: 1})
	if !errors.Is(err, ErrProductUnavailable) {
		t.Fatalf("expected ErrProductUnavailable, got %v", err)
	}
}

func TestListDeleteAndStats(t *testing.T) {
	ctx := context.Background()
	svc, st, _, p := setup(t)
	base := time.Now().UTC()
	var ids []string
	for i := 0; i < 8; i++ {
		at := base.Add(time.Duration(i) * time.Second)
		svc.now = func() time.Time { return at }
		res, err := svc.Submit(ctx, p.ID, SubmitInput{Name: "Budi", Phone: "0811", Quantity: i + 1})
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, res.CustomerID)
	}

	page, err := svc.List(ctx, ListFilter{ProductID: p.ID, Limit: 5})
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Items) != 5 || page.Items[0].ID != ids[7] || page.NextCursor == "" {
		t.Fatalf("unexpected page: %d items, first %s", len(page.Items), page.Items[0].ID)
	}
	if page.Items[0].ProductName != p.Name {
		t.Fatal("product name should be joined")
	}
	rest, _ := svc.List(ctx, ListFilter{ProductID: p.ID, Limit: 5, Cursor: page.NextCursor})
	if len(rest.Items) != 3 || rest.NextCursor != "" {
		t.Fatalf("unexpected second page: %d", len(rest.Items))
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalOrders != 8 || stats.TotalQuantity != 36 || stats.TotalProducts != 1 || len(stats.Recent) != RecentLimit {
		t.Fatalf("unexpected stats %+v", stats)
	}

	if err := svc.Delete(ctx, ids[7]); err != nil {
		t.Fatal(err)
	}
	got, _ := st.GetProduct(ctx, p.ID)
	if got.TotalPreOrder != 28 {
		t.Fatalf("total after delete = %d, want 28", got.TotalPreOrder)
	}
	if err := svc.Delete(ctx, ids[7]); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Get(ctx, ids[0]); err != nil {
		t.Fatal(err)
	}
}
