package web

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/slmn-lf/east-stress-store/internal/auth"
	"github.com/slmn-lf/east-stress-store/internal/catalog"
	"github.com/slmn-lf/east-stress-store/internal/cms"
	"github.com/slmn-lf/east-stress-store/internal/config"
	"github.com/slmn-lf/east-stress-store/internal/models"
	"github.com/slmn-lf/east-stress-store/internal/preorder"
	"github.com/slmn-lf/east-stress-store/internal/store"
	"github.com/slmn-lf/east-stress-store/internal/upload"
)

type fixture struct {
	router   http.Handler
	sessions *auth.Sessions
	catalog  *catalog.Service
	orders   *preorder.Service
	cms      *cms.Service
	product  models.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := store.NewMemory()
	products := catalog.NewService(st, time.Minute)
	creds, err := auth.NewCredentials("admin", "admin123", "")
	if err != nil {
		t.Fatal(err)
	}
	jwtm, err := auth.NewJWTManager("0123456789abcdef0123456789abcdef", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	sessions := auth.NewSessions(creds, jwtm, auth.SessionConfig{CookieName: "auth_token", MaxAge: time.Hour})

	orders := preorder.NewService(st, products, "62")
	content := cms.NewService(st)
	uploads := upload.NewService(upload.NewMemoryHost("http://files.test"), config.UploadConfig{Folder: "products", MaxBytes: 1 << 20, MaxDimension: 1600, JPEGQuality: 80})
	h, err := New(Deps{
		Catalog:     products,
		PreOrders:   orders,
		CMS:         content,
		Sessions:    sessions,
		Uploads:     uploads,
		CountryCode: "62",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r := chi.NewRouter()
	h.Routes(r)

	p, err := products.Create(context.Background(), catalog.CreateProductInput{
		Name:        "Kaos Oversize",
		Description: "Kaos cotton combed 24s, potongan oversize.",
		Price:       150000,
		Images:      []string{"https://img.example/kaos.jpg"},
		WhatsApp:    "081234567890",
		AdditionalFields: []catalog.FieldInput{
			{Label: "Ukuran", Type: "radio", Options: "S,M,L"},
			{Label: "Catatan", Type: "textarea"},
		},
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return &fixture{router: r, sessions: sessions, catalog: products, orders: orders, cms: content, product: p}
}

func (f *fixture) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestLandingPage(t *testing.T) {
	f := newFixture(t)
	rec := f.get("/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Kaos Oversize", "Rp 150.000", "About Us", `action="/contact"`} {
		if !strings.Contains(body, want) {
			t.Errorf("landing page missing %q", want)
		}
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
}

func TestProductPageRendersOrderForm(t *testing.T) {
	f := newFixture(t)
	rec := f.get("/products/" + f.product.ID)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	field := f.product.AdditionalFields[0]
	if !strings.Contains(body, `name="field_`+field.ID+`"`) || !strings.Contains(body, `value="M"`) {
		t.Fatalf("order form missing radio field: %s", body)
	}

	if rec := f.get("/products/prd_missing"); rec.Code != http.StatusNotFound {
		t.Fatalf("missing product status = %d", rec.Code)
	}
}

func TestOrderRedirectsToWhatsApp(t *testing.T) {
	f := newFixture(t)
	form := url.Values{
		"name":     {"Budi"},
		"phone":    {"0811"},
		"quantity": {"2"},
		"field_" + f.product.AdditionalFields[0].ID: {"L"},
	}
	rec := f.postForm("/products/"+f.product.ID+"/order", form)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	loc := rec.Header().Get("Location")
	if !strings.HasPrefix(loc, "https://wa.me/6281234567890?text=") || !strings.Contains(loc, "Ukuran") {
		t.Fatalf("unexpected redirect %q", loc)
	}

	p, err := f.catalog.Get(context.Background(), f.product.ID)
	if err != nil {
		t.Fatal(err)
	}
	if p.TotalPreOrder != 2 {
		t.Fatalf("total pre-order = %d, want 2", p.TotalPreOrder)
	}
}

func TestOrderValidationRerendersForm(t *testing.T) {
	f := newFixture(t)
	rec := f.postForm("/products/"+f.product.ID+"/order", url.Values{
		"phone":    {"0811"},
		"quantity": {"1"},
		"address":  {"Jl. Merdeka 1"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "name is required") || !strings.Contains(body, "Jl. Merdeka 1") {
		t.Fatalf("form should keep input and show the error: %s", body)
	}
}

func TestOrderClosedProduct(t *testing.T) {
	f := newFixture(t)
	if _, err := f.catalog.SetStatus(context.Background(), f.product.ID, models.StatusInactive); err != nil {
		t.Fatal(err)
	}
	rec := f.postForm("/products/"+f.product.ID+"/order", url.Values{
		"name": {"Budi"}, "phone": {"0811"}, "quantity": {"1"},
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestContactForm(t *testing.T) {
	f := newFixture(t)
	rec := f.postForm("/contact", url.Values{"name": {"Sari"}, "email": {"sari@example.com"}, "message": {"Halo"}})
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/?contact=sent#contact" {
		t.Fatalf("contact: %d %q", rec.Code, rec.Header().Get("Location"))
	}
	rec = f.postForm("/contact", url.Values{"name": {"Sari"}})
	if rec.Header().Get("Location") != "/?contact=error#contact" {
		t.Fatalf("invalid contact should redirect with error, got %q", rec.Header().Get("Location"))
	}
	if body := f.get("/?contact=sent").Body.String(); !strings.Contains(body, "sudah terkirim") {
		t.Fatal("landing page should show the sent notice")
	}
}

func TestLoginPage(t *testing.T) {
	f := newFixture(t)
	body := f.get("/auth/login?error=invalid&next=/admin/dashboard").Body.String()
	if !strings.Contains(body, "Username atau password salah.") || !strings.Contains(body, `value="/admin/dashboard"`) {
		t.Fatalf("login page: %s", body)
	}
}

func TestDashboardRequiresSession(t *testing.T) {
	f := newFixture(t)
	rec := f.get("/admin/dashboard")
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/auth/login?next=%2Fadmin%2Fdashboard" {
		t.Fatalf("anonymous dashboard: %d %q", rec.Code, rec.Header().Get("Location"))
	}

	token, err := f.sessions.Login("admin", "admin123")
	if err != nil {
		t.Fatal(err)
	}
	cookie := &http.Cookie{Name: "auth_token", Value: token}
	rec = f.get("/admin/dashboard", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Total Pre-Order") || !strings.Contains(body, "Masuk sebagai admin") {
		t.Fatalf("dashboard body: %s", body)
	}

	if rec := f.get("/auth/login", cookie); rec.Code != http.StatusSeeOther {
		t.Fatalf("logged-in login page should redirect, got %d", rec.Code)
	}
}

func (f *fixture) adminCookie(t *testing.T) *http.Cookie {
	t.Helper()
	token, err := f.sessions.Login("admin", "admin123")
	if err != nil {
		t.Fatal(err)
	}
	return &http.Cookie{Name: "auth_token", Value: token}
}

func (f *fixture) findProduct(t *testing.T, name string) models.Product {
	t.Helper()
	res, err := f.catalog.List(context.Background(), catalog.ListFilter{Limit: catalog.MaxLimit})
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range res.Items {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("product %q not found", name)
	return models.Product{}
}

func nextWeekWIB() string {
	return time.Now().Add(7 * 24 * time.Hour).In(wib).Format(dateTimeLocal)
}

func TestAdminPagesRequireSession(t *testing.T) {
	f := newFixture(t)
	for _, path := range []string{"/admin/products", "/admin/products/new", "/admin/preorders", "/admin/cms"} {
		rec := f.get(path)
		want := "/auth/login?next=" + url.QueryEscape(path)
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != want {
			t.Errorf("GET %s: %d %q", path, rec.Code, rec.Header().Get("Location"))
		}
	}

	rec := f.postForm("/admin/products/"+f.product.ID+"/delete", nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("anonymous delete status = %d", rec.Code)
	}
	if _, err := f.catalog.Get(context.Background(), f.product.ID); err != nil {
		t.Fatalf("product should survive an anonymous delete: %v", err)
	}
}

func TestAdminProductList(t *testing.T) {
	f := newFixture(t)
	rec := f.get("/admin/products?flash=created", f.adminCookie(t))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"Produk berhasil dibuat.",
		"Kaos Oversize",
		`action="/admin/products/` + f.product.ID + `/status"`,
		`action="/admin/products/` + f.product.ID + `/delete"`,
		`href="/admin/products/` + f.product.ID + `/edit"`,
		"Nonaktifkan",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("product list missing %q", want)
		}
	}
}

func TestAdminCreateProduct(t *testing.T) {
	f := newFixture(t)
	cookie := f.adminCookie(t)

	if rec := f.get("/admin/products/new", cookie); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `name="field_label"`) {
		t.Fatalf("new form: %d", rec.Code)
	}

	rec := f.postForm("/admin/products", url.Values{
		"name":          {"Hoodie Zip"},
		"description":   {"Hoodie fleece tebal dengan resleting."},
		"price":         {"Rp 250.000"},
		"whatsapp":      {"081234567890"},
		"valid_until":   {nextWeekWIB()},
		"images":        {"https://img.example/hoodie.jpg", "", ""},
		"field_label":   {"Warna", "", ""},
		"field_type":    {"radio", "text", "text"},
		"field_options": {"Hitam, Putih", "", ""},
	}, cookie)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/admin/products?flash=created" {
		t.Fatalf("create: %d %q body=%s", rec.Code, rec.Header().Get("Location"), rec.Body.String())
	}

	p := f.findProduct(t, "Hoodie Zip")
	if p.Price != 250000 {
		t.Errorf("price = %d", p.Price)
	}
	if len(p.Images) != 1 || p.Images[0] != "https://img.example/hoodie.jpg" {
		t.Errorf("images = %v", p.Images)
	}
	if len(p.AdditionalFields) != 1 || p.AdditionalFields[0].Type != models.FieldRadio {
		t.Fatalf("fields = %+v", p.AdditionalFields)
	}
	if p.ValidUntil == nil || !p.ValidUntil.After(time.Now()) {
		t.Errorf("valid until = %v", p.ValidUntil)
	}
}

func TestAdminCreateProductRerendersOnError(t *testing.T) {
	f := newFixture(t)
	cookie := f.adminCookie(t)

	rec := f.postForm("/admin/products", url.Values{
		"name":        {"Topi Rajut"},
		"description": {"Topi rajut hangat untuk musim hujan."},
		"price":       {"seratus ribu"},
		"whatsapp":    {"081234567890"},
		"images":      {"https://img.example/topi.jpg"},
	}, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Harga harus berupa angka.") || !strings.Contains(body, `value="Topi Rajut"`) {
		t.Fatalf("form should keep input and show the error: %s", body)
	}

	rec = f.postForm("/admin/products", url.Values{
		"name":        {"Topi Rajut"},
		"description": {"Topi rajut hangat untuk musim hujan."},
		"price":       {"100000"},
		"whatsapp":    {"081234567890"},
	}, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("product without images status = %d", rec.Code)
	}
}

func TestAdminCreateProductWithUpload(t *testing.T) {
	f := newFixture(t)

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var pngData bytes.Buffer
	if err := png.Encode(&pngData, img); err != nil {
		t.Fatal(err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range map[string]string{
		"name":        "Tote Bag",
		"description": "Tote bag kanvas dengan sablon.",
		"price":       "85000",
		"whatsapp":    "081234567890",
	} {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	fw, err := mw.CreateFormFile("image_files", "tote.png")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(pngData.Bytes())
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/admin/products", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(f.adminCookie(t))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}

	p := f.findProduct(t, "Tote Bag")
	if len(p.Images) != 1 || !strings.HasPrefix(p.Images[0], "http://files.test/uploads/products/") {
		t.Fatalf("images = %v", p.Images)
	}
}

func TestAdminEditProduct(t *testing.T) {
	f := newFixture(t)
	cookie := f.adminCookie(t)
	path := "/admin/products/" + f.product.ID

	rec := f.get(path+"/edit", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("edit form status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`action="` + path + `"`, `value="Kaos Oversize"`, `value="Ukuran"`, `value="150000"`} {
		if !strings.Contains(body, want) {
			t.Errorf("edit form missing %q", want)
		}
	}

	rec = f.postForm(path, url.Values{
		"name":        {"Kaos Oversize V2"},
		"description": {"Kaos cotton combed 30s, potongan oversize."},
		"price":       {"175.000"},
		"whatsapp":    {"081234567890"},
		"valid_until": {nextWeekWIB()},
		"images":      {"", "", ""},
		"field_label": {"", "", ""},
	}, cookie)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/admin/products?flash=updated" {
		t.Fatalf("update: %d %q body=%s", rec.Code, rec.Header().Get("Location"), rec.Body.String())
	}

	p, err := f.catalog.Get(context.Background(), f.product.ID)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Kaos Oversize V2" || p.Price != 175000 {
		t.Errorf("product = %q %d", p.Name, p.Price)
	}
	if len(p.Images) != 1 || len(p.AdditionalFields) != 2 {
		t.Errorf("blank image and field rows should keep the stored ones: %v %d", p.Images, len(p.AdditionalFields))
	}

	if rec := f.get("/admin/products/prd_missing/edit", cookie); rec.Code != http.StatusNotFound {
		t.Fatalf("missing product edit status = %d", rec.Code)
	}
}

func TestAdminToggleAndDeleteProduct(t *testing.T) {
	f := newFixture(t)
	cookie := f.adminCookie(t)
	path := "/admin/products/" + f.product.ID

	rec := f.postForm(path+"/status", url.Values{"status": {"inactive"}}, cookie)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("toggle status = %d", rec.Code)
	}
	p, err := f.catalog.Get(context.Background(), f.product.ID)
	if err != nil {
		t.Fatal(err)
	}
	if p.Status != models.StatusInactive {
		t.Fatalf("status = %q", p.Status)
	}
	if body := f.get("/admin/products", cookie).Body.String(); !strings.Contains(body, "Aktifkan") {
		t.Error("inactive product should offer to activate")
	}
	if rec := f.postForm(path+"/status", url.Values{"status": {"archived"}}, cookie); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown status = %d", rec.Code)
	}

	rec = f.postForm(path+"/delete", nil, cookie)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/admin/products?flash=deleted" {
		t.Fatalf("delete: %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if _, err := f.catalog.Get(context.Background(), f.product.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("after delete err = %v", err)
	}
	if rec := f.postForm(path+"/delete", nil, cookie); rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d", rec.Code)
	}
}

func TestAdminPreOrderPages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cookie := f.adminCookie(t)

	other, err := f.catalog.Create(ctx, catalog.CreateProductInput{
		Name:        "Celana Cargo",
		Description: "Celana cargo bahan ripstop.",
		Price:       300000,
		Images:      []string{"https://img.example/cargo.jpg"},
		WhatsApp:    "081234567890",
	})
	if err != nil {
		t.Fatal(err)
	}
	mine, err := f.orders.Submit(ctx, f.product.ID, preorder.SubmitInput{
		Name:         "Budi",
		Phone:        "0811 2222 333",
		Address:      "Jl. Merdeka 1",
		Quantity:     2,
		CustomFields: models.CustomFields{{Label: "Ukuran", Value: "L"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.orders.Submit(ctx, other.ID, preorder.SubmitInput{Name: "Sinta", Phone: "0812", Quantity: 1}); err != nil {
		t.Fatal(err)
	}

	rec := f.get("/admin/preorders?product_id="+f.product.ID, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Budi") || strings.Contains(body, "Sinta") {
		t.Fatalf("filtered list: %s", body)
	}
	if !strings.Contains(body, `<option value="`+f.product.ID+`" selected>`) {
		t.Error("filter should keep the chosen product selected")
	}
	if body := f.get("/admin/preorders", cookie).Body.String(); !strings.Contains(body, "Sinta") {
		t.Error("unfiltered list should include every pre-order")
	}

	id := mine.PreOrder.ID
	rec = f.get("/admin/preorders/"+id, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("detail status = %d", rec.Code)
	}
	body = rec.Body.String()
	for _, want := range []string{"Jl. Merdeka 1", "Ukuran", "https://wa.me/628112222333"} {
		if !strings.Contains(body, want) {
			t.Errorf("detail missing %q", want)
		}
	}

	rec = f.postForm("/admin/preorders/"+id+"/delete", nil, cookie)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/admin/preorders?flash=deleted" {
		t.Fatalf("delete: %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if rec := f.get("/admin/preorders/"+id, cookie); rec.Code != http.StatusNotFound {
		t.Fatalf("deleted detail status = %d", rec.Code)
	}
	p, err := f.catalog.Get(ctx, f.product.ID)
	if err != nil {
		t.Fatal(err)
	}
	if p.TotalPreOrder != 0 {
		t.Fatalf("total pre-order after delete = %d", p.TotalPreOrder)
	}

	if rec := f.get("/admin/preorders?cursor=garbage", cookie); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad cursor status = %d", rec.Code)
	}
}

func TestAdminCMSEditors(t *testing.T) {
	f := newFixture(t)
	cookie := f.adminCookie(t)

	rec := f.get("/admin/cms", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("editor status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`action="/admin/cms/hero"`, `action="/admin/cms/about"`, `action="/admin/cms/contact"`, "About Us"} {
		if !strings.Contains(body, want) {
			t.Errorf("editor missing %q", want)
		}
	}

	saves := []struct {
		section string
		form    url.Values
	}{
		{"hero", url.Values{"title": {"Drop Baru"}, "cta": {"Pesan"}, "images": {"https://img.example/hero.jpg", "", ""}}},
		{"about", url.Values{
			"title":        {"Tentang Kami"},
			"item_id":      {"mission", "", ""},
			"item_label":   {"Misi", "Tim Kami", ""},
			"item_content": {"Pakaian lokal berkualitas.", "Kami bertiga.", ""},
		}},
		{"contact", url.Values{"title": {"Hubungi Kami"}, "email": {"halo@example.com"}, "recipient_email": {"owner@example.com"}}},
	}
	for _, s := range saves {
		rec := f.postForm("/admin/cms/"+s.section, s.form, cookie)
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/admin/cms?flash=saved" {
			t.Fatalf("save %s: %d %q body=%s", s.section, rec.Code, rec.Header().Get("Location"), rec.Body.String())
		}
	}

	p, err := f.cms.Get(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if p.Hero.Title != "Drop Baru" || p.Hero.Images[0] != "https://img.example/hero.jpg" {
		t.Errorf("hero = %+v", p.Hero)
	}
	if p.About.Title != "Tentang Kami" || len(p.About.Items) != 2 || p.About.Items[1].ID != "tim-kami" {
		t.Errorf("about = %+v", p.About)
	}
	if p.Contact.Email != "halo@example.com" || p.ContactRecipientEmail != "owner@example.com" {
		t.Errorf("contact = %+v recipient %q", p.Contact, p.ContactRecipientEmail)
	}

	rec = f.postForm("/admin/cms/hero", url.Values{"title": {"Rusak"}, "images": {"ftp://img.example/x.jpg"}}, cookie)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "hero.images must start with") {
		t.Fatalf("invalid hero: %d", rec.Code)
	}
	if rec := f.postForm("/admin/cms/footer", url.Values{}, cookie); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown section status = %d", rec.Code)
	}
}

func TestAboutItemsFromForm(t *testing.T) {
	items := aboutItems(
		[]string{"", "", "vision"},
		[]string{"Nilai & Budaya", "", "Visi"},
		[]string{"Jujur", "", ""},
	)
	if len(items) != 2 {
		t.Fatalf("items = %+v", items)
	}
	if items[0].ID != "nilai-budaya" || items[1].ID != "vision" {
		t.Fatalf("ids = %q %q", items[0].ID, items[1].ID)
	}
	if got := aboutItems([]string{""}, []string{"!!!"}, nil); got[0].ID != "item-1" {
		t.Fatalf("fallback id = %q", got[0].ID)
	}
}
