// Package web renders the storefront and admin pages.
package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/slmn-lf/east-stress-store/internal/auth"
	"github.com/slmn-lf/east-stress-store/internal/catalog"
	"github.com/slmn-lf/east-stress-store/internal/cms"
	"github.com/slmn-lf/east-stress-store/internal/currency"
	"github.com/slmn-lf/east-stress-store/internal/logging"
	"github.com/slmn-lf/east-stress-store/internal/models"
	"github.com/slmn-lf/east-stress-store/internal/preorder"
	"github.com/slmn-lf/east-stress-store/internal/store"
	"github.com/slmn-lf/east-stress-store/internal/upload"
	"github.com/slmn-lf/east-stress-store/internal/validation"
	"github.com/slmn-lf/east-stress-store/internal/whatsapp"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	loginPath     = "/auth/login"
	dashboardPath = "/admin/dashboard"

	landingProducts   = 12
	dashboardContacts = 5
)

var pageNames = []string{
	"landing", "products", "product", "login", "dashboard", "error",
	"admin_products", "admin_product_form", "admin_preorders", "admin_preorder", "admin_cms",
}

// Deps are the services behind the pages. Uploads is optional; without it
// the product form only takes image URLs.
type Deps struct {
	Catalog     *catalog.Service
	PreOrders   *preorder.Service
	CMS         *cms.Service
	Sessions    *auth.Sessions
	Uploads     *upload.Service
	CountryCode string
}

// Handler serves the HTML pages. It implements api.Pages.
type Handler struct {
	catalog   *catalog.Service
	preorders *preorder.Service
	cms       *cms.Service
	sessions  *auth.Sessions
	uploads   *upload.Service
	pages     map[string]*template.Template
	now       func() time.Time
}

// New parses the embedded templates.
func New(d Deps) (*Handler, error) {
	funcs := template.FuncMap{
		"idr":        currency.FormatIDR,
		"total":      currency.Total,
		"date":       formatDate,
		"firstImage": firstImage,
		"nonEmpty":   nonEmpty,
		"waLink": func(phone string) string {
			return "https://wa.me/" + whatsapp.NormalizePhone(phone, d.CountryCode)
		},
	}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		pages[name] = t
	}
	return &Handler{
		catalog:   d.Catalog,
		preorders: d.PreOrders,
		cms:       d.CMS,
		sessions:  d.Sessions,
		uploads:   d.Uploads,
		pages:     pages,
		now:       time.Now,
	}, nil
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.landing)
	r.Post("/contact", h.contact)
	r.Get("/products", h.products)
	r.Get("/products/{id}", h.product)
	r.Post("/products/{id}/order", h.order)
	r.Get(loginPath, h.login)

	r.Route("/admin", func(r chi.Router) {
		r.Use(h.sessions.RequireAdmin(h.toLogin))
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, dashboardPath, http.StatusSeeOther)
		})
		r.Get("/dashboard", h.dashboard)

		r.Get("/products", h.adminProducts)
		r.Get("/products/new", h.newProductForm)
		r.Post("/products", h.createProduct)
		r.Get("/products/{id}/edit", h.editProductForm)
		r.Post("/products/{id}", h.updateProduct)
		r.Post("/products/{id}/status", h.toggleProductStatus)
		r.Post("/products/{id}/delete", h.deleteProduct)

		r.Get("/preorders", h.adminPreOrders)
		r.Get("/preorders/{id}", h.adminPreOrder)
		r.Post("/preorders/{id}/delete", h.deletePreOrder)

		r.Get("/cms", h.cmsEditor)
		r.Post("/cms/{section}", h.saveCMSSection)
	})
}

type page struct {
	Title string
	Admin bool
	Flash string
	Error string
}

type landingPage struct {
	page
	Profile  models.CMSProfile
	Products []models.Product
}

type productsPage struct {
	page
	Products   []models.Product
	NextCursor string
}

type orderForm struct {
	Name     string
	Email    string
	Phone    string
	Address  string
	Quantity int
	Answers  map[string]string
}

type productPage struct {
	page
	Product models.Product
	Open    bool
	Form    orderForm
}

type loginPage struct {
	page
	Next string
}

type dashboardPage struct {
	page
	Username string
	Stats    models.PreOrderStats
	Products []models.Product
	Contacts []models.ContactMessage
}

func (h *Handler) landing(w http.ResponseWriter, r *http.Request) {
	profile, err := h.cms.Get(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	res, err := h.catalog.List(r.Context(), catalog.ListFilter{Status: models.StatusActive, Limit: landingProducts})
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	data := landingPage{page: page{Title: profile.Hero.Title}, Profile: profile, Products: res.Items}
	switch r.URL.Query().Get("contact") {
	case "sent":
		data.Flash = "Pesan kamu sudah terkirim. Terima kasih!"
	case "error":
		data.Error = "Pesan gagal dikirim. Pastikan nama, email dan pesan sudah diisi."
	}
	h.render(w, r, http.StatusOK, "landing", data)
}

func (h *Handler) contact(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/?contact=error#contact", http.StatusSeeOther)
		return
	}
	_, err := h.cms.SubmitContact(r.Context(), cms.ContactInput{
		Name:    r.PostFormValue("name"),
		Email:   r.PostFormValue("email"),
		Message: r.PostFormValue("message"),
	})
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("contact form rejected")
		http.Redirect(w, r, "/?contact=error#contact", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/?contact=sent#contact", http.StatusSeeOther)
}

func (h *Handler) products(w http.ResponseWriter, r *http.Request) {
	res, err := h.catalog.List(r.Context(), catalog.ListFilter{
		Status: models.StatusActive,
		Cursor: r.URL.Query().Get("cursor"),
	})
	if err != nil {
		var ve *validation.RequestValidationError
		if errors.As(err, &ve) {
			h.renderError(w, r, http.StatusBadRequest, ve.Error())
			return
		}
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "products", productsPage{
		page:       page{Title: "Produk"},
		Products:   res.Items,
		NextCursor: res.NextCursor,
	})
}

func (h *Handler) product(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadProduct(w, r)
	if !ok {
		return
	}
	h.render(w, r, http.StatusOK, "product", productPage{
		page:    page{Title: p.Name},
		Product: p,
		Open:    p.IsOpen(h.now()),
		Form:    orderForm{Quantity: 1, Answers: map[string]string{}},
	})
}

// order handles the pre-order form. Success sends the buyer straight to
// WhatsApp with the order message filled in.
func (h *Handler) order(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadProduct(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Form tidak valid.")
		return
	}

	form := orderForm{
		Name:    r.PostFormValue("name"),
		Email:   r.PostFormValue("email"),
		Phone:   r.PostFormValue("phone"),
		Address: r.PostFormValue("address"),
		Answers: make(map[string]string, len(p.AdditionalFields)),
	}
	form.Quantity, _ = strconv.Atoi(strings.TrimSpace(r.PostFormValue("quantity")))
	answers := make(models.CustomFields, 0, len(p.AdditionalFields))
	for _, f := range p.AdditionalFields {
		v := strings.TrimSpace(r.PostFormValue("field_" + f.ID))
		form.Answers[f.ID] = v
		if v != "" {
			answers = append(answers, models.CustomField{Label: f.Label, Value: v})
		}
	}

	res, err := h.preorders.Submit(r.Context(), p.ID, preorder.SubmitInput{
		Name:         form.Name,
		Email:        form.Email,
		Phone:        form.Phone,
		Address:      form.Address,
		Quantity:     form.Quantity,
		CustomFields: answers,
	})
	if err == nil {
		http.Redirect(w, r, res.WhatsAppURL, http.StatusSeeOther)
		return
	}

	data := productPage{page: page{Title: p.Name}, Product: p, Open: p.IsOpen(h.now()), Form: form}
	var ve *validation.RequestValidationError
	switch {
	case errors.As(err, &ve):
		data.Error = ve.Error()
		h.render(w, r, http.StatusBadRequest, "product", data)
	case errors.Is(err, preorder.ErrProductUnavailable):
		data.Error = "Pre-order untuk produk ini sudah ditutup."
		data.Open = false
		h.render(w, r, http.StatusConflict, "product", data)
	case errors.Is(err, store.ErrNotFound):
		h.renderError(w, r, http.StatusNotFound, "Produk tidak ditemukan.")
	default:
		h.serverError(w, r, err)
	}
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Query().Get("next")
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		next = dashboardPath
	}
	if _, err := h.sessions.FromRequest(r); err == nil {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}
	data := loginPage{page: page{Title: "Login Admin"}, Next: next}
	if r.URL.Query().Get("error") == "invalid" {
		data.Error = "Username atau password salah."
	}
	h.render(w, r, http.StatusOK, "login", data)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := h.preorders.Stats(ctx)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	products, err := h.catalog.List(ctx, catalog.ListFilter{Limit: catalog.MaxLimit})
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	contacts, err := h.cms.ListContacts(ctx, dashboardContacts)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	data := dashboardPage{
		page:     page{Title: "Dashboard", Admin: true},
		Stats:    stats,
		Products: products.Items,
		Contacts: contacts,
	}
	if c, ok := auth.ClaimsFromContext(ctx); ok {
		data.Username = c.Username
	}
	h.render(w, r, http.StatusOK, "dashboard", data)
}

func (h *Handler) loadProduct(w http.ResponseWriter, r *http.Request) (models.Product, bool) {
	p, err := h.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	switch {
	case err == nil:
		return p, true
	case errors.Is(err, store.ErrNotFound):
		h.renderError(w, r, http.StatusNotFound, "Produk tidak ditemukan.")
	default:
		h.serverError(w, r, err)
	}
	return models.Product{}, false
}

func (h *Handler) toLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, loginPath+"?next="+url.QueryEscape(r.URL.Path), http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := h.pages[name].ExecuteTemplate(&buf, "layout.html", data); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("template", name).Msg("template render failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.render(w, r, status, "error", page{Title: http.StatusText(status), Error: msg})
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("page failed")
	h.renderError(w, r, http.StatusInternalServerError, "Terjadi kesalahan. Coba lagi nanti.")
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02 Jan 2006 15:04")
}

func firstImage(images []string) string {
	for _, img := range images {
		if img != "" {
			return img
		}
	}
	return ""
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
