package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/slmn-lf/east-stress-store/internal/catalog"
	"github.com/slmn-lf/east-stress-store/internal/cms"
	"github.com/slmn-lf/east-stress-store/internal/logging"
	"github.com/slmn-lf/east-stress-store/internal/models"
	"github.com/slmn-lf/east-stress-store/internal/preorder"
	"github.com/slmn-lf/east-stress-store/internal/store"
	"github.com/slmn-lf/east-stress-store/internal/upload"
	"github.com/slmn-lf/east-stress-store/internal/validation"
)

const (
	adminProductsPath  = "/admin/products"
	adminPreOrdersPath = "/admin/preorders"
	adminCMSPath       = "/admin/cms"

	productImageSlots = 3
	blankFieldRows    = 3
	blankAboutRows    = 2
	maxFormMemory     = 8 << 20
	dateTimeLocal     = "2006-01-02T15:04"
)

// Admins enter and read deadlines in western Indonesian time.
var wib = time.FixedZone("WIB", 7*60*60)

var adminFlashes = map[string]string{
	"created": "Produk berhasil dibuat.",
	"updated": "Produk berhasil disimpan.",
	"status":  "Status produk diperbarui.",
	"deleted": "Data berhasil dihapus.",
	"saved":   "Konten berhasil disimpan.",
}

var fieldTypes = []string{models.FieldText, models.FieldNumber, models.FieldTextarea, models.FieldRadio}

type fieldRow struct {
	Label   string
	Type    string
	Options string
}

type productForm struct {
	Name        string
	Description string
	Price       string
	WhatsApp    string
	ValidUntil  string
	Images      []string
	Fields      []fieldRow
}

type adminProductsPage struct {
	page
	Products   []models.Product
	NextCursor string
}

type productFormPage struct {
	page
	ProductID  string
	Form       productForm
	FieldTypes []string
	CanUpload  bool
}

type adminPreOrdersPage struct {
	page
	Orders     []models.PreOrder
	Products   []models.Product
	ProductID  string
	NextCursor string
}

type adminPreOrderPage struct {
	page
	Order models.PreOrder
}

type cmsPage struct {
	page
	Profile models.CMSProfile
}

func adminPage(r *http.Request, title string) page {
	return page{Title: title, Admin: true, Flash: adminFlashes[r.URL.Query().Get("flash")]}
}

func (h *Handler) adminProducts(w http.ResponseWriter, r *http.Request) {
	res, err := h.catalog.List(r.Context(), catalog.ListFilter{Cursor: r.URL.Query().Get("cursor")})
	if err != nil {
		h.adminFail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "admin_products", adminProductsPage{
		page:       adminPage(r, "Kelola Produk"),
		Products:   res.Items,
		NextCursor: res.NextCursor,
	})
}

func (h *Handler) newProductForm(w http.ResponseWriter, r *http.Request) {
	h.renderProductForm(w, r, http.StatusOK, "", productForm{}, "")
}

func (h *Handler) editProductForm(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.adminFail(w, r, err)
		return
	}
	form := productForm{
		Name:        p.Name,
		Description: p.Description,
		Price:       strconv.FormatInt(p.Price, 10),
		WhatsApp:    p.WhatsApp,
		Images:      p.Images,
	}
	if p.ValidUntil != nil {
		form.ValidUntil = p.ValidUntil.In(wib).Format(dateTimeLocal)
	}
	for _, f := range p.AdditionalFields {
		form.Fields = append(form.Fields, fieldRow{Label: f.Label, Type: f.Type, Options: f.Options})
	}
	h.renderProductForm(w, r, http.StatusOK, p.ID, form, "")
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	form, images, err := h.readProductForm(r)
	if err != nil {
		h.productFormFailed(w, r, "", form, err)
		return
	}
	price, validUntil, fields, err := form.values()
	if err != nil {
		h.productFormFailed(w, r, "", form, err)
		return
	}
	_, err = h.catalog.Create(r.Context(), catalog.CreateProductInput{
		Name:             form.Name,
		Description:      form.Description,
		Price:            price,
		Images:           images,
		ValidUntil:       validUntil,
		WhatsApp:         form.WhatsApp,
		AdditionalFields: fields,
	})
	if err != nil {
		h.productFormFailed(w, r, "", form, err)
		return
	}
	http.Redirect(w, r, adminProductsPath+"?flash=created", http.StatusSeeOther)
}

// updateProduct keeps the stored images and fields when the form sends
// none of them.
func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	form, images, err := h.readProductForm(r)
	if err != nil {
		h.productFormFailed(w, r, id, form, err)
		return
	}
	price, validUntil, fields, err := form.values()
	if err != nil {
		h.productFormFailed(w, r, id, form, err)
		return
	}
	in := catalog.UpdateProductInput{
		Name:        form.Name,
		Description: form.Description,
		Price:       price,
		ValidUntil:  validUntil,
		WhatsApp:    form.WhatsApp,
	}
	if len(images) > 0 {
		in.Images = images
	}
	if len(fields) > 0 {
		in.AdditionalFields = fields
	}
	if _, err := h.catalog.Update(r.Context(), id, in); err != nil {
		h.productFormFailed(w, r, id, form, err)
		return
	}
	http.Redirect(w, r, adminProductsPath+"?flash=updated", http.StatusSeeOther)
}

func (h *Handler) toggleProductStatus(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.adminError(w, r, http.StatusBadRequest, "Form tidak valid.")
		return
	}
	if _, err := h.catalog.SetStatus(r.Context(), chi.URLParam(r, "id"), r.PostFormValue("status")); err != nil {
		h.adminFail(w, r, err)
		return
	}
	http.Redirect(w, r, adminProductsPath+"?flash=status", http.StatusSeeOther)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.adminFail(w, r, err)
		return
	}
	http.Redirect(w, r, adminProductsPath+"?flash=deleted", http.StatusSeeOther)
}

// readProductForm parses the product form and stores any attached image
// files. The returned images are the URL inputs followed by the uploads.
func (h *Handler) readProductForm(r *http.Request) (productForm, []string, error) {
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(maxFormMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return productForm{}, nil, validation.New("form", "Form tidak valid.")
	}

	form := productForm{
		Name:        strings.TrimSpace(r.PostFormValue("name")),
		Description: strings.TrimSpace(r.PostFormValue("description")),
		Price:       strings.TrimSpace(r.PostFormValue("price")),
		WhatsApp:    strings.TrimSpace(r.PostFormValue("whatsapp")),
		ValidUntil:  strings.TrimSpace(r.PostFormValue("valid_until")),
	}
	labels := r.PostForm["field_label"]
	types := r.PostForm["field_type"]
	options := r.PostForm["field_options"]
	for i, label := range labels {
		row := fieldRow{Label: strings.TrimSpace(label)}
		if row.Label == "" {
			continue
		}
		if i < len(types) {
			row.Type = types[i]
		}
		if i < len(options) {
			row.Options = strings.TrimSpace(options[i])
		}
		form.Fields = append(form.Fields, row)
	}

	images := make([]string, 0, productImageSlots)
	for _, img := range r.PostForm["images"] {
		if img = strings.TrimSpace(img); img != "" {
			images = append(images, img)
		}
	}
	uploaded, err := h.uploadImages(r)
	images = append(images, uploaded...)
	form.Images = images
	return form, images, err
}

func (h *Handler) uploadImages(r *http.Request) ([]string, error) {
	if h.uploads == nil || r.MultipartForm == nil {
		return nil, nil
	}
	var urls []string
	for _, fh := range r.MultipartForm.File["image_files"] {
		if fh.Size == 0 {
			continue
		}
		file, err := fh.Open()
		if err != nil {
			return urls, fmt.Errorf("open upload: %w", err)
		}
		res, err := h.uploads.Upload(r.Context(), fh.Filename, fh.Header.Get("Content-Type"), file)
		file.Close()
		switch {
		case err == nil:
			urls = append(urls, res.URL)
		case errors.Is(err, upload.ErrNotImage), errors.Is(err, upload.ErrTooLarge):
			return urls, validation.New("image_files", fmt.Sprintf("%s: %v", fh.Filename, err))
		case errors.Is(err, upload.ErrNoFile):
		default:
			return urls, err
		}
	}
	return urls, nil
}

// values converts the text inputs into catalog input values.
func (f productForm) values() (int64, *time.Time, []catalog.FieldInput, error) {
	digits := strings.NewReplacer("Rp", "", "rp", "", ".", "", " ", "").Replace(f.Price)
	price, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, nil, nil, validation.New("price", "Harga harus berupa angka.")
	}
	var validUntil *time.Time
	if f.ValidUntil != "" {
		t, err := time.ParseInLocation(dateTimeLocal, f.ValidUntil, wib)
		if err != nil {
			return 0, nil, nil, validation.New("valid_until", "Format batas waktu tidak valid.")
		}
		validUntil = &t
	}
	fields := make([]catalog.FieldInput, 0, len(f.Fields))
	for _, row := range f.Fields {
		fields = append(fields, catalog.FieldInput{Label: row.Label, Type: row.Type, Options: row.Options})
	}
	return price, validUntil, fields, nil
}

func (h *Handler) productFormFailed(w http.ResponseWriter, r *http.Request, id string, form productForm, err error) {
	var ve *validation.RequestValidationError
	switch {
	case errors.As(err, &ve):
		h.renderProductForm(w, r, http.StatusBadRequest, id, form, ve.Error())
	default:
		h.adminFail(w, r, err)
	}
}

func (h *Handler) renderProductForm(w http.ResponseWriter, r *http.Request, status int, id string, form productForm, msg string) {
	title := "Tambah Produk"
	if id != "" {
		title = "Ubah Produk"
	}
	for len(form.Images) < productImageSlots {
		form.Images = append(form.Images, "")
	}
	for i := 0; i < blankFieldRows; i++ {
		form.Fields = append(form.Fields, fieldRow{Type: models.FieldText})
	}
	data := productFormPage{
		page:       page{Title: title, Admin: true, Error: msg},
		ProductID:  id,
		Form:       form,
		FieldTypes: fieldTypes,
		CanUpload:  h.uploads != nil,
	}
	h.render(w, r, status, "admin_product_form", data)
}

func (h *Handler) adminPreOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	productID := strings.TrimSpace(q.Get("product_id"))
	res, err := h.preorders.List(ctx, preorder.ListFilter{ProductID: productID, Cursor: q.Get("cursor")})
	if err != nil {
		h.adminFail(w, r, err)
		return
	}
	products, err := h.catalog.List(ctx, catalog.ListFilter{Limit: catalog.MaxLimit})
	if err != nil {
		h.adminFail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "admin_preorders", adminPreOrdersPage{
		page:       adminPage(r, "Pre-Order"),
		Orders:     res.Items,
		Products:   products.Items,
		ProductID:  productID,
		NextCursor: res.NextCursor,
	})
}

func (h *Handler) adminPreOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.preorders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.adminFail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "admin_preorder", adminPreOrderPage{
		page:  adminPage(r, "Pre-Order "+order.Name),
		Order: order,
	})
}

func (h *Handler) deletePreOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.preorders.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.adminFail(w, r, err)
		return
	}
	http.Redirect(w, r, adminPreOrdersPath+"?flash=deleted", http.StatusSeeOther)
}

func (h *Handler) cmsEditor(w http.ResponseWriter, r *http.Request) {
	profile, err := h.cms.Get(r.Context())
	if err != nil {
		h.adminFail(w, r, err)
		return
	}
	h.renderCMS(w, r, http.StatusOK, adminPage(r, "Konten"), profile)
}

func (h *Handler) saveCMSSection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		h.adminError(w, r, http.StatusBadRequest, "Form tidak valid.")
		return
	}
	var err error
	switch chi.URLParam(r, "section") {
	case cms.SectionHero:
		_, err = h.cms.UpdateHero(ctx, models.Hero{
			Title:    r.PostFormValue("title"),
			Subtitle: r.PostFormValue("subtitle"),
			CTA:      r.PostFormValue("cta"),
			Images:   r.PostForm["images"],
		})
	case cms.SectionAbout:
		_, err = h.cms.UpdateAbout(ctx, models.About{
			Title: r.PostFormValue("title"),
			Items: aboutItems(r.PostForm["item_id"], r.PostForm["item_label"], r.PostForm["item_content"]),
		})
	case cms.SectionContact:
		recipient := r.PostFormValue("recipient_email")
		_, err = h.cms.UpdateContact(ctx, models.Contact{
			Title:     r.PostFormValue("title"),
			Tagline:   r.PostFormValue("tagline"),
			Email:     r.PostFormValue("email"),
			Address:   r.PostFormValue("address"),
			Instagram: r.PostFormValue("instagram"),
			TikTok:    r.PostFormValue("tiktok"),
		}, &recipient)
	default:
		h.adminError(w, r, http.StatusNotFound, "Bagian konten tidak dikenal.")
		return
	}

	var ve *validation.RequestValidationError
	switch {
	case err == nil:
		http.Redirect(w, r, adminCMSPath+"?flash=saved", http.StatusSeeOther)
	case errors.As(err, &ve):
		profile, getErr := h.cms.Get(ctx)
		if getErr != nil {
			h.serverError(w, r, getErr)
			return
		}
		h.renderCMS(w, r, http.StatusBadRequest, page{Title: "Konten", Admin: true, Error: ve.Error()}, profile)
	default:
		h.serverError(w, r, err)
	}
}

func (h *Handler) renderCMS(w http.ResponseWriter, r *http.Request, status int, p page, profile models.CMSProfile) {
	for len(profile.Hero.Images) < cms.HeroImages {
		profile.Hero.Images = append(profile.Hero.Images, "")
	}
	for i := 0; i < blankAboutRows && len(profile.About.Items) < cms.MaxAboutItems; i++ {
		profile.About.Items = append(profile.About.Items, models.AboutItem{})
	}
	h.render(w, r, status, "admin_cms", cmsPage{page: p, Profile: profile})
}

// aboutItems zips the repeated about inputs. Rows without a label or content
// are dropped and a missing id is derived from the label.
func aboutItems(ids, labels, contents []string) []models.AboutItem {
	at := func(vals []string, i int) string {
		if i < len(vals) {
			return strings.TrimSpace(vals[i])
		}
		return ""
	}
	var items []models.AboutItem
	for i := range labels {
		it := models.AboutItem{ID: at(ids, i), Label: at(labels, i), Content: at(contents, i)}
		if it.Label == "" && it.Content == "" {
			continue
		}
		if it.ID == "" {
			it.ID = slug(it.Label)
		}
		if it.ID == "" {
			it.ID = fmt.Sprintf("item-%d", i+1)
		}
		items = append(items, it)
	}
	return items
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func (h *Handler) adminFail(w http.ResponseWriter, r *http.Request, err error) {
	var ve *validation.RequestValidationError
	switch {
	case errors.As(err, &ve):
		h.adminError(w, r, http.StatusBadRequest, ve.Error())
	case errors.Is(err, store.ErrNotFound):
		h.adminError(w, r, http.StatusNotFound, "Data tidak ditemukan.")
	default:
		h.serverError(w, r, err)
	}
}

func (h *Handler) adminError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	logging.Ctx(r.Context()).Warn().Int("status", status).Str("path", r.URL.Path).Msg(msg)
	h.render(w, r, status, "error", page{Title: http.StatusText(status), Admin: true, Error: msg})
}
