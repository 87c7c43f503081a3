// Package whatsapp builds the order message and the wa.me deep link that
// hands a pre-order over to the seller's WhatsApp.
package whatsapp

import (
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/slmn-lf/east-stress-store/internal/currency"
	"github.com/slmn-lf/east-stress-store/internal/models"
)

const DefaultCountryCode = "62"

func phoneRune(r rune) rune {
	if r == '-' || r == '+' || unicode.IsSpace(r) {
		return -1
	}
	return r
}

// NormalizePhone strips whitespace, dashes and plus signs and replaces a
// leading trunk 0 with countryCode.
func NormalizePhone(raw, countryCode string) string {
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}
	phone := strings.Map(phoneRune, raw)
	if strings.HasPrefix(phone, "0") {
		phone = countryCode + phone[1:]
	}
	return phone
}

// URL returns https://wa.me/<phone>?text=<message>. The phone must already
// be normalized.
func URL(phone, message string) string {
	return "https://wa.me/" + phone + "?text=" + encodeURIComponent(message)
}

// encodeURIComponent escapes like the browser function of the same name:
// spaces become %20 and !'()*-._~ stay literal.
func encodeURIComponent(s string) string {
	escaped := url.QueryEscape(s)
	escaped = strings.ReplaceAll(escaped, "+", "%20")
	return unescapeMarks.Replace(escaped)
}

var unescapeMarks = strings.NewReplacer("%21", "!", "%27", "'", "%28", "(", "%29", ")", "%2A", "*")

// Message renders the Indonesian order summary sent to the seller.
func Message(p models.Product, o models.PreOrder) string {
	var b strings.Builder
	b.WriteString("Halo, saya ingin melakukan pre-order:\n\n")
	b.WriteString(" *Produk*: " + p.Name + "\n")
	b.WriteString(" *Harga*: " + currency.FormatIDRCents(p.Price) + "\n")
	b.WriteString(" *Jumlah*: " + strconv.Itoa(o.Quantity) + "x\n")
	b.WriteString(" *Total*: " + currency.FormatIDRCents(currency.Total(p.Price, o.Quantity)) + "\n\n")

	b.WriteString(" *Data Pelanggan*:\n")
	b.WriteString(" Nama: " + o.Name + "\n")
	email := o.Email
	if email == "" {
		email = "-"
	}
	b.WriteString(" Email: " + email + "\n")
	b.WriteString(" Telepon: " + o.Phone + "\n")
	if o.Address != "" {
		b.WriteString(" Alamat: " + o.Address + "\n")
	}

	if len(o.CustomFields) > 0 {
		b.WriteString("\n *Detail Pesanan*:\n")
		for _, f := range o.CustomFields {
			b.WriteString("• " + f.Label + ": " + f.Value + "\n")
		}
	}

	b.WriteString("\n *ID Pesanan*: " + o.ID + "\n")
	b.WriteString("Terima kasih telah melakukan pre-order!")
	return b.String()
}
