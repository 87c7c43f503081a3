package whatsapp

import (
	"strings"
	"testing"

	"github.com/slmn-lf/east-stress-store/internal/models"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct{ raw, cc, want string }{
		{"0812-3456-7890", "", "6281234567890"},
		{"+62 812 3456 7890", "62", "6281234567890"},
		{"081234567", "60", "6081234567"},
		{"6281234567", "62", "6281234567"},
		{"0812\t3456 789", "", "628123456789"},
		{" 0812\n3456\u00a07890\r", "", "6281234567890"},
	}
	for _, tc := range cases {
		if got := NormalizePhone(tc.raw, tc.cc); got != tc.want {
			t.Errorf("NormalizePhone(%q, %q) = %q, want %q", tc.raw, tc.cc, got, tc.want)
		}
	}
}

func TestURLEncodesLikeBrowser(t *testing.T) {
	got := URL("6281234567", "Halo (test)! a+b *x*\n")
	want := "https://wa.me/6281234567?text=Halo%20(test)!%20a%2Bb%20*x*%0A"
	if got != want {
		t.Fatalf("URL = %q, want %q", got, want)
	}
}

func TestMessage(t *testing.T) {
	p := models.Product{Name: "Kaos Polos", Price: 150000}
	o := models.PreOrder{
		ID:       "po_1",
		Name:     "Budi",
		Phone:    "0812",
		Quantity: 2,
		CustomFields: models.CustomFields{
			{Label: "Ukuran", Value: "XL"},
		},
	}
	msg := Message(p, o)
	for _, want := range []string{
		"Halo, saya ingin melakukan pre-order:\n\n",
		" *Produk*: Kaos Polos\n",
		" *Harga*: Rp 150.000,00\n",
		" *Jumlah*: 2x\n",
		" *Total*: Rp 300.000,00\n\n",
		" Email: -\n",
		"\n *Detail Pesanan*:\n• Ukuran: XL\n",
		"\n *ID Pesanan*: po_1\n",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
	if strings.Contains(msg, "Alamat") {
		t.Error("address line should be omitted when empty")
	}
	if !strings.HasSuffix(msg, "Terima kasih telah melakukan pre-order!") {
		t.Error("missing closing line")
	}

	o.Address = "Jl. Merdeka 1"
	o.CustomFields = nil
	msg = Message(p, o)
	if !strings.Contains(msg, " Alamat: Jl. Merdeka 1\n") || strings.Contains(msg, "Detail Pesanan") {
		t.Errorf("unexpected message:\n%s", msg)
	}
}
