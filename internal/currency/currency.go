// Package currency formats rupiah amounts the way Indonesian shoppers read
// them.
package currency

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const symbol = "Rp "

func printer() *message.Printer {
	return message.NewPrinter(language.Indonesian)
}

// FormatIDR renders whole rupiah with id-ID grouping: 150000 → "Rp 150.000".
func FormatIDR(amount int64) string {
	return symbol + printer().Sprintf("%d", amount)
}

// FormatIDRCents renders with two decimals: 150000 → "Rp 150.000,00".
func FormatIDRCents(amount int64) string {
	return symbol + printer().Sprintf("%.2f", decimal.NewFromInt(amount).InexactFloat64())
}

// Total multiplies a unit price by a quantity.
func Total(price int64, quantity int) int64 {
	return decimal.NewFromInt(price).Mul(decimal.NewFromInt(int64(quantity))).IntPart()
}
