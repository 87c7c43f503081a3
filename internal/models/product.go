// Package models holds the entities shared by the store, the services and
// the HTTP layer.
package models

import (
	"strings"
	"time"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Additional field input types.
const (
	FieldText     = "text"
	FieldNumber   = "number"
	FieldTextarea = "textarea"
	FieldRadio    = "radio"
)

type Product struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	Price            int64             `json:"price"`
	Images           []string          `json:"images"`
	TotalPreOrder    int               `json:"total_pre_order"`
	Status           string            `json:"status"`
	ValidUntil       *time.Time        `json:"valid_until,omitempty"`
	WhatsApp         string            `json:"whatsapp"`
	AdditionalFields []AdditionalField `json:"additional_fields,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// IsOpen reports whether the product currently accepts pre-orders.
func (p Product) IsOpen(now time.Time) bool {
	if p.Status != StatusActive {
		return false
	}
	return p.ValidUntil == nil || now.Before(*p.ValidUntil)
}

// AdditionalField is a per-product question asked at order time.
type AdditionalField struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Label     string `json:"label"`
	Type      string `json:"type"`
	Options   string `json:"options,omitempty"`
	Position  int    `json:"position"`
}

// OptionList splits the comma separated options, dropping blanks.
func (f AdditionalField) OptionList() []string {
	return SplitOptions(f.Options)
}

// SplitOptions splits a comma separated option string, dropping blanks.
func SplitOptions(options string) []string {
	out := make([]string, 0)
	for _, opt := range strings.Split(options, ",") {
		if opt = strings.TrimSpace(opt); opt != "" {
			out = append(out, opt)
		}
	}
	return out
}
