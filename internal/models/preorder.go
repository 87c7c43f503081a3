package models

import (
	"bytes"
	"errors"
	"time"

	"github.com/goccy/go-json"
)

// PreOrder is a customer's order placed against a product. Fulfillment
// continues over WhatsApp.
type PreOrder struct {
	ID           string       `json:"id"`
	ProductID    string       `json:"product_id"`
	ProductName  string       `json:"product_name,omitempty"`
	Name         string       `json:"name"`
	Email        string       `json:"email,omitempty"`
	Phone        string       `json:"phone"`
	Address      string       `json:"address,omitempty"`
	Quantity     int          `json:"quantity"`
	CustomFields CustomFields `json:"custom_fields"`
	CreatedAt    time.Time    `json:"created_at"`
	// ProductFields is filled on reads so the admin UI can label answers.
	ProductFields []AdditionalField `json:"product_additional_fields,omitempty"`
}

// CustomField is one answer to a product's additional field.
type CustomField struct {
	Label string
	Value string
}

// CustomFields keeps answers in the order the product declares its fields.
// It serializes as a JSON object, preserving that order.
type CustomFields []CustomField

// Get returns the value for label.
func (c CustomFields) Get(label string) (string, bool) {
	for _, f := range c {
		if f.Label == label {
			return f.Value, true
		}
	}
	return "", false
}

func (c CustomFields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Label)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts a JSON object whose values are strings or numbers.
// Key order of the document is kept.
func (c *CustomFields) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*c = nil
		return nil
	}
	var ordered []CustomField
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("custom_fields must be a JSON object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		ordered = append(ordered, CustomField{Label: key, Value: stringify(raw)})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*c = ordered
	return nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}

// PreOrderStats backs the admin dashboard.
type PreOrderStats struct {
	TotalOrders   int        `json:"total_orders"`
	TotalQuantity int        `json:"total_quantity"`
	TotalProducts int        `json:"total_products"`
	Recent        []PreOrder `json:"recent"`
}
