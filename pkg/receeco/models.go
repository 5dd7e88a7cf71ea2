package receeco

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ReceiptInput describes a receipt to create. Amounts are in the minor
// currency unit. Keys in Extra are sent as-is alongside the known fields.
type ReceiptInput struct {
	MerchantStringID string      `json:"merchant_string_id"`
	Items            []ItemInput `json:"items"`
	TotalAmount      int64       `json:"total_amount"`
	Category         string      `json:"category"`

	MerchantName    string `json:"merchant_name,omitempty"`
	MerchantLogo    string `json:"merchant_logo,omitempty"`
	CustomerEmail   string `json:"customer_email,omitempty"`
	CustomerPhone   string `json:"customer_phone,omitempty"`
	Currency        string `json:"currency,omitempty"`
	PaymentMethod   string `json:"payment_method,omitempty"`
	Location        string `json:"location,omitempty"`
	TransactionDate string `json:"transaction_date,omitempty"`

	Extra map[string]any `json:"-"`
}

var receiptInputKeys = []string{
	"merchant_string_id", "items", "total_amount", "category",
	"merchant_name", "merchant_logo", "customer_email", "customer_phone",
	"currency", "payment_method", "location", "transaction_date",
}

// ItemInput is a single line of a receipt. TotalPrice is sent as given and
// is not checked against Quantity * UnitPrice.
type ItemInput struct {
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
	UnitPrice  int64   `json:"unit_price"`
	TotalPrice int64   `json:"total_price"`

	Extra map[string]any `json:"-"`
}

var itemInputKeys = []string{"name", "quantity", "unit_price", "total_price"}

// ContactUpdateInput attaches customer contact details to an existing receipt.
type ContactUpdateInput struct {
	Token string `json:"token"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// CreatedReceipt is returned by CreateReceipt.
type CreatedReceipt struct {
	ID        FlexibleID `json:"id"`
	Token     string     `json:"token"`
	ShortCode string     `json:"short_code,omitempty"`

	// Raw holds the full normalized result.
	Raw json.RawMessage `json:"-"`
}

// Receipt is the full receipt returned by GetReceipt.
type Receipt struct {
	ID               FlexibleID    `json:"id"`
	Token            string        `json:"token"`
	ShortCode        string        `json:"short_code"`
	MerchantStringID string        `json:"merchant_string_id,omitempty"`
	MerchantName     string        `json:"merchant_name,omitempty"`
	Items            []ReceiptItem `json:"items,omitempty"`
	TotalAmount      int64         `json:"total_amount"`
	Currency         string        `json:"currency,omitempty"`
	Category         string        `json:"category,omitempty"`
	PaymentMethod    string        `json:"payment_method,omitempty"`
	Location         string        `json:"location,omitempty"`
	CustomerEmail    string        `json:"customer_email,omitempty"`
	CustomerPhone    string        `json:"customer_phone,omitempty"`
	Status           string        `json:"status,omitempty"`
	TransactionDate  string        `json:"transaction_date,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// ReceiptItem is a line item as stored by the service.
type ReceiptItem struct {
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
	UnitPrice  int64   `json:"unit_price"`
	TotalPrice int64   `json:"total_price"`
}

// ContactUpdateResult is returned by UpdateReceiptContact.
type ContactUpdateResult struct {
	Success bool `json:"success"`

	Raw json.RawMessage `json:"-"`
}

// FlexibleID accepts both JSON strings and numbers.
type FlexibleID string

func (id *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = FlexibleID(n.String())
	return nil
}

func (in ReceiptInput) MarshalJSON() ([]byte, error) {
	type plain ReceiptInput
	return marshalWithExtra(plain(in), in.Extra)
}

func (in *ReceiptInput) UnmarshalJSON(data []byte) error {
	type plain ReceiptInput
	var p plain
	extra, err := unmarshalWithExtra(data, &p, receiptInputKeys)
	if err != nil {
		return err
	}
	*in = ReceiptInput(p)
	in.Extra = extra
	return nil
}

func (it ItemInput) MarshalJSON() ([]byte, error) {
	type plain ItemInput
	return marshalWithExtra(plain(it), it.Extra)
}

func (it *ItemInput) UnmarshalJSON(data []byte) error {
	type plain ItemInput
	var p plain
	extra, err := unmarshalWithExtra(data, &p, itemInputKeys)
	if err != nil {
		return err
	}
	*it = ItemInput(p)
	it.Extra = extra
	return nil
}

// createReceiptPayload is the body sent to createReceiptFromPOS.
type createReceiptPayload struct {
	ReceiptInput
	Token     string
	ShortCode string
	Status    string
}

func (p createReceiptPayload) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(p.ReceiptInput)
	if err != nil {
		return nil, err
	}
	return mergeFields(data, map[string]any{
		"token":      p.Token,
		"short_code": p.ShortCode,
		"status":     p.Status,
	}, true)
}

// marshalWithExtra encodes v and merges extra keys into the resulting
// object. Known fields win over extra ones.
func marshalWithExtra(v any, extra map[string]any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mergeFields(data, extra, false)
}

func mergeFields(data []byte, extra map[string]any, override bool) ([]byte, error) {
	if len(extra) == 0 {
		return data, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	for k, val := range extra {
		if _, exists := fields[k]; exists && !override {
			continue
		}
		raw, err := json.Marshal(val)
		if err != nil {
			return nil, fmt.Errorf("encode field %q: %w", k, err)
		}
		fields[k] = raw
	}
	return json.Marshal(fields)
}

func unmarshalWithExtra(data []byte, v any, known []string) (map[string]any, error) {
	if err := json.Unmarshal(data, v); err != nil {
		return nil, err
	}

	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}
