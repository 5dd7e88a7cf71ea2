package receeco

import "fmt"

// ValidateCreateReceiptInput checks the fields createReceiptFromPOS requires
// and stops at the first problem. Numeric fields are always sent, so zero
// amounts and prices are accepted. Unknown fields in Extra are never
// rejected.
func ValidateCreateReceiptInput(in ReceiptInput) error {
	required := []struct {
		name    string
		missing bool
	}{
		{"merchant_string_id", in.MerchantStringID == ""},
		{"items", in.Items == nil},
		{"category", in.Category == ""},
	}
	for _, f := range required {
		if f.missing {
			return newError(CodeInvalidInput, "Missing required field: "+f.name)
		}
	}

	if len(in.Items) == 0 {
		return newError(CodeInvalidInput, "items must be a non-empty array")
	}

	for i, item := range in.Items {
		if item.Name == "" {
			return newError(CodeInvalidInput, fmt.Sprintf("Item %d: missing required field: name", i))
		}
	}
	return nil
}
