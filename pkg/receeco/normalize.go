package receeco

import (
	"bytes"
	"encoding/json"
	"net/http"
)

const (
	defaultErrorMessage     = "Unknown error occurred"
	unexpectedFormatMessage = "Unexpected response format"
	invalidJSONPrefix       = "Invalid JSON response: "
)

// Normalize maps an HTTP status and body in the {result}/{error} envelope to
// either the result value or an *Error. It has no side effects.
func Normalize(status int, body []byte) (json.RawMessage, error) {
	if !json.Valid(body) {
		return nil, newError(CodeInvalidResponse, invalidJSONPrefix+truncate(string(body), 200))
	}

	fields, _ := decodeObject(body)

	if status == http.StatusOK {
		if result, ok := fields["result"]; ok {
			if data, ok := lookup(result, "data"); ok {
				return data, nil
			}
			return result, nil
		}
		if errRaw, ok := fields["error"]; ok {
			return nil, remoteError(errRaw)
		}
		return json.RawMessage(bytes.TrimSpace(body)), nil
	}

	if errRaw, ok := fields["error"]; ok {
		return nil, remoteError(errRaw)
	}
	return nil, newError(CodeUnknownError, unexpectedFormatMessage)
}

// remoteError extracts code and message from an error envelope. The code
// comes from error.data.code, then error.code, then CodeUnknown.
func remoteError(raw json.RawMessage) *Error {
	fields, _ := decodeObject(raw)

	var code string
	if dataCode, ok := lookup(fields["data"], "code"); ok {
		code = scalarString(dataCode)
	}
	if code == "" {
		code = scalarString(fields["code"])
	}
	if code == "" {
		code = CodeUnknown
	}

	message := scalarString(fields["message"])
	if message == "" {
		message = defaultErrorMessage
	}
	return newError(code, message)
}

func decodeObject(body []byte) (map[string]json.RawMessage, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return nil, false
	}
	return fields, true
}

func lookup(raw json.RawMessage, key string) (json.RawMessage, bool) {
	fields, ok := decodeObject(raw)
	if !ok {
		return nil, false
	}
	v, ok := fields[key]
	return v, ok
}

// scalarString renders a JSON string or number as a Go string. Anything else
// yields "".
func scalarString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return ""
		}
		return n.String()
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
