package shared

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// maxRequestBodySize bounds request bodies to protect against oversized
// payloads.
const maxRequestBodySize = 1 << 20 // 1 MiB

// DecodeJSON decodes the request body into v, rejecting unknown fields and
// trailing garbage.
func DecodeJSON(r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxRequestBodySize)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("failed to decode request body: %w", err)
	}

	// A second decode must report EOF, otherwise the body held more than one
	// JSON value.
	if decoder.More() {
		return fmt.Errorf("request body must contain a single JSON value")
	}

	return nil
}
