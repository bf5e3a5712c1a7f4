package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// WriteJSON encodes v as the response body. Encoding happens before the header
// is written so that a marshal failure can still become an error response.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("could not encode response: %w", err)
	}

	writeRaw(w, status, body)

	return nil
}
