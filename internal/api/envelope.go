package api

import (
	"encoding/json"
	"fmt"
)

// The backend is inconsistent about its response envelope: some endpoints
// reply {"data": <payload>}, others {"data": {"data": <payload>}}. decode
// normalizes both shapes (and a bare payload) into the caller's target so no
// state-management code ever sees the difference.
func decode(raw []byte, out any) error {
	payload := unwrap(unwrap(raw))
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func unwrap(raw []byte) json.RawMessage {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil || len(env.Data) == 0 {
		return raw
	}
	return env.Data
}

func errorMessage(raw []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}
