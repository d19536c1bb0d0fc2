// Package response writes the JSON envelope every admin endpoint uses:
// {"success":true,"data":...} on success and
// {"success":false,"error":CODE,"message":...} on failure.
package response

import (
	"encoding/json"
	"net/http"
)

// JSON writes payload with the given status code.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// Success wraps data in the success envelope with a 200 status.
func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    data,
	})
}

// Error writes the failure envelope. code is the machine-readable
// error identifier clients branch on; message is for display.
func Error(w http.ResponseWriter, status int, code string, message string) {
	JSON(w, status, map[string]any{
		"success": false,
		"error":   code,
		"message": message,
	})
}
