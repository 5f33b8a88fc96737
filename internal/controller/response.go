// internal/controller/response.go
package controller

import (
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/togetherunite-backend/internal/errors"
)

// maxBodyBytes bounds request bodies; a full recipient list fits well within it.
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError renders err with the status its type maps to. Server-side
// failures are logged and carry their cause in "message".
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	status := appErrors.StatusCode(err)
	message, detail := appErrors.Public(err)
	body := map[string]string{"error": message}
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.Error(err))
		if detail != "" {
			body["message"] = detail
		}
	}
	writeJSON(w, status, body)
}

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, appErrors.NewValidation("Invalid request body")
	}
	return body, nil
}

// decodeJSON reads a JSON request body into dst. An empty body leaves dst
// untouched so required-field validation reports what is missing.
func decodeJSON(r *http.Request, dst any) error {
	body, err := readBody(r)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return appErrors.NewValidation("Invalid JSON body")
	}
	return nil
}
