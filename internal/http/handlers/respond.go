package handlers

import (
	"encoding/json"
	"net/http"

	httperrors "github.com/dropDatabas3/gatekeep/internal/http/errors"
)

// maxBodyBytes limita el tamaño de los bodies JSON aceptados.
const maxBodyBytes = 64 << 10

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// readJSON decodea el body en dst con límite de tamaño. Errores de
// sintaxis se reportan como INVALID_JSON.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON.WithCause(err))
		return false
	}
	return true
}
