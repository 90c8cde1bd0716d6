package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

func parseIDParam(r *http.Request) (int64, error) {
	idStr := r.PathValue("id")
	return strconv.ParseInt(idStr, 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// parseDayParam parses a YYYY-MM-DD query value.
func parseDayParam(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
