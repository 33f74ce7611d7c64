package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/storegoals-backend/pkg/errors"
)

func fieldError(msg, field string, extra ...any) error {
	details := map[string]any{"field": field}
	for i := 0; i+1 < len(extra); i += 2 {
		details[extra[i].(string)] = extra[i+1]
	}
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(details)
}

// ParseQueryInt reads ?key= as an int in [lo, hi], or def when absent.
func ParseQueryInt(r *http.Request, key string, def, lo, hi int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	switch {
	case err != nil:
		return 0, fieldError("query parameter must be numeric", key)
	case v < lo || v > hi:
		return 0, fieldError("query parameter out of range", key, "min", lo, "max", hi)
	}
	return v, nil
}

// ParsePathInt64 reads a positive numeric identifier.
func ParsePathInt64(raw, field string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || v <= 0 {
		return 0, fieldError("invalid identifier", field)
	}
	return v, nil
}

// QueryString returns the trimmed value of ?key= cut to maxLen bytes.
func QueryString(r *http.Request, key string, maxLen int) string {
	return SanitizeString(r.URL.Query().Get(key), maxLen)
}
