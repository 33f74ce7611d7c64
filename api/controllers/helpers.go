package controllers

import (
	"iter"
	"net/http"
	"strings"

	"github.com/angelmondragon/storegoals-backend/api/middleware"
	"github.com/angelmondragon/storegoals-backend/api/validators"
	"github.com/angelmondragon/storegoals-backend/internal/periods"
	pkgerrors "github.com/angelmondragon/storegoals-backend/pkg/errors"
)

const maxPeriodOffset = 24

// periodResolver is the part of the period service the handlers use.
type periodResolver interface {
	Resolve(offset int) periods.Period
	Current() periods.Period
	Window(from, to int) iter.Seq[periods.Period]
	Explicit(start, end string) (periods.Period, error)
}

func requirePrincipal(r *http.Request) (middleware.Principal, error) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok || p.StoreID <= 0 {
		return middleware.Principal{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return p, nil
}

// periodFromQuery reads ?start=&end= when both are present, otherwise
// ?offset= relative to the current period.
func periodFromQuery(r *http.Request, resolver periodResolver) (periods.Period, error) {
	q := r.URL.Query()
	start, end := strings.TrimSpace(q.Get("start")), strings.TrimSpace(q.Get("end"))
	if start != "" || end != "" {
		if start == "" || end == "" {
			return periods.Period{}, pkgerrors.New(pkgerrors.CodeValidation, "start and end must be provided together")
		}
		p, err := resolver.Explicit(start, end)
		if err != nil {
			return periods.Period{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
		}
		return p, nil
	}
	offset, err := validators.ParseQueryInt(r, "offset", 0, -maxPeriodOffset, maxPeriodOffset)
	if err != nil {
		return periods.Period{}, err
	}
	return resolver.Resolve(offset), nil
}

// offsetRange reads ?from=&to= with the given defaults and a maximum span.
func offsetRange(r *http.Request, defFrom, defTo, maxSpan int) (int, int, error) {
	from, err := validators.ParseQueryInt(r, "from", defFrom, -maxPeriodOffset, maxPeriodOffset)
	if err != nil {
		return 0, 0, err
	}
	to, err := validators.ParseQueryInt(r, "to", defTo, -maxPeriodOffset, maxPeriodOffset)
	if err != nil {
		return 0, 0, err
	}
	if to < from {
		return 0, 0, pkgerrors.New(pkgerrors.CodeValidation, "from must not be after to")
	}
	if to-from+1 > maxSpan {
		return 0, 0, pkgerrors.New(pkgerrors.CodeValidation, "range too wide").WithDetails(map[string]any{"max_periods": maxSpan})
	}
	return from, to, nil
}
