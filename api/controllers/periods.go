package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/storegoals-backend/api/responses"
	"github.com/angelmondragon/storegoals-backend/internal/periods"
	"github.com/angelmondragon/storegoals-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storegoals-backend/pkg/errors"
	"github.com/angelmondragon/storegoals-backend/pkg/logger"
)

const maxWindowSpan = 13

type periodWindowResponse struct {
	Current periods.Period   `json:"current"`
	Periods []periods.Period `json:"periods"`
}

// PeriodsWindow lists the selectable periods, -4..+2 around today unless
// ?from=&to= are given.
func PeriodsWindow(resolver periodResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if resolver == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "period service unavailable"))
			return
		}
		from, to, err := offsetRange(r, periods.DefaultWindowFrom, periods.DefaultWindowTo, maxWindowSpan)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := periodWindowResponse{Current: resolver.Current(), Periods: make([]periods.Period, 0, to-from+1)}
		for p := range resolver.Window(from, to) {
			resp.Periods = append(resp.Periods, p)
		}
		responses.WriteSuccess(w, resp)
	}
}

func PeriodsCurrent(resolver periodResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if resolver == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "period service unavailable"))
			return
		}
		p, err := periodFromQuery(r, resolver)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, p)
	}
}

type storedPeriodLister interface {
	StoredList(ctx context.Context) ([]models.GoalPeriod, error)
}

type storedPeriod struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Start  string `json:"start"`
	End    string `json:"end"`
	Status string `json:"status"`
}

// PeriodsStored lists the goal_periods rows, newest first.
func PeriodsStored(svc storedPeriodLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "period service unavailable"))
			return
		}
		rows, err := svc.StoredList(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]storedPeriod, 0, len(rows))
		for _, row := range rows {
			out = append(out, storedPeriod{
				ID:     row.ID,
				Name:   row.Name,
				Start:  row.StartDate.Format(time.DateOnly),
				End:    row.EndDate.Format(time.DateOnly),
				Status: string(row.Status),
			})
		}
		responses.WriteSuccess(w, out)
	}
}
