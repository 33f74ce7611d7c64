package controllers

import (
	"net/http"

	"github.com/angelmondragon/storegoals-backend/api/middleware"
	"github.com/angelmondragon/storegoals-backend/api/responses"
	"github.com/angelmondragon/storegoals-backend/api/validators"
	"github.com/angelmondragon/storegoals-backend/internal/stores"
	pkgerrors "github.com/angelmondragon/storegoals-backend/pkg/errors"
	"github.com/angelmondragon/storegoals-backend/pkg/logger"
)

// storeHandler resolves the caller's store context and renders whatever
// action returns. Both store routes act only on the caller's own store.
func storeHandler(svc stores.Service, logg *logger.Logger, action func(r *http.Request, p middleware.Principal) (*stores.StoreDTO, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}
		p, err := requirePrincipal(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		store, err := action(r, p)
		if err != nil {
			responses.WriteError(logg.WithStoreID(ctx, p.StoreID), logg, w, err)
			return
		}
		responses.WriteSuccess(w, store)
	}
}

func StoreProfile(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return storeHandler(svc, logg, func(r *http.Request, p middleware.Principal) (*stores.StoreDTO, error) {
		return svc.Profile(r.Context(), p.StoreID)
	})
}

// StoreUpdate patches the caller's store; the service checks the role.
func StoreUpdate(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return storeHandler(svc, logg, func(r *http.Request, p middleware.Principal) (*stores.StoreDTO, error) {
		var body stores.UpdateStoreInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		return svc.Update(r.Context(), p.Role, p.StoreID, body)
	})
}
