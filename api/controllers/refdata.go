package controllers

import (
	"net/http"

	"github.com/armeriaops/armimport-backend/api/responses"
	"github.com/armeriaops/armimport-backend/api/validators"
	"github.com/armeriaops/armimport-backend/internal/refdata"
	pkgerrors "github.com/armeriaops/armimport-backend/pkg/errors"
	"github.com/armeriaops/armimport-backend/pkg/logger"
)

func ProvinceList(repo *refdata.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "refdata unavailable"))
			return
		}

		provinces, err := repo.ListProvinces(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list provinces"))
			return
		}

		responses.WriteSuccess(w, provinces)
	}
}

// CantonList returns the cantons of one province.
func CantonList(repo *refdata.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "refdata unavailable"))
			return
		}

		provinceID, err := validators.ParseUUIDParam(r, "provinceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cantons, err := repo.ListCantons(r.Context(), provinceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cantons"))
			return
		}

		responses.WriteSuccess(w, cantons)
	}
}

func IdentificationTypeList(repo *refdata.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "refdata unavailable"))
			return
		}

		types, err := repo.ListIdentificationTypes(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list identification types"))
			return
		}

		responses.WriteSuccess(w, types)
	}
}
