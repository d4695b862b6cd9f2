package controllers

import (
	"context"

	"github.com/google/uuid"

	"github.com/armeriaops/armimport-backend/api/middleware"
	pkgerrors "github.com/armeriaops/armimport-backend/pkg/errors"
)

// actorID resolves the authenticated user from the request context.
func actorID(ctx context.Context) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(ctx)
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return id, nil
}
