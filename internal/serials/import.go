package serials

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/armeriaops/armimport-backend/pkg/db/models"
	pkgerrors "github.com/armeriaops/armimport-backend/pkg/errors"
)

const (
	reasonMissingSerial    = "serial number is required"
	reasonNoModelHints     = "no model reference provided"
	reasonModelNotFound    = "no weapon model matches the provided reference"
	reasonModelAmbiguous   = "model hints match more than one weapon"
	reasonDuplicateInBatch = "serial number repeated within the batch"
)

// Import loads a batch of physical serials. Rows are validated and resolved
// independently; only the rows that pass are persisted, in a single
// transaction, and the summary reports the rest as duplicates or errors.
func (s *service) Import(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	if len(req.Rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "import requires at least one row")
	}

	result := &ImportResult{
		Duplicates: make([]string, 0),
		Errors:     make([]ImportRowError, 0),
	}

	type resolvedRow struct {
		serialNumber string
		weaponID     uuid.UUID
	}
	valid := make([]resolvedRow, 0, len(req.Rows))
	seen := make(map[string]bool, len(req.Rows))

	for i, row := range req.Rows {
		serialNumber := strings.TrimSpace(row.SerialNumber)
		if serialNumber == "" {
			result.Errors = append(result.Errors, ImportRowError{Row: i, Reason: reasonMissingSerial})
			s.metrics.IncImportRow("invalid")
			continue
		}
		if seen[serialNumber] {
			result.Errors = append(result.Errors, ImportRowError{Row: i, Serial: serialNumber, Reason: reasonDuplicateInBatch})
			s.metrics.IncImportRow("invalid")
			continue
		}
		seen[serialNumber] = true

		exists, err := s.repo.SerialNumberExists(ctx, serialNumber)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check serial number")
		}
		if exists {
			result.Duplicates = append(result.Duplicates, serialNumber)
			s.metrics.IncImportRow("duplicate")
			continue
		}

		weapon, reason, err := s.resolveWeapon(ctx, row)
		if err != nil {
			return nil, err
		}
		if weapon == nil {
			result.Errors = append(result.Errors, ImportRowError{Row: i, Serial: serialNumber, Reason: reason})
			s.metrics.IncImportRow("invalid")
			continue
		}

		valid = append(valid, resolvedRow{serialNumber: serialNumber, weaponID: weapon.ID})
	}

	if len(valid) > 0 {
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			for _, row := range valid {
				serial := &models.WeaponSerial{
					SerialNumber: row.serialNumber,
					WeaponID:     row.weaponID,
					GroupID:      req.GroupID,
				}
				s.appendHistory(serial, "loaded via bulk import")
				if err := repo.CreateSerial(ctx, serial); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("create serial %s", row.serialNumber))
				}
				if err := repo.AdjustStock(ctx, row.weaponID, 1); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adjust stock")
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		result.Loaded = len(valid)
		for range valid {
			s.metrics.IncImportRow("created")
		}
	}

	return result, nil
}

// resolveWeapon maps one import row to a catalog weapon. The hints are tried
// in order of specificity: external id, catalog code, then a normalized
// attribute match. A nil weapon with an empty error means rejection, with the
// reason in the second return.
func (s *service) resolveWeapon(ctx context.Context, row ImportRow) (*models.Weapon, string, error) {
	if externalID := strings.TrimSpace(row.ExternalID); externalID != "" {
		weapon, err := s.repo.FindWeaponByExternalID(ctx, externalID)
		if err == nil {
			return weapon, "", nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup weapon by external id")
		}
	}

	if code := strings.TrimSpace(row.Code); code != "" {
		weapon, err := s.repo.FindWeaponByCode(ctx, code)
		if err == nil {
			return weapon, "", nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup weapon by code")
		}
	}

	name := strings.TrimSpace(row.Name)
	caliber := strings.TrimSpace(row.Caliber)
	if name == "" || caliber == "" {
		if strings.TrimSpace(row.ExternalID) == "" && strings.TrimSpace(row.Code) == "" {
			return nil, reasonNoModelHints, nil
		}
		return nil, reasonModelNotFound, nil
	}

	matches, err := s.repo.FindWeaponsByAttributes(ctx, name, caliber, row.Brand, row.Category)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup weapon by attributes")
	}
	switch len(matches) {
	case 0:
		return nil, reasonModelNotFound, nil
	case 1:
		return &matches[0], "", nil
	default:
		return nil, reasonModelAmbiguous, nil
	}
}
