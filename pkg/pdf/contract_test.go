package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/armeriaops/armimport-backend/pkg/config"
)

func TestRenderContractProducesPDF(t *testing.T) {
	renderer := NewRenderer(config.ContractsConfig{
		IssuerName: "Armeria Importaciones",
		CityLine:   "Quito, Ecuador",
	})

	var buf bytes.Buffer
	err := renderer.RenderContract(&buf, ContractData{
		Number:         "CT-2026-000042",
		Date:           time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		ClientName:     "Maria Paredes",
		Identification: "1712345678",
		WeaponName:     "G19 Gen5",
		Caliber:        "9mm",
		Brand:          "Glock",
		SerialNumber:   "ABX99120",
		GroupCode:      "GRP-2026-01",
		LicenseNumber:  "LIC-889",
		TotalPrice:     decimal.NewFromFloat(1250.50),
	})
	if err != nil {
		t.Fatalf("render contract: %v", err)
	}

	if buf.Len() == 0 {
		t.Fatalf("expected pdf output")
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatalf("expected %%PDF header, got %q", buf.Bytes()[:8])
	}
}
