package pdf

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/armeriaops/armimport-backend/pkg/config"
)

// ContractData carries everything the sale contract template needs.
type ContractData struct {
	Number         string
	Date           time.Time
	ClientName     string
	Identification string
	Address        string
	WeaponName     string
	Caliber        string
	Brand          string
	SerialNumber   string
	GroupCode      string
	LicenseNumber  string
	TotalPrice     decimal.Decimal
}

// Renderer produces sale contract PDFs.
type Renderer struct {
	issuer string
	city   string
}

// NewRenderer builds a Renderer from the contract config.
func NewRenderer(cfg config.ContractsConfig) *Renderer {
	return &Renderer{issuer: cfg.IssuerName, city: cfg.CityLine}
}

// RenderContract writes the contract PDF to w.
func (r *Renderer) RenderContract(w io.Writer, data ContractData) error {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetTitle(fmt.Sprintf("Contrato %s", data.Number), true)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(0, 10, r.issuer, "", 1, "C", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(0, 6, r.city, "", 1, "C", false, 0, "")
	doc.Ln(4)

	doc.SetFont("Helvetica", "B", 13)
	doc.CellFormat(0, 8, fmt.Sprintf("Contrato de compraventa No. %s", data.Number), "", 1, "C", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(0, 6, data.Date.Format("02/01/2006"), "", 1, "C", false, 0, "")
	doc.Ln(6)

	r.section(doc, "Comprador")
	r.row(doc, "Nombre", data.ClientName)
	r.row(doc, "Identificacion", data.Identification)
	if data.Address != "" {
		r.row(doc, "Direccion", data.Address)
	}
	doc.Ln(4)

	r.section(doc, "Arma")
	r.row(doc, "Modelo", data.WeaponName)
	r.row(doc, "Marca", data.Brand)
	r.row(doc, "Calibre", data.Caliber)
	r.row(doc, "Numero de serie", data.SerialNumber)
	if data.GroupCode != "" {
		r.row(doc, "Grupo de importacion", data.GroupCode)
		r.row(doc, "Licencia", data.LicenseNumber)
	}
	doc.Ln(4)

	r.section(doc, "Valor")
	r.row(doc, "Precio total", "USD "+data.TotalPrice.StringFixed(2))
	doc.Ln(16)

	doc.SetFont("Helvetica", "", 10)
	half := 90.0
	doc.CellFormat(half, 6, "_________________________", "", 0, "C", false, 0, "")
	doc.CellFormat(half, 6, "_________________________", "", 1, "C", false, 0, "")
	doc.CellFormat(half, 6, r.issuer, "", 0, "C", false, 0, "")
	doc.CellFormat(half, 6, data.ClientName, "", 1, "C", false, 0, "")

	if err := doc.Output(w); err != nil {
		return fmt.Errorf("rendering contract pdf: %w", err)
	}
	return nil
}

func (r *Renderer) section(doc *gofpdf.Fpdf, title string) {
	doc.SetFont("Helvetica", "B", 11)
	doc.CellFormat(0, 7, title, "B", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
}

func (r *Renderer) row(doc *gofpdf.Fpdf, label, value string) {
	doc.SetFont("Helvetica", "B", 10)
	doc.CellFormat(45, 6, label, "", 0, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(0, 6, value, "", 1, "L", false, 0, "")
}
