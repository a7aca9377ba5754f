package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"brandforge/internal/domain"
)

// renderPDF builds the structured document: header, business info, domain
// info, logos, export metadata, footer. The template only changes header
// styling; the content sections are identical across templates.
func (r *DocumentRenderer) renderPDF(ctx context.Context, project *domain.Project, settings domain.ExportSettings) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	writePDFHeader(pdf, project, settings.Template)
	writeBusinessSection(pdf, project)

	if settings.IncludeDomains && len(project.Domains) > 0 {
		writeDomainSection(pdf, project)
	}

	if settings.IncludeLogos && len(project.Logos) > 0 {
		if err := r.writeLogoSection(ctx, pdf, project); err != nil {
			return nil, err
		}
	}

	if settings.IncludeMetadata {
		writeMetadataSection(pdf, project, settings)
	}

	if settings.IncludeBranding {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(150, 150, 150)
		pdf.CellFormat(0, 10, "Generated by brandforge", "", 0, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to produce PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func writePDFHeader(pdf *gofpdf.Fpdf, project *domain.Project, template string) {
	switch template {
	case domain.ExportTemplateProfessional:
		pdf.SetFillColor(24, 40, 72)
		pdf.Rect(0, 0, 210, 34, "F")
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Helvetica", "B", 22)
		pdf.SetXY(12, 10)
		pdf.CellFormat(0, 12, project.BusinessName, "", 1, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.SetY(42)
	default:
		pdf.SetFont("Helvetica", "B", 20)
		pdf.CellFormat(0, 14, project.BusinessName, "", 1, "L", false, 0, "")
		pdf.SetDrawColor(200, 200, 200)
		pdf.Line(10, pdf.GetY(), 200, pdf.GetY())
		pdf.Ln(6)
	}
}

func writeBusinessSection(pdf *gofpdf.Fpdf, project *domain.Project) {
	writeSectionTitle(pdf, "Business Information")

	pdf.SetFont("Helvetica", "", 11)
	writeField(pdf, "Name", project.BusinessName)
	if project.Description != nil {
		writeField(pdf, "Description", *project.Description)
	}
	if project.Industry != nil {
		writeField(pdf, "Industry", *project.Industry)
	}
	writeField(pdf, "Status", string(project.Status))
	pdf.Ln(4)
}

func writeDomainSection(pdf *gofpdf.Fpdf, project *domain.Project) {
	writeSectionTitle(pdf, "Domain Availability")

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(90, 7, "Domain", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 7, "Available", "1", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, d := range project.Domains {
		status := "No"
		if d.Available {
			status = "Yes"
		}
		pdf.CellFormat(90, 7, d.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, status, "1", 1, "C", false, 0, "")
	}
	pdf.Ln(4)
}

func (r *DocumentRenderer) writeLogoSection(ctx context.Context, pdf *gofpdf.Fpdf, project *domain.Project) error {
	writeSectionTitle(pdf, "Logos")

	for i, logo := range project.Logos {
		if err := ctx.Err(); err != nil {
			return err
		}

		obj, err := r.storage.Open(ctx, logo.StorageKey)
		if err != nil {
			return fmt.Errorf("failed to open logo %s: %w", logo.StorageKey, err)
		}
		data, err := io.ReadAll(obj)
		obj.Close()
		if err != nil {
			return fmt.Errorf("failed to read logo %s: %w", logo.StorageKey, err)
		}

		png, err := normalizeLogo(data, logoMaxWidth)
		if err != nil {
			return fmt.Errorf("failed to normalize logo %s: %w", logo.StorageKey, err)
		}

		name := fmt.Sprintf("logo-%d", i)
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
		pdf.ImageOptions(name, pdf.GetX(), pdf.GetY(), 50, 0, true, opts, 0, "")
		pdf.Ln(4)
	}
	pdf.Ln(2)
	return nil
}

func writeMetadataSection(pdf *gofpdf.Fpdf, project *domain.Project, settings domain.ExportSettings) {
	writeSectionTitle(pdf, "Export Details")

	pdf.SetFont("Helvetica", "", 10)
	writeField(pdf, "Template", settings.Template)
	writeField(pdf, "Project created", project.CreatedAt.UTC().Format("2006-01-02 15:04 MST"))
	writeField(pdf, "Exported", time.Now().UTC().Format("2006-01-02 15:04 MST"))
	pdf.Ln(4)
}

func writeSectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 9, title, "", 1, "L", false, 0, "")
	pdf.Ln(1)
}

func writeField(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(38, 6, label+":", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 6, value, "", "L", false)
}
