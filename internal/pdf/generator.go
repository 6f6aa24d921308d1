// Package pdf renders sale receipts and quotations as paginated A4
// documents: branded header, customer line, itemized table, total and a
// promotional footer.
package pdf

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/arelyshop/tiendatemp/domain"
)

// Branding rendered into every document.
const (
	businessName     = "ArelyShop"
	businessLocation = "Santa Cruz, Bolivia"
	businessWebsite  = "www.arelyshop.com"
)

const (
	margin       = 14.0
	headerHeight = 30.0
	rowHeight    = 9.0
	footerSpace  = 60.0
	currency     = "Bs"
)

var filenameRe = regexp.MustCompile(`[^a-zA-Z0-9_.-]`)

// Line is one row of the itemized table.
type Line struct {
	Quantity  int
	Name      string
	SKU       string
	UnitPrice float64
}

// Document is the payload rendered into a PDF.
type Document struct {
	Type       string // heading, e.g. "Sales Receipt"
	Identifier string // identifier line under the heading, e.g. "No: AS12"
	FilePrefix string // filename prefix, e.g. "Receipt"
	Customer   domain.Customer
	Lines      []Line
	Total      float64
}

// Generator renders documents. Logo and QR paths may point at missing
// files; the layout degrades without them.
type Generator struct {
	logoPath string
	qrPath   string
}

// New constructs a Generator reading logo.png and qr.jpg from assetsDir.
func New(assetsDir string) *Generator {
	return &Generator{
		logoPath: filepath.Join(assetsDir, "logo.png"),
		qrPath:   filepath.Join(assetsDir, "qr.jpg"),
	}
}

// ReceiptDocument builds the Document for a persisted sale.
func ReceiptDocument(sale domain.Sale) Document {
	lines := make([]Line, 0, len(sale.Items))
	for _, item := range sale.Items {
		lines = append(lines, Line{
			Quantity:  item.Quantity,
			Name:      item.Name,
			SKU:       item.SKU,
			UnitPrice: item.UnitPrice,
		})
	}
	return Document{
		Type:       "Sales Receipt",
		Identifier: "No: " + sale.SaleID,
		FilePrefix: "Receipt_" + sale.SaleID,
		Customer: domain.Customer{
			Name:    sale.CustomerName,
			Contact: sale.CustomerContact,
			TaxID:   sale.CustomerTaxID,
		},
		Lines: lines,
		Total: sale.Total,
	}
}

// Render produces the PDF bytes and the sanitized download filename.
func (g *Generator) Render(doc Document) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, margin)
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()
	contentW := pageW - 2*margin

	g.drawHeader(pdf, doc, pageW)

	// Customer line.
	y := margin + headerHeight + 10
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Text(margin, y, "Customer:")
	pdf.SetFont("Helvetica", "", 10)
	info := fmt.Sprintf("Name: %s | Contact: %s | Tax ID: %s",
		orNA(doc.Customer.Name), orNA(doc.Customer.Contact), orNA(doc.Customer.TaxID))
	pdf.Text(margin, y+8, info)

	// Itemized table, paginating when a row would not fit.
	pdf.SetY(y + 15)
	colQty, colPrice, colSub := 15.0, 25.0, 25.0
	colDesc := contentW - colQty - colPrice - colSub
	drawTableHead := func() {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.SetFillColor(205, 205, 205)
		pdf.SetX(margin)
		pdf.CellFormat(colQty, 7, "Qty", "1", 0, "C", true, 0, "")
		pdf.CellFormat(colDesc, 7, "Description", "1", 0, "L", true, 0, "")
		pdf.CellFormat(colPrice, 7, "Unit Price", "1", 0, "R", true, 0, "")
		pdf.CellFormat(colSub, 7, "Subtotal", "1", 1, "R", true, 0, "")
		pdf.SetFont("Helvetica", "", 8)
	}
	drawTableHead()
	for _, line := range doc.Lines {
		if pdf.GetY()+rowHeight > pageH-margin-footerSpace {
			pdf.AddPage()
			pdf.SetY(margin)
			drawTableHead()
		}
		rowY := pdf.GetY()
		subtotal := float64(line.Quantity) * line.UnitPrice
		pdf.SetXY(margin, rowY)
		pdf.CellFormat(colQty, rowHeight, fmt.Sprintf("%d", line.Quantity), "1", 0, "C", false, 0, "")
		pdf.SetXY(margin+colQty, rowY)
		desc := fmt.Sprintf("%s\n(SKU: %s)", orNA(line.Name), orNA(line.SKU))
		pdf.SetFontSize(7)
		pdf.MultiCell(colDesc, rowHeight/2, desc, "1", "L", false)
		pdf.SetFontSize(8)
		pdf.SetXY(margin+colQty+colDesc, rowY)
		pdf.CellFormat(colPrice, rowHeight, fmt.Sprintf("%s %.2f", currency, line.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colSub, rowHeight, fmt.Sprintf("%s %.2f", currency, subtotal), "1", 1, "R", false, 0, "")
		pdf.SetY(rowY + rowHeight)
	}

	// Footer: total, thank-you, website, promotional QR.
	finalY := pdf.GetY()
	if finalY+footerSpace > pageH-margin {
		pdf.AddPage()
		finalY = margin
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Text(margin, finalY+10, "TOTAL:")
	totalStr := fmt.Sprintf("%s %.2f", currency, doc.Total)
	pdf.Text(pageW-margin-pdf.GetStringWidth(totalStr), finalY+10, totalStr)
	pdf.SetFont("Helvetica", "", 9)
	thanks := "Thank you for your purchase!"
	if doc.Type == "Quotation" {
		thanks = "Thank you for your interest!"
	}
	pdf.Text((pageW-pdf.GetStringWidth(thanks))/2, finalY+20, thanks)
	visit := "Visit us: " + businessWebsite
	pdf.Text((pageW-pdf.GetStringWidth(visit))/2, finalY+24, visit)
	g.placeImage(pdf, g.qrPath, (pageW-20)/2, finalY+28, 20, 20)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("render %s: %w", doc.Type, err)
	}
	return buf.Bytes(), Filename(doc.FilePrefix, doc.Customer.Name), nil
}

func (g *Generator) drawHeader(pdf *gofpdf.Fpdf, doc Document, pageW float64) {
	headerW := pageW - 2*margin
	pdf.SetFillColor(48, 60, 84)
	pdf.RoundedRect(margin, margin, headerW, headerHeight, 3, "1234", "F")
	pdf.SetTextColor(255, 255, 255)

	textX := margin + 5
	logoH := 7.2
	logoW := logoH // square fallback; the real logo is close enough
	if g.placeImage(pdf, g.logoPath, margin+5, margin+(headerHeight-logoH)/2, logoW, logoH) {
		textX = margin + logoW + 8
	}
	pdf.SetFont("Helvetica", "B", 17.6)
	pdf.Text(textX, margin+15, businessName)
	pdf.SetFont("Helvetica", "", 8.8)
	pdf.Text(textX, margin+21, businessLocation)

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(pageW-margin-5-pdf.GetStringWidth(doc.Type), margin+12, doc.Type)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(pageW-margin-5-pdf.GetStringWidth(doc.Identifier), margin+18, doc.Identifier)
	dateStr := "Date: " + time.Now().Format("02/01/2006")
	pdf.Text(pageW-margin-5-pdf.GetStringWidth(dateStr), margin+24, dateStr)
}

// placeImage draws an image if the file exists, reporting whether it was
// drawn. Missing or unreadable images never fail the document.
func (g *Generator) placeImage(pdf *gofpdf.Fpdf, path string, x, y, w, h float64) bool {
	if path == "" {
		return false
	}
	if _, err := os.Stat(path); err != nil {
		return false
	}
	imageType := ""
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		imageType = "PNG"
	case ".jpg", ".jpeg":
		imageType = "JPG"
	default:
		return false
	}
	pdf.ImageOptions(path, x, y, w, h, false,
		gofpdf.ImageOptions{ImageType: imageType, ReadDpi: true}, 0, "")
	return true
}

// Filename builds the sanitized download name: spaces collapse to
// underscores and everything outside [a-zA-Z0-9_.-] is stripped.
func Filename(prefix, customerName string) string {
	customer := strings.Join(strings.Fields(strings.TrimSpace(customerName)), "_")
	if customer == "" {
		customer = "no-customer"
	}
	name := fmt.Sprintf("%s_%s.pdf", prefix, customer)
	return filenameRe.ReplaceAllString(name, "")
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
