// Package pdf renders simple A4 report documents: headed sections of
// key/value rows, paragraphs, tables and images.
package pdf

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/go-pdf/fpdf"
)

const ContentType = "application/pdf"

const (
	systemName = "計画相談支援システム"
	emptyText  = "記載なし"

	marginX    = 20.0
	marginTop  = 30.0
	lineHeight = 6.0
	labelWidth = 45.0
	fontFamily = "body"
)

type Field struct {
	Label string
	Value string
}

type Table struct {
	Header []string
	Widths []float64 // mm; the last column takes the remaining width when omitted
	Rows   [][]string
}

// Section is one headed block. Only the non-empty parts are drawn, in the
// order Fields, Text, Table, Image.
type Section struct {
	Heading string
	Fields  []Field
	Text    *string
	Table   *Table
	Image   []byte // PNG
	Note    string // shown when nothing else is
}

type Document struct {
	Title    string
	Sections []Section
}

// Renderer turns Documents into PDF bytes. Japanese text needs a UTF-8
// TrueType font; without one the core Helvetica font is used.
type Renderer struct {
	font []byte
	now  func() time.Time
	loc  *time.Location
}

// NewRenderer loads the font at fontPath, if given.
func NewRenderer(fontPath string, loc *time.Location) (*Renderer, error) {
	r := &Renderer{now: time.Now, loc: loc}
	if r.loc == nil {
		r.loc = time.Local
	}
	if fontPath != "" {
		b, err := os.ReadFile(fontPath)
		if err != nil {
			return nil, fmt.Errorf("read pdf font: %w", err)
		}
		r.font = b
	}
	return r, nil
}

// Text wraps s for Section.Text; empty strings render as "記載なし".
func Text(s *string) *string {
	if s == nil || *s == "" {
		t := emptyText
		return &t
	}
	return s
}

func (r *Renderer) Render(doc Document) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	family := "Helvetica"
	if r.font != nil {
		pdf.AddUTF8FontFromBytes(fontFamily, "", r.font)
		family = fontFamily
	}
	pdf.SetMargins(marginX, marginTop, marginX)
	pdf.SetAutoPageBreak(true, 25)

	created := r.now().In(r.loc).Format("2006年01月02日 15:04")
	pageW, pageH := pdf.GetPageSize()
	pdf.SetHeaderFunc(func() {
		pdf.SetFont(family, "", 9)
		pdf.SetXY(marginX, 10)
		pdf.CellFormat(0, 5, systemName+" - "+doc.Title, "", 1, "L", false, 0, "")
		pdf.SetX(marginX)
		pdf.CellFormat(0, 5, "作成日時: "+created, "", 1, "L", false, 0, "")
		pdf.Line(marginX, 22, pageW-marginX, 22)
		pdf.SetY(marginTop)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetFont(family, "", 9)
		pdf.SetY(pageH - 18)
		pdf.CellFormat(0, 5, fmt.Sprintf("- %d -", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont(family, "", 16)
	pdf.CellFormat(0, 10, doc.Title, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	contentW := pageW - 2*marginX
	for i, s := range doc.Sections {
		r.section(pdf, family, contentW, i, s)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) section(pdf *fpdf.Fpdf, family string, contentW float64, idx int, s Section) {
	if s.Heading != "" {
		pdf.SetFont(family, "", 12)
		pdf.SetTextColor(0x33, 0x33, 0x33)
		pdf.CellFormat(0, 8, s.Heading, "B", 1, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(2)
	}
	pdf.SetFont(family, "", 10)
	drawn := false

	if len(s.Fields) > 0 {
		pdf.SetFillColor(0xF0, 0xF0, 0xF0)
		valueW := contentW - labelWidth
		for _, f := range s.Fields {
			h := lineHeight * float64(r.lineCount(pdf, f.Value, valueW-2))
			pdf.CellFormat(labelWidth, h, f.Label, "1", 0, "L", true, 0, "")
			pdf.MultiCell(valueW, lineHeight, f.Value, "1", "L", false)
		}
		drawn = true
		pdf.Ln(3)
	}
	if s.Text != nil {
		pdf.MultiCell(contentW, lineHeight, *s.Text, "", "L", false)
		drawn = true
		pdf.Ln(3)
	}
	if s.Table != nil && len(s.Table.Rows) > 0 {
		drawTable(pdf, contentW, s.Table)
		drawn = true
		pdf.Ln(3)
	}
	if len(s.Image) > 0 {
		name := fmt.Sprintf("image-%d", idx)
		opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(s.Image))
		pdf.ImageOptions(name, marginX, pdf.GetY(), contentW, 0, true, opts, 0, "")
		drawn = true
	}
	if !drawn && s.Note != "" {
		pdf.MultiCell(contentW, lineHeight, s.Note, "", "L", false)
		pdf.Ln(3)
	}
}

// lineCount estimates how many lines MultiCell will use for s.
func (r *Renderer) lineCount(pdf *fpdf.Fpdf, s string, w float64) int {
	var n int
	if r.font != nil {
		n = len(pdf.SplitText(s, w))
	} else {
		// core fonts only have widths for single bytes
		n = len(pdf.SplitLines([]byte(s), w))
	}
	return max(1, n)
}

func drawTable(pdf *fpdf.Fpdf, contentW float64, t *Table) {
	widths := make([]float64, len(t.Header))
	used := 0.0
	for i := range widths {
		if i < len(t.Widths) {
			widths[i] = t.Widths[i]
			used += widths[i]
		}
	}
	if n := len(widths); n > len(t.Widths) {
		rest := (contentW - used) / float64(n-len(t.Widths))
		for i := len(t.Widths); i < n; i++ {
			widths[i] = rest
		}
	}

	pdf.SetFillColor(0xE6, 0xF3, 0xFF)
	for i, h := range t.Header {
		pdf.CellFormat(widths[i], lineHeight+1, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	for _, row := range t.Rows {
		for i := range t.Header {
			v := ""
			if i < len(row) {
				v = row[i]
			}
			pdf.CellFormat(widths[i], lineHeight, truncate(pdf, v, widths[i]-2), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

// truncate shortens s with an ellipsis so it fits in w.
func truncate(pdf *fpdf.Fpdf, s string, w float64) string {
	if pdf.GetStringWidth(s) <= w {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"…") > w {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
