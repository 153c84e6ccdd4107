package export

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

const (
	pdfMargin       = 14.0
	tableStartY     = 45.0
	tableHeaderH    = 10.0
	lineHeight      = 5.0
	cellPadding     = 2.0
	footerReserve   = 20.0
	titleBaselineY  = 38.0
	addressRuleY    = 27.0
	companyNameY    = 18.0
	companyAddressY = 24.0
)

// document fpdf封装：统一抬头、页脚与编码转换
type document struct {
	pdf   *fpdf.Fpdf
	tr    func(string) string
	lh    Letterhead
	title string
	pageW float64
	pageH float64
}

func newDocument(orientation string, lh Letterhead, title string) *document {
	pdf := fpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(title, true)
	pdf.SetCreator(lh.CompanyName, true)

	d := &document{
		pdf:   pdf,
		tr:    pdf.UnicodeTranslatorFromDescriptor(""),
		lh:    lh,
		title: title,
	}
	d.pageW, d.pageH = pdf.GetPageSize()

	pdf.SetHeaderFunc(d.header)
	pdf.SetFooterFunc(d.footer)
	return d
}

func (d *document) header() {
	p := d.pdf
	p.SetTextColor(0, 0, 0)
	p.SetFont("Helvetica", "B", 14)
	p.Text(pdfMargin, companyNameY, d.tr(d.lh.CompanyName))
	p.SetFont("Helvetica", "", 9)
	p.Text(pdfMargin, companyAddressY, d.tr(d.lh.Address))
	p.SetDrawColor(180, 180, 180)
	p.Line(pdfMargin, addressRuleY, d.pageW-pdfMargin, addressRuleY)
	if d.title != "" {
		p.SetFont("Helvetica", "B", 16)
		w := p.GetStringWidth(d.tr(d.title))
		p.Text((d.pageW-w)/2, titleBaselineY, d.tr(d.title))
	}
}

func (d *document) footer() {
	p := d.pdf
	p.SetFont("Helvetica", "", 8)
	p.SetTextColor(0, 0, 0)
	label := fmt.Sprintf("Halaman %d", p.PageNo())
	w := p.GetStringWidth(label)
	p.Text(d.pageW-pdfMargin-w, d.pageH-10, label)
}

func (d *document) text(x, y float64, s string) {
	d.pdf.Text(x, y, d.tr(s))
}

func (d *document) textRight(xRight, y float64, s string) {
	s = d.tr(s)
	d.pdf.Text(xRight-d.pdf.GetStringWidth(s), y, s)
}

func (d *document) output(w io.Writer) error {
	if d.pdf.Err() {
		return d.pdf.Error()
	}
	return d.pdf.Output(w)
}

// tableHeader 表头行，返回下一行起始y
func (d *document) tableHeader(headers []string, colW float64, y float64) float64 {
	p := d.pdf
	p.SetFont("Helvetica", "B", 9)
	p.SetFillColor(41, 128, 185)
	p.SetTextColor(255, 255, 255)
	p.Rect(pdfMargin, y, colW*float64(len(headers)), tableHeaderH, "F")
	for i, h := range headers {
		x := pdfMargin + colW*float64(i)
		d.text(x+cellPadding, y+tableHeaderH/2+1.5, h)
	}
	p.SetTextColor(0, 0, 0)
	p.SetFont("Helvetica", "", 8)
	return y + tableHeaderH
}

// drawTable 分页表格：等宽列、自动换行、斑马纹，表头每页重复；返回表格结束的y
func (d *document) drawTable(headers []string, rows [][]string, startY float64) float64 {
	p := d.pdf
	if len(headers) == 0 {
		return startY
	}
	contentW := d.pageW - 2*pdfMargin
	colW := contentW / float64(len(headers))
	bottom := d.pageH - footerReserve

	y := d.tableHeader(headers, colW, startY)
	for ri, row := range rows {
		p.SetFont("Helvetica", "", 8)
		cells := make([][]string, len(headers))
		maxLines := 1
		for ci := range headers {
			val := ""
			if ci < len(row) {
				val = row[ci]
			}
			var lines []string
			for _, l := range p.SplitLines([]byte(d.tr(val)), colW-2*cellPadding) {
				lines = append(lines, string(l))
			}
			if len(lines) == 0 {
				lines = []string{""}
			}
			cells[ci] = lines
			if len(lines) > maxLines {
				maxLines = len(lines)
			}
		}
		rowH := float64(maxLines)*lineHeight + 4

		if y+rowH > bottom {
			p.AddPage()
			y = d.tableHeader(headers, colW, tableStartY)
		}

		if ri%2 == 1 {
			p.SetFillColor(245, 245, 245)
			p.Rect(pdfMargin, y, contentW, rowH, "F")
		}
		for ci, lines := range cells {
			x := pdfMargin + colW*float64(ci)
			for li, l := range lines {
				// 已经过tr转换
				p.Text(x+cellPadding, y+4+float64(li)*lineHeight, l)
			}
		}
		y += rowH
	}
	return y
}

// WriteTablePDF 横向A4分页表格
func WriteTablePDF(w io.Writer, lh Letterhead, t Table) error {
	d := newDocument("L", lh, t.Title)
	d.pdf.AddPage()
	d.drawTable(t.Headers, t.Rows, tableStartY)
	return d.output(w)
}

// WriteFinancialPDF 纵向财务报表
func WriteFinancialPDF(w io.Writer, lh Letterhead, r *FinancialReport) error {
	d := newDocument("P", lh, "Laporan Keuangan")
	p := d.pdf
	p.AddPage()

	p.SetFont("Helvetica", "", 10)
	d.text(pdfMargin, 44, fmt.Sprintf("Periode: %s s/d %s", ShortDate(r.Start), ShortDate(r.End)))

	y := 55.0
	p.SetFont("Helvetica", "B", 12)
	d.text(pdfMargin, y, "Ringkasan Keuangan")
	y += 8

	p.SetFont("Helvetica", "", 10)
	for _, item := range []struct{ label, value string }{
		{"Total Pendapatan:", Rupiah(r.Revenue)},
		{"Total Pengeluaran:", Rupiah(r.Expenses)},
		{"Piutang:", Rupiah(r.Receivables)},
	} {
		d.text(pdfMargin, y, item.label)
		d.textRight(110, y, item.value)
		y += 7
	}
	y += 2
	p.SetDrawColor(180, 180, 180)
	p.Line(pdfMargin, y, 110, y)
	y += 5
	p.SetFont("Helvetica", "B", 10)
	d.text(pdfMargin, y, "Laba/Rugi Bersih:")
	d.textRight(110, y, Rupiah(r.NetProfit))
	y += 12

	sections := []struct {
		title   string
		headers []string
		lines   []ReportLine
	}{
		{"Rincian Pendapatan (Invoice Lunas)", []string{"Invoice No.", "Tanggal", "SPPG", "Jumlah"}, r.PaidInvoices},
		{"Rincian Pengeluaran (Purchase Orders)", []string{"PO No.", "Tanggal Order", "Supplier", "Jumlah"}, r.PurchaseOrders},
	}
	for _, sec := range sections {
		if y+tableHeaderH+20 > d.pageH-footerReserve {
			p.AddPage()
			y = tableStartY
		}
		p.SetFont("Helvetica", "B", 11)
		d.text(pdfMargin, y, sec.title)
		y += 4
		rows := make([][]string, 0, len(sec.lines))
		for _, l := range sec.lines {
			rows = append(rows, []string{l.Number, ShortDate(l.Date), l.Party, Rupiah(l.Amount)})
		}
		y = d.drawTable(sec.headers, rows, y) + 10
	}

	return d.output(w)
}
