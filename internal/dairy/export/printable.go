package export

import (
	"fmt"
	"io"
)

const (
	productName = "Susu Milk Pro"
	productUnit = "Kartoon Box"
)

// labelRows 左侧标签 : 值
func (d *document) labelRows(x, y float64, rows [][2]string) float64 {
	d.pdf.SetFont("Helvetica", "", 10)
	for _, r := range rows {
		d.pdf.SetFont("Helvetica", "B", 10)
		d.text(x, y, r[0])
		d.pdf.SetFont("Helvetica", "", 10)
		d.text(x+32, y, ": "+r[1])
		y += 6
	}
	return y
}

// itemTable 单行货品表
func (d *document) itemTable(y float64, headers []string, row []string) float64 {
	p := d.pdf
	contentW := d.pageW - 2*pdfMargin
	colW := contentW / float64(len(headers))
	p.SetDrawColor(160, 160, 160)
	p.SetFillColor(235, 235, 235)
	p.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		p.Rect(pdfMargin+colW*float64(i), y, colW, 9, "FD")
		d.text(pdfMargin+colW*float64(i)+cellPadding, y+6, h)
	}
	y += 9
	p.SetFont("Helvetica", "", 10)
	for i, v := range row {
		p.Rect(pdfMargin+colW*float64(i), y, colW, 10, "D")
		d.text(pdfMargin+colW*float64(i)+cellPadding, y+6.5, v)
	}
	return y + 10
}

// signatures 两栏签字
func (d *document) signatures(y float64, left, right [3]string) {
	p := d.pdf
	colX := []float64{pdfMargin + 20, d.pageW/2 + 20}
	for i, block := range [][3]string{left, right} {
		x := colX[i]
		p.SetFont("Helvetica", "", 10)
		d.text(x, y, block[0])
		p.SetFont("Helvetica", "B", 10)
		d.text(x, y+30, block[1])
		p.SetFont("Helvetica", "", 9)
		d.text(x, y+35, block[2])
	}
}

// WriteShipmentNotePDF 送货单（Surat Jalan）
func WriteShipmentNotePDF(w io.Writer, lh Letterhead, doc *DeliveryDocument) error {
	d := newDocument("P", lh, "SURAT JALAN")
	p := d.pdf
	p.AddPage()

	p.SetFont("Helvetica", "", 10)
	d.text(pdfMargin, 46, "No. "+doc.Number)

	y := d.labelRows(pdfMargin, 58, [][2]string{
		{"Tanggal", LongDate(doc.Date)},
		{"Pengirim", doc.Coordinator.Name},
		{"Wilayah", doc.Coordinator.District},
		{"Penerima", doc.Kitchen.Name},
		{"Alamat", doc.Kitchen.Address},
		{"Kontak", contact(doc.Kitchen)},
	})

	y = d.itemTable(y+6, []string{"No", "Nama Barang", "Jumlah", "Satuan"},
		[]string{"1", productName, Number(int64(doc.Cartons)), productUnit})

	p.SetFont("Helvetica", "I", 9)
	d.text(pdfMargin, y+8, "Barang telah diterima dalam keadaan baik dan lengkap.")

	d.signatures(y+24,
		[3]string{"Pengirim,", doc.Coordinator.Name, "Koordinator"},
		[3]string{"Penerima,", orDash(doc.Kitchen.ContactPerson), doc.Kitchen.Name},
	)
	return d.output(w)
}

// WriteHandoverNotePDF 交接单（BAST）
func WriteHandoverNotePDF(w io.Writer, lh Letterhead, doc *DeliveryDocument) error {
	d := newDocument("P", lh, "BERITA ACARA SERAH TERIMA")
	p := d.pdf
	p.AddPage()

	p.SetFont("Helvetica", "", 10)
	d.text(pdfMargin, 46, "No. "+doc.Number)

	y := 56.0
	contentW := d.pageW - 2*pdfMargin
	paragraph := func(s string) {
		p.SetFont("Helvetica", "", 10)
		p.SetXY(pdfMargin, y)
		p.MultiCell(contentW, 5, d.tr(s), "", "J", false)
		y = p.GetY() + 3
	}

	paragraph(fmt.Sprintf("Pada hari ini, %s, yang bertanda tangan di bawah ini:", WeekdayDate(doc.Date)))
	y = d.labelRows(pdfMargin+6, y+2, [][2]string{
		{"Nama", doc.Coordinator.Name},
		{"Jabatan", "Koordinator " + doc.Coordinator.District},
		{"Kontak", contact(doc.Coordinator)},
	})
	paragraph("Selanjutnya disebut sebagai PIHAK PERTAMA.")
	y = d.labelRows(pdfMargin+6, y+2, [][2]string{
		{"Nama", orDash(doc.Kitchen.ContactPerson)},
		{"Instansi", doc.Kitchen.Name},
		{"Alamat", doc.Kitchen.Address},
	})
	paragraph("Selanjutnya disebut sebagai PIHAK KEDUA.")
	paragraph("Dengan ini menyatakan bahwa PIHAK PERTAMA telah menyerahkan barang kepada PIHAK KEDUA, dan PIHAK KEDUA telah menerima barang dengan rincian sebagai berikut:")

	y = d.itemTable(y+2, []string{"No", "Nama Barang", "Jumlah", "Satuan"},
		[]string{"1", productName, Number(int64(doc.Cartons)), productUnit})
	y += 6
	paragraph("Demikian Berita Acara Serah Terima ini dibuat untuk dapat dipergunakan sebagaimana mestinya.")

	d.signatures(y+10,
		[3]string{"PIHAK PERTAMA", doc.Coordinator.Name, "Koordinator"},
		[3]string{"PIHAK KEDUA", orDash(doc.Kitchen.ContactPerson), doc.Kitchen.Name},
	)
	return d.output(w)
}

// WriteInvoicePDF 发票
func WriteInvoicePDF(w io.Writer, lh Letterhead, doc *InvoiceDocument) error {
	d := newDocument("P", lh, "INVOICE")
	p := d.pdf
	p.AddPage()

	y := d.labelRows(pdfMargin, 50, [][2]string{
		{"No. Invoice", doc.Number},
		{"Tanggal", LongDate(doc.IssueDate)},
		{"Jatuh Tempo", LongDate(doc.DueDate)},
		{"Surat Jalan", orDash(doc.ShipmentNumber)},
	})
	d.labelRows(d.pageW/2+4, 50, [][2]string{
		{"Kepada", doc.Kitchen.Name},
		{"Alamat", orDash(doc.Kitchen.Address)},
		{"Kontak", contact(doc.Kitchen)},
	})

	y = d.itemTable(y+6, []string{"Deskripsi", "Jumlah", "Harga Satuan", "Total"},
		[]string{productName, Number(int64(doc.Cartons)) + " " + productUnit, Rupiah(doc.UnitPrice), Rupiah(doc.Amount)})

	p.SetFont("Helvetica", "B", 11)
	d.textRight(d.pageW-pdfMargin, y+10, "TOTAL TAGIHAN: "+Rupiah(doc.Amount))

	contentW := d.pageW - 2*pdfMargin
	p.SetFont("Helvetica", "I", 10)
	p.SetXY(pdfMargin, y+16)
	p.MultiCell(contentW, 5, d.tr("Terbilang: "+Capitalize(Terbilang(doc.Amount.Round(0).IntPart()))+" Rupiah"), "", "L", false)
	y = p.GetY() + 8

	p.SetDrawColor(200, 200, 200)
	p.Line(pdfMargin, y, d.pageW-pdfMargin, y)
	y += 8
	d.labelRows(pdfMargin, y, [][2]string{
		{"Pembayaran", "Transfer Bank"},
		{"Nama", lh.LegalName},
		{"Bank", lh.BankName},
		{"No. Rek", lh.AccountNumber},
	})

	x := d.pageW - pdfMargin - 60
	p.SetFont("Helvetica", "", 10)
	d.text(x, y, "Hormat Kami")
	d.text(x, y+5, lh.CompanyName)
	p.SetFont("Helvetica", "B", 10)
	d.text(x, y+30, lh.Signatory)
	p.SetFont("Helvetica", "", 9)
	d.text(x, y+35, lh.SignatoryTitle)

	return d.output(w)
}

func contact(p Party) string {
	switch {
	case p.ContactPerson != "" && p.ContactPhone != "":
		return p.ContactPerson + " (" + p.ContactPhone + ")"
	case p.ContactPhone != "":
		return p.ContactPhone
	default:
		return orDash(p.ContactPerson)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
