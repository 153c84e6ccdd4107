package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// utf8BOM Excel识别UTF-8用
const utf8BOM = "\uFEFF"

// quote 字段统一加双引号，内部引号加倍
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func writeQuotedRow(w *bufio.Writer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			w.WriteByte(',')
		}
		w.WriteString(quote(f))
	}
	w.WriteByte('\n')
}

// WriteCSV 通用表格CSV：BOM + 表头 + 数据行，逗号分隔
func WriteCSV(out io.Writer, t Table) error {
	w := bufio.NewWriter(out)
	w.WriteString(utf8BOM)
	writeQuotedRow(w, t.Headers)
	for _, row := range t.Rows {
		writeQuotedRow(w, row)
	}
	return w.Flush()
}

// WriteFinancialCSV 财务报表CSV
func WriteFinancialCSV(out io.Writer, r *FinancialReport) error {
	w := bufio.NewWriter(out)
	w.WriteString(utf8BOM)
	w.WriteString("Laporan Keuangan\n")
	fmt.Fprintf(w, "Periode: %s s/d %s\n\n", ShortDate(r.Start), ShortDate(r.End))

	w.WriteString("Ringkasan\n")
	w.WriteString("Item,Jumlah (Rp)\n")
	writeQuotedRow(w, []string{"Total Pendapatan (dari Invoice Lunas)", r.Revenue.StringFixed(0)})
	writeQuotedRow(w, []string{"Total Pengeluaran (dari PO)", r.Expenses.StringFixed(0)})
	writeQuotedRow(w, []string{"Laba/Rugi Bersih", r.NetProfit.StringFixed(0)})
	writeQuotedRow(w, []string{"Piutang (Invoice Belum Dibayar)", r.Receivables.StringFixed(0)})
	w.WriteByte('\n')

	w.WriteString("Rincian Pendapatan (Invoice Lunas)\n")
	w.WriteString("Invoice No.,Tanggal,SPPG,Jumlah (Rp)\n")
	for _, l := range r.PaidInvoices {
		writeQuotedRow(w, []string{l.Number, ISODate(l.Date), l.Party, l.Amount.StringFixed(0)})
	}
	w.WriteByte('\n')

	w.WriteString("Rincian Pengeluaran (Purchase Orders)\n")
	w.WriteString("PO No.,Tanggal Order,Supplier,Jumlah (Rp)\n")
	for _, l := range r.PurchaseOrders {
		writeQuotedRow(w, []string{l.Number, ISODate(l.Date), l.Party, l.Amount.StringFixed(0)})
	}
	return w.Flush()
}

// WriteDistributionReportCSV 配送报表，分号分隔，Excel可直接打开
func WriteDistributionReportCSV(out io.Writer, r *DistributionReport) error {
	w := bufio.NewWriter(out)
	w.WriteString(utf8BOM)
	w.WriteString("LAPORAN KEUANGAN FLOWMILK\n")
	fmt.Fprintf(w, "Periode: %s sampai %s\n", ISODate(r.Start), ISODate(r.End))
	fmt.Fprintf(w, "Tanggal Generate: %s\n\n", ShortDate(r.GeneratedAt))

	w.WriteString("=== RINGKASAN LAPORAN ===\n")
	w.WriteString("Kategori;Jumlah\n")
	fmt.Fprintf(w, "Total Distribusi;%d\n", r.TotalDistributions)
	fmt.Fprintf(w, "Total Karton;%s\n", Number(r.TotalCartons))
	fmt.Fprintf(w, "Total Pendapatan;%s\n\n", Rupiah(r.TotalRevenue))

	w.WriteString("=== DETAIL DISTRIBUSI ===\n")
	cw := semicolonWriter(w)
	cw.Write([]string{"No", "Tanggal", "Surat Jalan", "SPPG", "Koordinator", "Karton", "Status"})
	for i, d := range r.Distributions {
		cw.Write([]string{
			strconv.Itoa(i + 1), ShortDate(d.Date), orNA(d.ShipmentNumber),
			orNA(d.Kitchen), orNA(d.Coordinator), strconv.Itoa(d.Cartons), orNA(d.Status),
		})
	}
	if err := flushCSV(cw); err != nil {
		return err
	}

	w.WriteString("\n=== DETAIL INVOICE ===\n")
	cw = semicolonWriter(w)
	cw.Write([]string{"No", "Tanggal", "No Invoice", "SPPG", "Jumlah", "Status"})
	for i, inv := range r.Invoices {
		cw.Write([]string{
			strconv.Itoa(i + 1), ShortDate(inv.Date), inv.Number,
			orNA(inv.Kitchen), Rupiah(inv.Amount), inv.Status,
		})
	}
	if err := flushCSV(cw); err != nil {
		return err
	}
	return w.Flush()
}

// semicolonWriter 分号分隔，字段含分隔符、引号或换行时自动加引号
func semicolonWriter(w io.Writer) *csv.Writer {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	return cw
}

func flushCSV(cw *csv.Writer) error {
	cw.Flush()
	return cw.Error()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// FileName 导出文件名，如 purchase-orders-2026-10-15.csv
func FileName(prefix, ext string, at time.Time) string {
	return fmt.Sprintf("%s-%s.%s", prefix, at.Format("2006-01-02"), ext)
}
