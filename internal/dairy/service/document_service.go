package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strconv"
	"time"

	"github.com/Eman21-ctr/milk-management-app/internal/dairy/entity"
	"github.com/Eman21-ctr/milk-management-app/internal/dairy/export"
	"go.uber.org/zap"
)

// 导出格式
const (
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)

var contentTypes = map[string]string{
	FormatCSV:  "text/csv; charset=utf-8",
	FormatPDF:  "application/pdf",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// Document 生成的文件
type Document struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
	URL         string `json:"url,omitempty"` // 归档后的地址
}

// DocumentService 导出与打印
type DocumentService struct {
	*base
	report *ReportService
}

func NewDocumentService(b *base, report *ReportService) *DocumentService {
	return &DocumentService{base: b, report: report}
}

// Letterhead 单据抬头
func (s *DocumentService) Letterhead() export.Letterhead {
	lh := export.DefaultLetterhead()
	if s.opts.CompanyName != "" {
		lh.CompanyName = s.opts.CompanyName
	}
	if s.opts.CompanyAddress != "" {
		lh.Address = s.opts.CompanyAddress
	}
	if s.opts.SupplierName != "" {
		lh.SupplierName = s.opts.SupplierName
	}
	return lh
}

// Datasets 可导出的数据集
func Datasets() []string {
	return []string{"purchase-orders", "distributions", "invoices", "sppgs", "coordinators", "allocations"}
}

// Table 组装数据集表格
func (s *DocumentService) Table(ctx context.Context, dataset string) (export.Table, error) {
	switch dataset {
	case "purchase-orders":
		orders, _, err := s.repos.PO.FindAll(ctx, 0, 0, nil)
		if err != nil {
			return export.Table{}, err
		}
		t := export.Table{
			Name:    "data-purchase-order",
			Title:   "Data Purchase Order",
			Headers: []string{"PO Number", "Tanggal", "Total Karton", "Total Harga", "Status", "Teralokasi", "Sisa Stok"},
		}
		for _, po := range orders {
			t.Rows = append(t.Rows, []string{
				po.PONumber, s.isoDate(po.OrderDate), strconv.Itoa(po.TotalCartons),
				po.TotalPrice.StringFixed(0), po.Status, strconv.Itoa(po.AllocatedCartons()), strconv.Itoa(po.RemainingCartons),
			})
		}
		return t, nil

	case "distributions":
		dists, _, err := s.repos.Distribution.FindAll(ctx, 0, 0, nil)
		if err != nil {
			return export.Table{}, err
		}
		kitchens, coords, err := s.names(ctx)
		if err != nil {
			return export.Table{}, err
		}
		t := export.Table{
			Name:    "data-distribusi",
			Title:   "Data Distribusi",
			Headers: []string{"Surat Jalan", "Tanggal", "SPPG", "Korwil", "Jml Karton", "Status"},
		}
		for _, d := range dists {
			t.Rows = append(t.Rows, []string{
				d.SuratJalanNumber, s.isoDate(d.DistributionDate), orNA(kitchens[d.SPPGID]),
				orNA(coords[d.CoordinatorID]), strconv.Itoa(d.Cartons), d.Status,
			})
		}
		return t, nil

	case "invoices":
		invoices, _, err := s.repos.Invoice.FindAll(ctx, 0, 0, nil)
		if err != nil {
			return export.Table{}, err
		}
		kitchens, _, err := s.names(ctx)
		if err != nil {
			return export.Table{}, err
		}
		t := export.Table{
			Name:    "data-invoice",
			Title:   "Data Invoice",
			Headers: []string{"Invoice No.", "Tgl Terbit", "Jatuh Tempo", "SPPG", "Jumlah (Rp)", "Status"},
		}
		for _, inv := range invoices {
			t.Rows = append(t.Rows, []string{
				inv.InvoiceNumber, s.isoDate(inv.IssueDate), s.isoDate(inv.DueDate),
				orNA(kitchens[inv.SPPGID]), inv.Amount.StringFixed(0), inv.Status,
			})
		}
		return t, nil

	case "sppgs":
		kitchens, err := s.repos.Kitchen.FindAll(ctx, "")
		if err != nil {
			return export.Table{}, err
		}
		t := export.Table{
			Name:    "data-sppg",
			Title:   "Data SPPG",
			Headers: []string{"Nama SPPG", "Kab/Kota", "Alamat", "PJ", "Telepon"},
		}
		for _, k := range kitchens {
			t.Rows = append(t.Rows, []string{k.Name, k.District, k.Address, k.ContactPerson, k.ContactPhone})
		}
		return t, nil

	case "coordinators":
		coords, err := s.repos.Coordinator.FindAll(ctx, "")
		if err != nil {
			return export.Table{}, err
		}
		t := export.Table{
			Name:    "data-koordinator",
			Title:   "Data Koordinator",
			Headers: []string{"Nama Korwil", "Wilayah", "Kontak", "Telepon", "Stok"},
		}
		for _, c := range coords {
			t.Rows = append(t.Rows, []string{c.Name, c.Region, c.ContactPerson, c.ContactPhone, strconv.Itoa(c.Stock)})
		}
		return t, nil

	case "allocations":
		history, err := s.repos.Allocation.FindAll(ctx, nil)
		if err != nil {
			return export.Table{}, err
		}
		orders, _, err := s.repos.PO.FindAll(ctx, 0, 0, nil)
		if err != nil {
			return export.Table{}, err
		}
		poNumbers := make(map[string]string, len(orders))
		for _, po := range orders {
			poNumbers[po.ID] = po.PONumber
		}
		_, coords, err := s.names(ctx)
		if err != nil {
			return export.Table{}, err
		}
		t := export.Table{
			Name:    "data-alokasi",
			Title:   "Riwayat Alokasi",
			Headers: []string{"Tanggal", "PO Number", "Korwil", "Jml Karton"},
		}
		for _, h := range history {
			t.Rows = append(t.Rows, []string{
				s.isoDate(h.Date), orNA(poNumbers[h.POID]), orNA(coords[h.CoordinatorID]), strconv.Itoa(h.Cartons),
			})
		}
		return t, nil
	}
	return export.Table{}, fmt.Errorf("%w: %s", ErrUnknownDataset, dataset)
}

// Export 导出数据集，archive为true时同时归档到对象存储
func (s *DocumentService) Export(ctx context.Context, dataset, format string, archive bool) (*Document, error) {
	if format == "" {
		format = FormatCSV
	}
	if _, ok := contentTypes[format]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
	t, err := s.Table(ctx, dataset)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	switch format {
	case FormatCSV:
		err = export.WriteCSV(&buf, t)
	case FormatPDF:
		err = export.WriteTablePDF(&buf, s.Letterhead(), t)
	case FormatXLSX:
		err = export.WriteXLSX(&buf, t)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s %s: %w", dataset, format, err)
	}
	return s.finish(ctx, export.FileName(t.Name, format, s.now()), format, buf.Bytes(), archive)
}

// FinancialReport 财务报表（csv/pdf）
func (s *DocumentService) FinancialReport(ctx context.Context, start, end, format string, archive bool) (*Document, error) {
	if format == "" {
		format = FormatPDF
	}
	if format != FormatCSV && format != FormatPDF {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
	r, err := s.report.Financial(ctx, start, end)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if format == FormatCSV {
		err = export.WriteFinancialCSV(&buf, r)
	} else {
		err = export.WriteFinancialPDF(&buf, s.Letterhead(), r)
	}
	if err != nil {
		return nil, fmt.Errorf("render financial report: %w", err)
	}
	name := fmt.Sprintf("laporan-keuangan-%s-%s.%s", start, end, format)
	return s.finish(ctx, name, format, buf.Bytes(), archive)
}

// DistributionReport 配送报表（分号CSV）
func (s *DocumentService) DistributionReport(ctx context.Context, start, end string, archive bool) (*Document, error) {
	r, err := s.report.Distributions(ctx, start, end)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := export.WriteDistributionReportCSV(&buf, r); err != nil {
		return nil, fmt.Errorf("render distribution report: %w", err)
	}
	name := fmt.Sprintf("laporan-flowmilk-%s-%s.csv", start, end)
	return s.finish(ctx, name, FormatCSV, buf.Bytes(), archive)
}

// ShipmentNote 送货单
func (s *DocumentService) ShipmentNote(ctx context.Context, distributionID string) (*Document, error) {
	doc, d, err := s.delivery(ctx, distributionID)
	if err != nil {
		return nil, err
	}
	doc.Number = d.SuratJalanNumber
	return s.renderPDF(ctx, "surat-jalan-"+d.ID+".pdf", func(w io.Writer) error {
		return export.WriteShipmentNotePDF(w, s.Letterhead(), doc)
	})
}

// HandoverNote 交接单
func (s *DocumentService) HandoverNote(ctx context.Context, distributionID string) (*Document, error) {
	doc, d, err := s.delivery(ctx, distributionID)
	if err != nil {
		return nil, err
	}
	doc.Number = d.BASTNumber
	return s.renderPDF(ctx, "bast-"+d.ID+".pdf", func(w io.Writer) error {
		return export.WriteHandoverNotePDF(w, s.Letterhead(), doc)
	})
}

// InvoicePrint 发票打印
func (s *DocumentService) InvoicePrint(ctx context.Context, invoiceID string) (*Document, error) {
	inv, err := s.repos.Invoice.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	doc := &export.InvoiceDocument{
		Number:    inv.InvoiceNumber,
		IssueDate: inv.IssueDate.In(s.opts.Location),
		DueDate:   inv.DueDate.In(s.opts.Location),
		Status:    inv.Status,
		Amount:    inv.Amount,
		UnitPrice: s.opts.SellingPricePerCarton,
	}
	if d, err := s.repos.Distribution.FindByID(ctx, inv.DistributionID); err == nil {
		doc.ShipmentNumber = d.SuratJalanNumber
		doc.Cartons = d.Cartons
	} else {
		s.logger.Warn("invoice distribution missing", zap.String("invoice_id", inv.ID), zap.Error(err))
	}
	if k, err := s.repos.Kitchen.FindByID(ctx, inv.SPPGID); err == nil {
		doc.Kitchen = kitchenParty(k)
	}
	return s.renderPDF(ctx, "invoice-"+inv.ID+".pdf", func(w io.Writer) error {
		return export.WriteInvoicePDF(w, s.Letterhead(), doc)
	})
}

func (s *DocumentService) delivery(ctx context.Context, distributionID string) (*export.DeliveryDocument, *entity.Distribution, error) {
	d, err := s.repos.Distribution.FindByID(ctx, distributionID)
	if err != nil {
		return nil, nil, err
	}
	doc := &export.DeliveryDocument{
		Date:    d.DistributionDate.In(s.opts.Location),
		Cartons: d.Cartons,
	}
	if k, err := s.repos.Kitchen.FindByID(ctx, d.SPPGID); err == nil {
		doc.Kitchen = kitchenParty(k)
	}
	if c, err := s.repos.Coordinator.FindByID(ctx, d.CoordinatorID); err == nil {
		doc.Coordinator = export.Party{
			Name:          c.Name,
			District:      c.Region,
			ContactPerson: c.ContactPerson,
			ContactPhone:  c.ContactPhone,
		}
	}
	return doc, d, nil
}

func (s *DocumentService) renderPDF(ctx context.Context, name string, render func(io.Writer) error) (*Document, error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return s.finish(ctx, name, FormatPDF, buf.Bytes(), false)
}

// finish 组装结果，按需归档
func (s *DocumentService) finish(ctx context.Context, name, format string, data []byte, archive bool) (*Document, error) {
	doc := &Document{FileName: name, ContentType: contentTypes[format], Data: data}
	if !archive {
		return doc, nil
	}
	if s.deps.Storage == nil {
		return nil, ErrArchiveUnavailable
	}
	object := path.Join("exports", s.now().Format("2006/01"), name)
	url, err := s.deps.Storage.Put(ctx, object, doc.ContentType, data)
	if err != nil {
		return nil, fmt.Errorf("archive %s: %w", object, err)
	}
	doc.URL = url
	s.logger.Info("document archived", zap.String("object", object), zap.Int("bytes", len(data)))
	return doc, nil
}

func (s *DocumentService) names(ctx context.Context) (kitchens, coords map[string]string, err error) {
	kitchens, err = s.report.kitchenNames(ctx)
	if err != nil {
		return nil, nil, err
	}
	list, err := s.repos.Coordinator.FindAll(ctx, "")
	if err != nil {
		return nil, nil, err
	}
	coords = make(map[string]string, len(list))
	for _, c := range list {
		coords[c.ID] = c.Name
	}
	return kitchens, coords, nil
}

func (s *DocumentService) isoDate(t time.Time) string {
	return export.ISODate(t.In(s.opts.Location))
}

func kitchenParty(k *entity.Kitchen) export.Party {
	return export.Party{
		Name:          k.Name,
		Address:       k.Address,
		District:      k.District,
		ContactPerson: k.ContactPerson,
		ContactPhone:  k.ContactPhone,
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
