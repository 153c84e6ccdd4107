package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Eman21-ctr/milk-management-app/internal/dairy/entity"
	"github.com/Eman21-ctr/milk-management-app/internal/dairy/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvoiceService 发票服务
type InvoiceService struct {
	*base
}

func NewInvoiceService(b *base) *InvoiceService {
	return &InvoiceService{base: b}
}

// ListInvoices 发票列表
func (s *InvoiceService) ListInvoices(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Invoice, int64, error) {
	return s.repos.Invoice.FindAll(ctx, page, pageSize, filters)
}

// GetInvoice 发票详情
func (s *InvoiceService) GetInvoice(ctx context.Context, id string) (*entity.Invoice, error) {
	return s.repos.Invoice.FindByID(ctx, id)
}

// CreateInvoiceRequest 开票请求
type CreateInvoiceRequest struct {
	DistributionID string `json:"distribution_id" binding:"required"`
}

// CreateInvoice 为已送达的配送单开票，金额 = 箱数 × 每箱售价
func (s *InvoiceService) CreateInvoice(ctx context.Context, userID string, req *CreateInvoiceRequest) (*entity.Invoice, error) {
	release := s.lock(ctx, "ledger:distribution:"+req.DistributionID)
	defer release()

	now := s.now()
	issueDate := startOfDay(now, s.opts.Location)
	var inv *entity.Invoice
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		d, err := tx.Distribution.FindByIDForUpdate(ctx, req.DistributionID)
		if err != nil {
			return err
		}
		if d.Status != entity.DistributionStatusDelivered {
			return fmt.Errorf("%w: status is %s", ErrInvoiceNotAllowed, d.Status)
		}
		if !d.Invoiceable() {
			return ErrAlreadyInvoiced
		}
		exists, err := tx.Invoice.ExistsForDistribution(ctx, d.ID)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyInvoiced
		}

		seq, err := tx.Sequence.Next(ctx, entity.SequenceInvoice, now.Year(), int(now.Month()))
		if err != nil {
			return err
		}

		inv = &entity.Invoice{
			ID:             uuid.New().String()[:32],
			InvoiceNumber:  documentNumber(s.opts.OrgCode, "INV", now, seq),
			DistributionID: d.ID,
			SPPGID:         d.SPPGID,
			IssueDate:      issueDate,
			DueDate:        issueDate.AddDate(0, 0, s.opts.InvoiceDueDays),
			Amount:         s.opts.SellingPricePerCarton.Mul(decimal.NewFromInt(int64(d.Cartons))),
			Status:         entity.InvoiceStatusUnpaid,
			CreatedBy:      userID,
		}
		if err := tx.Invoice.Create(ctx, inv); err != nil {
			return err
		}
		return tx.Distribution.LinkInvoice(ctx, d.ID, inv.ID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invoice created",
		zap.String("invoice_id", inv.ID),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("distribution_id", inv.DistributionID),
		zap.String("amount", inv.Amount.String()))
	s.changed(ctx, "invoice.created", inv)
	return inv, nil
}

// UpdateInvoiceStatus 更新发票状态，付款时记录时间
func (s *InvoiceService) UpdateInvoiceStatus(ctx context.Context, id, status string) (*entity.Invoice, error) {
	if !entity.KnownStatus(entity.InvoiceStatuses, status) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
	var updated *entity.Invoice
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		inv, err := tx.Invoice.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !entity.CanTransition(entity.ValidInvoiceTransitions, inv.Status, status) {
			return &TransitionError{Entity: "invoice", From: inv.Status, To: status}
		}
		var paidAt *time.Time
		if status == entity.InvoiceStatusPaid {
			t := s.now()
			paidAt = &t
		}
		if err := tx.Invoice.UpdateStatus(ctx, id, status, paidAt); err != nil {
			return err
		}
		inv.Status = status
		inv.PaidAt = paidAt
		updated = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.changed(ctx, "invoice.updated", updated)
	return updated, nil
}

// MarkOverdue 将到期未付的发票标记为逾期，返回处理数量
func (s *InvoiceService) MarkOverdue(ctx context.Context, asOf time.Time) (int, error) {
	due, err := s.repos.Invoice.FindUnpaidDueBefore(ctx, startOfDay(asOf, s.opts.Location))
	if err != nil {
		return 0, err
	}
	marked := 0
	for _, inv := range due {
		if _, err := s.UpdateInvoiceStatus(ctx, inv.ID, entity.InvoiceStatusOverdue); err != nil {
			s.logger.Error("failed to mark invoice overdue", zap.String("invoice_id", inv.ID), zap.Error(err))
			continue
		}
		marked++
	}
	if marked > 0 {
		s.logger.Info("invoices marked overdue", zap.Int("count", marked))
	}
	return marked, nil
}
