package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Eman21-ctr/milk-management-app/internal/dairy/entity"
	"github.com/Eman21-ctr/milk-management-app/internal/dairy/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DistributionService 配送服务
type DistributionService struct {
	*base
}

func NewDistributionService(b *base) *DistributionService {
	return &DistributionService{base: b}
}

// ListDistributions 配送单列表
func (s *DistributionService) ListDistributions(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Distribution, int64, error) {
	return s.repos.Distribution.FindAll(ctx, page, pageSize, filters)
}

// GetDistribution 配送单详情
func (s *DistributionService) GetDistribution(ctx context.Context, id string) (*entity.Distribution, error) {
	return s.repos.Distribution.FindByID(ctx, id)
}

// ListInvoiceable 可开票的配送单
func (s *DistributionService) ListInvoiceable(ctx context.Context) ([]entity.Distribution, error) {
	return s.repos.Distribution.FindInvoiceable(ctx)
}

// CreateDistributionRequest 创建配送单请求
type CreateDistributionRequest struct {
	CoordinatorID    string `json:"coordinator_id" binding:"required"`
	SPPGID           string `json:"sppg_id" binding:"required"`
	Cartons          int    `json:"cartons" binding:"required"`
	DistributionDate string `json:"distribution_date"` // yyyy-mm-dd，默认当天
}

// CreateDistribution 创建配送单并扣减协调员库存，目的厨房须由该协调员负责
func (s *DistributionService) CreateDistribution(ctx context.Context, userID string, req *CreateDistributionRequest) (*entity.Distribution, error) {
	if req.Cartons <= 0 {
		return nil, ErrInvalidQuantity
	}
	date, err := s.parseDate(req.DistributionDate)
	if err != nil {
		return nil, err
	}
	if date.IsZero() {
		date = s.today()
	}

	release := s.lock(ctx, "ledger:coordinator:"+req.CoordinatorID)
	defer release()

	now := s.now()
	var dist *entity.Distribution
	var remaining int
	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if _, err := tx.Kitchen.FindByID(ctx, req.SPPGID); err != nil {
			return fmt.Errorf("sppg %s: %w", req.SPPGID, err)
		}
		c, err := tx.Coordinator.FindByIDForUpdate(ctx, req.CoordinatorID)
		if err != nil {
			return fmt.Errorf("coordinator %s: %w", req.CoordinatorID, err)
		}
		if !c.Serves(req.SPPGID) {
			return fmt.Errorf("%w: coordinator %s, sppg %s", ErrKitchenNotServed, c.ID, req.SPPGID)
		}
		if req.Cartons > c.Stock {
			return fmt.Errorf("%w: requested %d, stock %d", ErrInsufficientStock, req.Cartons, c.Stock)
		}

		seq, err := tx.Sequence.Next(ctx, entity.SequenceDistribution, now.Year(), int(now.Month()))
		if err != nil {
			return err
		}

		dist = &entity.Distribution{
			ID:               uuid.New().String()[:32],
			DistributionDate: date,
			CoordinatorID:    c.ID,
			SPPGID:           req.SPPGID,
			Cartons:          req.Cartons,
			Status:           entity.DistributionStatusPending,
			SuratJalanNumber: documentNumber(s.opts.OrgCode, "SJ", now, seq),
			BASTNumber:       documentNumber(s.opts.OrgCode, "BAST", now, seq),
			CreatedBy:        userID,
		}
		if err := tx.Distribution.Create(ctx, dist); err != nil {
			return err
		}
		remaining = c.Stock - req.Cartons
		return tx.Coordinator.UpdateStock(ctx, c.ID, remaining)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("distribution created",
		zap.String("distribution_id", dist.ID),
		zap.String("surat_jalan_number", dist.SuratJalanNumber),
		zap.String("coordinator_id", dist.CoordinatorID),
		zap.Int("cartons", dist.Cartons),
		zap.Int("coordinator_stock", remaining))
	s.changed(ctx, "distribution.created", dist)
	return dist, nil
}

// UpdateDistributionStatus 更新配送状态
func (s *DistributionService) UpdateDistributionStatus(ctx context.Context, id, status string) (*entity.Distribution, error) {
	if !entity.KnownStatus(entity.DistributionStatuses, status) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
	var updated *entity.Distribution
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		d, err := tx.Distribution.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !entity.CanTransition(entity.ValidDistributionTransitions, d.Status, status) {
			return &TransitionError{Entity: "distribution", From: d.Status, To: status}
		}
		if err := tx.Distribution.UpdateStatus(ctx, id, status); err != nil {
			return err
		}
		d.Status = status
		updated = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.changed(ctx, "distribution.updated", updated)
	return updated, nil
}

// documentNumber <ORG>/<TYPE>/<yyyy>/<MM>/<nnn>
func documentNumber(org, docType string, t time.Time, seq int) string {
	return fmt.Sprintf("%s/%s/%04d/%02d/%03d", org, docType, t.Year(), int(t.Month()), seq)
}
