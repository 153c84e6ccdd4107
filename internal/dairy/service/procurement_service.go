package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Eman21-ctr/milk-management-app/internal/dairy/entity"
	"github.com/Eman21-ctr/milk-management-app/internal/dairy/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProcurementService 采购与分配服务
type ProcurementService struct {
	*base

	mu         sync.Mutex
	lastMillis int64
}

func NewProcurementService(b *base) *ProcurementService {
	return &ProcurementService{base: b}
}

// ListPurchaseOrders 采购订单列表
func (s *ProcurementService) ListPurchaseOrders(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.PurchaseOrder, int64, error) {
	return s.repos.PO.FindAll(ctx, page, pageSize, filters)
}

// GetPurchaseOrder 采购订单详情
func (s *ProcurementService) GetPurchaseOrder(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return s.repos.PO.FindByID(ctx, id)
}

// CreatePORequest 创建采购订单请求
type CreatePORequest struct {
	Supplier  string `json:"supplier"`
	OrderDate string `json:"order_date"` // yyyy-mm-dd，默认当天
	Batches   int    `json:"batches" binding:"required"`
	Status    string `json:"status"`
}

// CreatePurchaseOrder 创建采购订单，箱数与金额按批次计算
func (s *ProcurementService) CreatePurchaseOrder(ctx context.Context, userID string, req *CreatePORequest) (*entity.PurchaseOrder, error) {
	if req.Batches < 1 {
		return nil, ErrInvalidBatches
	}
	status := req.Status
	if status == "" {
		status = entity.POStatusSent
	}
	if !entity.KnownStatus(entity.POStatuses, status) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	orderDate, err := s.parseDate(req.OrderDate)
	if err != nil {
		return nil, err
	}
	if orderDate.IsZero() {
		orderDate = s.today()
	}
	supplier := req.Supplier
	if supplier == "" {
		supplier = s.opts.SupplierName
	}

	totalCartons := req.Batches * s.opts.CartonsPerBatch
	po := &entity.PurchaseOrder{
		ID:               uuid.New().String()[:32],
		PONumber:         fmt.Sprintf("PO-%s-%d", s.opts.OrgCode, s.nextMillis()),
		Supplier:         supplier,
		OrderDate:        orderDate,
		Batches:          req.Batches,
		TotalCartons:     totalCartons,
		TotalPrice:       s.opts.PricePerBatch.Mul(decimal.NewFromInt(int64(req.Batches))),
		Status:           status,
		RemainingCartons: totalCartons,
		CreatedBy:        userID,
	}

	if err := s.repos.PO.Create(ctx, po); err != nil {
		return nil, fmt.Errorf("create purchase order: %w", err)
	}

	s.logger.Info("purchase order created",
		zap.String("po_id", po.ID),
		zap.String("po_number", po.PONumber),
		zap.Int("total_cartons", po.TotalCartons))
	s.changed(ctx, "purchase_order.created", po)
	return po, nil
}

// nextMillis 毫秒时间戳，同一进程内严格递增
func (s *ProcurementService) nextMillis() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ms := s.opts.Now().UnixMilli()
	if ms <= s.lastMillis {
		ms = s.lastMillis + 1
	}
	s.lastMillis = ms
	return ms
}

// UpdateStatusRequest 状态更新请求
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdatePurchaseOrderStatus 更新PO状态
func (s *ProcurementService) UpdatePurchaseOrderStatus(ctx context.Context, id, status string) (*entity.PurchaseOrder, error) {
	if !entity.KnownStatus(entity.POStatuses, status) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
	var updated *entity.PurchaseOrder
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		po, err := tx.PO.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !entity.CanTransition(entity.ValidPOTransitions, po.Status, status) {
			return &TransitionError{Entity: "purchase order", From: po.Status, To: status}
		}
		if err := tx.PO.UpdateStatus(ctx, id, status); err != nil {
			return err
		}
		po.Status = status
		updated = po
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.changed(ctx, "purchase_order.updated", updated)
	return updated, nil
}

// AllocationItem 单个协调员的分配量
type AllocationItem struct {
	CoordinatorID string `json:"coordinator_id" binding:"required"`
	Cartons       int    `json:"cartons" binding:"required"`
}

// AllocateRequest 分配请求
type AllocateRequest struct {
	Allocations []AllocationItem `json:"allocations" binding:"required"`
}

// AllocationResult 分配结果
type AllocationResult struct {
	PurchaseOrder *entity.PurchaseOrder      `json:"purchase_order"`
	Applied       []entity.AllocationHistory `json:"applied"`
	Skipped       []AllocationItem           `json:"skipped"`
}

// AllocateStock 将PO剩余箱数分配给协调员
// 超出剩余量整体拒绝；不存在的协调员逐项跳过，PO仍按请求总量扣减
func (s *ProcurementService) AllocateStock(ctx context.Context, poID string, items []AllocationItem) (*AllocationResult, error) {
	if len(items) == 0 {
		return nil, ErrEmptyAllocation
	}
	requested := 0
	for _, it := range items {
		if it.Cartons <= 0 {
			return nil, ErrInvalidQuantity
		}
		requested += it.Cartons
	}

	release := s.lock(ctx, "ledger:po:"+poID)
	defer release()

	result := &AllocationResult{Applied: []entity.AllocationHistory{}, Skipped: []AllocationItem{}}
	today := s.today()

	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		po, err := tx.PO.FindByIDForUpdate(ctx, poID)
		if err != nil {
			return err
		}
		if requested > po.RemainingCartons {
			return fmt.Errorf("%w: requested %d, remaining %d", ErrInsufficientRemaining, requested, po.RemainingCartons)
		}

		for _, it := range items {
			c, err := tx.Coordinator.FindByIDForUpdate(ctx, it.CoordinatorID)
			if errors.Is(err, repository.ErrNotFound) {
				result.Skipped = append(result.Skipped, it)
				continue
			}
			if err != nil {
				return err
			}
			if err := tx.Coordinator.UpdateStock(ctx, c.ID, c.Stock+it.Cartons); err != nil {
				return err
			}
			result.Applied = append(result.Applied, entity.AllocationHistory{
				ID:            uuid.New().String()[:32],
				POID:          po.ID,
				CoordinatorID: c.ID,
				Cartons:       it.Cartons,
				Date:          today,
			})
		}

		if err := tx.Allocation.CreateBatch(ctx, result.Applied); err != nil {
			return err
		}
		po.RemainingCartons -= requested
		if err := tx.PO.UpdateRemaining(ctx, po.ID, po.RemainingCartons); err != nil {
			return err
		}
		result.PurchaseOrder = po
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, sk := range result.Skipped {
		s.logger.Warn("allocation skipped: coordinator not found",
			zap.String("po_id", poID), zap.String("coordinator_id", sk.CoordinatorID))
	}
	s.logger.Info("stock allocated",
		zap.String("po_id", poID),
		zap.Int("applied_items", len(result.Applied)),
		zap.Int("remaining_cartons", result.PurchaseOrder.RemainingCartons))
	s.changed(ctx, "allocation.created", result)
	return result, nil
}

// DeletePurchaseOrder 删除PO；有分配记录时逐条回退协调员库存（不低于0）
func (s *ProcurementService) DeletePurchaseOrder(ctx context.Context, id string) error {
	release := s.lock(ctx, "ledger:po:"+id)
	defer release()

	reversed := 0
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if _, err := tx.PO.FindByIDForUpdate(ctx, id); err != nil {
			return err
		}
		history, err := tx.Allocation.FindByPO(ctx, id)
		if err != nil {
			return err
		}
		for _, h := range history {
			c, err := tx.Coordinator.FindByIDForUpdate(ctx, h.CoordinatorID)
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			stock := c.Stock - h.Cartons
			if stock < 0 {
				stock = 0
			}
			if err := tx.Coordinator.UpdateStock(ctx, c.ID, stock); err != nil {
				return err
			}
			reversed++
		}
		if len(history) > 0 {
			if err := tx.Allocation.DeleteByPO(ctx, id); err != nil {
				return err
			}
		}
		return tx.PO.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("purchase order deleted", zap.String("po_id", id), zap.Int("reversed_allocations", reversed))
	s.changed(ctx, "purchase_order.deleted", map[string]string{"id": id})
	return nil
}

// ListAllocations 分配记录
func (s *ProcurementService) ListAllocations(ctx context.Context, filters map[string]string) ([]entity.AllocationHistory, error) {
	return s.repos.Allocation.FindAll(ctx, filters)
}
