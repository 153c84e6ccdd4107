package service

import (
	"context"
	"time"

	"github.com/Eman21-ctr/milk-management-app/internal/dairy/entity"
	"go.uber.org/zap"
)

const (
	stateCacheKey = "flowmilk:state"
	stateCacheTTL = 5 * time.Minute
)

// Snapshot 账本全量状态
type Snapshot struct {
	PurchaseOrders    []entity.PurchaseOrder     `json:"purchase_orders"`
	Coordinators      []entity.Coordinator       `json:"coordinators"`
	SPPGs             []entity.Kitchen           `json:"sppgs"`
	Distributions     []entity.Distribution      `json:"distributions"`
	Invoices          []entity.Invoice           `json:"invoices"`
	AllocationHistory []entity.AllocationHistory `json:"allocation_history"`
}

// StateService 全量状态
type StateService struct {
	*base
}

func NewStateService(b *base) *StateService {
	return &StateService{base: b}
}

// Snapshot 读取全量状态，优先走缓存
func (s *StateService) Snapshot(ctx context.Context) (*Snapshot, error) {
	var cached Snapshot
	if ok, err := s.deps.Cache.GetJSON(ctx, stateCacheKey, &cached); err != nil {
		s.logger.Warn("state cache read failed", zap.Error(err))
	} else if ok {
		return &cached, nil
	}

	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.deps.Cache.SetJSON(ctx, stateCacheKey, snap, stateCacheTTL); err != nil {
		s.logger.Warn("state cache write failed", zap.Error(err))
	}
	return snap, nil
}

func (s *StateService) load(ctx context.Context) (*Snapshot, error) {
	var (
		snap = &Snapshot{}
		err  error
	)
	if snap.PurchaseOrders, _, err = s.repos.PO.FindAll(ctx, 0, 0, nil); err != nil {
		return nil, err
	}
	if snap.Coordinators, err = s.repos.Coordinator.FindAll(ctx, ""); err != nil {
		return nil, err
	}
	if snap.SPPGs, err = s.repos.Kitchen.FindAll(ctx, ""); err != nil {
		return nil, err
	}
	if snap.Distributions, _, err = s.repos.Distribution.FindAll(ctx, 0, 0, nil); err != nil {
		return nil, err
	}
	if snap.Invoices, _, err = s.repos.Invoice.FindAll(ctx, 0, 0, nil); err != nil {
		return nil, err
	}
	if snap.AllocationHistory, err = s.repos.Allocation.FindAll(ctx, nil); err != nil {
		return nil, err
	}
	return snap, nil
}
