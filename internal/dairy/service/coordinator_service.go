package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Eman21-ctr/milk-management-app/internal/dairy/entity"
	"github.com/Eman21-ctr/milk-management-app/internal/dairy/repository"
	"github.com/google/uuid"
	"github.com/ttacon/libphonenumber"
)

// phoneRegion 联系电话默认地区
const phoneRegion = "ID"

// normalizePhone 校验并格式化为国际格式，空串原样返回
func normalizePhone(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", nil
	}
	p, err := libphonenumber.Parse(phone, phoneRegion)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidPhone, phone)
	}
	if !libphonenumber.IsValidNumber(p) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPhone, phone)
	}
	return libphonenumber.Format(p, libphonenumber.INTERNATIONAL), nil
}

// CoordinatorService 协调员服务
type CoordinatorService struct {
	*base
}

func NewCoordinatorService(b *base) *CoordinatorService {
	return &CoordinatorService{base: b}
}

// ListCoordinators 协调员列表
func (s *CoordinatorService) ListCoordinators(ctx context.Context, search string) ([]entity.Coordinator, error) {
	return s.repos.Coordinator.FindAll(ctx, search)
}

// GetCoordinator 协调员详情
func (s *CoordinatorService) GetCoordinator(ctx context.Context, id string) (*entity.Coordinator, error) {
	return s.repos.Coordinator.FindByID(ctx, id)
}

// CreateCoordinatorRequest 创建协调员请求，库存固定从0开始
type CreateCoordinatorRequest struct {
	Name          string   `json:"name" binding:"required"`
	Region        string   `json:"region"`
	ContactPerson string   `json:"contact_person"`
	ContactPhone  string   `json:"contact_phone"`
	SPPGIDs       []string `json:"sppg_ids"`
}

// CreateCoordinator 创建协调员
func (s *CoordinatorService) CreateCoordinator(ctx context.Context, req *CreateCoordinatorRequest) (*entity.Coordinator, error) {
	phone, err := normalizePhone(req.ContactPhone)
	if err != nil {
		return nil, err
	}
	c := &entity.Coordinator{
		ID:            uuid.New().String()[:32],
		Name:          strings.TrimSpace(req.Name),
		Region:        req.Region,
		ContactPerson: req.ContactPerson,
		ContactPhone:  phone,
		Stock:         0,
	}

	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := s.checkKitchens(ctx, tx, req.SPPGIDs); err != nil {
			return err
		}
		if err := tx.Coordinator.Create(ctx, c); err != nil {
			return err
		}
		return tx.Coordinator.ReplaceSPPGs(ctx, c.ID, req.SPPGIDs)
	})
	if err != nil {
		return nil, err
	}

	created, err := s.repos.Coordinator.FindByID(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	s.changed(ctx, "coordinator.created", created)
	return created, nil
}

// UpdateCoordinatorRequest 更新协调员请求，库存不可编辑
type UpdateCoordinatorRequest struct {
	Name          *string   `json:"name"`
	Region        *string   `json:"region"`
	ContactPerson *string   `json:"contact_person"`
	ContactPhone  *string   `json:"contact_phone"`
	SPPGIDs       *[]string `json:"sppg_ids"`
}

// UpdateCoordinator 更新协调员资料及负责厨房
func (s *CoordinatorService) UpdateCoordinator(ctx context.Context, id string, req *UpdateCoordinatorRequest) (*entity.Coordinator, error) {
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		c, err := tx.Coordinator.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if req.Name != nil {
			if strings.TrimSpace(*req.Name) == "" {
				return fmt.Errorf("%w: name is required", ErrInvalidInput)
			}
			c.Name = strings.TrimSpace(*req.Name)
		}
		if req.Region != nil {
			c.Region = *req.Region
		}
		if req.ContactPerson != nil {
			c.ContactPerson = *req.ContactPerson
		}
		if req.ContactPhone != nil {
			phone, err := normalizePhone(*req.ContactPhone)
			if err != nil {
				return err
			}
			c.ContactPhone = phone
		}
		if err := tx.Coordinator.UpdateProfile(ctx, c); err != nil {
			return err
		}
		if req.SPPGIDs != nil {
			if err := s.checkKitchens(ctx, tx, *req.SPPGIDs); err != nil {
				return err
			}
			return tx.Coordinator.ReplaceSPPGs(ctx, id, *req.SPPGIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.repos.Coordinator.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.changed(ctx, "coordinator.updated", updated)
	return updated, nil
}

// checkKitchens 关联的厨房必须存在
func (s *CoordinatorService) checkKitchens(ctx context.Context, tx *repository.Repositories, ids []string) error {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id != "" && !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	if len(unique) == 0 {
		return nil
	}
	n, err := tx.Kitchen.CountByIDs(ctx, unique)
	if err != nil {
		return err
	}
	if int(n) != len(unique) {
		return fmt.Errorf("%w: unknown sppg in sppg_ids", ErrInvalidInput)
	}
	return nil
}

// KitchenService 厨房(SPPG)服务
type KitchenService struct {
	*base
}

func NewKitchenService(b *base) *KitchenService {
	return &KitchenService{base: b}
}

// ListKitchens 厨房列表
func (s *KitchenService) ListKitchens(ctx context.Context, search string) ([]entity.Kitchen, error) {
	return s.repos.Kitchen.FindAll(ctx, search)
}

// GetKitchen 厨房详情
func (s *KitchenService) GetKitchen(ctx context.Context, id string) (*entity.Kitchen, error) {
	return s.repos.Kitchen.FindByID(ctx, id)
}

// CreateKitchenRequest 创建厨房请求
type CreateKitchenRequest struct {
	Name          string `json:"name" binding:"required"`
	District      string `json:"district"`
	Address       string `json:"address"`
	ContactPerson string `json:"contact_person"`
	ContactPhone  string `json:"contact_phone"`
}

// CreateKitchen 创建厨房
func (s *KitchenService) CreateKitchen(ctx context.Context, req *CreateKitchenRequest) (*entity.Kitchen, error) {
	phone, err := normalizePhone(req.ContactPhone)
	if err != nil {
		return nil, err
	}
	k := &entity.Kitchen{
		ID:            uuid.New().String()[:32],
		Name:          strings.TrimSpace(req.Name),
		District:      req.District,
		Address:       req.Address,
		ContactPerson: req.ContactPerson,
		ContactPhone:  phone,
	}
	if err := s.repos.Kitchen.Create(ctx, k); err != nil {
		return nil, err
	}
	s.changed(ctx, "sppg.created", k)
	return k, nil
}

// UpdateKitchenRequest 更新厨房请求
type UpdateKitchenRequest struct {
	Name          *string `json:"name"`
	District      *string `json:"district"`
	Address       *string `json:"address"`
	ContactPerson *string `json:"contact_person"`
	ContactPhone  *string `json:"contact_phone"`
}

// UpdateKitchen 更新厨房
func (s *KitchenService) UpdateKitchen(ctx context.Context, id string, req *UpdateKitchenRequest) (*entity.Kitchen, error) {
	k, err := s.repos.Kitchen.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
		}
		k.Name = strings.TrimSpace(*req.Name)
	}
	if req.District != nil {
		k.District = *req.District
	}
	if req.Address != nil {
		k.Address = *req.Address
	}
	if req.ContactPerson != nil {
		k.ContactPerson = *req.ContactPerson
	}
	if req.ContactPhone != nil {
		phone, err := normalizePhone(*req.ContactPhone)
		if err != nil {
			return nil, err
		}
		k.ContactPhone = phone
	}
	if err := s.repos.Kitchen.Update(ctx, k); err != nil {
		return nil, err
	}
	s.changed(ctx, "sppg.updated", k)
	return k, nil
}
