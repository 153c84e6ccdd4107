package entity

import "time"

// Coordinator 区域协调员，持有可配送库存
type Coordinator struct {
	ID            string    `json:"id" gorm:"primaryKey;size:32"`
	Name          string    `json:"name" gorm:"size:200;not null"`
	Region        string    `json:"region" gorm:"size:200"`
	ContactPerson string    `json:"contact_person" gorm:"size:200"`
	ContactPhone  string    `json:"contact_phone" gorm:"size:30"`
	Stock         int       `json:"stock" gorm:"not null;default:0"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	SPPGIDs []string `json:"sppg_ids" gorm:"-"`
}

func (Coordinator) TableName() string {
	return "coordinators"
}

// Serves 协调员是否负责该厨房
func (c *Coordinator) Serves(sppgID string) bool {
	for _, id := range c.SPPGIDs {
		if id == sppgID {
			return true
		}
	}
	return false
}

// CoordinatorSPPG 协调员负责的厨房
type CoordinatorSPPG struct {
	CoordinatorID string `json:"coordinator_id" gorm:"primaryKey;size:32"`
	SPPGID        string `json:"sppg_id" gorm:"column:sppg_id;primaryKey;size:32;index"`
}

func (CoordinatorSPPG) TableName() string {
	return "coordinator_sppgs"
}

// Kitchen 学校供餐厨房（SPPG）
type Kitchen struct {
	ID            string    `json:"id" gorm:"primaryKey;size:32"`
	Name          string    `json:"name" gorm:"size:200;not null"`
	District      string    `json:"district" gorm:"size:200"`
	Address       string    `json:"address" gorm:"size:500"`
	ContactPerson string    `json:"contact_person" gorm:"size:200"`
	ContactPhone  string    `json:"contact_phone" gorm:"size:30"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Kitchen) TableName() string {
	return "sppgs"
}
