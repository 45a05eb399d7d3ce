package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Supplier struct {
	ID            snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name          string       `gorm:"type:varchar(255);not null;index" json:"name"`
	ContactPerson string       `gorm:"type:text" json:"contact_person,omitempty"`
	Email         string       `gorm:"type:text" json:"email,omitempty"`
	Phone         string       `gorm:"type:text" json:"phone,omitempty"`
	GSTIN         string       `gorm:"column:gstin;type:text" json:"gstin,omitempty"`
	Address       string       `gorm:"type:text" json:"address,omitempty"`
	CreatedAt     time.Time    `gorm:"not null;index" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null" json:"updated_at"`
}

func (Supplier) TableName() string { return "suppliers" }
