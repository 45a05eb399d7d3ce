package domain

import "time"

// GSTState mirrors the jurisdiction registry into the database so reports
// and foreign tools can join on state codes.
type GSTState struct {
	Code      string    `json:"code" gorm:"column:code;type:varchar(2);primaryKey"`
	Name      string    `json:"name" gorm:"column:name;type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
}

func (GSTState) TableName() string { return "gst_states" }
