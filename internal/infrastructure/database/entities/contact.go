package entities

import (
	"time"

	"gorm.io/datatypes"
)

// Contact is one answered support question.
type Contact struct {
	ID        string  `gorm:"type:varchar(40);primaryKey"`
	Username  *string `gorm:"type:varchar(255)"`
	Subject   *string `gorm:"type:varchar(255)"`
	Question  string  `gorm:"type:text;not null"`
	Answer    string  `gorm:"type:text;not null"`
	Citations datatypes.JSON
	Source    string    `gorm:"type:varchar(16);not null"`
	Date      string    `gorm:"type:varchar(10);index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Contact) TableName() string {
	return "contacts"
}
