package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Task struct {
	gorm.Model

	ProjectID   uint   `gorm:"not null;index"`
	Title       string `gorm:"size:200;not null"`
	Description string
	AssigneeID  *uint  `gorm:"index"`
	CreatorID   uint   `gorm:"not null;index"`
	Status      string `gorm:"size:20;not null;default:'todo'"`
	Priority    string `gorm:"size:10;not null;default:'medium'"`
	DueDate     *datatypes.Date

	// Relationships
	Project  Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Assignee *User   `gorm:"foreignKey:AssigneeID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Creator  User    `gorm:"foreignKey:CreatorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
