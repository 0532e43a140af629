package models

import "gorm.io/gorm"

const DefaultProjectColor = "#007bff"

type Project struct {
	gorm.Model

	Name        string `gorm:"not null"`
	Description string
	Color       string `gorm:"size:7;not null;default:'#007bff'"`
	CreatorID   uint   `gorm:"not null;index"`

	// Relationships
	Creator     User                `gorm:"foreignKey:CreatorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Memberships []ProjectMembership `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Tasks       []Task              `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
