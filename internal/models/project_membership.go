package models

import "gorm.io/gorm"

// ProjectMembership links one user to one project. The project creator has
// full standing without a row here; see the policy package.
type ProjectMembership struct {
	gorm.Model

	UserID         uint   `gorm:"not null;uniqueIndex:idx_user_project"`
	ProjectID      uint   `gorm:"not null;uniqueIndex:idx_user_project"`
	Role           string `gorm:"size:20;not null;default:'developer'"`
	CanEditTasks   bool   `gorm:"not null;default:false"`
	CanInviteUsers bool   `gorm:"not null;default:false"`

	// Relationships
	User    User    `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
