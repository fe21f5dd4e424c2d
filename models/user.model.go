package models

import "gorm.io/gorm"

// User roles, from widest reporting scope to narrowest
const (
	RoleSuperAdmin  = "super_admin"
	RoleAdmin       = "admin"
	RoleManager     = "manager"
	RoleParticipant = "participant"
)

// User represents a learner or reporting actor within a company/department hierarchy
type User struct {
	gorm.Model
	Name         string `json:"name"`
	Email        string `json:"email" gorm:"unique"`
	Role         string `json:"role" gorm:"default:'participant'"` // super_admin, admin, manager, participant
	CompanyID    uint   `json:"company_id" gorm:"index"`
	DepartmentID uint   `json:"department_id" gorm:"index"`
	IsDeleted    bool   `gorm:"default:false"`
}
