package services

import (
	"context"
	"errors"
	"lms/models"

	"gorm.io/gorm"
)

// ScopeResolver computes the set of user IDs an actor may query. All
// role-based reporting access goes through here; controllers never branch on
// roles themselves.
type ScopeResolver struct {
	db *gorm.DB
}

// NewScopeResolver creates a ScopeResolver bound to the given database handle.
func NewScopeResolver(db *gorm.DB) *ScopeResolver {
	return &ScopeResolver{db: db}
}

// Resolve returns the user IDs the actor may query:
// super_admin all users, admin their company, manager their department,
// anyone else only themselves.
func (s *ScopeResolver) Resolve(ctx context.Context, actor *models.User) ([]uint, error) {
	query := s.db.WithContext(ctx).Model(&models.User{}).Where("is_deleted = ?", false)

	switch actor.Role {
	case models.RoleSuperAdmin:
		// no extra filter
	case models.RoleAdmin:
		query = query.Where("company_id = ?", actor.CompanyID)
	case models.RoleManager:
		query = query.Where("department_id = ?", actor.DepartmentID)
	default:
		return []uint{actor.ID}, nil
	}

	var ids []uint
	if err := query.Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// VerifyAccess reports whether the actor may query targetUserID, without
// materializing the full scope. ErrForbidden when outside scope, ErrNotFound
// when the target does not exist.
func (s *ScopeResolver) VerifyAccess(ctx context.Context, actor *models.User, targetUserID uint) error {
	if actor.Role == models.RoleSuperAdmin {
		return nil
	}

	var target models.User
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", targetUserID, false).
		First(&target).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	switch actor.Role {
	case models.RoleAdmin:
		if target.CompanyID == actor.CompanyID {
			return nil
		}
	case models.RoleManager:
		if target.DepartmentID == actor.DepartmentID {
			return nil
		}
	default:
		if target.ID == actor.ID {
			return nil
		}
	}
	return ErrForbidden
}
