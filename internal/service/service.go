package service

import (
	"errors"

	"researchnest/internal/models"
)

// Access errors shared by the family-scoped services
var (
	ErrNotInFamily        = errors.New("caller is not part of this family")
	ErrForbidden          = errors.New("caller may not perform this action")
	ErrFamilyNotFound     = errors.New("family not found")
	ErrProjectNotFound    = errors.New("project not found")
	ErrProjectNotInFamily = errors.New("project does not belong to this family")
	ErrProjectAccess      = errors.New("caller does not have access to this project")
)

// Caller is the authenticated identity a service call runs as
type Caller struct {
	UserID   string
	Type     models.UserType
	FamilyID string
}

// IsAdmin reports whether the caller bypasses family scoping
func (c Caller) IsAdmin() bool {
	return c.Type == models.UserTypeAdmin
}

// InFamily reports whether the caller may see familyID's data
func (c Caller) InFamily(familyID string) bool {
	return c.IsAdmin() || (c.FamilyID != "" && c.FamilyID == familyID)
}

// requireParentOf allows the family's parents and admins
func (c Caller) requireParentOf(familyID string) error {
	if !c.InFamily(familyID) {
		return ErrNotInFamily
	}
	if !c.IsAdmin() && c.Type != models.UserTypeParent {
		return ErrForbidden
	}
	return nil
}
