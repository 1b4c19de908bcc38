// Package accessgroup provides CRUD and membership operations for access groups.
package accessgroup

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/GoCampusAuth/GoCampusAuth/internal/db/models"
)

var (
	// ErrGroupNotFound is returned when an access group with the given code does not exist.
	ErrGroupNotFound = errors.New("access group not found")
	// ErrGroupCodeEmpty is returned when an empty code is given.
	ErrGroupCodeEmpty = errors.New("access group code cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// GetByCode retrieves an access group by its unique code.
func GetByCode(db *gorm.DB, code string) (*models.AccessGroup, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if code == "" {
		return nil, ErrGroupCodeEmpty
	}

	var group models.AccessGroup

	result := db.Where("code = ?", code).First(&group)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}

		return nil, result.Error
	}

	return &group, nil
}

// GetOrCreate retrieves the access group with the given code, creating it if
// it does not exist. New groups get the code as display name, auto_sync set
// and the given site attached.
//
// Concurrent callers racing on the same new code are arbitrated by the unique
// constraint on code: the losing insert retries as a lookup, so exactly one
// row ever exists per code.
func GetOrCreate(db *gorm.DB, code string, siteID uint) (*models.AccessGroup, bool, error) {
	group, err := GetByCode(db, code)
	if err == nil {
		return group, false, nil
	}

	if !errors.Is(err, ErrGroupNotFound) {
		return nil, false, err
	}

	created := models.AccessGroup{
		Code:        code,
		DisplayName: code,
		AutoSync:    true,
	}

	if err = db.Create(&created).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// lost the race, the row exists now
			group, err = GetByCode(db, code)
			if err != nil {
				return nil, false, err
			}

			return group, false, nil
		}

		return nil, false, fmt.Errorf("failed to create access group %s: %w", code, err)
	}

	if siteID != 0 {
		if err = attachSite(db, &created, siteID); err != nil {
			return nil, false, err
		}
	}

	return &created, true, nil
}

// attachSite links the group to a site. Appending an existing link is a no-op.
func attachSite(db *gorm.DB, group *models.AccessGroup, siteID uint) error {
	err := db.Model(group).Association("Sites").Append(&models.Site{ID: siteID})
	if err != nil {
		return fmt.Errorf("failed to attach site to access group %s: %w", group.Code, err)
	}

	return nil
}

// Grant links the group to the profile. Granting an already-held group is a no-op.
func Grant(db *gorm.DB, profile *models.Profile, group *models.AccessGroup) error {
	err := db.Model(profile).Association("AccessGroups").Append(group)
	if err != nil {
		return fmt.Errorf("failed to grant access group %s: %w", group.Code, err)
	}

	return nil
}

// Revoke removes the group from the profile.
func Revoke(db *gorm.DB, profile *models.Profile, group *models.AccessGroup) error {
	err := db.Model(profile).Association("AccessGroups").Delete(group)
	if err != nil {
		return fmt.Errorf("failed to revoke access group %s: %w", group.Code, err)
	}

	return nil
}

// HeldGroups returns all access groups currently linked to the profile.
func HeldGroups(db *gorm.DB, profile *models.Profile) ([]models.AccessGroup, error) {
	var groups []models.AccessGroup

	err := db.Table("access_groups").
		Joins("JOIN profile_access_groups ON profile_access_groups.access_group_id = access_groups.id").
		Where("profile_access_groups.profile_id = ?", profile.ID).
		Find(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load profile access groups: %w", err)
	}

	return groups, nil
}

// RevokeAutoSync removes every auto-sync group currently held by the profile
// and returns the revoked set. Manually assigned (non auto-sync) memberships
// are left untouched.
func RevokeAutoSync(db *gorm.DB, profile *models.Profile) ([]models.AccessGroup, error) {
	var groups []models.AccessGroup

	err := db.Table("access_groups").
		Joins("JOIN profile_access_groups ON profile_access_groups.access_group_id = access_groups.id").
		Where("profile_access_groups.profile_id = ? AND access_groups.auto_sync = ?", profile.ID, true).
		Find(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load auto-sync groups: %w", err)
	}

	if len(groups) == 0 {
		return nil, nil
	}

	if err = db.Model(profile).Association("AccessGroups").Delete(&groups); err != nil {
		return nil, fmt.Errorf("failed to revoke auto-sync groups: %w", err)
	}

	return groups, nil
}
