package models

import "time"

// AccessGroup represents a group of profiles with specific access rights.
// It maps external authentication groups (directory groups, affiliations)
// to local memberships.
type AccessGroup struct {
	// ID is the unique identifier for the access group.
	ID uint `gorm:"primaryKey"`
	// Code is the stable unique key used for reconciliation
	// (e.g. a directory group name or an affiliation).
	Code string `gorm:"size:250;uniqueIndex;not null"`
	// DisplayName is the readable name of the group.
	DisplayName string `gorm:"size:128"`
	// AutoSync marks groups whose membership is entirely owned by the
	// population engine and recomputed on every login. Manually managed
	// groups leave this false and are never touched by population.
	AutoSync bool
	// Sites accessible by this group.
	Sites []Site `gorm:"many2many:access_group_sites"`
	// CreatedAt is the timestamp when the group was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the group was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the AccessGroup model.
func (AccessGroup) TableName() string {
	return "access_groups"
}
