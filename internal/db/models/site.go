// Package models contains database model definitions.
package models

import "time"

// Site represents one site of a multi-site installation.
// Profiles and access groups created by the population engine are attached
// to the current site.
type Site struct {
	// ID is the unique identifier for the site.
	ID uint `gorm:"primaryKey"`
	// Domain is the unique domain name of the site.
	Domain string `gorm:"size:100;uniqueIndex;not null"`
	// Name is the readable site name.
	Name string `gorm:"size:100"`
	// CreatedAt is the timestamp when the site was created (managed by GORM).
	CreatedAt time.Time
}

// TableName specifies the database table name for the Site model.
func (Site) TableName() string {
	return "sites"
}
