package accessgroup

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/GoCampusAuth/GoCampusAuth/internal/db/models"
)

// profileByUsername resolves the profile belonging to the account with the
// given username.
func profileByUsername(db *gorm.DB, username string) (*models.Profile, error) {
	var profile models.Profile

	err := db.Joins("JOIN accounts ON accounts.id = profiles.account_id").
		Where("accounts.username = ?", username).
		First(&profile).Error
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

// AddAccounts grants membership of the group identified by code to every
// account in usernames. Usernames without a matching account or profile are
// skipped and returned, they do not abort the batch.
func AddAccounts(db *gorm.DB, code string, usernames []string) (*models.AccessGroup, []string, error) {
	group, err := GetByCode(db, code)
	if err != nil {
		return nil, nil, err
	}

	var skipped []string

	for _, username := range usernames {
		profile, err := profileByUsername(db, username)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				skipped = append(skipped, username)

				continue
			}

			return nil, nil, fmt.Errorf("failed to resolve profile for %s: %w", username, err)
		}

		if err = Grant(db, profile, group); err != nil {
			return nil, nil, err
		}
	}

	return group, skipped, nil
}

// RemoveAccounts revokes membership of the group identified by code from
// every account in usernames. Unknown usernames are skipped and returned.
func RemoveAccounts(db *gorm.DB, code string, usernames []string) (*models.AccessGroup, []string, error) {
	group, err := GetByCode(db, code)
	if err != nil {
		return nil, nil, err
	}

	var skipped []string

	for _, username := range usernames {
		profile, err := profileByUsername(db, username)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				skipped = append(skipped, username)

				continue
			}

			return nil, nil, fmt.Errorf("failed to resolve profile for %s: %w", username, err)
		}

		if err = Revoke(db, profile, group); err != nil {
			return nil, nil, err
		}
	}

	return group, skipped, nil
}

// Members returns the usernames of all accounts whose profile holds the group.
func Members(db *gorm.DB, group *models.AccessGroup) ([]string, error) {
	var usernames []string

	err := db.Table("accounts").
		Joins("JOIN profiles ON profiles.account_id = accounts.id").
		Joins("JOIN profile_access_groups ON profile_access_groups.profile_id = profiles.id").
		Where("profile_access_groups.access_group_id = ?", group.ID).
		Order("accounts.username").
		Pluck("accounts.username", &usernames).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load group members: %w", err)
	}

	return usernames, nil
}
