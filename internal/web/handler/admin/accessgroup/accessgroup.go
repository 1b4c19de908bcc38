// Package accessgroup provides the administrative access group API.
package accessgroup

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	groupctl "github.com/GoCampusAuth/GoCampusAuth/internal/db/controller/accessgroup"
	"github.com/GoCampusAuth/GoCampusAuth/internal/db/models"
	"github.com/GoCampusAuth/GoCampusAuth/internal/web/handler"
	authmw "github.com/GoCampusAuth/GoCampusAuth/internal/web/middleware/auth"
)

// Path is the access group administration route group.
const Path = "/api/admin/accessgroups"

// Service is the access group admin handler service.
type Service struct {
	handler.Service
	deps      *handler.Deps
	validator *validator.Validate
}

// Handler is the access group admin handler.
var Handler = Service{}

type groupInput struct {
	Code        string `json:"code" validate:"required,max=250"`
	DisplayName string `json:"display_name" validate:"max=128"`
	AutoSync    bool   `json:"auto_sync"`
}

type updateInput struct {
	DisplayName *string `json:"display_name" validate:"omitempty,max=128"`
	AutoSync    *bool   `json:"auto_sync"`
}

type membersInput struct {
	Usernames []string `json:"usernames" validate:"required,min=1"`
}

type groupOutput struct {
	Code        string   `json:"code"`
	DisplayName string   `json:"display_name"`
	AutoSync    bool     `json:"auto_sync"`
	Members     []string `json:"members,omitempty"`
	Skipped     []string `json:"skipped,omitempty"`
}

// Init initializes the access group admin handler. All routes require a valid
// access token with the staff flag.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil {
		return errors.New(handler.ErrNilADFatalLogMsg)
	}

	s.deps = deps
	s.validator = validator.New()

	app.Route(Path, func(router fiber.Router) {
		router.Use(authmw.New(deps.Issuer), authmw.RequireStaff())

		router.Get(handler.RootPath, s.List)
		router.Post(handler.RootPath, s.Create)
		router.Get("/:code", s.Get)
		router.Put("/:code", s.Update)
		router.Delete("/:code", s.Delete)
		router.Post("/:code/accounts", s.AddAccounts)
		router.Delete("/:code/accounts", s.RemoveAccounts)
	})

	return nil
}

// List answers all access groups, optionally filtered by a code substring.
func (s *Service) List(c *fiber.Ctx) error {
	var groups []models.AccessGroup

	query := s.deps.DB.Order("code")
	if search := c.Query("q"); search != "" {
		query = query.Where("code LIKE ?", "%"+search+"%")
	}

	if err := query.Find(&groups).Error; err != nil {
		log.Error().Err(err).Msg("failed to list access groups")

		return handler.Error(c, fiber.StatusInternalServerError, "internal server error")
	}

	out := make([]groupOutput, 0, len(groups))
	for i := range groups {
		out = append(out, toOutput(&groups[i], nil, nil))
	}

	return c.JSON(out)
}

// Create adds a new access group.
func (s *Service) Create(c *fiber.Ctx) error {
	input := new(groupInput)
	if err := c.BodyParser(input); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := s.validator.Struct(input); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, err.Error())
	}

	group := models.AccessGroup{
		Code:        input.Code,
		DisplayName: input.DisplayName,
		AutoSync:    input.AutoSync,
	}
	if group.DisplayName == "" {
		group.DisplayName = group.Code
	}

	if err := s.deps.DB.Create(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return handler.Error(c, fiber.StatusConflict, "access group already exists")
		}

		log.Error().Err(err).Msg("failed to create access group")

		return handler.Error(c, fiber.StatusInternalServerError, "internal server error")
	}

	return c.Status(fiber.StatusCreated).JSON(toOutput(&group, nil, nil))
}

// Get answers one access group with its members.
func (s *Service) Get(c *fiber.Ctx) error {
	group, err := groupctl.GetByCode(s.deps.DB, c.Params("code"))
	if err != nil {
		return s.groupError(c, err)
	}

	members, err := groupctl.Members(s.deps.DB, group)
	if err != nil {
		log.Error().Err(err).Msg("failed to load group members")

		return handler.Error(c, fiber.StatusInternalServerError, "internal server error")
	}

	return c.JSON(toOutput(group, members, nil))
}

// Update changes the display name or auto-sync flag of a group.
func (s *Service) Update(c *fiber.Ctx) error {
	group, err := groupctl.GetByCode(s.deps.DB, c.Params("code"))
	if err != nil {
		return s.groupError(c, err)
	}

	input := new(updateInput)
	if err = c.BodyParser(input); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err = s.validator.Struct(input); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, err.Error())
	}

	if input.DisplayName != nil {
		group.DisplayName = *input.DisplayName
	}

	if input.AutoSync != nil {
		group.AutoSync = *input.AutoSync
	}

	if err = s.deps.DB.Save(group).Error; err != nil {
		log.Error().Err(err).Msg("failed to update access group")

		return handler.Error(c, fiber.StatusInternalServerError, "internal server error")
	}

	return c.JSON(toOutput(group, nil, nil))
}

// Delete removes a group and its membership edges.
func (s *Service) Delete(c *fiber.Ctx) error {
	group, err := groupctl.GetByCode(s.deps.DB, c.Params("code"))
	if err != nil {
		return s.groupError(c, err)
	}

	err = s.deps.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(group).Association("Sites").Clear(); err != nil {
			return err
		}

		if err := tx.Exec("DELETE FROM profile_access_groups WHERE access_group_id = ?", group.ID).Error; err != nil {
			return err
		}

		return tx.Delete(group).Error
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to delete access group")

		return handler.Error(c, fiber.StatusInternalServerError, "internal server error")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// AddAccounts grants the group to a batch of accounts by username.
// Unknown usernames are skipped and reported, not treated as errors.
func (s *Service) AddAccounts(c *fiber.Ctx) error {
	input := new(membersInput)
	if err := c.BodyParser(input); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := s.validator.Struct(input); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, err.Error())
	}

	group, skipped, err := groupctl.AddAccounts(s.deps.DB, c.Params("code"), input.Usernames)
	if err != nil {
		return s.groupError(c, err)
	}

	members, err := groupctl.Members(s.deps.DB, group)
	if err != nil {
		log.Error().Err(err).Msg("failed to load group members")

		return handler.Error(c, fiber.StatusInternalServerError, "internal server error")
	}

	return c.JSON(toOutput(group, members, skipped))
}

// RemoveAccounts revokes the group from a batch of accounts by username.
func (s *Service) RemoveAccounts(c *fiber.Ctx) error {
	input := new(membersInput)
	if err := c.BodyParser(input); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := s.validator.Struct(input); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, err.Error())
	}

	group, skipped, err := groupctl.RemoveAccounts(s.deps.DB, c.Params("code"), input.Usernames)
	if err != nil {
		return s.groupError(c, err)
	}

	members, err := groupctl.Members(s.deps.DB, group)
	if err != nil {
		log.Error().Err(err).Msg("failed to load group members")

		return handler.Error(c, fiber.StatusInternalServerError, "internal server error")
	}

	return c.JSON(toOutput(group, members, skipped))
}

func (s *Service) groupError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, groupctl.ErrGroupNotFound):
		return handler.Error(c, fiber.StatusNotFound, "access group not found")
	case errors.Is(err, groupctl.ErrGroupCodeEmpty):
		return handler.Error(c, fiber.StatusBadRequest, "access group code is required")
	default:
		log.Error().Err(err).Msg("access group operation failed")

		return handler.Error(c, fiber.StatusInternalServerError, "internal server error")
	}
}

func toOutput(group *models.AccessGroup, members, skipped []string) groupOutput {
	return groupOutput{
		Code:        group.Code,
		DisplayName: group.DisplayName,
		AutoSync:    group.AutoSync,
		Members:     members,
		Skipped:     skipped,
	}
}
