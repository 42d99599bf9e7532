package controllers

import (
	"coursetrack/backend/services"
	"coursetrack/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	Profile services.ProfileService
}

func NewUserController(svc *services.Services) *UserController {
	return &UserController{Profile: svc.Profile}
}

// GetProfile godoc
// @Summary Get user profile
// @Description Returns the caller's profile card with level and courses in progress
// @Tags users
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /users/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return utils.FromError(c, err)
	}

	profile, err := uc.Profile.GetProfile(c.UserContext(), userID)
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.OK(c, profile)
}

// GetLeaderboard godoc
// @Summary Leaderboard
// @Description Top learners by XP; learners without XP are not listed
// @Tags users
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /leaderboard [get]
func (uc *UserController) GetLeaderboard(c *fiber.Ctx) error {
	board, err := uc.Profile.GetLeaderboard(c.UserContext())
	if err != nil {
		return utils.FromError(c, err)
	}
	return utils.OK(c, board)
}
