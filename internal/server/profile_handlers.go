package server

import (
	"propnest/internal/models"
	"propnest/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile returns the caller's profile. RequireAuth has already
// provisioned it, so this never 404s for a valid credential.
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	return c.JSON(s.callerProfile(c))
}

type updateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	PhotoURL    *string `json:"photo_url"`
}

// UpdateMyProfile applies a partial update to the caller's own profile.
// The uid is never updatable.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	profile, err := s.profileService.Update(c.UserContext(), s.callerUID(c), service.UpdateProfileInput{
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Phone:       req.Phone,
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(profile)
}
