package server

import (
	"context"

	"propnest/internal/identity"
	"propnest/internal/middleware"
	"propnest/internal/models"

	"github.com/gofiber/fiber/v2"
)

// RequireAuth returns middleware that resolves the caller's identity.
// A missing or malformed Authorization header is plain "no credential"
// and gets the same 401 as an absent one; only a well-formed bearer
// token reaches the verifier. A provider outage is a 503, not a 401.
func (s *Server) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := identity.ExtractBearer(c.Get("Authorization"))
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		profile, err := s.profileService.Authenticate(c.UserContext(), token)
		if err != nil {
			return s.respondServiceError(c, err)
		}

		c.Locals("userUID", profile.UID)
		c.Locals("profile", profile)
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserUIDKey, profile.UID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// callerUID returns the verified uid set by RequireAuth.
func (s *Server) callerUID(c *fiber.Ctx) string {
	uid, _ := c.Locals("userUID").(string)
	return uid
}

// callerProfile returns the resolved profile set by RequireAuth.
func (s *Server) callerProfile(c *fiber.Ctx) *models.UserProfile {
	profile, _ := c.Locals("profile").(*models.UserProfile)
	return profile
}
