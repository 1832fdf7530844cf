package server

import (
	"propnest/internal/models"
	"propnest/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetWishlist returns the caller's saved listings, newest first.
func (s *Server) GetWishlist(c *fiber.Ctx) error {
	p := parsePagination(c, service.DefaultListingPageSize)

	entries, err := s.wishlistService.List(c.UserContext(), s.callerUID(c), p.Limit, p.Offset)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	if entries == nil {
		entries = []*models.WishlistEntry{}
	}
	return c.JSON(entries)
}

type addWishlistRequest struct {
	PropertyID uint `json:"property_id"`
}

// AddToWishlist saves a listing for the caller. The owner always comes
// from the verified identity, never from the body.
func (s *Server) AddToWishlist(c *fiber.Ctx) error {
	var req addWishlistRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	entry, err := s.wishlistService.Add(c.UserContext(), s.callerUID(c), req.PropertyID)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// RemoveFromWishlist deletes the caller's own entry; another user's
// entry ids answer 404.
func (s *Server) RemoveFromWishlist(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	if err := s.wishlistService.Remove(c.UserContext(), s.callerUID(c), id); err != nil {
		return s.respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
