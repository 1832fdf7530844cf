package server

import (
	"io"
	"strconv"
	"strings"

	"propnest/internal/models"
	"propnest/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// GetProperties returns listings newest first with limit/offset pagination.
func (s *Server) GetProperties(c *fiber.Ctx) error {
	p := parsePagination(c, service.DefaultListingPageSize)

	properties, err := s.listingService.List(c.UserContext(), p.Limit, p.Offset)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	if properties == nil {
		properties = []*models.Property{}
	}
	return c.JSON(properties)
}

// GetProperty returns one listing with its images.
func (s *Server) GetProperty(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	property, err := s.listingService.Get(c.UserContext(), id)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(property)
}

// CreateProperty accepts a multipart form with listing fields plus
// repeated "images" file parts. The listing and all its images persist
// together or not at all.
func (s *Server) CreateProperty(c *fiber.Ctx) error {
	bedrooms, ok := parseFormInt(c, "bedrooms")
	if !ok {
		return nil
	}
	bathrooms, ok := parseFormInt(c, "bathrooms")
	if !ok {
		return nil
	}

	in := service.CreateListingInput{
		Title:        c.FormValue("title"),
		Description:  c.FormValue("description"),
		Location:     c.FormValue("location"),
		PropertyType: c.FormValue("property_type"),
		Price:        c.FormValue("price"),
		Bedrooms:     bedrooms,
		Bathrooms:    bathrooms,
	}

	if form, err := c.MultipartForm(); err == nil && form != nil {
		for _, fh := range form.File["images"] {
			f, err := fh.Open()
			if err != nil {
				return models.RespondWithError(c, fiber.StatusBadRequest,
					models.NewValidationError("Unreadable image upload"))
			}
			content, err := io.ReadAll(f)
			_ = f.Close()
			if err != nil {
				return models.RespondWithError(c, fiber.StatusBadRequest,
					models.NewValidationError("Unreadable image upload"))
			}
			in.Images = append(in.Images, service.ImageUpload{
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Content:     content,
			})
		}
	}

	property, err := s.listingService.Create(c.UserContext(), in)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(property)
}

type updatePropertyRequest struct {
	Title        *string          `json:"title"`
	Description  *string          `json:"description"`
	Location     *string          `json:"location"`
	PropertyType *string          `json:"property_type"`
	Price        *decimal.Decimal `json:"price"`
	Bedrooms     *int             `json:"bedrooms"`
	Bathrooms    *int             `json:"bathrooms"`
}

// UpdateProperty applies a full or partial update; absent fields keep
// their stored values, present zero values overwrite.
func (s *Server) UpdateProperty(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	var req updatePropertyRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	in := service.UpdateListingInput{
		Title:        req.Title,
		Description:  req.Description,
		Location:     req.Location,
		PropertyType: req.PropertyType,
		Bedrooms:     req.Bedrooms,
		Bathrooms:    req.Bathrooms,
	}
	if req.Price != nil {
		price := req.Price.String()
		in.Price = &price
	}

	property, err := s.listingService.Update(c.UserContext(), id, in)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(property)
}

// DeleteProperty removes a listing, its image rows and stored files.
func (s *Server) DeleteProperty(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	if err := s.listingService.Delete(c.UserContext(), id); err != nil {
		return s.respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// parseFormInt reads an optional integer form field. A response is
// already written when ok is false.
func parseFormInt(c *fiber.Ctx, field string) (int, bool) {
	raw := strings.TrimSpace(c.FormValue(field))
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+field))
		return 0, false
	}
	return v, true
}
