package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"phoneapi/internal/hateoas"
	"phoneapi/internal/model"
	"phoneapi/internal/service"
)

// writeServiceError translates service errors into the standardized error payload.
func writeServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "phone not found")
	case errors.Is(err, service.ErrNameRequired):
		return writeError(c, fiber.StatusBadRequest, "VALIDATION_FAILED", "phoneName is required")
	case errors.Is(err, service.ErrNameTaken):
		return writeError(c, fiber.StatusConflict, "CONFLICT", "phoneName already in use")
	case errors.Is(err, service.ErrSnapshotsDisabled):
		return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "snapshots are not configured")
	case errors.Is(err, service.ErrSnapshotNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "snapshot not found")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

func parseID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	return id, err == nil
}

// ListPhones godoc
// @Summary List phones
// @Description Returns every phone; phoneName narrows the result to that exact name.
// @Tags phones
// @Produce json
// @Param phoneName query string false "exact phone name"
// @Success 200 {object} hateoas.PhoneCollection
// @Failure 500 {object} errorPayload
// @Router /api/v1/phones [get]
func ListPhones(svc service.PhoneService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var (
			phones []model.Phone
			err    error
		)
		if name := c.Query("phoneName"); name != "" {
			var p *model.Phone
			p, err = svc.FindByName(c.UserContext(), name)
			switch {
			case err == nil:
				phones = []model.Phone{*p}
			case errors.Is(err, service.ErrNotFound):
				err = nil
			}
		} else {
			phones, err = svc.List(c.UserContext())
		}
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(hateoas.ToCollection(c.BaseURL(), phones))
	}
}

// GetPhone godoc
// @Summary Get a phone
// @Tags phones
// @Produce json
// @Param id path int true "phone id"
// @Success 200 {object} hateoas.PhoneModel
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/v1/phones/{id} [get]
func GetPhone(svc service.PhoneService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		p, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(hateoas.ToModel(c.BaseURL(), *p))
	}
}

// CreatePhone godoc
// @Summary Create a phone
// @Description The store assigns the id; brandId defaults to 0.
// @Tags phones
// @Accept json
// @Produce json
// @Param phone body model.PhoneInput true "phone"
// @Success 201 {object} hateoas.PhoneModel
// @Failure 400 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Router /api/v1/phones [post]
func CreatePhone(svc service.PhoneService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in model.PhoneInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be a JSON phone")
		}
		p, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		res := hateoas.ToModel(c.BaseURL(), *p)
		c.Location(res.Links.Self.Href)
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// ReplacePhone godoc
// @Summary Replace a phone
// @Description Overwrites phoneName and brandId; a missing brandId becomes 0.
// @Tags phones
// @Accept json
// @Produce json
// @Param id path int true "phone id"
// @Param phone body model.PhoneInput true "phone"
// @Success 200 {object} hateoas.PhoneModel
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Router /api/v1/phones/{id} [put]
func ReplacePhone(svc service.PhoneService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var in model.PhoneInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be a JSON phone")
		}
		p, err := svc.Replace(c.UserContext(), id, in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(hateoas.ToModel(c.BaseURL(), *p))
	}
}

// PatchPhone godoc
// @Summary Partially update a phone
// @Description Only fields present in the body are changed.
// @Tags phones
// @Accept json
// @Produce json
// @Param id path int true "phone id"
// @Param phone body model.PhoneInput true "fields to change"
// @Success 200 {object} hateoas.PhoneModel
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Router /api/v1/phones/{id} [patch]
func PatchPhone(svc service.PhoneService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var patch model.PhonePatch
		if err := c.BodyParser(&patch); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be a JSON phone")
		}
		p, err := svc.Patch(c.UserContext(), id, patch)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(hateoas.ToModel(c.BaseURL(), *p))
	}
}

// DeletePhone godoc
// @Summary Delete a phone
// @Tags phones
// @Param id path int true "phone id"
// @Success 200
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/v1/phones/{id} [delete]
func DeletePhone(svc service.PhoneService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusOK)
	}
}

// CreateSnapshot godoc
// @Summary Export the catalog
// @Description Writes every phone as JSON to object storage and returns a temporary download URL.
// @Tags snapshots
// @Produce json
// @Success 201 {object} service.SnapshotResult
// @Failure 503 {object} errorPayload
// @Router /api/v1/phones/snapshots [post]
func CreateSnapshot(svc service.PhoneService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.Snapshot(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// GetSnapshot godoc
// @Summary Download a catalog snapshot
// @Tags snapshots
// @Produce json
// @Param name path string true "snapshot name"
// @Success 200 {array} model.Phone
// @Failure 404 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Router /api/v1/phones/snapshots/{name} [get]
func GetSnapshot(svc service.PhoneService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rc, info, err := svc.OpenSnapshot(c.UserContext(), c.Params("name"))
		if err != nil {
			return writeServiceError(c, err)
		}
		if info.ContentType != "" {
			c.Set(fiber.HeaderContentType, info.ContentType)
		}
		size := -1
		if info.Size > 0 {
			size = int(info.Size)
		}
		return c.SendStream(rc, size)
	}
}
