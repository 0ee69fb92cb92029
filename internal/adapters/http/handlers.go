package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/seismeta/internal/core/domain"
)

// HeadersHandler returns the volume headers registered for an sdpath.
func HeadersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sdpath := c.Query("sdpath")
		if sdpath == "" {
			return errBadRequest(c, "sdpath query parameter is required")
		}

		survey, err := deps.Surveys.GetBySDPath(c.UserContext(), sdpath)
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(domain.HeadersOf(survey))
	}
}

// BinGridHandler returns the bin grid of a registered survey.
func BinGridHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sdpath := c.Query("sdpath")
		if sdpath == "" {
			return errBadRequest(c, "sdpath query parameter is required")
		}

		grid, err := deps.BinGrids.DeriveForSurvey(c.UserContext(), sdpath)
		if err != nil {
			LoggerFromCtx(c.UserContext()).Warn("bin grid derivation failed", "sdpath", sdpath, "error", err)
			return errFrom(c, err)
		}
		return sendBinGrid(c, grid)
	}
}

// DeriveBinGridHandler computes the bin grid of a geometry posted in the
// request body without registering it.
func DeriveBinGridHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var g domain.VolumeGeometry
		if err := c.BodyParser(&g); err != nil {
			return errBadRequest(c, "invalid geometry: "+err.Error())
		}

		grid, err := deps.BinGrids.Derive(c.UserContext(), g)
		if err != nil {
			return errFrom(c, err)
		}
		return sendBinGrid(c, grid)
	}
}

// sendBinGrid writes the grid as two-space indented JSON.
func sendBinGrid(c *fiber.Ctx, grid domain.BinGrid) error {
	body, err := grid.Indent()
	if err != nil {
		return errInternal(c, err.Error())
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}

// RegisterSurveyHandler stores a survey and its geometry.
func RegisterSurveyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var s domain.Survey
		if err := c.BodyParser(&s); err != nil {
			return errBadRequest(c, "invalid survey: "+err.Error())
		}

		if err := deps.Surveys.Register(c.UserContext(), &s); err != nil {
			return errFrom(c, err)
		}

		LoggerFromCtx(c.UserContext()).Info("survey registered", "sdpath", s.SDPath, "id", s.ID)
		return c.Status(fiber.StatusCreated).JSON(s)
	}
}

// ListSurveysHandler returns registered surveys with offset/limit pagination.
func ListSurveysHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		surveys, err := deps.Surveys.List(c.UserContext())
		if err != nil {
			return errInternal(c, err.Error())
		}

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 100)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 100
		}

		total := len(surveys)
		if offset >= total {
			surveys = []domain.Survey{}
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			surveys = surveys[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: surveys, Pagination: pg})
	}
}
