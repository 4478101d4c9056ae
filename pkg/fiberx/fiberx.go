package fiberx

import (
	"errors"

	"github.com/Abraxas-365/talentdesk/pkg/errx"
	"github.com/Abraxas-365/talentdesk/pkg/kernel"
	"github.com/Abraxas-365/talentdesk/pkg/logx"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandler converts internal errors to standard HTTP responses
func ErrorHandler(c *fiber.Ctx, err error) error {
	// If it's a Fiber error (e.g., 404 handler not found)
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{
			"error":   fe.Message,
			"message": fe.Message,
			"code":    fe.Code,
		})
	}

	// If it's our custom errx.Error
	if e, ok := errx.As(err); ok {
		if e.HTTPStatus >= fiber.StatusInternalServerError {
			logx.Errorf("%s %s: %v", c.Method(), c.Path(), err)
		}
		return c.Status(e.HTTPStatus).JSON(e.ToHTTPResponse())
	}

	// Default unknown error
	logx.Errorf("Internal Server Error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   "Internal Server Error",
		"type":    "INTERNAL",
		"code":    "INTERNAL_ERROR",
		"message": "An unexpected error occurred",
	})
}

// Pagination reads ?page= and ?pageSize= (page_size is still honoured)
func Pagination(c *fiber.Ctx) kernel.PaginationOptions {
	pageSize := c.QueryInt("pageSize", 0)
	if pageSize == 0 {
		pageSize = c.QueryInt("page_size", kernel.DefaultPageSize)
	}

	return kernel.PaginationOptions{
		Page:     c.QueryInt("page", 1),
		PageSize: pageSize,
	}.Normalize()
}
