// FILE: internal/controller/navigation_controller.go
package controller

import (
	"errors"

	"workshop-app-be/internal/catalog"
	"workshop-app-be/internal/dto"
	"workshop-app-be/internal/pkg/serverutils"
	"workshop-app-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type INavigationController interface {
	RegisterRoutes(r fiber.Router)
	GetLayout(ctx *fiber.Ctx) error
	GetNavigation(ctx *fiber.Ctx) error
}

type navigationController struct {
	service service.INavigationService
}

func NewNavigationController(service service.INavigationService) INavigationController {
	return &navigationController{service: service}
}

func (c *navigationController) RegisterRoutes(r fiber.Router) {
	r.Get("/layout", c.GetLayout)
	r.Get("/navigation", c.GetNavigation)
}

// catalogError maps an unreachable catalog to 503 and anything else to 500.
func catalogError(ctx *fiber.Ctx, err error) error {
	if errors.Is(err, catalog.ErrCatalogUnavailable) {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(serverutils.ErrorResponse(fiber.StatusServiceUnavailable, "Workshop content unavailable"))
	}
	return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(fiber.StatusInternalServerError, err.Error()))
}

func (c *navigationController) GetLayout(ctx *fiber.Ctx) error {
	res, err := c.service.GetLayout(ctx.UserContext())
	if err != nil {
		return catalogError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get layout", res))
}

func (c *navigationController) GetNavigation(ctx *fiber.Ctx) error {
	var req dto.NavigationRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.GetNavigation(ctx.UserContext(), &req, serverutils.CurrentUser(ctx))
	if err != nil {
		return catalogError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get navigation", res))
}
