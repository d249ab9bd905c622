package handlers

import (
	"errors"
	"log"

	"itemvault/internal/middleware"
	"itemvault/internal/models"
	"itemvault/internal/repositories"
	"itemvault/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ItemHandler handles HTTP requests for items. All routes require the auth
// middleware to have stored the caller's user id.
type ItemHandler struct {
	service  *services.ItemService
	validate *validator.Validate
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(service *services.ItemService) *ItemHandler {
	return &ItemHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the item routes with the Fiber app.
func (h *ItemHandler) RegisterRoutes(router fiber.Router) {
	itemRoutes := router.Group("/items")
	itemRoutes.Post("/", h.HandleCreateItem)
	itemRoutes.Get("/", h.HandleListItems)
	itemRoutes.Get("/:id", h.HandleGetItem)
	itemRoutes.Put("/:id", h.HandleUpdateItem)
	itemRoutes.Delete("/:id", h.HandleDeleteItem)
}

// HandleCreateItem creates a new item owned by the caller.
func (h *ItemHandler) HandleCreateItem(c *fiber.Ctx) error {
	var req models.ItemCreateRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing create item request body: %v", err)
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	item, err := h.service.CreateItem(c.Context(), middleware.UserID(c), req.Title, req.Description)
	if err != nil {
		log.Printf("Error creating item: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create item",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(item.Out())
}

// HandleListItems lists the caller's items with skip/limit pagination.
func (h *ItemHandler) HandleListItems(c *fiber.Ctx) error {
	skip := c.QueryInt("skip", 0)
	limit := c.QueryInt("limit", 50)
	if skip < 0 {
		skip = 0
	}
	if limit < 0 {
		limit = 0
	}

	items, err := h.service.ListItems(c.Context(), middleware.UserID(c), int64(skip), int64(limit))
	if err != nil {
		log.Printf("Error listing items: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve items",
		})
	}

	out := make([]models.ItemOut, 0, len(items))
	for i := range items {
		out = append(out, items[i].Out())
	}
	return c.JSON(out)
}

// HandleGetItem retrieves a single item owned by the caller.
func (h *ItemHandler) HandleGetItem(c *fiber.Ctx) error {
	item, err := h.service.GetItem(c.Context(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return itemErrorResponse(c, err)
	}
	return c.JSON(item.Out())
}

// HandleUpdateItem applies a partial update to an item owned by the caller.
// Absent fields are left unchanged.
func (h *ItemHandler) HandleUpdateItem(c *fiber.Ctx) error {
	var req models.ItemUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing update item request body: %v", err)
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	patch := repositories.ItemPatch{
		Title:       req.Title,
		Description: req.Description,
	}
	item, err := h.service.UpdateItem(c.Context(), middleware.UserID(c), c.Params("id"), patch)
	if err != nil {
		return itemErrorResponse(c, err)
	}
	return c.JSON(item.Out())
}

// HandleDeleteItem removes an item owned by the caller.
func (h *ItemHandler) HandleDeleteItem(c *fiber.Ctx) error {
	if err := h.service.DeleteItem(c.Context(), middleware.UserID(c), c.Params("id")); err != nil {
		return itemErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"deleted": true})
}

// itemErrorResponse maps repository errors to status codes. A uniform 404
// hides whether the item exists under another owner.
func itemErrorResponse(c *fiber.Ctx, err error) error {
	if errors.Is(err, repositories.ErrItemNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Item not found",
		})
	}
	log.Printf("Item operation failed: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Item operation failed",
	})
}
