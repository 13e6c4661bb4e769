package handlers

import (
	"gym/internal/middleware"
	"gym/internal/services"
	"gym/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// TrainingTypeHandler serves the training type lookup.
type TrainingTypeHandler struct {
	service *services.TrainingTypeService
	log     logger.Logger
}

// NewTrainingTypeHandler creates a new TrainingTypeHandler.
func NewTrainingTypeHandler(service *services.TrainingTypeService, log logger.Logger) *TrainingTypeHandler {
	return &TrainingTypeHandler{
		service: service,
		log:     log,
	}
}

// RegisterRoutes registers the training type routes. They are public.
func (h *TrainingTypeHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/training-types", h.HandleListTrainingTypes)
}

// HandleListTrainingTypes retrieves all training types.
func (h *TrainingTypeHandler) HandleListTrainingTypes(c *fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	types, err := h.service.ListTrainingTypes(ctx)
	if err != nil {
		return respondError(c, logger.FromContext(ctx, h.log), "Could not retrieve training types", err)
	}
	return c.JSON(types)
}
