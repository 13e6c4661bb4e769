package handlers

import (
	"gym/internal/middleware"
	"gym/internal/services"
	"gym/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// TrainerHandler handles HTTP requests for trainer profiles.
type TrainerHandler struct {
	service  *services.TrainerService
	validate *validator.Validate
	log      logger.Logger
}

// NewTrainerHandler creates a new TrainerHandler.
func NewTrainerHandler(service *services.TrainerService, log logger.Logger) *TrainerHandler {
	return &TrainerHandler{
		service:  service,
		validate: NewValidator(),
		log:      log,
	}
}

// RegisterRoutes registers the trainer routes. Every route acts only on the
// authenticated trainer.
func (h *TrainerHandler) RegisterRoutes(router fiber.Router, sessionRequired fiber.Handler) {
	own := middleware.OwnerOnly("username")
	trainerRoutes := router.Group("/trainers")
	trainerRoutes.Get("/:username", sessionRequired, own, h.HandleGetProfile)
	trainerRoutes.Put("/:username", sessionRequired, own, h.HandleUpdateProfile)
	trainerRoutes.Patch("/:username/status", sessionRequired, own, h.HandleSetStatus)
	trainerRoutes.Get("/:username/trainings", sessionRequired, own, h.HandleListTrainings)
}

// HandleGetProfile returns the trainer profile with its trainees.
func (h *TrainerHandler) HandleGetProfile(c *fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	trainer, err := h.service.GetProfile(ctx, c.Params("username"))
	if err != nil {
		return respondError(c, logger.FromContext(ctx, h.log), "Could not retrieve trainer", err)
	}
	return c.JSON(trainerProfile(trainer))
}

// HandleUpdateProfile updates the trainer profile. A specialization in the
// body is ignored.
func (h *TrainerHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	log := logger.FromContext(ctx, h.log)

	var req TrainerUpdateRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, log, "Could not update trainer", err)
	}

	trainer, err := h.service.UpdateProfile(ctx, c.Params("username"), services.UpdateTrainerInput{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		SpecializationID: req.SpecializationID,
		IsActive:         *req.IsActive,
	})
	if err != nil {
		return respondError(c, log, "Could not update trainer", err)
	}
	return c.JSON(trainerProfile(trainer))
}

// HandleSetStatus activates or deactivates the trainer.
func (h *TrainerHandler) HandleSetStatus(c *fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	log := logger.FromContext(ctx, h.log)

	var req StatusRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, log, "Could not update trainer status", err)
	}
	if err := h.service.SetActive(ctx, c.Params("username"), *req.IsActive); err != nil {
		return respondError(c, log, "Could not update trainer status", err)
	}
	return c.JSON(fiber.Map{
		"message":  "Trainer status updated successfully",
		"isActive": *req.IsActive,
	})
}

// HandleListTrainings lists trainings of the trainer. Query parameters: from
// and to (YYYY-MM-DD).
func (h *TrainerHandler) HandleListTrainings(c *fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	log := logger.FromContext(ctx, h.log)

	from, err := parseDate(c.Query("from"))
	if err != nil {
		return respondError(c, log, "Could not retrieve trainings", badQuery("from", err))
	}
	to, err := parseDate(c.Query("to"))
	if err != nil {
		return respondError(c, log, "Could not retrieve trainings", badQuery("to", err))
	}

	trainings, err := h.service.ListTrainings(ctx, c.Params("username"), from, to)
	if err != nil {
		return respondError(c, log, "Could not retrieve trainings", err)
	}
	return c.JSON(trainingResponses(trainings, traineeOf))
}
