package handlers

import (
	"gym/internal/middleware"
	"gym/internal/models"
	"gym/internal/services"
	"gym/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// TraineeHandler handles HTTP requests for trainee profiles.
type TraineeHandler struct {
	traineeService *services.TraineeService
	trainerService *services.TrainerService
	validate       *validator.Validate
	log            logger.Logger
}

// NewTraineeHandler creates a new TraineeHandler.
func NewTraineeHandler(traineeService *services.TraineeService, trainerService *services.TrainerService, log logger.Logger) *TraineeHandler {
	return &TraineeHandler{
		traineeService: traineeService,
		trainerService: trainerService,
		validate:       NewValidator(),
		log:            log,
	}
}

// RegisterRoutes registers the trainee routes. Every route acts only on the
// authenticated trainee.
func (h *TraineeHandler) RegisterRoutes(router fiber.Router, sessionRequired fiber.Handler) {
	own := middleware.OwnerOnly("username")
	traineeRoutes := router.Group("/trainees")
	traineeRoutes.Get("/:username", sessionRequired, own, h.HandleGetProfile)
	traineeRoutes.Put("/:username", sessionRequired, own, h.HandleUpdateProfile)
	traineeRoutes.Delete("/:username", sessionRequired, own, h.HandleDelete)
	traineeRoutes.Patch("/:username/status", sessionRequired, own, h.HandleSetStatus)
	traineeRoutes.Put("/:username/trainers", sessionRequired, own, h.HandleReplaceTrainers)
	traineeRoutes.Get("/:username/trainings", sessionRequired, own, h.HandleListTrainings)
	traineeRoutes.Get("/:username/unassigned-trainers", sessionRequired, own, h.HandleUnassignedTrainers)
}

// HandleGetProfile returns the trainee profile with its trainers.
func (h *TraineeHandler) HandleGetProfile(c *fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	trainee, err := h.traineeService.GetProfile(ctx, c.Params("username"))
	if err != nil {
		return respondError(c, logger.FromContext(ctx, h.log), "Could not retrieve trainee", err)
	}
	return c.JSON(traineeProfile(trainee))
}

// HandleUpdateProfile updates the trainee profile.
func (h *TraineeHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	log := logger.FromContext(ctx, h.log)

	var req TraineeUpdateRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, log, "Could not update trainee", err)
	}
	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		return respondError(c, log, "Could not update trainee", badBody(err))
	}

	trainee, err := h.traineeService.UpdateProfile(ctx, c.Params("username"), services.UpdateTraineeInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: dob,
		Address:     req.Address,
		IsActive:    *req.IsActive,
	})
	if err != nil {
		return respondError(c, log, "Could not update trainee", err)
	}
	return c.JSON(traineeProfile(trainee))
}

// HandleDelete deletes the trainee with its trainings.
func (h *TraineeHandler) HandleDelete(c *fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	username := c.Params("username")
	if err := h.traineeService.Delete(ctx, username); err != nil {
		return respondError(c, logger.FromContext(ctx, h.log), "Could not delete trainee", err)
	}
	return c.JSON(fiber.Map{
		"message": "Trainee " + username + " deleted successfully",
	})
}

// HandleSetStatus activates or deactivates the trainee.
func (h *TraineeHandler) HandleSetStatus(c *fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	log := logger.FromContext(ctx, h.log)

	var req StatusRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, log, "Could not update trainee status", err)
	}
	if err := h.traineeService.SetActive(ctx, c.Params("username"), *req.IsActive); err != nil {
		return respondError(c, log, "Could not update trainee status", err)
	}
	return c.JSON(fiber.Map{
		"message":  "Trainee status updated successfully",
		"isActive": *req.IsActive,
	})
}

// HandleReplaceTrainers replaces the trainer list of the trainee and returns
// the trainers actually linked.
func (h *TraineeHandler) HandleReplaceTrainers(c *fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	log := logger.FromContext(ctx, h.log)

	var req TrainerListRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, log, "Could not update trainers", err)
	}

	trainee, err := h.traineeService.ReplaceTrainers(ctx, c.Params("username"), req.TrainerUsernames)
	if err != nil {
		return respondError(c, log, "Could not update trainers", err)
	}
	return c.JSON(trainerSummaries(trainee.Trainers))
}

// HandleListTrainings lists trainings of the trainee. Query parameters: from,
// to (YYYY-MM-DD), trainerName and trainingType.
func (h *TraineeHandler) HandleListTrainings(c *fiber.Ctx) error {
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

	trainings, err := h.traineeService.ListTrainings(ctx, c.Params("username"), models.TrainingFilter{
		From:             from,
		To:               to,
		CounterpartyName: c.Query("trainerName"),
		TrainingTypeName: c.Query("trainingType"),
	})
	if err != nil {
		return respondError(c, log, "Could not retrieve trainings", err)
	}
	return c.JSON(trainingResponses(trainings, trainerOf))
}

// HandleUnassignedTrainers lists active trainers not yet linked to the trainee.
func (h *TraineeHandler) HandleUnassignedTrainers(c *fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	trainers, err := h.trainerService.FindUnassignedActive(ctx, c.Params("username"))
	if err != nil {
		return respondError(c, logger.FromContext(ctx, h.log), "Could not retrieve trainers", err)
	}
	return c.JSON(trainerSummaries(trainers))
}
