package handlers

import (
	"gym/internal/middleware"
	"gym/internal/models"
	"gym/internal/services"
	"gym/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// TrainingHandler handles HTTP requests for trainings.
type TrainingHandler struct {
	service  *services.TrainingService
	validate *validator.Validate
	log      logger.Logger
}

// NewTrainingHandler creates a new TrainingHandler.
func NewTrainingHandler(service *services.TrainingService, log logger.Logger) *TrainingHandler {
	return &TrainingHandler{
		service:  service,
		validate: NewValidator(),
		log:      log,
	}
}

// RegisterRoutes registers the training routes.
func (h *TrainingHandler) RegisterRoutes(router fiber.Router, sessionRequired fiber.Handler) {
	trainingRoutes := router.Group("/trainings")
	trainingRoutes.Post("/", sessionRequired, h.HandleCreateTraining)
}

// HandleCreateTraining records a training. The caller must be its trainee or its trainer.
func (h *TrainingHandler) HandleCreateTraining(c *fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	log := logger.FromContext(ctx, h.log)

	var req TrainingRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, log, "Could not create training", err)
	}
	if principal := middleware.Username(c); principal != req.TraineeUsername && principal != req.TrainerUsername {
		return respondError(c, log, "Could not create training", errForbidden)
	}
	date, err := parseDate(req.TrainingDate)
	if err != nil {
		return respondError(c, log, "Could not create training", badBody(err))
	}

	training, err := h.service.CreateTraining(ctx, services.CreateTrainingInput{
		TraineeUsername: req.TraineeUsername,
		TrainerUsername: req.TrainerUsername,
		Name:            req.TrainingName,
		Date:            date,
		Duration:        req.TrainingDuration,
	})
	if err != nil {
		return respondError(c, log, "Could not create training", err)
	}

	resp := trainingResponses([]models.Training{*training}, trainerOf)[0]
	return c.Status(fiber.StatusCreated).JSON(resp)
}
