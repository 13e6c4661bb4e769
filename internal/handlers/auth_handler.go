package handlers

import (
	"gym/internal/middleware"
	"gym/internal/services"
	"gym/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for registration and authentication.
type AuthHandler struct {
	authService    *services.AuthService
	traineeService *services.TraineeService
	trainerService *services.TrainerService
	validate       *validator.Validate
	log            logger.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, traineeService *services.TraineeService, trainerService *services.TrainerService, log logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		traineeService: traineeService,
		trainerService: trainerService,
		validate:       NewValidator(),
		log:            log,
	}
}

// RegisterRoutes registers the authentication routes. sessionRequired guards
// the routes that need a logged in user.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, sessionRequired fiber.Handler) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/trainee/register", h.HandleRegisterTrainee)
	authRoutes.Post("/trainer/register", h.HandleRegisterTrainer)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/logout", sessionRequired, h.HandleLogout)
	authRoutes.Put("/change-password", sessionRequired, h.HandleChangePassword)
}

// HandleRegisterTrainee registers a trainee and returns its generated credentials.
func (h *AuthHandler) HandleRegisterTrainee(c *fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	log := logger.FromContext(ctx, h.log)

	var req TraineeRegistrationRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, log, "Registration failed", err)
	}
	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		return respondError(c, log, "Registration failed", badBody(err))
	}

	creds, err := h.traineeService.RegisterTrainee(ctx, services.RegisterTraineeInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: dob,
		Address:     req.Address,
	})
	if err != nil {
		return respondError(c, log, "Registration failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(creds)
}

// HandleRegisterTrainer registers a trainer and returns its generated credentials.
func (h *AuthHandler) HandleRegisterTrainer(c *fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	log := logger.FromContext(ctx, h.log)

	var req TrainerRegistrationRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, log, "Registration failed", err)
	}

	creds, err := h.trainerService.RegisterTrainer(ctx, services.RegisterTrainerInput{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		SpecializationID: req.SpecializationID,
	})
	if err != nil {
		return respondError(c, log, "Registration failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(creds)
}

// HandleLogin handles user login and issues a session token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	log := logger.FromContext(ctx, h.log)

	var req LoginRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, log, "Authentication failed", err)
	}

	token, err := h.authService.Login(ctx, req.Username, req.Password)
	if err != nil {
		return respondError(c, log, "Authentication failed", err)
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
	})
}

// HandleLogout ends the session of the presented token.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	token, _ := c.Locals(middleware.LocalToken).(string)

	if err := h.authService.Logout(ctx, token); err != nil {
		return respondError(c, logger.FromContext(ctx, h.log), "Logout failed", err)
	}
	return c.JSON(fiber.Map{
		"message": "Logout successful",
	})
}

// HandleChangePassword changes the password of the authenticated user and
// ends all of its sessions.
func (h *AuthHandler) HandleChangePassword(c *fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	log := logger.FromContext(ctx, h.log)

	var req ChangePasswordRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, log, "Password change failed", err)
	}
	if req.Username != middleware.Username(c) {
		return respondError(c, log, "Password change failed", errForbidden)
	}

	if err := h.authService.ChangePassword(ctx, req.Username, req.OldPassword, req.NewPassword); err != nil {
		return respondError(c, log, "Password change failed", err)
	}
	return c.JSON(fiber.Map{
		"message": "Password changed successfully",
	})
}
