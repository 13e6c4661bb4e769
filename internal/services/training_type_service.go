package services

import (
	"context"
	"fmt"

	"gym/internal/models"
	"gym/internal/repositories"
	"gym/pkg/logger"
)

// DefaultTrainingTypes are seeded into an empty training type table.
var DefaultTrainingTypes = []string{"Yoga", "Fitness", "Zumba", "Stretching", "Resistance", "Cardio"}

// TrainingTypeService handles the read-only training type lookup.
type TrainingTypeService struct {
	repo repositories.Repository
	log  logger.Logger
}

// NewTrainingTypeService creates a new TrainingTypeService.
func NewTrainingTypeService(repo repositories.Repository, log logger.Logger) *TrainingTypeService {
	return &TrainingTypeService{
		repo: repo,
		log:  log,
	}
}

// ListTrainingTypes retrieves all training types.
func (s *TrainingTypeService) ListTrainingTypes(ctx context.Context) ([]models.TrainingType, error) {
	return s.repo.ListTrainingTypes(ctx)
}

// SeedDefaults inserts names when no training type exists yet.
func (s *TrainingTypeService) SeedDefaults(ctx context.Context, names []string) error {
	return s.repo.Transaction(ctx, func(tx repositories.Repository) error {
		existing, err := tx.ListTrainingTypes(ctx)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return nil
		}
		for _, name := range names {
			if err := tx.CreateTrainingType(ctx, &models.TrainingType{Name: name}); err != nil {
				return fmt.Errorf("failed to seed training type %s: %w", name, err)
			}
			s.log.Info("seeded training type", "name", name)
		}
		return nil
	})
}
