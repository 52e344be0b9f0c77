package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/prediction-pool/models"
	"github.com/Dosada05/prediction-pool/repositories"
)

type MatchService interface {
	List(ctx context.Context, stage *string) ([]models.MatchView, error)
	GetByID(ctx context.Context, id int) (*models.MatchView, error)
}

type matchService struct {
	repo repositories.MatchRepository
}

func NewMatchService(repo repositories.MatchRepository) MatchService {
	return &matchService{repo: repo}
}

func (s *matchService) List(ctx context.Context, stage *string) ([]models.MatchView, error) {
	if stage != nil && *stage == "" {
		stage = nil
	}
	matches, err := s.repo.ListViews(ctx, stage)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return matches, nil
}

func (s *matchService) GetByID(ctx context.Context, id int) (*models.MatchView, error) {
	match, err := s.repo.GetView(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", id, err)
	}
	return match, nil
}
