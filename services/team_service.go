package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/prediction-pool/models"
	"github.com/Dosada05/prediction-pool/repositories"
)

type TeamService interface {
	List(ctx context.Context, groupLetter string) ([]models.Team, error)
	GetByID(ctx context.Context, id int) (*models.Team, error)
}

type teamService struct {
	teamRepo repositories.TeamRepository
}

func NewTeamService(teamRepo repositories.TeamRepository) TeamService {
	return &teamService{teamRepo: teamRepo}
}

func (s *teamService) List(ctx context.Context, groupLetter string) ([]models.Team, error) {
	groupLetter = strings.ToUpper(strings.TrimSpace(groupLetter))
	if groupLetter == "" {
		return s.teamRepo.List(ctx, nil)
	}
	if len(groupLetter) != 1 || groupLetter[0] < 'A' || groupLetter[0] > 'Z' {
		return nil, validationError("group must be a single letter, got %q", groupLetter)
	}
	return s.teamRepo.List(ctx, &groupLetter)
}

func (s *teamService) GetByID(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, fmt.Errorf("%w: team %d", ErrNotFound, id)
		}
		return nil, err
	}
	return team, nil
}
