package services

import (
	"context"
	"fmt"

	"github.com/Dosada05/prediction-pool/models"
	"github.com/Dosada05/prediction-pool/repositories"
	"github.com/Dosada05/prediction-pool/scoring"
)

type PrizePoolService interface {
	Get(ctx context.Context) (*models.PrizePool, error)
}

type prizePoolService struct {
	userRepo  repositories.UserRepository
	perPerson float64
}

func NewPrizePoolService(userRepo repositories.UserRepository, perPerson float64) PrizePoolService {
	if perPerson <= 0 {
		perPerson = scoring.DefaultPrizePerPerson
	}
	return &prizePoolService{userRepo: userRepo, perPerson: perPerson}
}

func (s *prizePoolService) Get(ctx context.Context) (*models.PrizePool, error) {
	count, err := s.userRepo.CountActiveParticipants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count participants: %w", err)
	}
	pool := scoring.PrizeBreakdown(count, s.perPerson)
	return &pool, nil
}
