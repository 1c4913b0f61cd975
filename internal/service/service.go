package service

import (
	"github.com/sirupsen/logrus"

	"github.com/fraudsight/transaction-service/internal/cache"
	"github.com/fraudsight/transaction-service/internal/config"
	"github.com/fraudsight/transaction-service/internal/repository"
)

// Service handles business logic
type Service struct {
	transactions repository.TransactionRepository
	users        repository.UserRepository
	cache        *cache.Coordinator
	log          *logrus.Logger
	config       *config.Config
}

// NewService initializes a new service
func NewService(
	transactions repository.TransactionRepository,
	users repository.UserRepository,
	cacheCoord *cache.Coordinator,
	log *logrus.Logger,
	cfg *config.Config,
) *Service {
	return &Service{
		transactions: transactions,
		users:        users,
		cache:        cacheCoord,
		log:          log,
		config:       cfg,
	}
}
