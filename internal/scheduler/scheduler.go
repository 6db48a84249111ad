package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/restockd/restock/internal/config"
	"github.com/restockd/restock/internal/domain/models"
	"github.com/restockd/restock/internal/service/recommend"
	"github.com/restockd/restock/pkg/clients/webhook"
)

// Recommender runs the recommendation pipeline for one user.
type Recommender interface {
	Recommend(ctx context.Context, username string) (models.RecommendationResult, error)
}

// UserLister enumerates users with item history.
type UserLister interface {
	DistinctUsernames(ctx context.Context) ([]string, error)
}

// Scheduler refreshes every user's recommendations on a cron schedule so
// predicted consumption dates and shopping lists stay current.
type Scheduler struct {
	cron        *cron.Cron
	recommender Recommender
	users       UserLister
	notifier    webhook.Client
	cfg         config.Config
	logger      *zap.Logger
}

// NewScheduler creates a new scheduler instance. A nil notifier disables
// webhook notifications.
func NewScheduler(cfg config.Config, location *time.Location, recommender Recommender, users UserLister, notifier webhook.Client, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.Local
	}

	return &Scheduler{
		cron:        cron.New(cron.WithLocation(location)),
		recommender: recommender,
		users:       users,
		notifier:    notifier,
		cfg:         cfg,
		logger:      logger,
	}
}

// Start registers the refresh job and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.Scheduler.CronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.Scheduler.CronSchedule, s.refreshRecommendations); err != nil {
		s.logger.Error("failed to schedule recommendation refresh", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) refreshRecommendations() {
	s.logger.Info("refreshing recommendations")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	usernames, err := s.users.DistinctUsernames(ctx)
	if err != nil {
		s.logger.Error("failed to list users for refresh", zap.Error(err))
		return
	}

	refreshed := 0
	for _, username := range usernames {
		result, err := s.recommender.Recommend(ctx, username)
		if errors.Is(err, recommend.ErrNoUserHistory) {
			continue
		}
		if err != nil {
			s.logger.Error("recommendation refresh failed",
				zap.String("username", username), zap.Error(err))
			continue
		}
		refreshed++

		if s.notifier == nil {
			continue
		}
		notification := webhook.Notification{
			Username:       username,
			TotalItems:     result.ShoppingList.TotalItems,
			EstimatedTotal: result.ShoppingList.EstimatedTotal,
			GeneratedAt:    result.ShoppingList.UpdatedAt,
		}
		if err := s.notifier.NotifyListReady(ctx, notification); err != nil {
			s.logger.Error("failed to notify refreshed list",
				zap.String("username", username), zap.Error(err))
		}
	}

	s.logger.Info("recommendation refresh completed",
		zap.Int("users", len(usernames)),
		zap.Int("refreshed", refreshed))
}
