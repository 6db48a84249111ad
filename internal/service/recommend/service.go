package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gertd/go-pluralize"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/restockd/restock/internal/domain/models"
	"github.com/restockd/restock/internal/service/forecast"
)

// ErrNoUserHistory indicates the user has no item records at all. The HTTP
// layer surfaces it as an informational response, not a failure.
var ErrNoUserHistory = errors.New("no item history for user")

// defaultCapacityUnit is assumed when neither recent consumption nor the
// catalog can resolve a unit.
const defaultCapacityUnit = "pcs"

// Store is the persistence collaborator surface the recommendation pipeline
// consumes. Name matching is case-insensitive exact, never substring.
type Store interface {
	FindItemsByUser(ctx context.Context, username string) ([]models.ItemRecord, error)
	FindConsumedItemsSince(ctx context.Context, username, itemName string, since time.Time) ([]models.ItemRecord, error)
	UpdateItemField(ctx context.Context, id primitive.ObjectID, field string, value interface{}) error
	FindLatestCatalogItem(ctx context.Context, itemName string) (*models.ItemRecord, error)
	FindOrCreateActiveShoppingList(ctx context.Context, username string) (models.ShoppingList, error)
	SaveShoppingList(ctx context.Context, list models.ShoppingList) error
}

// Service runs the per-user recommendation pipeline: forecast missing
// consumption dates, train the repurchase classifier, merge recommendations
// into the active shopping list and reconcile quantities.
type Service struct {
	store         Store
	forecaster    *forecast.Forecaster
	plural        *pluralize.Client
	thresholdDays int
	logger        *zap.Logger
	now           func() time.Time
}

// NewService wires a recommendation service instance.
func NewService(store Store, forecaster *forecast.Forecaster, thresholdDays int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if thresholdDays < 0 {
		thresholdDays = 2
	}
	return &Service{
		store:         store,
		forecaster:    forecaster,
		plural:        pluralize.NewClient(),
		thresholdDays: thresholdDays,
		logger:        logger,
		now:           time.Now,
	}
}

// Recommend produces the updated shopping list for one user. Each call
// retrains models from scratch; nothing is cached between requests.
func (s *Service) Recommend(ctx context.Context, username string) (models.RecommendationResult, error) {
	items, err := s.store.FindItemsByUser(ctx, username)
	if err != nil {
		return models.RecommendationResult{}, fmt.Errorf("load items for %s: %w", username, err)
	}
	if len(items) == 0 {
		return models.RecommendationResult{}, ErrNoUserHistory
	}

	now := s.now()

	// Forecast consumption dates for opened items that have neither an end
	// date nor a prediction yet.
	for i := range items {
		it := &items[i]
		if it.EndDate == nil && it.PredictedConsumedDate == nil && it.StartDate != nil {
			if _, err := s.forecaster.ForecastConsumedDate(ctx, it, items); err != nil {
				return models.RecommendationResult{}, fmt.Errorf("forecast %s: %w", it.Name, err)
			}
		}
	}

	model, err := s.forecaster.TrainRepurchaseModel(ctx, items, s.thresholdDays)
	if err != nil && !errors.Is(err, forecast.ErrInsufficientData) {
		return models.RecommendationResult{}, fmt.Errorf("train repurchase model: %w", err)
	}

	var recommendations []models.ShoppingListItem
	for _, it := range items {
		var repurchase bool
		if model != nil {
			repurchase = model.PredictClass(s.forecaster.RepurchaseFeatures(ctx, it, now))
		} else {
			repurchase = forecast.FallbackRepurchase(it, now, s.thresholdDays)
		}
		if repurchase {
			recommendations = append(recommendations, s.buildRecommendation(it))
		}
	}

	s.logger.Info("repurchase predictions computed",
		zap.String("username", username),
		zap.Bool("model_trained", model != nil),
		zap.Int("items", len(items)),
		zap.Int("recommended", len(recommendations)))

	list, err := s.store.FindOrCreateActiveShoppingList(ctx, username)
	if err != nil {
		return models.RecommendationResult{}, fmt.Errorf("load shopping list for %s: %w", username, err)
	}

	// Manual entries are excluded from the AI merge.
	aiItems := make([]models.ShoppingListItem, 0, len(list.Items)+len(recommendations))
	present := make(map[string]struct{})
	for _, item := range list.Items {
		if item.Source != models.SourceAI {
			continue
		}
		aiItems = append(aiItems, item)
		present[strings.ToLower(item.ItemName)] = struct{}{}
	}
	for _, rec := range recommendations {
		if _, ok := present[strings.ToLower(rec.ItemName)]; ok {
			continue
		}
		aiItems = append(aiItems, rec)
		present[strings.ToLower(rec.ItemName)] = struct{}{}
	}

	merged, err := s.mergeRecommendedItems(ctx, username, aiItems)
	if err != nil {
		return models.RecommendationResult{}, err
	}

	list.Items = merged
	list.TotalItems = len(merged)
	list.EstimatedTotal = round2(estimatedTotal(merged))
	list.UpdatedAt = now

	if err := s.store.SaveShoppingList(ctx, list); err != nil {
		return models.RecommendationResult{}, fmt.Errorf("save shopping list for %s: %w", username, err)
	}

	return models.RecommendationResult{
		Username:        username,
		ModelTrained:    model != nil,
		Recommendations: merged,
		ShoppingList:    list,
	}, nil
}

func (s *Service) buildRecommendation(item models.ItemRecord) models.ShoppingListItem {
	unit := item.CapacityUnit
	if unit == "" {
		unit = defaultCapacityUnit
	}

	predicted := ""
	predictedDay := "N/A"
	if item.PredictedConsumedDate != nil {
		predicted = item.PredictedConsumedDate.Format(time.RFC3339)
		predictedDay = item.PredictedConsumedDate.Format("2006-01-02")
	}

	return models.ShoppingListItem{
		ItemName:              s.normalizeName(item.Name),
		Quantity:              item.Quantity,
		CapacityUnit:          unit,
		Price:                 item.Price,
		PredictedConsumedDate: predicted,
		Suggestion:            fmt.Sprintf("%s is predicted to be consumed by %s. Please consider repurchasing soon.", item.Name, predictedDay),
		Source:                models.SourceAI,
		Status:                models.ListItemStatusPending,
	}
}

// normalizeName lowercases, trims and singularizes an item name so "Apples"
// and "apple" merge into one line.
func (s *Service) normalizeName(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if s.plural.IsPlural(normalized) {
		return s.plural.Singular(normalized)
	}
	return normalized
}

func estimatedTotal(items []models.ShoppingListItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
