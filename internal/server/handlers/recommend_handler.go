package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/restockd/restock/internal/domain/models"
	"github.com/restockd/restock/internal/repository/sheets"
	"github.com/restockd/restock/internal/service/recommend"
)

// RecommendService is the slice of the recommendation pipeline the HTTP
// layer needs.
type RecommendService interface {
	Recommend(ctx context.Context, username string) (models.RecommendationResult, error)
}

// ListFinder fetches the active shopping list for export.
type ListFinder interface {
	FindOrCreateActiveShoppingList(ctx context.Context, username string) (models.ShoppingList, error)
}

// RecommendHandler exposes the recommendation pipeline and list export over
// HTTP.
type RecommendHandler struct {
	svc      RecommendService
	lists    ListFinder
	exporter sheets.Exporter
	logger   *zap.Logger
}

// NewRecommendHandler constructs the HTTP handler adapter. A nil exporter
// disables the export endpoint.
func NewRecommendHandler(svc RecommendService, lists ListFinder, exporter sheets.Exporter, logger *zap.Logger) *RecommendHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecommendHandler{svc: svc, lists: lists, exporter: exporter, logger: logger}
}

type predictAndRecommendRequest struct {
	Username string `json:"username" binding:"required"`
}

type exportShoppingListRequest struct {
	Username string `json:"username" binding:"required"`
}

// PredictAndRecommend runs the full pipeline for one user. A user without
// any item history gets an informational success payload, matching the
// behavior downstream clients expect.
func (h *RecommendHandler) PredictAndRecommend(c *gin.Context) {
	var req predictAndRecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid recommend payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.svc.Recommend(c.Request.Context(), req.Username)
	if errors.Is(err, recommend.ErrNoUserHistory) {
		c.JSON(http.StatusOK, gin.H{
			"code":    http.StatusOK,
			"status":  "success",
			"message": "No items found for the specified user.",
		})
		return
	}
	if err != nil {
		h.logger.Error("recommendation pipeline failed", zap.String("username", req.Username), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute recommendations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":            http.StatusOK,
		"status":          "success",
		"username":        result.Username,
		"model_trained":   result.ModelTrained,
		"recommendations": result.Recommendations,
		"shopping_list":   result.ShoppingList,
	})
}

// ExportShoppingList appends the user's active list to the configured
// spreadsheet.
func (h *RecommendHandler) ExportShoppingList(c *gin.Context) {
	if h.exporter == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "shopping list export is not configured"})
		return
	}

	var req exportShoppingListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid export payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	list, err := h.lists.FindOrCreateActiveShoppingList(c.Request.Context(), req.Username)
	if err != nil {
		h.logger.Error("failed loading shopping list", zap.String("username", req.Username), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load shopping list"})
		return
	}

	if err := h.exporter.ExportShoppingList(c.Request.Context(), list); err != nil {
		h.logger.Error("failed exporting shopping list", zap.String("username", req.Username), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to export shopping list"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Shopping list exported successfully",
		"username": req.Username,
		"items":    list.TotalItems,
	})
}
