package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/restockd/restock/internal/service/seeding"
)

// SeedHandler exposes the synthetic data generators used to seed test data.
type SeedHandler struct {
	generator *seeding.Generator
	logger    *zap.Logger
}

// NewSeedHandler constructs the seeding HTTP adapter.
func NewSeedHandler(generator *seeding.Generator, logger *zap.Logger) *SeedHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeedHandler{generator: generator, logger: logger}
}

type insertReceiptsRequest struct {
	Username string `json:"username" binding:"required"`
	Status   string `json:"status"`
	Num      int    `json:"num"`
}

type simulateItemsRequest struct {
	Username    string `json:"username" binding:"required"`
	NumReceipts int    `json:"num_receipts"`
}

// InsertReceipts generates and stores synthetic receipts for a user.
func (h *SeedHandler) InsertReceipts(c *gin.Context) {
	req := insertReceiptsRequest{Status: seeding.WindowRecent, Num: 5}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid insert receipts payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	inserted, err := h.generator.InsertReceipts(c.Request.Context(), req.Username, req.Status, req.Num)
	if err != nil {
		h.logger.Error("failed inserting receipts", zap.String("username", req.Username), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to insert receipts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Receipts inserted successfully",
		"username": req.Username,
		"status":   req.Status,
		"num":      inserted,
	})
}

// SimulateItems materializes item records from the user's stored receipts,
// filling in missing lifecycle dates.
func (h *SeedHandler) SimulateItems(c *gin.Context) {
	req := simulateItemsRequest{NumReceipts: 10}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid simulate items payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	records, err := h.generator.ProcessReceiptsToItems(c.Request.Context(), req.Username, req.NumReceipts)
	if err != nil {
		h.logger.Error("failed simulating items", zap.String("username", req.Username), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to simulate items"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Simulated items processed successfully",
		"username":     req.Username,
		"num_receipts": req.NumReceipts,
		"data":         records,
	})
}
