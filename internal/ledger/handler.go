package ledger

import (
	"net/http"
	"strconv"

	"github.com/MamzStore/ppobb/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	repo Repository
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{repo: NewRepository(db)}
}

func (h *Handler) GetBalance(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	w, err := h.repo.GetOrCreateWallet(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load wallet"})
		return
	}

	c.JSON(http.StatusOK, w)
}

func (h *Handler) ListEntries(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, err := h.repo.GetEntries(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load ledger entries"})
		return
	}

	c.JSON(http.StatusOK, entries)
}

type AdjustBalanceRequest struct {
	Amount int64  `json:"amount" binding:"required,gt=0"`
	Type   string `json:"type" binding:"required,oneof=add subtract set"`
}

// AdjustBalance is the admin balance endpoint: add, subtract or set.
func (h *Handler) AdjustBalance(c *gin.Context) {
	targetID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req AdjustBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var newBalance int64
	switch req.Type {
	case "add":
		newBalance, err = h.repo.Adjust(c.Request.Context(), targetID, req.Amount, EntryAdminAdjust, "add")
	case "subtract":
		newBalance, err = h.repo.Adjust(c.Request.Context(), targetID, -req.Amount, EntryAdminAdjust, "subtract")
	case "set":
		newBalance, err = h.repo.SetBalance(c.Request.Context(), targetID, req.Amount)
	}
	if err != nil {
		if err == ErrInsufficientBalance {
			c.JSON(http.StatusBadRequest, gin.H{"error": "balance cannot go negative"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to adjust balance"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": targetID, "balance": newBalance})
}
