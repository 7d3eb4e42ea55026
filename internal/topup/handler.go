package topup

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/MamzStore/ppobb/internal/auth"
	"github.com/MamzStore/ppobb/internal/payment"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type CreateTopupRequest struct {
	Amount int64 `json:"amount" binding:"required"`
}

func (h *Handler) Create(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req CreateTopupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := h.service.Create(c.Request.Context(), userID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be between 10000 and 5000000"})
		case errors.Is(err, ErrPaymentCreateFailed):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "could not create payment, please try again"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create topup"})
		}
		return
	}

	c.JSON(http.StatusCreated, t)
}

// Webhook is the payment provider callback. Anything we can attribute
// gets a 200 so the provider stops retrying; only a malformed body is
// rejected.
func (h *Handler) Webhook(c *gin.Context) {
	var payload payment.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	result, err := h.service.HandleWebhook(c.Request.Context(), payload)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidWebhook) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process webhook"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "result": string(result)})
}

func (h *Handler) Get(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid topup id"})
		return
	}

	t, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrTopupNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "topup not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load topup"})
		return
	}

	if t.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "topup not found"})
		return
	}

	c.JSON(http.StatusOK, t)
}

func (h *Handler) List(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	list, err := h.service.ListByUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load topups"})
		return
	}

	c.JSON(http.StatusOK, list)
}
