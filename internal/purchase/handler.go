package purchase

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/MamzStore/ppobb/internal/auth"
	"github.com/MamzStore/ppobb/internal/catalog"
	"github.com/MamzStore/ppobb/internal/ledger"
	"github.com/MamzStore/ppobb/internal/user"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type PlacePurchaseRequest struct {
	ProductID   int    `json:"productId" binding:"required"`
	Destination string `json:"destination" binding:"required"`
}

func (h *Handler) Place(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req PlacePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.service.Place(c.Request.Context(), userID, req.ProductID, req.Destination)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		case errors.Is(err, user.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case errors.Is(err, ErrProductInactive):
			c.JSON(http.StatusBadRequest, gin.H{"error": "product is not active"})
		case errors.Is(err, ledger.ErrInsufficientBalance):
			c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient balance"})
		case errors.Is(err, ErrGatewayUnreachable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "could not reach provider, please try again"})
		case errors.Is(err, ErrGatewayRejected):
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to place purchase"})
		}
		return
	}

	c.JSON(http.StatusCreated, p)
}

func (h *Handler) Get(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid purchase id"})
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrPurchaseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "purchase not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load purchase"})
		return
	}

	if p.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "purchase not found"})
		return
	}

	c.JSON(http.StatusOK, p)
}

func (h *Handler) CheckStatus(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid purchase id"})
		return
	}

	existing, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrPurchaseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "purchase not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load purchase"})
		return
	}
	if existing.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "purchase not found"})
		return
	}

	p, err := h.service.CheckStatus(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotSubmitted):
			c.JSON(http.StatusBadRequest, gin.H{"error": "purchase was never submitted"})
		case errors.Is(err, ErrGatewayUnreachable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "could not reach provider, please try again"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check status"})
		}
		return
	}

	c.JSON(http.StatusOK, p)
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
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load purchases"})
		return
	}

	c.JSON(http.StatusOK, list)
}
