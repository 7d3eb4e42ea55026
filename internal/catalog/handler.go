package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	repo Repository
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{repo: NewRepository(db)}
}

func (h *Handler) ListCategories(c *gin.Context) {
	cats, err := h.repo.GetCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load categories"})
		return
	}
	c.JSON(http.StatusOK, cats)
}

type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug" binding:"required"`
	Icon string `json:"icon" binding:"required"`
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cat, err := h.repo.CreateCategory(c.Request.Context(), req.Name, req.Slug, req.Icon)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create category"})
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *Handler) ListProducts(c *gin.Context) {
	var categoryID *int
	if raw := c.Query("categoryId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid categoryId"})
			return
		}
		categoryID = &id
	}

	prods, err := h.repo.GetProducts(c.Request.Context(), categoryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load products"})
		return
	}
	c.JSON(http.StatusOK, prods)
}

type CreateProductRequest struct {
	CategoryID int     `json:"categoryId" binding:"required"`
	Brand      *string `json:"brand"`
	SubBrand   *string `json:"subBrand"`
	Name       string  `json:"name" binding:"required"`
	Code       string  `json:"code" binding:"required"`
	Price      int64   `json:"price" binding:"required,gt=0"`
	IsActive   *bool   `json:"isActive"`
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	p, err := h.repo.CreateProduct(c.Request.Context(), &Product{
		CategoryID: req.CategoryID,
		Brand:      req.Brand,
		SubBrand:   req.SubBrand,
		Name:       req.Name,
		Code:       req.Code,
		Price:      req.Price,
		IsActive:   active,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create product"})
		return
	}
	c.JSON(http.StatusCreated, p)
}

type UpdateProductRequest struct {
	CategoryID *int    `json:"categoryId"`
	Brand      *string `json:"brand"`
	SubBrand   *string `json:"subBrand"`
	Name       *string `json:"name"`
	Code       *string `json:"code"`
	Price      *int64  `json:"price" binding:"omitempty,gt=0"`
	IsActive   *bool   `json:"isActive"`
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.repo.UpdateProduct(c.Request.Context(), id, ProductUpdate{
		CategoryID: req.CategoryID,
		Brand:      req.Brand,
		SubBrand:   req.SubBrand,
		Name:       req.Name,
		Code:       req.Code,
		Price:      req.Price,
		IsActive:   req.IsActive,
	})
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update product"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	if err := h.repo.DeleteProduct(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete product"})
		return
	}
	c.Status(http.StatusNoContent)
}
