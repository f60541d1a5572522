package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/catalog_api/internal/service"
	"github.com/GTDGit/catalog_api/internal/utils"
)

// ProductHandler handles product endpoints.
type ProductHandler struct {
	svc *service.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(svc *service.ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

// ListProducts handles GET /v1/categories/:id/products.
func (h *ProductHandler) ListProducts(c *gin.Context) {
	categoryID, ok := parseID(c, "id", "category")
	if !ok {
		return
	}
	list, err := h.svc.ListByCategory(c.Request.Context(), categoryID)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Products retrieved", list)
}

// CreateProduct handles POST /v1/categories/:id/products. The product and its
// attribute values are stored together or not at all.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	categoryID, ok := parseID(c, "id", "category")
	if !ok {
		return
	}
	var req service.CreateProductRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.svc.Create(c.Request.Context(), categoryID, req)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "Product created", p)
}

// GetProduct handles GET /v1/products/:id.
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := parseID(c, "id", "product")
	if !ok {
		return
	}
	detail, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Product retrieved", detail)
}
