package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/catalog_api/internal/service"
	"github.com/GTDGit/catalog_api/internal/utils"
)

// AttributeHandler handles the attribute schema of a category.
type AttributeHandler struct {
	svc *service.AttributeService
}

// NewAttributeHandler creates a new AttributeHandler.
func NewAttributeHandler(svc *service.AttributeService) *AttributeHandler {
	return &AttributeHandler{svc: svc}
}

// ListAttributes handles GET /v1/categories/:id/attributes.
func (h *AttributeHandler) ListAttributes(c *gin.Context) {
	categoryID, ok := parseID(c, "id", "category")
	if !ok {
		return
	}
	attrs, err := h.svc.List(c.Request.Context(), categoryID)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Attributes retrieved", attrs)
}

// DefineAttribute handles POST /v1/categories/:id/attributes.
func (h *AttributeHandler) DefineAttribute(c *gin.Context) {
	categoryID, ok := parseID(c, "id", "category")
	if !ok {
		return
	}
	var req service.DefineAttributeRequest
	if !bindJSON(c, &req) {
		return
	}
	def, err := h.svc.Define(c.Request.Context(), categoryID, req)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "Attribute defined", def)
}

// GetProductForm handles GET /v1/categories/:id/product-form.
func (h *AttributeHandler) GetProductForm(c *gin.Context) {
	categoryID, ok := parseID(c, "id", "category")
	if !ok {
		return
	}
	fields, err := h.svc.ProductForm(c.Request.Context(), categoryID)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Product form retrieved", fields)
}

// GetAttribute handles GET /v1/attributes/:id.
func (h *AttributeHandler) GetAttribute(c *gin.Context) {
	id, ok := parseID(c, "id", "attribute")
	if !ok {
		return
	}
	def, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Attribute retrieved", def)
}
