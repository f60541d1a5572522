package handler

import "github.com/gin-gonic/gin"

// Handlers groups all HTTP handlers.
type Handlers struct {
	Health    *HealthHandler
	Category  *CategoryHandler
	Attribute *AttributeHandler
	Product   *ProductHandler
}

// SetupRoutes registers all catalog routes on router.
func SetupRoutes(router *gin.Engine, h *Handlers) {
	router.GET("/v1/health", h.Health.GetHealth)

	categories := router.Group("/v1/categories")
	{
		categories.GET("", h.Category.ListCategories)
		categories.POST("", h.Category.CreateCategory)
		categories.GET("/:id/attributes", h.Attribute.ListAttributes)
		categories.POST("/:id/attributes", h.Attribute.DefineAttribute)
		categories.GET("/:id/product-form", h.Attribute.GetProductForm)
		categories.GET("/:id/products", h.Product.ListProducts)
		categories.POST("/:id/products", h.Product.CreateProduct)
	}

	router.GET("/v1/attributes/:id", h.Attribute.GetAttribute)
	router.GET("/v1/products/:id", h.Product.GetProduct)
}
