package routes

import (
	"github.com/gin-gonic/gin"

	"commerce-api/internal/handlers"
)

func RegisterRoutes(router *gin.Engine, products *handlers.ProductHandler, carts *handlers.CartHandler) {
	api := router.Group("/api")
	{
		api.GET("/products", products.ListProducts)
		api.GET("/products/:pid", products.GetProduct)
		api.POST("/products", products.CreateProduct)
		api.PUT("/products/:pid", products.UpdateProduct)
		api.DELETE("/products/:pid", products.DeleteProduct)

		api.POST("/carts", carts.CreateCart)
		api.GET("/carts/:cid", carts.GetCart)
		api.POST("/carts/:cid/products/:pid", carts.AddProduct)
		api.DELETE("/carts/:cid/products/:pid", carts.RemoveProduct)
		api.DELETE("/carts/:cid", carts.ClearCart)
	}
}
