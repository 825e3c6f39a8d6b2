// Package http wires the gin router for the API service.
package http

import (
	"github.com/coprra/coprra/internal/auth"
	"github.com/coprra/coprra/internal/config"
	"github.com/coprra/coprra/internal/http/controller"
	"github.com/coprra/coprra/internal/http/middleware"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Controllers groups the handlers the router mounts.
type Controllers struct {
	Base    *controller.Controller
	Product *controller.ProductController
	Job     *controller.JobController
	Auth    *controller.AuthController
}

func InitRouter(conf *config.Config, server *gin.Engine, ctrs Controllers, tokens *auth.Manager) *gin.Engine {
	limiter := rate.NewLimiter(rate.Limit(conf.RateLimit.RPS), conf.RateLimit.Burst)

	server.Use(middleware.Recovery())
	server.Use(middleware.RateLimit(limiter))

	server.GET("/health", ctrs.Base.Health)
	server.GET("/language/:code", ctrs.Base.Language)
	server.GET("/currency/:code", ctrs.Base.Currency)

	v1 := server.Group("/api/v1")
	{
		products := v1.Group("/products")
		{
			products.GET("", ctrs.Product.SearchProducts)
			products.GET("/:slug", ctrs.Product.GetProduct)
			products.GET("/:slug/related", ctrs.Product.RelatedProducts)
			products.GET("/:slug/offers", ctrs.Product.ProductOffers)
		}

		authRoutes := v1.Group("/auth")
		{
			authRoutes.POST("/register", ctrs.Auth.Register)
			authRoutes.POST("/login", ctrs.Auth.Login)
		}
	}

	admin := server.Group("/api/admin", middleware.Auth(tokens), middleware.AdminOnly())
	{
		admin.PUT("/products/:id/price", ctrs.Product.UpdatePrice)
		admin.POST("/jobs", ctrs.Job.CreateJob)
		admin.GET("/jobs", ctrs.Job.ListJobs)
		admin.GET("/jobs/:id", ctrs.Job.GetJob)
		admin.DELETE("/jobs/:id", ctrs.Job.CancelJob)
	}

	return server
}
