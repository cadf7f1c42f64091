package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) Engine() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), observeRequest())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.POST("/register", s.handleRegister)
	api.POST("/login", s.handleLogin)

	authed := api.Group("", authRequired(s.auth.Secret()))
	authed.POST("/logout", s.handleLogout)
	authed.GET("/categories", s.handleListCategories)
	authed.POST("/categories", s.handleCreateCategory)
	authed.GET("/expenses", s.handleListExpenses)
	authed.POST("/expenses", s.handleCreateExpense)
	authed.GET("/report", s.handleReport)

	return router
}
