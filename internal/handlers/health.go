package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gokart-backend/internal/models"
)

// HealthHandler godoc
// @Summary     Health check
// @Description Returns the health status of the API
// @Tags        health
// @Produce     json
// @Success     200 {object} models.HealthResponse
// @Router      /health [get]
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{Status: "ok"})
}

// RootHandler godoc
// @Summary     Service banner
// @Description Returns a short message confirming the backend is running
// @Tags        health
// @Produce     json
// @Success     200 {object} models.RootResponse
// @Router      / [get]
func RootHandler(c *gin.Context) {
	c.JSON(http.StatusOK, models.RootResponse{Message: "GoKart backend is running"})
}
