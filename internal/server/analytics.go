package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) GetDashboardStats(c *gin.Context) {
	resp, err := s.analyticsSvc.DashboardStats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSalesChart(c *gin.Context) {
	resp, err := s.analyticsSvc.SalesChart(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCategoryChart(c *gin.Context) {
	resp, err := s.analyticsSvc.CategoryChart(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSalesForecast(c *gin.Context) {
	resp, err := s.analyticsSvc.SalesForecast(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetABCAnalysis(c *gin.Context) {
	resp, err := s.analyticsSvc.ABCAnalysis(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSeasonalTrends(c *gin.Context) {
	resp, err := s.analyticsSvc.SeasonalTrends(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInventoryOptimization(c *gin.Context) {
	resp, err := s.analyticsSvc.InventoryOptimization(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetProfitAnalytics(c *gin.Context) {
	resp, err := s.analyticsSvc.ProfitAnalytics(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
