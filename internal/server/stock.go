package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	inventorydomain "github.com/smallbiznis/stockbook/internal/inventory/domain"
)

func (s *Server) GetStock(c *gin.Context) {
	resp, err := s.inventorySvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SetStockLevels(c *gin.Context) {
	var req inventorydomain.SetLevelsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ProductID = strings.TrimSpace(c.Param("id"))

	resp, err := s.inventorySvc.SetLevels(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) AdjustStock(c *gin.Context) {
	var req inventorydomain.AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ProductID = strings.TrimSpace(c.Param("id"))
	req.Reason = strings.TrimSpace(req.Reason)

	resp, err := s.inventorySvc.Adjust(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListLowStockAlerts(c *gin.Context) {
	resp, err := s.inventorySvc.LowStockAlerts(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isStockValidationError(err error) bool {
	switch {
	case errors.Is(err, inventorydomain.ErrInvalidProductID),
		errors.Is(err, inventorydomain.ErrInvalidQuantity),
		errors.Is(err, inventorydomain.ErrInvalidMinQty),
		errors.Is(err, inventorydomain.ErrInvalidDelta):
		return true
	default:
		return false
	}
}
