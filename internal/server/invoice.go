package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) RenderOrderInvoice(c *gin.Context) {
	doc, err := s.invoiceSvc.RenderInvoicePDF(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.DataFromReader(http.StatusOK, -1, "application/pdf", doc.Content, map[string]string{
		"Content-Disposition": fmt.Sprintf("inline; filename=%q", doc.Filename),
	})
}

func (s *Server) GetOrderUPIQR(c *gin.Context) {
	resp, err := s.invoiceSvc.UPIQR(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
