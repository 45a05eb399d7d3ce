package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	gstdomain "github.com/smallbiznis/stockbook/internal/gst/domain"
)

type splitGSTRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	Rate            decimal.Decimal `json:"gst_rate"`
	SellerStateCode string          `json:"seller_state_code"`
	BuyerGSTIN      string          `json:"customer_gstin"`
}

type quoteLineRequest struct {
	Rate      decimal.Decimal `json:"gst_rate"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type quoteGSTRequest struct {
	Items      []quoteLineRequest `json:"items"`
	BuyerGSTIN string             `json:"customer_gstin"`
}

func (s *Server) ListGSTStates(c *gin.Context) {
	resp, err := s.gstSvc.ListStates(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SplitGST(c *gin.Context) {
	var req splitGSTRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.gstSvc.Split(c.Request.Context(), gstdomain.SplitRequest{
		Amount:          req.Amount,
		Rate:            req.Rate,
		SellerStateCode: strings.TrimSpace(req.SellerStateCode),
		BuyerGSTIN:      strings.TrimSpace(req.BuyerGSTIN),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) QuoteGST(c *gin.Context) {
	var req quoteGSTRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	lines := make([]gstdomain.QuoteLine, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, gstdomain.QuoteLine{
			Rate:      item.Rate,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	resp, err := s.gstSvc.Quote(c.Request.Context(), gstdomain.QuoteRequest{
		Items:      lines,
		BuyerGSTIN: strings.TrimSpace(req.BuyerGSTIN),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
