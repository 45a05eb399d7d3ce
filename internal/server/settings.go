package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type businessSettingsResponse struct {
	Name          string `json:"name"`
	GSTIN         string `json:"gstin,omitempty"`
	StateCode     string `json:"state_code"`
	StateName     string `json:"state_name,omitempty"`
	Address       string `json:"address,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty"`
	UPIVPA        string `json:"upi_vpa,omitempty"`
	DefaultMinQty int64  `json:"default_min_qty"`
}

func (s *Server) GetBusinessSettings(c *gin.Context) {
	settings := s.business.Get()
	code := settings.SellerStateCode()

	resp := businessSettingsResponse{
		Name:          settings.Name,
		GSTIN:         settings.GSTIN,
		StateCode:     code,
		Address:       settings.Address,
		Phone:         settings.Phone,
		Email:         settings.Email,
		UPIVPA:        settings.UPIVPA,
		DefaultMinQty: settings.DefaultMinQty,
	}
	if states, err := s.gstSvc.ListStates(c.Request.Context()); err == nil {
		for _, st := range states {
			if st.Code == code {
				resp.StateName = st.Name
				break
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
