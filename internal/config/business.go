package config

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/smallbiznis/stockbook/internal/gst/engine"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// BusinessSettings describes the selling business printed on invoices and
// used as the seller side of every tax split.
type BusinessSettings struct {
	Name          string `mapstructure:"name" json:"name"`
	GSTIN         string `mapstructure:"gstin" json:"gstin"`
	StateCode     string `mapstructure:"stateCode" json:"state_code"`
	Address       string `mapstructure:"address" json:"address"`
	Phone         string `mapstructure:"phone" json:"phone"`
	Email         string `mapstructure:"email" json:"email"`
	UPIVPA        string `mapstructure:"upiVpa" json:"upi_vpa"`
	DefaultMinQty int64  `mapstructure:"defaultMinQty" json:"default_min_qty"`
}

const defaultStateCode = "27"

func DefaultBusinessSettings() BusinessSettings {
	return BusinessSettings{
		Name:          "Your Business Name",
		StateCode:     defaultStateCode,
		UPIVPA:        "merchant@upi",
		DefaultMinQty: 10,
	}
}

// SellerStateCode prefers the explicit state code and falls back to the
// first two characters of the GSTIN.
func (b BusinessSettings) SellerStateCode() string {
	if code := strings.TrimSpace(b.StateCode); code != "" {
		return code
	}
	code, _ := engine.StateCodeFromIdentifier(b.GSTIN)
	return code
}

type BusinessSettingsHolder struct {
	current atomic.Value // holds BusinessSettings
}

// NewStaticBusinessSettings returns a holder that never reloads.
func NewStaticBusinessSettings(settings BusinessSettings) *BusinessSettingsHolder {
	holder := &BusinessSettingsHolder{}
	holder.current.Store(settings)
	return holder
}

func NewBusinessSettingsHolder(cfg Config, log *zap.Logger) (*BusinessSettingsHolder, error) {
	log = log.Named("config.business")
	v := viper.New()

	if cfg.BusinessConfigPath != "" {
		v.SetConfigFile(cfg.BusinessConfigPath)
	} else {
		v.SetConfigName("business")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/stockbook")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("STOCKBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultBusinessSettings()
	v.SetDefault("business.name", defaults.Name)
	v.SetDefault("business.gstin", defaults.GSTIN)
	v.SetDefault("business.address", defaults.Address)
	v.SetDefault("business.phone", defaults.Phone)
	v.SetDefault("business.email", defaults.Email)
	v.SetDefault("business.upiVpa", defaults.UPIVPA)
	v.SetDefault("business.defaultMinQty", defaults.DefaultMinQty)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		fileLoaded = false
		log.Info("business config file not found, using defaults")
	}

	settings, err := decodeBusinessSettings(v)
	if err != nil {
		return nil, err
	}

	holder := NewStaticBusinessSettings(settings)

	if fileLoaded {
		v.OnConfigChange(func(e fsnotify.Event) {
			updated, err := decodeBusinessSettings(v)
			if err != nil {
				log.Warn("invalid business config ignored", zap.String("file", e.Name), zap.Error(err))
				return
			}
			holder.current.Store(updated)
			log.Info("business config reloaded", zap.String("file", e.Name))
		})
		v.WatchConfig()
	}

	return holder, nil
}

func (h *BusinessSettingsHolder) Get() BusinessSettings {
	return h.current.Load().(BusinessSettings)
}

func decodeBusinessSettings(v *viper.Viper) (BusinessSettings, error) {
	// Leaf lookups so STOCKBOOK_BUSINESS_* env vars override the file.
	settings := normalizeBusinessSettings(BusinessSettings{
		Name:          v.GetString("business.name"),
		GSTIN:         v.GetString("business.gstin"),
		StateCode:     v.GetString("business.stateCode"),
		Address:       v.GetString("business.address"),
		Phone:         v.GetString("business.phone"),
		Email:         v.GetString("business.email"),
		UPIVPA:        v.GetString("business.upiVpa"),
		DefaultMinQty: v.GetInt64("business.defaultMinQty"),
	})
	if err := ValidateBusinessSettings(settings); err != nil {
		return BusinessSettings{}, err
	}
	return settings, nil
}

func normalizeBusinessSettings(s BusinessSettings) BusinessSettings {
	s.Name = strings.TrimSpace(s.Name)
	s.GSTIN = strings.ToUpper(strings.TrimSpace(s.GSTIN))
	s.StateCode = strings.TrimSpace(s.StateCode)
	s.Address = strings.TrimSpace(s.Address)
	s.Phone = strings.TrimSpace(s.Phone)
	s.Email = strings.TrimSpace(s.Email)
	s.UPIVPA = strings.TrimSpace(s.UPIVPA)
	if s.StateCode == "" && s.GSTIN == "" {
		s.StateCode = defaultStateCode
	}
	return s
}

func ValidateBusinessSettings(s BusinessSettings) error {
	if s.Name == "" {
		return errors.New("business.name cannot be empty")
	}
	code := s.SellerStateCode()
	if !engine.DefaultRegistry().Valid(code) {
		return fmt.Errorf("business state code %q is not a GST state code", code)
	}
	if s.GSTIN != "" && s.StateCode != "" && !strings.HasPrefix(s.GSTIN, s.StateCode) {
		return fmt.Errorf("business.gstin %q does not belong to state %s", s.GSTIN, s.StateCode)
	}
	if s.DefaultMinQty < 0 {
		return errors.New("business.defaultMinQty cannot be negative")
	}
	return nil
}
