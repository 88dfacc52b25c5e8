package run

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jiaming2012/option-pricer/src/eventmodels"
)

func LoadPricingConfig(path string, loc *time.Location) (eventmodels.PricingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return eventmodels.PricingConfig{}, fmt.Errorf("LoadPricingConfig: failed to read %s: %w", path, err)
	}

	var y eventmodels.PricingConfigYAML
	if err := yaml.Unmarshal(data, &y); err != nil {
		return eventmodels.PricingConfig{}, fmt.Errorf("LoadPricingConfig: failed to unmarshal %s: %w", path, err)
	}

	cfg, err := y.ToModel(loc)
	if err != nil {
		return eventmodels.PricingConfig{}, fmt.Errorf("LoadPricingConfig: %w", err)
	}

	return cfg, nil
}
