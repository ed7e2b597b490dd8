package integration

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MappingConfig describes how to read canonical fields out of a custom
// provider's records using dot-path accessors (e.g. "meta.title").
// Only Name and SKU are mandatory; absent paths simply leave the canonical
// field empty.
type MappingConfig struct {
	NamePath             string `json:"name_path" validate:"required"`
	SKUPath              string `json:"sku_path" validate:"required"`
	DescriptionPath      string `json:"description_path"`
	ShortDescriptionPath string `json:"short_description_path"`
	BrandPath            string `json:"brand_path"`
	CategoryPath         string `json:"category_path"`
	PricePath            string `json:"price_path"`
	StockPath            string `json:"stock_path"`
	ImagesPath           string `json:"images_path"`
	ExternalIDPath       string `json:"external_id_path"`

	// RecordsKey optionally names the envelope key holding the record array
	// in the provider's listing response; when empty the adapter probes the
	// common envelope keys.
	RecordsKey string `json:"records_key"`

	// BearerToken optionally authenticates the listing call
	BearerToken string `json:"bearer_token"`
}

var mappingConfigValidate = validator.New()

// Validate checks that the config carries the mandatory accessors
func (c *MappingConfig) Validate() error {
	if err := mappingConfigValidate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMappingConfig, err)
	}
	return nil
}

// LookupPath resolves a dot-path accessor against a raw record and returns
// the value at that path, or nil when any path segment is missing.
func LookupPath(raw RawRecord, path string) any {
	if path == "" {
		return nil
	}
	var current any = map[string]any(raw)
	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current, ok = node[segment]
		if !ok {
			return nil
		}
	}
	return current
}
