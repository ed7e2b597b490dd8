package integration

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
)

// shortNameLimit is the character budget for the derived shortened name
const shortNameLimit = 50

// Lookups are the read-only reference snapshots the mapper resolves names
// against. They are loaded once per orchestrator run and passed by parameter;
// the mapper holds no ambient state.
type Lookups struct {
	Brands     catalog.NameIndex
	Categories catalog.NameIndex
}

// Normalize transforms one provider-native record into the canonical
// MappedProduct. A nil result means the record cannot be mapped and must be
// counted as skipped; it is never an error.
func Normalize(kind ProviderKind, raw RawRecord, lookups Lookups, cfg *MappingConfig, providerName string, now time.Time) *MappedProduct {
	var fields *providerFields
	switch kind {
	case ProviderKindStorefront:
		fields = mapStorefront(raw)
	case ProviderKindWooCommerce:
		fields = mapWooCommerce(raw)
	case ProviderKindMagento:
		fields = mapMagento(raw)
	case ProviderKindCustom:
		fields = mapCustom(raw, cfg)
	case ProviderKindREST:
		fields = mapREST(raw)
	default:
		return nil
	}
	if fields == nil {
		return nil
	}
	return fields.finish(lookups, providerName, now)
}

// providerFields is the intermediate extraction every mapping function
// produces before the shared resolution/derivation step.
type providerFields struct {
	name             string
	shortName        string
	description      string
	shortDescription string
	brandName        string
	categoryName     string
	dimensions       []catalog.LabelValue
	specs            []catalog.LabelValue
	images           []string
	sku              string
	price            any
	stock            any
	externalID       string
	updatedAt        string
}

// finish applies the provider-independent normalization rules: lookup
// resolution, short-text derivation, keyword extraction and metadata.
func (f *providerFields) finish(lookups Lookups, providerName string, now time.Time) *MappedProduct {
	product := &MappedProduct{
		Name:             f.name,
		ShortName:        f.shortName,
		Description:      f.description,
		ShortDescription: ShortDescription(f.shortDescription, f.description),
		SubcategoryID:    catalog.FallbackSubcategoryID,
		Dimensions:       f.dimensions,
		Specs:            f.specs,
		Keywords:         ExtractKeywords(f.name, f.description),
		Images:           f.images,
	}
	if product.ShortName == "" {
		product.ShortName = Truncate(f.name, shortNameLimit)
	}
	if product.Dimensions == nil {
		product.Dimensions = make([]catalog.LabelValue, 0)
	}
	if product.Specs == nil {
		product.Specs = make([]catalog.LabelValue, 0)
	}
	if product.Images == nil {
		product.Images = make([]string, 0)
	}

	// Unresolved brand is tolerated (nil), unresolved category falls back to
	// the default subcategory.
	if f.brandName != "" {
		if id, ok := lookups.Brands.Resolve(f.brandName); ok {
			product.BrandID = &id
		}
	}
	if f.categoryName != "" {
		if id, ok := lookups.Categories.Resolve(f.categoryName); ok {
			product.SubcategoryID = id
		}
	}

	updatedAt := f.updatedAt
	if updatedAt == "" {
		updatedAt = now.UTC().Format(time.RFC3339)
	}
	product.Option = MappedOption{
		SKU:       strings.TrimSpace(f.sku),
		Price:     coerceDecimal(f.price),
		Stock:     coerceInt(f.stock),
		IsDefault: true,
		Metadata: catalog.OptionMetadata{
			ExternalID:    f.externalID,
			Provider:      providerName,
			LastUpdatedAt: updatedAt,
		},
	}
	return product
}

// ---------------------------------------------------------------------------
// Per-provider mapping functions
// ---------------------------------------------------------------------------

// mapStorefront maps a Shopify-style record: title/body_html/vendor at the
// top level, comma-separated tags, and a variants array whose first entry
// carries sku/price/inventory_quantity.
func mapStorefront(raw RawRecord) *providerFields {
	fields := &providerFields{
		name:         asString(raw["title"]),
		description:  StripHTML(asString(raw["body_html"])),
		brandName:    asString(raw["vendor"]),
		categoryName: asString(raw["product_type"]),
		externalID:   coerceID(raw["id"]),
		updatedAt:    asString(raw["updated_at"]),
	}

	for _, img := range asSlice(raw["images"]) {
		if src := asString(asMap(img)["src"]); src != "" {
			fields.images = append(fields.images, src)
		}
	}

	if variants := asSlice(raw["variants"]); len(variants) > 0 {
		variant := asMap(variants[0])
		fields.sku = asString(variant["sku"])
		fields.price = variant["price"]
		fields.stock = variant["inventory_quantity"]
		if fields.externalID == "" {
			fields.externalID = coerceID(variant["id"])
		}
		if weight := asString(variant["weight"]); weight != "" {
			unit := asString(variant["weight_unit"])
			fields.dimensions = append(fields.dimensions, catalog.LabelValue{
				Label: "Peso", Value: strings.TrimSpace(weight + " " + unit),
			})
		}
	}

	for _, tag := range strings.Split(asString(raw["tags"]), ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			fields.specs = append(fields.specs, catalog.LabelValue{Label: "Tag", Value: tag})
		}
	}
	return fields
}

// mapWooCommerce maps a WooCommerce-style record: sku/price/stock_quantity at
// the top level, categories and images as object arrays, attributes as
// name/options pairs. The brand is taken from a "Marca"/"Brand" attribute.
func mapWooCommerce(raw RawRecord) *providerFields {
	fields := &providerFields{
		name:             asString(raw["name"]),
		description:      StripHTML(asString(raw["description"])),
		shortDescription: StripHTML(asString(raw["short_description"])),
		sku:              asString(raw["sku"]),
		price:            raw["price"],
		stock:            raw["stock_quantity"],
		externalID:       coerceID(raw["id"]),
		updatedAt:        asString(raw["date_modified"]),
	}

	if categories := asSlice(raw["categories"]); len(categories) > 0 {
		fields.categoryName = asString(asMap(categories[0])["name"])
	}
	for _, img := range asSlice(raw["images"]) {
		if src := asString(asMap(img)["src"]); src != "" {
			fields.images = append(fields.images, src)
		}
	}

	for _, attr := range asSlice(raw["attributes"]) {
		attribute := asMap(attr)
		name := asString(attribute["name"])
		options := asSlice(attribute["options"])
		if name == "" || len(options) == 0 {
			continue
		}
		value := asString(options[0])
		switch strings.ToLower(name) {
		case "marca", "brand":
			fields.brandName = value
		default:
			fields.specs = append(fields.specs, catalog.LabelValue{Label: name, Value: value})
		}
	}

	if dims := asMap(raw["dimensions"]); len(dims) > 0 {
		fields.dimensions = append(fields.dimensions, labelValuesFromMap(dims)...)
	}
	return fields
}

// mapMagento maps a Magento-style record: sku/name/price at the top level,
// stock under extension_attributes.stock_item.qty, everything else in the
// custom_attributes array keyed by attribute_code.
func mapMagento(raw RawRecord) *providerFields {
	fields := &providerFields{
		name:       asString(raw["name"]),
		sku:        asString(raw["sku"]),
		price:      raw["price"],
		externalID: coerceID(raw["id"]),
		updatedAt:  asString(raw["updated_at"]),
	}

	if ext := asMap(raw["extension_attributes"]); ext != nil {
		if stockItem := asMap(ext["stock_item"]); stockItem != nil {
			fields.stock = stockItem["qty"]
		}
	}

	for _, attr := range asSlice(raw["custom_attributes"]) {
		attribute := asMap(attr)
		code := asString(attribute["attribute_code"])
		value := asString(attribute["value"])
		if value == "" {
			continue
		}
		switch code {
		case "description":
			fields.description = StripHTML(value)
		case "short_description":
			fields.shortDescription = StripHTML(value)
		case "brand", "manufacturer":
			fields.brandName = value
		case "category":
			fields.categoryName = value
		case "":
			// ignore malformed attribute entries
		default:
			fields.specs = append(fields.specs, catalog.LabelValue{Label: code, Value: value})
		}
	}

	for _, entry := range asSlice(raw["media_gallery_entries"]) {
		if file := asString(asMap(entry)["file"]); file != "" {
			fields.images = append(fields.images, file)
		}
	}
	return fields
}

// mapREST maps the generic REST provider, whose records are close to the
// canonical shape already: flat fields plus dimensions/specs objects.
func mapREST(raw RawRecord) *providerFields {
	fields := &providerFields{
		name:             asString(raw["name"]),
		shortName:        asString(raw["short_name"]),
		description:      StripHTML(asString(raw["description"])),
		shortDescription: StripHTML(asString(raw["short_description"])),
		brandName:        asString(raw["brand"]),
		categoryName:     asString(raw["category"]),
		sku:              asString(raw["sku"]),
		price:            raw["price"],
		stock:            raw["stock"],
		externalID:       coerceID(raw["id"]),
		updatedAt:        asString(raw["updated_at"]),
	}
	fields.dimensions = labelValuesFromMap(asMap(raw["dimensions"]))
	fields.specs = labelValuesFromMap(asMap(raw["specs"]))
	for _, img := range asSlice(raw["images"]) {
		if src := asString(img); src != "" {
			fields.images = append(fields.images, src)
		}
	}
	return fields
}

// mapCustom maps a configurable provider through its dot-path accessors.
// A missing config fails closed: the record is skipped, not errored.
func mapCustom(raw RawRecord, cfg *MappingConfig) *providerFields {
	if cfg == nil {
		return nil
	}
	fields := &providerFields{
		name:             asString(LookupPath(raw, cfg.NamePath)),
		description:      StripHTML(asString(LookupPath(raw, cfg.DescriptionPath))),
		shortDescription: StripHTML(asString(LookupPath(raw, cfg.ShortDescriptionPath))),
		brandName:        asString(LookupPath(raw, cfg.BrandPath)),
		categoryName:     asString(LookupPath(raw, cfg.CategoryPath)),
		sku:              asString(LookupPath(raw, cfg.SKUPath)),
		price:            LookupPath(raw, cfg.PricePath),
		stock:            LookupPath(raw, cfg.StockPath),
		externalID:       coerceID(LookupPath(raw, cfg.ExternalIDPath)),
	}
	for _, img := range asSlice(LookupPath(raw, cfg.ImagesPath)) {
		if src := asString(img); src != "" {
			fields.images = append(fields.images, src)
		}
	}
	return fields
}

// ---------------------------------------------------------------------------
// Value coercion
// ---------------------------------------------------------------------------

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// coerceID renders a provider's native identifier as a string, whatever the
// JSON type it arrived as.
func coerceID(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(id, 10)
	default:
		return ""
	}
}

// coerceDecimal parses a price from a string or JSON number, defaulting to
// zero on parse failure.
func coerceDecimal(v any) decimal.Decimal {
	switch price := v.(type) {
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(price))
		if err != nil {
			return decimal.Zero
		}
		return d
	case float64:
		return decimal.NewFromFloat(price)
	case int64:
		return decimal.NewFromInt(price)
	default:
		return decimal.Zero
	}
}

// coerceInt parses a stock count, defaulting to zero
func coerceInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int64:
		return int(n)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

// labelValuesFromMap flattens an object like {"Ancho":"10cm"} into ordered
// label/value pairs. Keys are sorted so runs are deterministic.
func labelValuesFromMap(m map[string]any) []catalog.LabelValue {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]catalog.LabelValue, 0, len(keys))
	for _, k := range keys {
		if value := asString(m[k]); value != "" {
			pairs = append(pairs, catalog.LabelValue{Label: k, Value: value})
		}
	}
	return pairs
}
