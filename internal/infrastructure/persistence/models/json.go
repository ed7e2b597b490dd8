package models

import (
	"encoding/json"
	"sort"

	"github.com/storefront/backend/internal/domain/catalog"
)

// MarshalLabelValues stores label/value pairs as a JSON object keyed by label
// ({"Ancho":"10cm"}), the shape provider payloads and the admin UI use.
func MarshalLabelValues(pairs []catalog.LabelValue) string {
	obj := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		obj[pair.Label] = pair.Value
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

// UnmarshalLabelValues restores the pair list in sorted label order so reads
// are deterministic.
func UnmarshalLabelValues(raw string) []catalog.LabelValue {
	if raw == "" {
		return make([]catalog.LabelValue, 0)
	}
	var obj map[string]string
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return make([]catalog.LabelValue, 0)
	}

	labels := make([]string, 0, len(obj))
	for label := range obj {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	pairs := make([]catalog.LabelValue, 0, len(labels))
	for _, label := range labels {
		pairs = append(pairs, catalog.LabelValue{Label: label, Value: obj[label]})
	}
	return pairs
}

// MarshalStrings stores a string list as a JSON array
func MarshalStrings(values []string) string {
	if values == nil {
		values = make([]string, 0)
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(raw)
}

// UnmarshalStrings restores a string list from its JSON array column
func UnmarshalStrings(raw string) []string {
	if raw == "" {
		return make([]string, 0)
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return make([]string, 0)
	}
	return values
}

// MarshalOptionMetadata stores option provenance as a JSON object
func MarshalOptionMetadata(metadata catalog.OptionMetadata) string {
	raw, err := json.Marshal(metadata)
	if err != nil {
		return "{}"
	}
	return string(raw)
}
