package entities

import (
	"encoding/json"
	"strings"
)

// SiteSetting is one key's entry in the backend settings document.
// Category is a free-text grouping tag used only to organize the admin
// settings form.
type SiteSetting struct {
	Value    SettingValue `json:"value"`
	Category string       `json:"category,omitempty"`
}

// SettingValue holds a setting value that the backend stores either as
// a direct scalar (string, number, bool) or wrapped as {"text": ...}.
// Keys ending in _color or _url always carry direct scalars.
type SettingValue struct {
	raw any
}

// NewSettingValue wraps a scalar or structured value.
func NewSettingValue(v any) SettingValue {
	return SettingValue{raw: v}
}

// UnmarshalJSON keeps the decoded value as-is; flattening happens at
// read time so the original shape survives a round trip through the
// admin settings form.
func (v *SettingValue) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &v.raw)
}

// MarshalJSON writes the value back in its original shape.
func (v SettingValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.raw)
}

// Scalar returns the effective value: wrapped {"text": ...} objects are
// flattened to their text, everything else is returned unchanged.
func (v SettingValue) Scalar() any {
	if m, ok := v.raw.(map[string]any); ok {
		if text, ok := m["text"]; ok {
			return text
		}
	}
	return v.raw
}

// IsWrapped reports whether the backend stored this value as a
// {"text": ...} object rather than a direct scalar.
func (v SettingValue) IsWrapped() bool {
	if m, ok := v.raw.(map[string]any); ok {
		_, ok := m["text"]
		return ok
	}
	return false
}

// ScalarSettingKey reports whether key must always carry a direct
// scalar value (never a wrapped object).
func ScalarSettingKey(key string) bool {
	return strings.HasSuffix(key, "_color") || strings.HasSuffix(key, "_url")
}
