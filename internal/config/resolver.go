// Package config loads store configuration YAML files, resolves `extends`
// inheritance, and validates the result.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"

	"spinup/internal/domain"
)

const (
	defaultThemeSource = "spinup"
	defaultCurrency    = "USD"
	defaultTimezone    = "America/Los_Angeles"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report violations against yaml field names so messages read as
	// "store.email: ..." rather than Go struct paths.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Resolve reads the YAML config at path, resolves its `extends` chain, and
// validates the merged result. Failures are reported as *Error.
func Resolve(path string) (*domain.StoreConfig, error) {
	merged, err := resolveRaw(path, map[string]bool{})
	if err != nil {
		return nil, err
	}

	cfg, err := decode(merged)
	if err != nil {
		return nil, &Error{Kind: KindParse, Path: path, Err: err}
	}
	applyDefaults(cfg)

	if violations := validateConfig(cfg); len(violations) > 0 {
		return nil, &Error{Kind: KindValidation, Path: path, Violations: violations}
	}
	return cfg, nil
}

// resolveRaw loads one file and merges its parent chain underneath it.
// visited guards against cyclic extends chains, which would otherwise recurse
// forever.
func resolveRaw(path string, visited map[string]bool) (map[string]any, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &Error{Kind: KindParse, Path: path, Err: err}
	}
	if visited[abs] {
		return nil, &Error{Kind: KindParse, Path: path, Err: fmt.Errorf("cyclic extends chain at %s", path)}
	}
	visited[abs] = true

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &Error{Kind: KindNotFound, Path: path, Err: err}
		}
		return nil, &Error{Kind: KindParse, Path: path, Err: err}
	}

	var raw map[string]any
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, &Error{Kind: KindParse, Path: path, Err: err}
	}

	parentPath, ok := raw["extends"].(string)
	if !ok || parentPath == "" {
		delete(raw, "extends")
		return raw, nil
	}

	base, err := resolveRaw(filepath.Join(filepath.Dir(path), parentPath), visited)
	if err != nil {
		return nil, err
	}
	delete(raw, "extends")
	return mergeConfigs(base, raw), nil
}

// mergeConfigs deep-merges override on top of base. Maps merge key-by-key
// recursively; arrays in the override replace the base array wholesale; all
// other values in the override replace the base value.
func mergeConfigs(base, override map[string]any) map[string]any {
	result := make(map[string]any, len(base)+len(override))
	for k, v := range base {
		result[k] = v
	}

	for key, overrideValue := range override {
		if overrideMap, ok := overrideValue.(map[string]any); ok {
			if baseMap, ok := result[key].(map[string]any); ok {
				result[key] = mergeConfigs(baseMap, overrideMap)
				continue
			}
		}
		result[key] = overrideValue
	}
	return result
}

func decode(raw map[string]any) (*domain.StoreConfig, error) {
	encoded, err := yaml.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var cfg domain.StoreConfig
	if err := yaml.Unmarshal(encoded, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *domain.StoreConfig) {
	if cfg.Theme != nil && cfg.Theme.Source == "" {
		cfg.Theme.Source = defaultThemeSource
	}
	if cfg.Settings != nil {
		if cfg.Settings.Currency == "" {
			cfg.Settings.Currency = defaultCurrency
		}
		if cfg.Settings.Timezone == "" {
			cfg.Settings.Timezone = defaultTimezone
		}
	}
}

// validateConfig returns one message per violated field, for every violation.
func validateConfig(cfg *domain.StoreConfig) []string {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}

	violations := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		path := strings.TrimPrefix(fe.Namespace(), "StoreConfig.")
		violations = append(violations, fmt.Sprintf("%s: %s", path, violationMessage(fe)))
	}
	return violations
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
