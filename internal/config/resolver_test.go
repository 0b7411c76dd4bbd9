package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMergeConfigsObjectsMergeRecursively(t *testing.T) {
	base := map[string]any{"a": map[string]any{"x": 1, "y": 2}}
	override := map[string]any{"a": map[string]any{"x": 9}}

	merged := mergeConfigs(base, override)

	a := merged["a"].(map[string]any)
	assert.Equal(t, 9, a["x"])
	assert.Equal(t, 2, a["y"])
}

func TestMergeConfigsArraysReplaceWholesale(t *testing.T) {
	base := map[string]any{"arr": []any{1, 2}}
	override := map[string]any{"arr": []any{3}}

	merged := mergeConfigs(base, override)

	assert.Equal(t, []any{3}, merged["arr"])
}

func TestMergeConfigsScalarsReplace(t *testing.T) {
	base := map[string]any{"name": "base", "keep": true}
	override := map[string]any{"name": "child"}

	merged := mergeConfigs(base, override)

	assert.Equal(t, "child", merged["name"])
	assert.Equal(t, true, merged["keep"])
}

func TestResolveSimpleConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "store.yaml", `
store:
  name: Test Store
  email: owner@example.com
`)

	cfg, err := Resolve(path)

	require.NoError(t, err)
	assert.Equal(t, "Test Store", cfg.Store.Name)
	assert.Equal(t, "owner@example.com", cfg.Store.Email)
}

func TestResolveExtendsInheritsSiblingFields(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "base.yaml", `
store:
  name: Base Store
  email: base@example.com
theme:
  source: spinup
  settings:
    colors:
      primary: "#111111"
      secondary: "#222222"
    typography:
      heading_font: Oswald
      body_font: Inter
`)
	child := writeConfig(t, dir, "child.yaml", `
extends: base.yaml
store:
  name: Child Store
theme:
  settings:
    colors:
      primary: "#ff0000"
`)

	cfg, err := Resolve(child)

	require.NoError(t, err)
	assert.Equal(t, "Child Store", cfg.Store.Name)
	assert.Equal(t, "base@example.com", cfg.Store.Email)
	assert.Equal(t, "#ff0000", cfg.Theme.Settings.Colors.Primary)
	assert.Equal(t, "#222222", cfg.Theme.Settings.Colors.Secondary)
	assert.Equal(t, "Oswald", cfg.Theme.Settings.Typography.HeadingFont)
}

func TestResolveExtendsReplacesArrays(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "base.yaml", `
store:
  name: Base
  email: base@example.com
apps:
  - name: reviews
  - name: email-capture
`)
	child := writeConfig(t, dir, "child.yaml", `
extends: base.yaml
apps:
  - name: analytics
`)

	cfg, err := Resolve(child)

	require.NoError(t, err)
	require.Len(t, cfg.Apps, 1)
	assert.Equal(t, "analytics", cfg.Apps[0].Name)
}

func TestResolveNotFound(t *testing.T) {
	_, err := Resolve(filepath.Join(t.TempDir(), "missing.yaml"))

	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, KindNotFound, cerr.Kind)
}

func TestResolveParseError(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "bad.yaml", "store: [unclosed\n")

	_, err := Resolve(path)

	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, KindParse, cerr.Kind)
}

func TestResolveValidationEnumeratesAllViolations(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "invalid.yaml", `
store:
  name: ""
  email: not-an-email
`)

	_, err := Resolve(path)

	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, KindValidation, cerr.Kind)
	require.Len(t, cerr.Violations, 2)
	assert.Contains(t, cerr.Violations[0], "store.name")
	assert.Contains(t, cerr.Violations[1], "store.email")
}

func TestResolveCyclicExtends(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "a.yaml", "extends: b.yaml\n")
	path := writeConfig(t, dir, "b.yaml", "extends: a.yaml\n")

	_, err := Resolve(path)

	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, KindParse, cerr.Kind)
	assert.Contains(t, cerr.Error(), "cyclic extends")
}

func TestResolveAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "store.yaml", `
store:
  name: Defaults
  email: d@example.com
theme: {}
settings: {}
products:
  source: products.csv
`)

	cfg, err := Resolve(path)

	require.NoError(t, err)
	assert.Equal(t, "spinup", cfg.Theme.Source)
	assert.Equal(t, "USD", cfg.Settings.Currency)
	assert.Equal(t, "America/Los_Angeles", cfg.Settings.Timezone)
	assert.True(t, cfg.Products.ShouldCreateCollections())
}
