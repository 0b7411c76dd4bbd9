package theme

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spinup/internal/domain"
)

const fixtureSettings = `{
  "current": {
    "layout_style": "standard",
    "untouched_key": "keep-me"
  },
  "presets": {
    "Mosh Pit": {
      "custom_colors_enabled": true,
      "custom_primary": "#ff0044"
    }
  }
}`

func writeThemeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "settings_data.json"), []byte(fixtureSettings), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets", "base.css"), []byte("body{}"), 0o644))
	return dir
}

func customize(t *testing.T, cfg *domain.StoreConfig, configDir string) (string, map[string]any) {
	t.Helper()
	themeDir := writeThemeFixture(t)
	outDir := filepath.Join(t.TempDir(), "out")

	err := Customize(CustomizeOptions{
		ConfigPath: filepath.Join(configDir, "store.yaml"),
		Config:     cfg,
		ThemePath:  themeDir,
		OutputPath: outDir,
		Logger:     zerolog.Nop(),
	})
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(outDir, "config", "settings_data.json"))
	require.NoError(t, err)
	var settingsData map[string]any
	require.NoError(t, json.Unmarshal(raw, &settingsData))
	return outDir, settingsData
}

func TestCustomizeCopiesThemeAndPreservesUnknownKeys(t *testing.T) {
	cfg := &domain.StoreConfig{Store: domain.StoreDetails{Name: "Test Records"}}
	outDir, settingsData := customize(t, cfg, t.TempDir())

	_, err := os.Stat(filepath.Join(outDir, "assets", "base.css"))
	require.NoError(t, err)

	current := settingsData["current"].(map[string]any)
	assert.Equal(t, "keep-me", current["untouched_key"])
	assert.Contains(t, settingsData, "presets")
}

func TestCustomizeAppliesPreset(t *testing.T) {
	cfg := &domain.StoreConfig{
		Store: domain.StoreDetails{Name: "Test Records"},
		Theme: &domain.ThemeConfig{Settings: &domain.ThemeSettings{Preset: "mosh-pit"}},
	}
	_, settingsData := customize(t, cfg, t.TempDir())

	current := settingsData["current"].(map[string]any)
	assert.Equal(t, true, current["custom_colors_enabled"])
	assert.Equal(t, "#ff0044", current["custom_primary"])
}

func TestCustomizeLayoutOverrides(t *testing.T) {
	cfg := &domain.StoreConfig{
		Store: domain.StoreDetails{Name: "Test Records"},
		Theme: &domain.ThemeConfig{Settings: &domain.ThemeSettings{
			LayoutStyle:     "editorial",
			NavigationStyle: "hamburger",
			AnimationLevel:  "subtle",
		}},
	}
	_, settingsData := customize(t, cfg, t.TempDir())

	current := settingsData["current"].(map[string]any)
	assert.Equal(t, "editorial", current["layout_style"])
	assert.Equal(t, "hamburger", current["navigation_style"])
	assert.Equal(t, "subtle", current["animation_level"])
}

func TestCustomizeCopiesLogoAndSetsWidth(t *testing.T) {
	configDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "logo.svg"), []byte("<svg/>"), 0o644))

	cfg := &domain.StoreConfig{
		Store: domain.StoreDetails{Name: "Test Records"},
		Theme: &domain.ThemeConfig{Settings: &domain.ThemeSettings{
			Logo:      "logo.svg",
			LogoWidth: 180,
		}},
	}
	outDir, settingsData := customize(t, cfg, configDir)

	_, err := os.Stat(filepath.Join(outDir, "assets", "logo.svg"))
	require.NoError(t, err)
	current := settingsData["current"].(map[string]any)
	assert.EqualValues(t, 180, current["logo_width"])
}

func TestCustomizeMissingLogoIsNonFatal(t *testing.T) {
	cfg := &domain.StoreConfig{
		Store: domain.StoreDetails{Name: "Test Records"},
		Theme: &domain.ThemeConfig{Settings: &domain.ThemeSettings{Logo: "missing.png"}},
	}
	outDir, _ := customize(t, cfg, t.TempDir())

	_, err := os.Stat(filepath.Join(outDir, "assets", "logo.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestCustomizeLegacyColorsWithoutPreset(t *testing.T) {
	cfg := &domain.StoreConfig{
		Store: domain.StoreDetails{Name: "Test Records"},
		Theme: &domain.ThemeConfig{Settings: &domain.ThemeSettings{
			Colors: &domain.ThemeColors{Primary: "#111111", Accent: "#222222"},
		}},
	}
	_, settingsData := customize(t, cfg, t.TempDir())

	current := settingsData["current"].(map[string]any)
	assert.Equal(t, true, current["custom_colors_enabled"])
	assert.Equal(t, "#111111", current["custom_primary"])
	assert.Equal(t, "#222222", current["custom_accent"])
}

func TestCustomizeAccentOverrideWinsOverCustomAccent(t *testing.T) {
	cfg := &domain.StoreConfig{
		Store: domain.StoreDetails{Name: "Test Records"},
		Theme: &domain.ThemeConfig{Settings: &domain.ThemeSettings{
			AccentOverride: "#00ffaa",
			Colors:         &domain.ThemeColors{Accent: "#222222"},
		}},
	}
	_, settingsData := customize(t, cfg, t.TempDir())

	current := settingsData["current"].(map[string]any)
	assert.Equal(t, "#00ffaa", current["accent_override"])
	// Legacy colors run after the override, so custom_accent keeps the
	// configured accent while accent_override carries the final say.
	assert.Equal(t, "#222222", current["custom_accent"])
}

func TestCustomizeSectionsContentAndSocial(t *testing.T) {
	cfg := &domain.StoreConfig{
		Store: domain.StoreDetails{Name: "Test Records"},
		Theme: &domain.ThemeConfig{Settings: &domain.ThemeSettings{
			Content: &domain.ThemeContent{
				HeroSubheading: "New drops weekly",
				Tagline:        "Independent since 2020",
			},
			Social: &domain.ThemeSocial{
				Instagram: "https://instagram.com/testrecords",
				Spotify:   "https://open.spotify.com/artist/x",
			},
		}},
	}
	_, settingsData := customize(t, cfg, t.TempDir())

	current := settingsData["current"].(map[string]any)
	sections := current["sections"].(map[string]any)

	hero := sections["hero-index"].(map[string]any)["settings"].(map[string]any)
	assert.Equal(t, "Test Records", hero["heading"])
	assert.Equal(t, "New drops weekly", hero["subheading"])

	footer := sections["footer"].(map[string]any)["settings"].(map[string]any)
	assert.Equal(t, "Independent since 2020", footer["tagline"])
	assert.Equal(t, "https://instagram.com/testrecords", footer["social_instagram"])
	assert.Equal(t, "https://open.spotify.com/artist/x", footer["social_spotify"])
}

func TestPushBuildsCLIArgs(t *testing.T) {
	var gotName string
	var gotArgs []string
	orig := runCommand
	runCommand = func(ctx context.Context, name string, args ...string) error {
		gotName = name
		gotArgs = args
		return nil
	}
	t.Cleanup(func() { runCommand = orig })

	err := Push(context.Background(), PushOptions{ThemeDir: "/tmp/theme", Shop: "my-shop.myshopify.com"})
	require.NoError(t, err)

	assert.Equal(t, "shopify", gotName)
	assert.Equal(t, []string{"theme", "push", "--path", "/tmp/theme", "--store", "my-shop.myshopify.com", "--allow-live"}, gotArgs)
}

func TestPushUnpublished(t *testing.T) {
	var gotArgs []string
	orig := runCommand
	runCommand = func(ctx context.Context, name string, args ...string) error {
		gotArgs = args
		return nil
	}
	t.Cleanup(func() { runCommand = orig })

	err := Push(context.Background(), PushOptions{ThemeDir: "/tmp/theme", Shop: "my-shop.myshopify.com", Unpublished: true})
	require.NoError(t, err)
	assert.Contains(t, gotArgs, "--unpublished")
	assert.NotContains(t, gotArgs, "--allow-live")
}

func TestListThemesArgs(t *testing.T) {
	var gotArgs []string
	orig := runCommand
	runCommand = func(ctx context.Context, name string, args ...string) error {
		gotArgs = args
		return nil
	}
	t.Cleanup(func() { runCommand = orig })

	require.NoError(t, ListThemes(context.Background(), "my-shop.myshopify.com"))
	assert.Equal(t, []string{"theme", "list", "--store", "my-shop.myshopify.com"}, gotArgs)
}

func TestPushMissingCLI(t *testing.T) {
	orig := runCommand
	runCommand = func(ctx context.Context, name string, args ...string) error {
		return errors.New("exec: \"shopify\": executable file not found in $PATH")
	}
	t.Cleanup(func() { runCommand = orig })

	err := Push(context.Background(), PushOptions{ThemeDir: "x", Shop: "y"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is it installed?")
}
