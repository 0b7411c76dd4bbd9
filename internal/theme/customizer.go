// Package theme customizes a local theme copy from store config and pushes
// it with the Shopify CLI.
package theme

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"spinup/internal/domain"
)

// CustomizeOptions are the inputs to one theme customization pass.
type CustomizeOptions struct {
	// ConfigPath anchors relative asset paths (the logo) in the config.
	ConfigPath string
	Config     *domain.StoreConfig
	ThemePath  string
	OutputPath string
	Logger     zerolog.Logger
}

// Customize copies the theme into the output directory and rewrites its
// config/settings_data.json from the store config. Keys the config does not
// touch are preserved as-is.
func Customize(opts CustomizeOptions) error {
	if err := copyDir(opts.ThemePath, opts.OutputPath); err != nil {
		return fmt.Errorf("failed to copy theme: %w", err)
	}

	settingsPath := filepath.Join(opts.OutputPath, "config", "settings_data.json")
	raw, err := os.ReadFile(settingsPath)
	if err != nil {
		return fmt.Errorf("failed to read theme settings: %w", err)
	}

	var settingsData map[string]any
	if err := json.Unmarshal(raw, &settingsData); err != nil {
		return fmt.Errorf("failed to decode theme settings: %w", err)
	}

	current, ok := settingsData["current"].(map[string]any)
	if !ok {
		current = make(map[string]any)
		settingsData["current"] = current
	}

	var settings *domain.ThemeSettings
	if opts.Config.Theme != nil {
		settings = opts.Config.Theme.Settings
	}

	if settings != nil {
		applyPreset(settingsData, current, settings.Preset)
		applyLayout(current, settings)

		if settings.Logo != "" {
			if err := applyLogo(opts, current, settings); err != nil {
				return err
			}
		}
		if settings.LogoWidth > 0 {
			current["logo_width"] = settings.LogoWidth
		}

		// The override wins over any extracted or legacy palette.
		if settings.AccentOverride != "" {
			current["accent_override"] = settings.AccentOverride
			if enabled, _ := current["custom_colors_enabled"].(bool); enabled {
				current["custom_accent"] = settings.AccentOverride
			}
		}

		if settings.Preset == "" && settings.Colors != nil {
			applyLegacyColors(current, settings.Colors)
		}

		applySections(current, opts.Config, settings)
	}

	out, err := json.MarshalIndent(settingsData, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode theme settings: %w", err)
	}
	if err := os.WriteFile(settingsPath, out, 0o644); err != nil {
		return fmt.Errorf("failed to write theme settings: %w", err)
	}
	return nil
}

// presetTitle converts a preset slug like "mosh-pit" into the title-cased
// key used in settings_data.json presets ("Mosh Pit").
func presetTitle(preset string) string {
	words := strings.Split(preset, "-")
	for i, word := range words {
		if word != "" {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

func applyPreset(settingsData, current map[string]any, preset string) {
	if preset == "" {
		return
	}
	presets, ok := settingsData["presets"].(map[string]any)
	if !ok {
		return
	}
	block, ok := presets[presetTitle(preset)].(map[string]any)
	if !ok {
		return
	}
	for k, v := range block {
		current[k] = v
	}
}

func applyLayout(current map[string]any, settings *domain.ThemeSettings) {
	if settings.LayoutStyle != "" {
		current["layout_style"] = settings.LayoutStyle
	}
	if settings.NavigationStyle != "" {
		current["navigation_style"] = settings.NavigationStyle
	}
	if settings.AnimationLevel != "" {
		current["animation_level"] = settings.AnimationLevel
	}
}

func applyLogo(opts CustomizeOptions, current map[string]any, settings *domain.ThemeSettings) error {
	logoPath := settings.Logo
	if !filepath.IsAbs(logoPath) {
		logoPath = filepath.Join(filepath.Dir(opts.ConfigPath), logoPath)
	}

	if _, err := os.Stat(logoPath); err != nil {
		opts.Logger.Warn().Str("logo", logoPath).Msg("Logo file not found, skipping")
		return nil
	}

	ext := filepath.Ext(logoPath)
	if ext == "" {
		ext = ".png"
	}
	dest := filepath.Join(opts.OutputPath, "assets", "logo"+ext)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create assets directory: %w", err)
	}
	if err := copyFile(logoPath, dest); err != nil {
		return fmt.Errorf("failed to copy logo: %w", err)
	}

	if settings.ExtractColorsFromLogo {
		opts.Logger.Warn().Msg("Color extraction from logo is not supported, set colors explicitly")
	}
	return nil
}

func applyLegacyColors(current map[string]any, colors *domain.ThemeColors) {
	if colors.Background == "" && colors.Primary == "" && colors.Secondary == "" && colors.Accent == "" && colors.Text == "" {
		return
	}
	current["custom_colors_enabled"] = true
	if colors.Background != "" {
		current["custom_background"] = colors.Background
	}
	if colors.Text != "" {
		current["custom_text"] = colors.Text
	}
	if colors.Primary != "" {
		current["custom_primary"] = colors.Primary
	}
	if colors.Secondary != "" {
		current["custom_secondary"] = colors.Secondary
	}
	if colors.Accent != "" {
		current["custom_accent"] = colors.Accent
	}
}

func applySections(current map[string]any, cfg *domain.StoreConfig, settings *domain.ThemeSettings) {
	if settings.Content == nil && settings.Social == nil {
		return
	}

	sections, ok := current["sections"].(map[string]any)
	if !ok {
		sections = make(map[string]any)
		current["sections"] = sections
	}

	section := func(name, kind string) map[string]any {
		block, ok := sections[name].(map[string]any)
		if !ok {
			block = map[string]any{"type": kind, "settings": map[string]any{}}
			sections[name] = block
		}
		inner, ok := block["settings"].(map[string]any)
		if !ok {
			inner = make(map[string]any)
			block["settings"] = inner
		}
		return inner
	}

	if content := settings.Content; content != nil {
		hero := section("hero-index", "hero")
		if content.HeroHeading != "" {
			hero["heading"] = content.HeroHeading
		} else if cfg.Store.Name != "" {
			hero["heading"] = cfg.Store.Name
		}
		if content.HeroSubheading != "" {
			hero["subheading"] = content.HeroSubheading
		}
		if content.HeroButtonText != "" {
			hero["button_text"] = content.HeroButtonText
		}
		if content.Tagline != "" {
			section("footer", "footer")["tagline"] = content.Tagline
		}
	}

	if social := settings.Social; social != nil {
		footer := section("footer", "footer")
		if social.Instagram != "" {
			footer["social_instagram"] = social.Instagram
		}
		if social.Twitter != "" {
			footer["social_twitter"] = social.Twitter
		}
		if social.YouTube != "" {
			footer["social_youtube"] = social.YouTube
		}
		if social.TikTok != "" {
			footer["social_tiktok"] = social.TikTok
		}
		if social.Spotify != "" {
			footer["social_spotify"] = social.Spotify
		}
	}
}

func copyDir(src, dest string) error {
	return filepath.WalkDir(src, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		if entry.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
