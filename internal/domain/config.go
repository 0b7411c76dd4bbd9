package domain

// StoreConfig is a resolved, validated store configuration. The `extends`
// chain is flattened before a StoreConfig is produced, so the type carries no
// inheritance information.
type StoreConfig struct {
	Store    StoreDetails    `yaml:"store" validate:"required"`
	Theme    *ThemeConfig    `yaml:"theme,omitempty"`
	Apps     []AppConfig     `yaml:"apps,omitempty" validate:"omitempty,dive"`
	Settings *StoreSettings  `yaml:"settings,omitempty"`
	Products *ProductsConfig `yaml:"products,omitempty"`
}

// StoreDetails carries the required identity fields of a store.
type StoreDetails struct {
	Name  string `yaml:"name" validate:"required"`
	Email string `yaml:"email" validate:"required,email"`
}

// ThemeConfig selects a theme source and its customization settings.
type ThemeConfig struct {
	Source   string         `yaml:"source,omitempty"`
	Settings *ThemeSettings `yaml:"settings,omitempty"`
}

// ThemeSettings covers both preset-driven styling and the legacy
// colors/typography fields consumed by the theme builder.
type ThemeSettings struct {
	Preset                string           `yaml:"preset,omitempty"`
	LayoutStyle           string           `yaml:"layout_style,omitempty" validate:"omitempty,oneof=standard editorial bold"`
	NavigationStyle       string           `yaml:"navigation_style,omitempty" validate:"omitempty,oneof=topbar hamburger sidebar"`
	AnimationLevel        string           `yaml:"animation_level,omitempty" validate:"omitempty,oneof=none subtle dynamic"`
	AccentOverride        string           `yaml:"accent_override,omitempty"`
	Logo                  string           `yaml:"logo,omitempty"`
	LogoWidth             int              `yaml:"logo_width,omitempty" validate:"omitempty,min=50,max=300"`
	ExtractColorsFromLogo bool             `yaml:"extract_colors_from_logo,omitempty"`
	Content               *ThemeContent    `yaml:"content,omitempty"`
	Social                *ThemeSocial     `yaml:"social,omitempty"`
	Colors                *ThemeColors     `yaml:"colors,omitempty"`
	Typography            *ThemeTypography `yaml:"typography,omitempty"`
}

// ThemeContent is copy rendered into the hero and footer sections.
type ThemeContent struct {
	HeroHeading    string `yaml:"hero_heading,omitempty"`
	HeroSubheading string `yaml:"hero_subheading,omitempty"`
	HeroButtonText string `yaml:"hero_button_text,omitempty"`
	Tagline        string `yaml:"tagline,omitempty"`
}

// ThemeSocial holds social profile URLs rendered into the footer.
type ThemeSocial struct {
	Instagram string `yaml:"instagram,omitempty" validate:"omitempty,url"`
	Twitter   string `yaml:"twitter,omitempty" validate:"omitempty,url"`
	YouTube   string `yaml:"youtube,omitempty" validate:"omitempty,url"`
	TikTok    string `yaml:"tiktok,omitempty" validate:"omitempty,url"`
	Spotify   string `yaml:"spotify,omitempty" validate:"omitempty,url"`
}

// ThemeColors are the legacy custom color fields, used when no preset is set.
type ThemeColors struct {
	Primary    string `yaml:"primary,omitempty"`
	Secondary  string `yaml:"secondary,omitempty"`
	Background string `yaml:"background,omitempty"`
	Accent     string `yaml:"accent,omitempty"`
	Text       string `yaml:"text,omitempty"`
}

// ThemeTypography selects heading and body fonts.
type ThemeTypography struct {
	HeadingFont string `yaml:"heading_font,omitempty"`
	BodyFont    string `yaml:"body_font,omitempty"`
}

// AppConfig names an app the store expects to have installed.
type AppConfig struct {
	Name     string `yaml:"name" validate:"required"`
	Required bool   `yaml:"required"`
}

// StoreSettings carries store-level commerce settings.
type StoreSettings struct {
	Currency string            `yaml:"currency,omitempty"`
	Timezone string            `yaml:"timezone,omitempty"`
	Shipping *ShippingSettings `yaml:"shipping,omitempty"`
	Checkout *CheckoutSettings `yaml:"checkout,omitempty"`
}

// ShippingSettings configures flat-rate and free-shipping behavior.
type ShippingSettings struct {
	DomesticFlatRate      *float64 `yaml:"domestic_flat_rate,omitempty"`
	FreeShippingThreshold *float64 `yaml:"free_shipping_threshold,omitempty"`
}

// CheckoutSettings configures checkout behavior.
type CheckoutSettings struct {
	RequirePhone bool `yaml:"require_phone"`
	EnableTips   bool `yaml:"enable_tips"`
}

// ProductsConfig points at the CSV product source for an import.
type ProductsConfig struct {
	Source            string `yaml:"source" validate:"required"`
	CreateCollections *bool  `yaml:"create_collections,omitempty"`
}

// ShouldCreateCollections reports whether collection creation is enabled.
// It defaults to true when unset.
func (p *ProductsConfig) ShouldCreateCollections() bool {
	return p.CreateCollections == nil || *p.CreateCollections
}
