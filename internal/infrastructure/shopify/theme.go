package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"spinup/internal/domain"
	"spinup/internal/ports"
)

const mainThemeQuery = `
  query MainTheme {
    themes(first: 10, roles: [MAIN]) {
      edges {
        node {
          id
          name
          role
        }
      }
    }
  }
`

const themeFilesUpsertMutation = `
  mutation ThemeFilesUpsert($themeId: ID!, $files: [OnlineStoreThemeFilesUpsertFileInput!]!) {
    themeFilesUpsert(themeId: $themeId, files: $files) {
      upsertedThemeFiles {
        filename
      }
      userErrors {
        field
        message
      }
    }
  }
`

const themeUpdateMutation = `
  mutation ThemeUpdate($id: ID!, $input: OnlineStoreThemeInput!) {
    themeUpdate(id: $id, input: $input) {
      theme {
        id
        name
      }
      userErrors {
        field
        message
      }
    }
  }
`

type themesResponse struct {
	Themes struct {
		Edges []struct {
			Node struct {
				ID   string `json:"id"`
				Name string `json:"name"`
				Role string `json:"role"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"themes"`
}

type themeFilesUpsertResponse struct {
	ThemeFilesUpsert struct {
		UpsertedThemeFiles []struct {
			Filename string `json:"filename"`
		} `json:"upsertedThemeFiles"`
		UserErrors []UserError `json:"userErrors"`
	} `json:"themeFilesUpsert"`
}

type themeUpdateResponse struct {
	ThemeUpdate struct {
		Theme *struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"theme"`
		UserErrors []UserError `json:"userErrors"`
	} `json:"themeUpdate"`
}

// ThemeBuilder applies store-level theme settings to the published theme by
// overwriting its settings_data.json.
type ThemeBuilder struct {
	client ports.GraphQLClient
	logger zerolog.Logger
}

// NewThemeBuilder creates a theme builder.
func NewThemeBuilder(client ports.GraphQLClient, logger zerolog.Logger) *ThemeBuilder {
	return &ThemeBuilder{client: client, logger: logger}
}

// BuildSettingsData maps config colors and typography onto Dawn-compatible
// setting keys, wrapped in the current settings block.
func BuildSettingsData(settings domain.ThemeSettings) map[string]any {
	current := make(map[string]any)

	if settings.Colors != nil {
		if settings.Colors.Primary != "" {
			current["colors_solid_button_labels"] = settings.Colors.Primary
			current["colors_accent_1"] = settings.Colors.Primary
		}
		if settings.Colors.Secondary != "" {
			current["colors_accent_2"] = settings.Colors.Secondary
		}
	}
	if settings.Typography != nil {
		if settings.Typography.HeadingFont != "" {
			current["type_header_font"] = settings.Typography.HeadingFont
		}
		if settings.Typography.BodyFont != "" {
			current["type_body_font"] = settings.Typography.BodyFont
		}
	}

	return map[string]any{"current": current}
}

// MainThemeID resolves the ID of the shop's published theme.
func (b *ThemeBuilder) MainThemeID(ctx context.Context) (string, error) {
	var resp themesResponse
	if err := b.client.Execute(ctx, mainThemeQuery, nil, &resp); err != nil {
		return "", fmt.Errorf("failed to fetch themes: %w", err)
	}
	for _, edge := range resp.Themes.Edges {
		if edge.Node.Role == "MAIN" {
			return edge.Node.ID, nil
		}
	}
	return "", errors.New("no main theme found")
}

// UploadSettings writes the settings payload to the theme's
// config/settings_data.json.
func (b *ThemeBuilder) UploadSettings(ctx context.Context, themeID string, settingsData map[string]any) error {
	value, err := json.MarshalIndent(settingsData, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	var resp themeFilesUpsertResponse
	err = b.client.Execute(ctx, themeFilesUpsertMutation, map[string]any{
		"themeId": themeID,
		"files": []map[string]any{
			{
				"filename": "config/settings_data.json",
				"body": map[string]any{
					"type":  "JSON",
					"value": string(value),
				},
			},
		},
	}, &resp)
	if err != nil {
		return err
	}
	if len(resp.ThemeFilesUpsert.UserErrors) > 0 {
		return &BuilderError{Op: "failed to upload theme settings", UserErrors: resp.ThemeFilesUpsert.UserErrors}
	}
	return nil
}

// Configure maps the config's theme settings and uploads them to the main
// theme.
func (b *ThemeBuilder) Configure(ctx context.Context, settings domain.ThemeSettings) error {
	themeID, err := b.MainThemeID(ctx)
	if err != nil {
		return err
	}

	b.logger.Info().Str("themeId", themeID).Msg("Applying theme settings")
	return b.UploadSettings(ctx, themeID, BuildSettingsData(settings))
}

// Rename updates the main theme's display name.
func (b *ThemeBuilder) Rename(ctx context.Context, name string) error {
	themeID, err := b.MainThemeID(ctx)
	if err != nil {
		return err
	}

	var resp themeUpdateResponse
	err = b.client.Execute(ctx, themeUpdateMutation, map[string]any{
		"id":    themeID,
		"input": map[string]any{"name": name},
	}, &resp)
	if err != nil {
		return err
	}
	if len(resp.ThemeUpdate.UserErrors) > 0 {
		return &BuilderError{Op: "failed to rename theme", UserErrors: resp.ThemeUpdate.UserErrors}
	}
	if resp.ThemeUpdate.Theme == nil {
		return errors.New("theme update returned no theme")
	}
	return nil
}
