package theme

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// PushOptions configure a theme push through the Shopify CLI.
type PushOptions struct {
	ThemeDir string
	Shop     string
	// Unpublished uploads as a new unpublished theme instead of overwriting
	// the live one.
	Unpublished bool
}

// runCommand is swapped out in tests.
var runCommand = func(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Push uploads the theme directory with `shopify theme push`. The CLI owns
// the terminal for the duration so its progress output and prompts come
// through untouched.
func Push(ctx context.Context, opts PushOptions) error {
	args := []string{"theme", "push", "--path", opts.ThemeDir, "--store", opts.Shop}
	if opts.Unpublished {
		args = append(args, "--unpublished")
	} else {
		args = append(args, "--allow-live")
	}
	return runShopify(ctx, "push", args)
}

// ListThemes prints the shop's themes via `shopify theme list`.
func ListThemes(ctx context.Context, shop string) error {
	return runShopify(ctx, "list", []string{"theme", "list", "--store", shop})
}

func runShopify(ctx context.Context, verb string, args []string) error {
	err := runCommand(ctx, "shopify", args...)
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Errorf("shopify theme %s exited with code %d", verb, exitErr.ExitCode())
	}
	return fmt.Errorf("failed to run shopify CLI (is it installed? npm install -g @shopify/cli): %w", err)
}
