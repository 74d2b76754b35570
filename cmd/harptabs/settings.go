package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/0xlemi/harptabs/internal/model"
	"github.com/0xlemi/harptabs/internal/settings"
	"github.com/spf13/cobra"
)

var (
	errUnknownSetting = errors.New("unknown setting")
	errInvalidTheme   = errors.New("theme must be system, light or dark")
)

func newSettingsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change preferences",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get [key]",
		Short: "Print preferences",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, opts, func(ctx context.Context, e *env) error {
				s, err := e.settings.Load(ctx)
				if err != nil {
					return err
				}
				values := settingValues(s)
				out := cmd.OutOrStdout()
				if len(args) == 1 {
					v, ok := values[args[0]]
					if !ok {
						return fmt.Errorf("%w: %q", errUnknownSetting, args[0])
					}
					fmt.Fprintln(out, v)
					return nil
				}
				for _, key := range settingKeys {
					fmt.Fprintf(out, "%s: %s\n", key, values[key])
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a preference",
		Long: `Change a preference. Keys:
  theme_mode            system, light or dark
  haptics_enabled       true or false
  onboarding_completed  true or false`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, opts, func(ctx context.Context, e *env) error {
				return setSetting(ctx, e.settings, args[0], args[1])
			})
		},
	})
	return cmd
}

var settingKeys = []string{settings.KeyThemeMode, settings.KeyHapticsEnabled, settings.KeyOnboardingCompleted}

func settingValues(s settings.Settings) map[string]string {
	return map[string]string{
		settings.KeyThemeMode:           string(s.ThemeMode),
		settings.KeyHapticsEnabled:      strconv.FormatBool(s.HapticsEnabled),
		settings.KeyOnboardingCompleted: strconv.FormatBool(s.OnboardingCompleted),
	}
}

func setSetting(ctx context.Context, repo *settings.Repository, key, value string) error {
	switch key {
	case settings.KeyThemeMode:
		mode := model.ThemeMode(value)
		if model.ThemeModeFromStorage(value) != mode {
			return fmt.Errorf("%w: %q", errInvalidTheme, value)
		}
		return repo.SetThemeMode(ctx, mode)
	case settings.KeyHapticsEnabled, settings.KeyOnboardingCompleted:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if key == settings.KeyHapticsEnabled {
			return repo.SetHapticsEnabled(ctx, v)
		}
		return repo.SetOnboardingCompleted(ctx, v)
	default:
		return fmt.Errorf("%w: %q", errUnknownSetting, key)
	}
}
