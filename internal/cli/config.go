package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/go-jenkins/internal/config"
)

// ConfigCmd creates the config command with subcommands.
// The env parameter provides injectable dependencies for testing.
func ConfigCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage persistent configuration settings.

Configuration is stored in ~/.config/go-jenkins/config with mode 0600.
Settings can also be provided via environment variables.

Supported settings:
  url           Jenkins server URL        (env: JENKINS_URL)
  username      User name for basic auth  (env: JENKINS_USER)
  token         API token or password     (env: JENKINS_TOKEN)
  https-port    Port used with --secure   (env: JENKINS_HTTPS_PORT)`,
		Example: `  jenkins config set url https://ci.example.com
  jenkins config get url
  jenkins config list`,
	}

	cmd.AddCommand(configSetCmd(env))
	cmd.AddCommand(configGetCmd(env))
	cmd.AddCommand(configListCmd(env))

	return cmd
}

// configSetCmd creates the "config set" subcommand.
func configSetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value.

Supported keys: url, username, token, https-port.`,
		Example: `  jenkins config set url https://ci.example.com
  jenkins config set https-port 8443`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(env, args[0], args[1])
		},
	}
}

// configGetCmd creates the "config get" subcommand.
func configGetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Get a configuration value.

Prints the value to stdout, or nothing if not set. The token is masked.`,
		Example: `  jenkins config get url`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(env, args[0])
		},
	}
}

// configListCmd creates the "config list" subcommand.
func configListCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long: `List all configuration values.

Shows both values from the config file and environment variable fallbacks.`,
		Example: `  jenkins config list`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigList(env)
		},
	}
}

// runConfigSet handles the "config set" command.
func runConfigSet(env *Env, key, value string) error {
	if err := config.Validate(key, value); err != nil {
		return err
	}

	if err := env.ConfigStore.SaveAll(map[string]string{key: value}); err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "Set %s = %s\n", key, displayValue(key, value))
	return nil
}

// runConfigGet handles the "config get" command.
func runConfigGet(env *Env, key string) error {
	if !slices.Contains(config.Keys, key) {
		return fmt.Errorf("unknown config key %q (valid keys: %v): %w", key, config.Keys, config.ErrInvalidKey)
	}

	data, err := env.ConfigStore.List()
	if err != nil {
		return err
	}

	value := data[key]
	if value == "" {
		value = env.Getenv(config.EnvVar(key))
	}

	if value != "" {
		fmt.Fprintln(env.Stdout, displayValue(key, value))
	}

	return nil
}

// runConfigList handles the "config list" command.
func runConfigList(env *Env) error {
	data, err := env.ConfigStore.List()
	if err != nil {
		return err
	}

	lines := make([]string, 0, len(config.Keys))
	for _, key := range config.Keys {
		if v := data[key]; v != "" {
			lines = append(lines, fmt.Sprintf("%s=%s", key, displayValue(key, v)))
			continue
		}
		if v := env.Getenv(config.EnvVar(key)); v != "" {
			lines = append(lines, fmt.Sprintf("%s=%s (from env)", key, displayValue(key, v)))
		}
	}

	if len(lines) == 0 {
		fmt.Fprintln(env.Stdout, "No configuration set.")
		fmt.Fprintln(env.Stdout, "\nAvailable settings:")
		for _, key := range config.Keys {
			fmt.Fprintf(env.Stdout, "  %s\n", key)
		}
		return nil
	}

	fmt.Fprintln(env.Stdout, strings.Join(lines, "\n"))
	return nil
}

// displayValue masks secrets for display.
func displayValue(key, value string) string {
	if key != config.KeyToken {
		return value
	}
	const visible = 4
	if len(value) <= visible {
		return strings.Repeat("*", len(value))
	}
	return strings.Repeat("*", len(value)-visible) + value[len(value)-visible:]
}
