package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"

	"github.com/kolah/truffle/internal/index"
	"github.com/kolah/truffle/internal/logging"
	"github.com/kolah/truffle/internal/request"
)

// DefaultFile is picked up from the working directory when --config is not
// given.
const DefaultFile = "truffle.yaml"

type Config struct {
	Spec              string         `koanf:"spec"`
	BaseURL           string         `koanf:"base-url"`
	Auth              AuthConfig     `koanf:"auth"`
	HiddenPaths       []string       `koanf:"hidden-paths"`
	Timeout           time.Duration  `koanf:"timeout"`
	LogLevel          string         `koanf:"log-level"`
	Color             bool           `koanf:"color"`
	Templates         TemplateConfig `koanf:"templates"`
	ValidateResponses bool           `koanf:"validate-responses"`
}

type AuthConfig struct {
	Header   string `koanf:"header"`
	Token    string `koanf:"token"`
	TokenEnv string `koanf:"token-env"`
}

type TemplateConfig struct {
	Dir string `koanf:"dir"`
}

func defaults() map[string]any {
	return map[string]any{
		"auth.header":        request.DefaultAuthHeader,
		"hidden-paths":       slices.Clone(index.DefaultHiddenPaths),
		"timeout":            "30s",
		"log-level":          "info",
		"validate-responses": true,
	}
}

// BindFlags binds the flags shared by every command.
func BindFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringP("config", "c", "", "Config file path (default: truffle.yaml)")
	flags.StringP("spec", "s", "", "OpenAPI document path or URL")
	flags.String("base-url", "", "Base URL overriding servers[0].url")
	flags.String("auth-header", "", "Header carrying the API token (default: X-API-Key)")
	flags.String("token", "", "API token sent with every request")
	flags.String("token-env", "", "Environment variable holding the API token")
	flags.StringSlice("hidden-paths", nil, "Paths excluded from the endpoint index")
	flags.Duration("timeout", 0, "Timeout for fetching the document and for live calls (default: 30s)")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.Bool("color", false, "Highlight JSON output")
	flags.String("templates", "", "Custom templates directory")
	flags.Bool("validate-responses", true, "Check live responses against the documented schema")
}

func Load(cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	configFile, _ := cmd.Flags().GetString("config")
	if configFile == "" {
		configFile, _ = cmd.PersistentFlags().GetString("config")
	}
	if configFile == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			configFile = DefaultFile
		}
	}

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	flagsMap := buildFlagsMap(cmd)
	if len(flagsMap) > 0 {
		if err := k.Load(confmap.Provider(flagsMap, "."), nil); err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// buildFlagsMap collects the flags set on the command line. Unchanged flags
// are left out so they never shadow the config file.
func buildFlagsMap(cmd *cobra.Command) map[string]any {
	m := make(map[string]any)

	flagChanged := func(name string) bool {
		return cmd.Flags().Changed(name) || cmd.PersistentFlags().Changed(name)
	}

	getString := func(name string) string {
		if v, err := cmd.Flags().GetString(name); err == nil && v != "" {
			return v
		}
		if v, err := cmd.PersistentFlags().GetString(name); err == nil && v != "" {
			return v
		}
		return ""
	}

	getStringSlice := func(name string) []string {
		if v, err := cmd.Flags().GetStringSlice(name); err == nil && len(v) > 0 {
			return v
		}
		if v, err := cmd.PersistentFlags().GetStringSlice(name); err == nil && len(v) > 0 {
			return v
		}
		return nil
	}

	getBool := func(name string) bool {
		if v, err := cmd.Flags().GetBool(name); err == nil {
			return v
		}
		if v, err := cmd.PersistentFlags().GetBool(name); err == nil {
			return v
		}
		return false
	}

	getDuration := func(name string) time.Duration {
		if v, err := cmd.Flags().GetDuration(name); err == nil && v != 0 {
			return v
		}
		if v, err := cmd.PersistentFlags().GetDuration(name); err == nil {
			return v
		}
		return 0
	}

	if v := getString("spec"); v != "" {
		m["spec"] = v
	}
	if v := getString("base-url"); v != "" {
		m["base-url"] = v
	}
	if v := getString("auth-header"); v != "" {
		m["auth.header"] = v
	}
	if v := getString("token"); v != "" {
		m["auth.token"] = v
	}
	if v := getString("token-env"); v != "" {
		m["auth.token-env"] = v
	}
	if flagChanged("hidden-paths") {
		m["hidden-paths"] = getStringSlice("hidden-paths")
	}
	if flagChanged("timeout") {
		m["timeout"] = getDuration("timeout")
	}
	if v := getString("log-level"); v != "" {
		m["log-level"] = v
	}
	if flagChanged("color") {
		m["color"] = getBool("color")
	}
	if v := getString("templates"); v != "" {
		m["templates.dir"] = v
	}
	if flagChanged("validate-responses") {
		m["validate-responses"] = getBool("validate-responses")
	}

	return m
}

func (c *Config) Validate() error {
	if c.Spec == "" {
		return fmt.Errorf("spec is required")
	}
	if !logging.ValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", c.LogLevel)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.Auth.Header == "" {
		return fmt.Errorf("auth header name is required")
	}
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid base url: %s (must be an absolute http or https URL)", c.BaseURL)
		}
	}
	return nil
}

// Credential returns the configured token. A token read from the named
// environment variable wins over an inline one.
func (c *Config) Credential() request.Credential {
	token := c.Auth.Token
	if c.Auth.TokenEnv != "" {
		if v := os.Getenv(c.Auth.TokenEnv); v != "" {
			token = v
		}
	}
	return request.Credential{Header: c.Auth.Header, Token: token}
}

// Hidden returns the set of paths excluded from the index.
func (c *Config) Hidden() index.Hidden {
	return index.NewHidden(c.HiddenPaths...)
}
