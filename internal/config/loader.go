package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes environment variables. A double underscore separates
// nesting levels: TREEMAP_CACHE__MAXIMUM_SIZE sets cache.maximum_size.
const EnvPrefix = "TREEMAP_"

// delim separates key levels. Keys such as country names and codes may
// contain dots.
const delim = "/"

// DefaultFiles are looked up, in order, when no file is given.
var DefaultFiles = []string{"treemap.yaml", "treemap.yml"}

// flagKeys maps command line flags onto configuration keys.
var flagKeys = map[string]string{
	"log-level":  "log/level",
	"log-format": "log/format",
}

var validate = validator.New()

// ValidationError reports invalid configuration fields.
type ValidationError struct {
	Fields validator.ValidationErrors
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = fmt.Sprintf("%s failed %q", f.Namespace(), f.Tag())
	}
	return "invalid configuration: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error {
	return e.Fields
}

// Defaults returns the built-in configuration values.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"xlsx/empty":                                  "NA",
		"xlsx/first_data_row":                         3,
		"xlsx/columns/primary":                        "labourrelationlevel1",
		"xlsx/columns/level1":                         "labourrelationlevel1",
		"xlsx/columns/level2":                         "labourrelationlevel2",
		"xlsx/columns/level3":                         "labourrelationlevel3",
		"xlsx/columns/year":                           "year",
		"xlsx/columns/country":                        "country",
		"xlsx/columns/total":                          "total",
		"xlsx/virtual_columns/labrel_prefix":          "labrel",
		"xlsx/virtual_columns/labrel_multiple_prefix": "labrelmultiple",
		"xlsx/virtual_columns/code":                   "code",
		"xlsx/virtual_columns/code_multiple":          "codemultiple",
		"xlsx/virtual_columns/color":                  "color",
		"xlsx/virtual_columns/time_period":            "bmyear",
		"xlsx/virtual_columns/continent":              "continent",
		"treemap/empty":                               "-",
		"treemap/name":                                "Labour relations",
		"treemap/size":                                "total",
		"treemap/round_size":                          true,
		"treemap/always_categorical":                  []string{"bmyear"},
		"cache/maximum_size":                          25,
		"cache/max_access_time":                       "1h",
		"cache/sweep_interval":                        "5m",
		"log/level":                                   "info",
		"log/format":                                  "text",
	}
}

// FindFile returns explicit if set, otherwise the first existing default
// file, or "".
func FindFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range DefaultFiles {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load reads the configuration. Precedence, highest first: flags that were
// set, environment variables, the YAML file, defaults. A nil flag set is
// allowed. The result is validated.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(delim)

	if err := k.Load(confmap.Provider(Defaults(), delim), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path = FindFile(path); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, delim, envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, delim, k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey turns TREEMAP_CACHE__MAXIMUM_SIZE into cache/maximum_size.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", delim)
}

// Validate checks the configuration.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if errors.As(err, &fields) {
		return &ValidationError{Fields: fields}
	}
	return err
}
