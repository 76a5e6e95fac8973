package cliutil

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/urfave/cli/v2"
)

// ApplyConfigFile reads a TOML file of `flag-name = value` pairs and applies every value
// whose flag was set neither on the command line nor through its environment variable.
// Keys must name flags of the app; nested tables are not supported.
func ApplyConfigFile(ctx *cli.Context, path string) error {
	var values map[string]any
	if _, err := toml.DecodeFile(path, &values); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	known := make(map[string]bool)
	for _, f := range ctx.App.Flags {
		for _, name := range f.Names() {
			known[name] = true
		}
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if !known[key] {
			return fmt.Errorf("config file %s: unknown flag %q", path, key)
		}
		if ctx.IsSet(key) {
			continue
		}
		value, err := flagValueString(values[key])
		if err != nil {
			return fmt.Errorf("config file %s: flag %q: %w", path, key, err)
		}
		if err := ctx.Set(key, value); err != nil {
			return fmt.Errorf("config file %s: flag %q: %w", path, key, err)
		}
	}
	return nil
}

func flagValueString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			s, err := flagValueString(e)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return strings.Join(parts, ","), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}
