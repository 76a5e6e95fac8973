package op_service

import (
	"strings"
)

// PrefixEnvVar returns the env var names of a flag: the prefixed and upper-cased name.
func PrefixEnvVar(prefix, suffix string) []string {
	return []string{strings.ToUpper(prefix + "_" + suffix)}
}
