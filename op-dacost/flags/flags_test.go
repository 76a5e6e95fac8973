package flags

import (
	"os"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// TestUniqueFlags asserts that all flag names are unique, to avoid accidental conflicts between the many flags.
func TestUniqueFlags(t *testing.T) {
	seenCLI := make(map[string]struct{})
	for _, flag := range Flags {
		for _, name := range flag.Names() {
			if _, ok := seenCLI[name]; ok {
				t.Errorf("duplicate flag %s", name)
				continue
			}
			seenCLI[name] = struct{}{}
		}
	}
}

// TestEnvVarFormat asserts that every flag can be set through its prefixed env var.
func TestEnvVarFormat(t *testing.T) {
	for _, flag := range Flags {
		envFlag, ok := flag.(interface{ GetEnvVars() []string })
		require.True(t, ok, "must be able to cast the flag to an EnvVar interface")
		envFlagGetter := envFlag.GetEnvVars()
		require.NotEmpty(t, envFlagGetter, "flag %s has no env var", flag.Names()[0])

		expected := EnvVarPrefix + "_" + strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(flag.Names()[0]))
		require.True(t, slices.Contains(envFlagGetter, expected), "flag %s must have env var %s, got %v", flag.Names()[0], expected, envFlagGetter)
	}
}

func TestAlchemyKeyEnvVar(t *testing.T) {
	require.Contains(t, AlchemyKeyFlag.EnvVars, "ALCHEMY_KEY")
}

func TestCheckRequired(t *testing.T) {
	run := func(args ...string) error {
		app := cli.NewApp()
		app.Flags = []cli.Flag{L1EthRpcFlag, AlchemyKeyFlag}
		app.Action = CheckRequired
		return app.Run(append([]string{"test"}, args...))
	}
	for _, env := range []string{"ALCHEMY_KEY", "OP_DACOST_ALCHEMY_KEY", "OP_DACOST_L1_ETH_RPC"} {
		t.Setenv(env, "") // restores the original value on cleanup
		require.NoError(t, os.Unsetenv(env))
	}
	require.ErrorContains(t, run(), "is required")
	require.NoError(t, run("--l1-eth-rpc=http://localhost:8545"))
	require.NoError(t, run("--alchemy-key=abc"))
}
