package cliapp

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

type testGeneric struct {
	value string
}

func (g *testGeneric) Set(value string) error {
	g.value = value
	return nil
}

func (g *testGeneric) String() string {
	return g.value
}

func (g *testGeneric) Clone() any {
	cpy := *g
	return &cpy
}

type uncloneableGeneric struct{}

func (uncloneableGeneric) Set(string) error { return nil }
func (uncloneableGeneric) String() string   { return "" }

func TestProtectFlags(t *testing.T) {
	orig := &testGeneric{value: "default"}
	strFlag := &cli.StringFlag{Name: "str"}
	flags := ProtectFlags([]cli.Flag{
		&cli.GenericFlag{Name: "gen", Value: orig},
		strFlag,
	})
	require.Len(t, flags, 2)
	require.Same(t, strFlag, flags[1])

	protected := flags[0].(*cli.GenericFlag)
	require.NotSame(t, orig, protected.Value)
	require.NoError(t, protected.Value.Set("changed"))
	require.Equal(t, "default", orig.value)
}

func TestProtectFlagsPanicsOnUncloneable(t *testing.T) {
	require.Panics(t, func() {
		ProtectFlags([]cli.Flag{&cli.GenericFlag{Name: "gen", Value: uncloneableGeneric{}}})
	})
}
