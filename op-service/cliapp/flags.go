package cliapp

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

type CloneableGeneric interface {
	cli.Generic
	Clone() any
}

// ProtectFlags ensures that no flags are safe to Apply() flag sets to without accidental flag-value mutation.
// ProtectFlags panics if any of the flags cannot be protected.
func ProtectFlags(flags []cli.Flag) []cli.Flag {
	out := make([]cli.Flag, 0, len(flags))
	for _, f := range flags {
		fCopy, err := cloneFlag(f)
		if err != nil {
			panic(fmt.Errorf("failed to clone flag %q: %w", f.Names()[0], err))
		}
		out = append(out, fCopy)
	}
	return out
}

func cloneFlag(f cli.Flag) (cli.Flag, error) {
	switch typedFlag := f.(type) {
	case *cli.GenericFlag:
		// A Generic value is shared by pointer: setting it on one app would
		// change the default of the next app using the same flag.
		genValue, ok := typedFlag.Value.(CloneableGeneric)
		if !ok {
			return nil, fmt.Errorf("cannot clone Generic value: %T", typedFlag.Value)
		}
		cpy := *typedFlag
		cpyVal, ok := genValue.Clone().(cli.Generic)
		if !ok {
			return nil, fmt.Errorf("cloned Generic value is not Generic: %T", typedFlag.Value)
		}
		cpy.Value = cpyVal
		return &cpy, nil
	default:
		return f, nil
	}
}
