package main

import (
	"fmt"

	"github.com/mvil/nox"
	"github.com/mvil/nox/toml"
)

// Run executes the default-config command.
func (c *DefaultConfigCmd) Run(deps *Dependencies) error {
	if !c.Write {
		fmt.Fprint(deps.Stdout, toml.DefaultConfig())
		return nil
	}

	if err := toml.WriteDefault(deps.ConfigPath, c.Force); err != nil {
		if nox.ErrorCode(err) == nox.EINVALID {
			fmt.Fprintf(deps.Stderr, "error: %s. Use --force to overwrite.\n", nox.ErrorMessage(err))
		} else {
			fmt.Fprintf(deps.Stderr, "error: %s\n", nox.ErrorMessage(err))
		}
		return err
	}
	fmt.Fprintf(deps.Stdout, "Wrote %s\n", deps.ConfigPath)
	return nil
}
