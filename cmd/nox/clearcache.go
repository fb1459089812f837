package main

import (
	"fmt"

	"github.com/mvil/nox"
)

// Run executes the clear-cache command.
func (c *ClearCacheCmd) Run(deps *Dependencies) error {
	if deps.Cache == nil {
		fmt.Fprintln(deps.Stdout, "Caching is disabled, nothing to clear.")
		return nil
	}

	if len(c.IDs) == 0 {
		if err := deps.Cache.Clear(deps.Ctx); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", nox.ErrorMessage(err))
			return err
		}
		fmt.Fprintln(deps.Stdout, "Cleared all cached sources.")
		return nil
	}

	for _, id := range c.IDs {
		if _, ok := nox.FindSource(deps.Sources, id); !ok {
			fmt.Fprintf(deps.Stderr, "error: unknown source %q. Use 'nox sources' to see available sources.\n", id)
			return nox.Errorf(nox.ENOTFOUND, "unknown source %q", id)
		}
		if err := deps.Cache.Delete(deps.Ctx, id); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", nox.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stdout, "Cleared %s\n", id)
	}
	return nil
}
