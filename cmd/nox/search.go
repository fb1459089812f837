package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mvil/nox"
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	st, err := deps.Corpora.Load(deps.Ctx, c.Source)
	if err != nil {
		if nox.ErrorCode(err) == nox.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: unknown source %q. Use 'nox sources' to see available sources.\n", c.Source)
		} else {
			fmt.Fprintf(deps.Stderr, "error: %s\n", nox.ErrorMessage(err))
		}
		return err
	}

	switch st.State {
	case nox.StateFailed:
		fmt.Fprintf(deps.Stderr, "error: could not load %s: %s\n", st.Source.Name, nox.ErrorMessage(st.Err))
		return st.Err
	case nox.StateReadyStale:
		fmt.Fprintf(deps.Stderr, "warning: %s could not be refreshed, showing cached options from %s\n",
			st.Source.Name, st.Corpus.FetchedAt.Format("2006-01-02"))
	}

	matches, err := deps.Corpora.Query(c.Source, strings.Join(c.Query, " "))
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", nox.ErrorMessage(err))
		return err
	}
	if len(matches) == 0 {
		fmt.Fprintln(deps.Stdout, "No matching options.")
		return nil
	}

	total := len(matches)
	if c.Limit > 0 && total > c.Limit {
		matches = matches[:c.Limit]
	}

	for i, m := range matches {
		if c.Long {
			if i > 0 {
				fmt.Fprintln(deps.Stdout)
			}
			writeLong(deps.Stdout, st.Source, m.Record)
			continue
		}
		fmt.Fprintf(deps.Stdout, "%s  %s\n", m.Record.Name, m.Record.Type)
	}
	if len(matches) < total {
		fmt.Fprintf(deps.Stdout, "... %d more\n", total-len(matches))
	}
	return nil
}

func writeLong(w io.Writer, src *nox.Source, r *nox.Record) {
	fmt.Fprintln(w, r.Name)
	fmt.Fprintf(w, "  Type: %s\n", r.Type)
	if r.Default != "" {
		fmt.Fprintf(w, "  Default: %s\n", indent(r.Default))
	}
	if r.Example != "" {
		fmt.Fprintf(w, "  Example: %s\n", indent(r.Example))
	}
	if r.Description != "" {
		fmt.Fprintf(w, "\n  %s\n\n", indent(r.Description))
	}
	for _, p := range r.Paths() {
		fmt.Fprintf(w, "  Declared by: %s\n", p)
	}
	fmt.Fprintf(w, "  %s\n", src.DocURL(r))
}

func indent(s string) string {
	return strings.ReplaceAll(s, "\n", "\n  ")
}
