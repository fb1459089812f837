package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/mvil/nox"
)

// Run executes the refresh command.
func (c *RefreshCmd) Run(deps *Dependencies) error {
	ids := c.IDs
	if len(ids) == 0 {
		for _, t := range deps.Corpora.Tabs() {
			ids = append(ids, t.Source.ID)
		}
	}

	var failed int
	for _, id := range ids {
		st, err := deps.Corpora.Refresh(deps.Ctx, id)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", nox.ErrorMessage(err))
			return err
		}
		if err := deps.Ctx.Err(); err != nil {
			return err
		}

		switch st.State {
		case nox.StateReady:
			fmt.Fprintf(deps.Stdout, "%s: %s options%s\n", id, humanize.Comma(int64(st.Corpus.Len())), version(st.Corpus))
		case nox.StateReadyStale:
			failed++
			fmt.Fprintf(deps.Stdout, "%s: kept cached options%s (%s)\n", id, version(st.Corpus), nox.ErrorMessage(st.Err))
		default:
			failed++
			fmt.Fprintf(deps.Stdout, "%s: failed (%s)\n", id, nox.ErrorMessage(st.Err))
		}
	}

	if failed > 0 {
		return nox.Errorf(nox.EFETCH, "%d of %d sources could not be refreshed", failed, len(ids))
	}
	return nil
}

func version(c *nox.Corpus) string {
	if c == nil || c.Version == "" {
		return ""
	}
	return " [" + c.Version + "]"
}
