package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mvil/nox"
)

// Run executes the sources command.
func (c *SourcesCmd) Run(deps *Dependencies) error {
	headers := []string{"ID", "Name", "Enabled", "Format", "TTL", "Version", "Options", "Fetched", "Size"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignLeft, alignRight}

	rows := make([][]string, 0, len(deps.Sources))
	for _, src := range deps.Sources {
		row := []string{src.ID, src.Name, yesNo(src.Enabled), string(src.Format), ttl(src.TTL), "-", "-", "never", "-"}

		if deps.Cache != nil {
			info, err := deps.Cache.Stat(deps.Ctx, src.ID)
			switch code := nox.ErrorCode(err); code {
			case "":
				row[5] = orDash(info.Version)
				row[6] = humanize.Comma(int64(info.Count))
				row[7] = humanize.Time(info.FetchedAt)
				row[8] = humanize.Bytes(uint64(info.Size))
				if info.URL != src.URL {
					// Loading ignores entries fetched from another URL.
					row[7] = "other URL"
				}
			case nox.ENOTFOUND:
			case nox.ECORRUPT:
				row[7] = "corrupt"
			default:
				fmt.Fprintf(deps.Stderr, "error: %s\n", nox.ErrorMessage(err))
				return err
			}
		}
		rows = append(rows, row)
	}

	fmt.Fprintln(deps.Stdout, renderTable(deps.Stdout, headers, rows, aligns))
	if deps.Cache == nil {
		fmt.Fprintln(deps.Stdout, "Caching is disabled.")
	}
	return nil
}

func ttl(d time.Duration) string {
	if d <= 0 {
		return "never"
	}
	if d%(24*time.Hour) == 0 {
		return strconv.Itoa(int(d/(24*time.Hour))) + "d"
	}
	return d.String()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
