package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Abraxas-365/talentdesk/pkg/kernel"
)

type table struct {
	tw *tabwriter.Writer
}

func newTable(out io.Writer) *table {
	return &table{tw: tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)}
}

func (t *table) row(cols ...any) {
	cells := make([]string, len(cols))
	for i, c := range cols {
		cells[i] = cell(c)
	}
	fmt.Fprintln(t.tw, strings.Join(cells, "\t"))
}

func (t *table) flush() error {
	return t.tw.Flush()
}

func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case string:
		if x == "" {
			return "-"
		}
		return x
	case []string:
		if len(x) == 0 {
			return "-"
		}
		return strings.Join(x, ", ")
	case time.Time:
		if x.IsZero() {
			return "-"
		}
		return x.Local().Format("2006-01-02 15:04")
	case *float64:
		if x == nil {
			return "-"
		}
		return fmt.Sprintf("%g", *x)
	case *int:
		if x == nil {
			return "-"
		}
		return fmt.Sprintf("%d", *x)
	default:
		s := fmt.Sprint(v)
		if s == "" {
			return "-"
		}
		return s
	}
}

// footer prints paging and freshness under a list
func footer(out io.Writer, page kernel.Page, fetchedAt time.Time, stale bool, err error) {
	fmt.Fprintf(out, "\nPage %d of %d, %d total", page.Number, max(page.Pages, 1), page.Total)
	if !fetchedAt.IsZero() {
		fmt.Fprintf(out, ", fetched %s", fetchedAt.Local().Format("15:04:05"))
	}
	fmt.Fprintln(out)
	staleNotice(out, stale, err)
}

func staleNotice(out io.Writer, stale bool, err error) {
	if stale && err != nil {
		fmt.Fprintf(out, "Showing cached data, refresh failed: %v\n", err)
	}
}
