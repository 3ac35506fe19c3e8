// Package renderer turns analytics results into markdown reports. It holds
// no policy: it formats whatever the shareline package computed.
package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"

	"shareline"
)

// RankReport is a rendered ranking over one resolved window.
type RankReport struct {
	Mode     shareline.RankMode
	Window   shareline.Window
	Resolved bool // false when the window fell back to baseline order
	Deltas   []shareline.Delta
	Limit    int // rows rendered, 0 for all
}

func RankMarkdown(r *RankReport) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	title := "Top buyers"
	if r.Mode == shareline.Sellers {
		title = "Top sellers"
	}
	if r.Resolved {
		doc.H1(fmt.Sprintf("%s %s to %s", title, r.Window.Start, r.Window.End))
	} else {
		doc.H1(title)
		doc.PlainText("No snapshot dates fall inside the requested window; showing the unranked baseline order.")
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight},
		Header:    []string{"Name", "Category", "Change"},
	}
	rows := r.Deltas
	if r.Limit > 0 && len(rows) > r.Limit {
		rows = rows[:r.Limit]
	}
	for _, d := range rows {
		table.Rows = append(table.Rows, []string{
			d.Entity.Name,
			d.Entity.Category,
			d.Change.String(),
		})
	}
	doc.Table(table)

	return doc.String()
}
