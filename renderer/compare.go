package renderer

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	md "github.com/nao1215/markdown"

	"shareline"
)

// CompareReport is the rendered two-point behavior classification.
type CompareReport struct {
	Month1, Month2 shareline.Date
	Names          map[string]string // canonical key to display name
	Behaviors      map[string]shareline.Behavior
}

func CompareMarkdown(r *CompareReport) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Holder behavior %s vs %s", r.Month1, r.Month2))

	// stable output: keys sorted per behavior bucket
	buckets := map[shareline.Behavior][]string{}
	for key, b := range r.Behaviors {
		buckets[b] = append(buckets[b], key)
	}
	for _, b := range []shareline.Behavior{shareline.Buyer, shareline.Seller, shareline.Holder, shareline.New, shareline.Exited} {
		keys := buckets[b]
		if len(keys) == 0 {
			continue
		}
		slices.Sort(keys)
		doc.H2(fmt.Sprintf("%s (%d)", titleCase(string(b)), len(keys)))
		names := make([]string, 0, len(keys))
		for _, k := range keys {
			name := r.Names[k]
			if name == "" {
				name = k
			}
			names = append(names, name)
		}
		doc.BulletList(names...)
	}

	return doc.String()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
