package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"

	"shareline"
)

// EntitiesMarkdown renders a filtered entity list with the latest position
// of each.
func EntitiesMarkdown(title string, entities []*shareline.Entity) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(title)
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight},
		Header:    []string{"Name", "Category", "As of", "Shares"},
	}
	for _, e := range entities {
		on, q := e.Latest()
		name := e.Name
		if e.IsAggregate() {
			name = fmt.Sprintf("%s (%d funds)", e.Name, len(e.Members()))
		}
		table.Rows = append(table.Rows, []string{name, e.Category, on.String(), q.String()})
	}
	doc.Table(table)

	return doc.String()
}

// FamiliesMarkdown renders fund family aggregates with their members.
func FamiliesMarkdown(title string, families []*shareline.Entity) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(title)
	for _, e := range families {
		on, q := e.Latest()
		doc.H2(fmt.Sprintf("%s: %s as of %s", e.Name, q, on))
		members := make([]string, 0, len(e.Members()))
		for _, m := range e.Members() {
			_, mq := m.Latest()
			members = append(members, fmt.Sprintf("%s: %s", m.Name, mq))
		}
		doc.BulletList(members...)
	}

	return doc.String()
}

// UploadsMarkdown renders the upload audit trail.
func UploadsMarkdown(uploads []shareline.UploadRecord) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Uploads")
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight},
		Header:    []string{"Snapshot", "File", "Uploaded", "Records"},
	}
	for _, u := range uploads {
		table.Rows = append(table.Rows, []string{
			u.On.String(),
			u.FileName,
			u.UploadedAt.Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", u.Records),
		})
	}
	doc.Table(table)

	return doc.String()
}

// GroupsMarkdown renders the manual group definitions.
func GroupsMarkdown(set *shareline.GroupSet) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Manual groups")
	for g := range set.Groups() {
		doc.H2(fmt.Sprintf("%s (%s)", g.Name, g.Category))
		members := make([]string, 0, len(g.Members))
		for _, m := range g.Members {
			label := m.Name
			if label == "" {
				label = m.Key
			}
			if m.PAN != "" {
				label = fmt.Sprintf("%s [%s]", label, m.PAN)
			}
			members = append(members, label)
		}
		doc.BulletList(members...)
	}

	return doc.String()
}
