package shareline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/PaesslerAG/jsonpath"
)

// This file contains the client side of the remote group registry: a thin
// HTTP consumer tolerant to the exact JSON shape the legacy service returns.

// jwget performs an HTTP GET request and unmarshals the JSON response into
// the provided data structure.
func jwget(client *http.Client, addr string, data any) error {
	resp, err := client.Get(addr)
	if err != nil {
		return err
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("cannot http GET %v/%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	_, err = io.Copy(&buf, resp.Body)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return json.Unmarshal(buf.Bytes(), data)
}

// jstring plucks a string out of a decoded JSON value with a jsonpath.
// Because jsonpath is never clear about whether it returns a list of one
// answer or a single answer, a singleton list is unwrapped first. Missing or
// non-string values yield "".
func jstring(jobj any, path string) string {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return ""
	}
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	s, _ := jval.(string)
	return s
}

// FetchGroups retrieves the manual group definitions from the remote
// registry. The legacy service has returned both a bare array and an object
// wrapping it under "groups" over the years, so the rows are walked with
// jsonpath rather than bound to one fixed shape.
func FetchGroups(client *http.Client, baseURL string) (*GroupSet, error) {
	var jobj any
	if err := jwget(client, baseURL+"/groups", &jobj); err != nil {
		return nil, fmt.Errorf("cannot fetch groups: %w", err)
	}

	rows, err := jsonpath.Get("$.groups[*]", jobj)
	if err != nil {
		// bare-array shape
		rows, err = jsonpath.Get("$[*]", jobj)
		if err != nil {
			return nil, fmt.Errorf("unexpected groups payload shape: %w", err)
		}
	}
	jrows, ok := rows.([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected groups payload shape: not a list")
	}

	s := NewGroupSet()
	for _, row := range jrows {
		g := GroupDef{
			ID:       jstring(row, "$.id"),
			Name:     jstring(row, "$.name"),
			Category: jstring(row, "$.category"),
		}
		jmembers, err := jsonpath.Get("$.members[*]", row)
		if err == nil {
			if list, ok := jmembers.([]any); ok {
				for _, jm := range list {
					g.Members = append(g.Members, GroupMember{
						Key:  jstring(jm, "$.key"),
						PAN:  jstring(jm, "$.pan"),
						Name: jstring(jm, "$.name"),
					})
				}
			}
		}
		if g.Name == "" {
			continue // not a group row
		}
		s.groups = append(s.groups, g)
	}
	return s, nil
}
