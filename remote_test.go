package shareline

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func serveJSON(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/groups" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchGroupsWrappedShape(t *testing.T) {
	srv := serveJSON(t, `{"groups":[
		{"id":"g1","name":"Quant desks","category":"FII","members":[
			{"key":"AAACA0001A","pan":"AAACA0001A","name":"AQUA FUND"},
			{"key":"bluepool"}
		]},
		{"id":"g2","name":"Promoter block","members":[]}
	]}`)

	set, err := FetchGroups(srv.Client(), srv.URL)
	if err != nil {
		t.Fatalf("FetchGroups: %v", err)
	}
	if set.Len() != 2 {
		t.Fatalf("got %d groups, want 2", set.Len())
	}
	g, ok := set.Get("g1")
	if !ok {
		t.Fatalf("group g1 not found")
	}
	if g.Name != "Quant desks" || g.Category != "FII" {
		t.Errorf("got %q/%q, want Quant desks/FII", g.Name, g.Category)
	}
	if len(g.Members) != 2 {
		t.Fatalf("got %d members, want 2", len(g.Members))
	}
	if g.Members[0].PAN != "AAACA0001A" || g.Members[1].Key != "bluepool" {
		t.Errorf("unexpected members: %+v", g.Members)
	}
}

func TestFetchGroupsBareArrayShape(t *testing.T) {
	srv := serveJSON(t, `[
		{"id":"g1","name":"Quant desks"},
		{"id":"","category":"FII"}
	]`)

	set, err := FetchGroups(srv.Client(), srv.URL)
	if err != nil {
		t.Fatalf("FetchGroups: %v", err)
	}
	// the nameless row is not a group and is dropped
	if set.Len() != 1 {
		t.Fatalf("got %d groups, want 1", set.Len())
	}
}

func TestFetchGroupsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := FetchGroups(srv.Client(), srv.URL); err == nil {
		t.Fatal("expected an error on a 500 response")
	}
}
