package sitegraph

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/sitegraph/internal/apperr"
)

const sampleJSON = `{"nodes":{"A":{"title":"Alpha","links":[{"link":"B","displayText":"to b"},{"link":"missing"}]},"B":{"links":[]}}}`

func TestDecode_Valid(t *testing.T) {
	doc, err := Decode(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := doc.IDs(); !cmp.Equal(got, []string{"A", "B"}) {
		t.Errorf("ids = %v, want [A B]", got)
	}
	if doc.Title("A") != "Alpha" || doc.Title("B") != "B" {
		t.Errorf("titles = %q, %q", doc.Title("A"), doc.Title("B"))
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	doc, err := Decode(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatal(err)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	var a, b any
	_ = json.Unmarshal([]byte(sampleJSON), &a)
	_ = json.Unmarshal(out, &b)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_Invalid(t *testing.T) {
	cases := map[string]string{
		"not json":      `{`,
		"missing nodes": `{}`,
		"missing links": `{"nodes":{"A":{}}}`,
		"empty target":  `{"nodes":{"A":{"links":[{"link":""}]}}}`,
		"empty id":      `{"nodes":{"":{"links":[]}}}`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(in))
			if !errors.Is(err, apperr.ErrInvalidDocument) {
				t.Errorf("err = %v, want ErrInvalidDocument", err)
			}
		})
	}
}

func TestEdges_DropDangling(t *testing.T) {
	doc, _ := Decode(strings.NewReader(sampleJSON))
	want := []Edge{{Source: "A", Target: "B", DisplayText: "to b"}}
	if diff := cmp.Diff(want, doc.Edges()); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
	if doc.OutDegree("A") != 2 {
		t.Errorf("out degree = %d, want 2 (dangling counted)", doc.OutDegree("A"))
	}
}

func TestSuccessorsPredecessors(t *testing.T) {
	doc := &Document{Nodes: map[string]Node{
		"A": {Links: []Link{{Link: "B"}, {Link: "C"}, {Link: "B"}}},
		"B": {Links: []Link{{Link: "A"}}},
		"C": {Links: []Link{}},
	}}
	if got := doc.Successors("A"); !cmp.Equal(got, []string{"B", "C"}) {
		t.Errorf("successors = %v", got)
	}
	if got := doc.Predecessors("B"); !cmp.Equal(got, []string{"A"}) {
		t.Errorf("predecessors = %v", got)
	}
	if got := doc.Predecessors("C"); !cmp.Equal(got, []string{"A"}) {
		t.Errorf("predecessors(C) = %v", got)
	}
}

func TestChecksum_Stable(t *testing.T) {
	a, _ := Decode(strings.NewReader(sampleJSON))
	b, _ := Decode(strings.NewReader(sampleJSON))
	if a.Checksum() != b.Checksum() {
		t.Error("equal documents hashed differently")
	}
	b.Nodes["C"] = Node{Links: []Link{}}
	if a.Checksum() == b.Checksum() {
		t.Error("different documents hashed equally")
	}
}

func TestIsTopic(t *testing.T) {
	doc := &Document{Nodes: map[string]Node{
		"T":                {Title: "Graphs (topic)", Links: []Link{}},
		"N":                {Title: "Graphs", Links: []Link{}},
		"Untitled (topic)": {Links: []Link{}},
	}}
	if !doc.IsTopic("T", "(topic)") || doc.IsTopic("N", "(topic)") {
		t.Error("topic marker detection wrong")
	}
	// Only the stored title counts, not the id.
	if doc.IsTopic("Untitled (topic)", "(topic)") {
		t.Error("untitled node matched on its id")
	}
	if doc.IsTopic("T", "") {
		t.Error("empty marker must never match")
	}
}
