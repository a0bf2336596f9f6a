package analyze

import (
	"fmt"
	"sort"
	"strings"

	"github.com/debatelab/arguegraph/internal/graph"
)

// DetectCycles enumerates all elementary cycles in the directed graph using
// Johnson's blocked-set search. Every edge type participates: a cycle is a
// cycle regardless of relation semantics.
//
// Each cycle is reported starting at its lexicographically smallest node id
// and the cycle list is sorted, so the output is canonical for a fixed
// graph.
func DetectCycles(st *graph.Store) [][]string {
	ids := make([]string, 0, st.NumNodes())
	adj := make(map[string][]string)
	for _, c := range st.Claims() {
		ids = append(ids, c.ID)
	}
	sort.Strings(ids)

	ord := make(map[string]int, len(ids))
	for i, id := range ids {
		ord[id] = i
	}

	// Parallel edges between the same ordered pair collapse to one
	// successor: they yield the same node cycle.
	for _, r := range st.Relations() {
		if !containsString(adj[r.SourceID], r.TargetID) {
			adj[r.SourceID] = append(adj[r.SourceID], r.TargetID)
		}
	}
	for id := range adj {
		sort.Strings(adj[id])
	}

	f := &cycleFinder{adj: adj, ord: ord}
	for _, start := range ids {
		// Restricting the search to nodes >= start yields each cycle exactly
		// once, rooted at its smallest member.
		f.start = start
		f.blocked = make(map[string]bool)
		f.blockList = make(map[string][]string)
		f.circuit(start)
	}

	sort.Slice(f.cycles, func(i, j int) bool {
		return strings.Join(f.cycles[i], "\x00") < strings.Join(f.cycles[j], "\x00")
	})
	return f.cycles
}

type cycleFinder struct {
	adj       map[string][]string
	ord       map[string]int
	start     string
	stack     []string
	blocked   map[string]bool
	blockList map[string][]string
	cycles    [][]string
}

func (f *cycleFinder) circuit(v string) bool {
	found := false
	f.stack = append(f.stack, v)
	f.blocked[v] = true

	for _, w := range f.adj[v] {
		if f.ord[w] < f.ord[f.start] {
			continue
		}
		if w == f.start {
			cycle := make([]string, len(f.stack))
			copy(cycle, f.stack)
			f.cycles = append(f.cycles, cycle)
			found = true
		} else if !f.blocked[w] {
			if f.circuit(w) {
				found = true
			}
		}
	}

	if found {
		f.unblock(v)
	} else {
		for _, w := range f.adj[v] {
			if f.ord[w] < f.ord[f.start] {
				continue
			}
			if !containsString(f.blockList[w], v) {
				f.blockList[w] = append(f.blockList[w], v)
			}
		}
	}

	f.stack = f.stack[:len(f.stack)-1]
	return found
}

func (f *cycleFinder) unblock(v string) {
	f.blocked[v] = false
	for _, w := range f.blockList[v] {
		if f.blocked[w] {
			f.unblock(w)
		}
	}
	f.blockList[v] = nil
}

// explainCycle renders a detected cycle as a human-readable chain
func explainCycle(st *graph.Store, cycle []string) string {
	if len(cycle) < 2 {
		return "Trivial cycle detected."
	}

	relType := func(src, tgt string) string {
		for _, r := range st.OutEdges(src) {
			if r.TargetID == tgt {
				return string(r.RelationType)
			}
		}
		return "relates to"
	}

	parts := make([]string, 0, len(cycle))
	for i := range cycle {
		src := cycle[i]
		tgt := cycle[(i+1)%len(cycle)]
		srcText, tgtText := src, tgt
		if c, ok := st.Claim(src); ok {
			srcText = snippet(c.Text)
		}
		if c, ok := st.Claim(tgt); ok {
			tgtText = snippet(c.Text)
		}
		parts = append(parts, fmt.Sprintf("%q %s %q", srcText, relType(src, tgt), tgtText))
	}

	return "Circular reasoning detected: " + strings.Join(parts, "; ") +
		". This forms a loop where the conclusion presupposes one of its own premises."
}

// snippet shortens claim text for explanations, cutting on rune boundaries
// so multibyte text stays valid.
func snippet(text string) string {
	if len(text) <= 60 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= 60 {
		return text
	}
	return string(runes[:60]) + "..."
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
