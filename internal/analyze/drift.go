package analyze

import (
	"sort"

	"github.com/debatelab/arguegraph/internal/graph"
	"github.com/debatelab/arguegraph/internal/model"
	"github.com/debatelab/arguegraph/internal/util"
)

// detectTopicDrift slides a window across the chronologically ordered claims
// and measures how much of each window still has an (undirected) graph path
// back to the initial topic set. Windows below the connectivity threshold
// become drift points: metadata, not fallacy annotations.
func (a *Analyzer) detectTopicDrift(st *graph.Store) []model.DriftPoint {
	windowSize := a.cfg.DriftWindowSize
	if windowSize <= 0 {
		windowSize = 5
	}

	claims := st.Claims()
	sort.SliceStable(claims, func(i, j int) bool {
		return claims[i].TimestampStart < claims[j].TimestampStart
	})
	if len(claims) < windowSize+2 {
		return nil
	}

	initial := make([]string, 0, windowSize)
	for _, c := range claims[:windowSize] {
		initial = append(initial, c.ID)
	}
	reachable := undirectedReachable(st, initial)

	var points []model.DriftPoint
	for i := windowSize; i+windowSize <= len(claims); i += windowSize {
		window := claims[i : i+windowSize]

		connected := 0
		ids := make([]string, 0, len(window))
		minStart := window[0].TimestampStart
		for _, c := range window {
			ids = append(ids, c.ID)
			if reachable[c.ID] {
				connected++
			}
			if c.TimestampStart < minStart {
				minStart = c.TimestampStart
			}
		}

		connectivity := float64(connected) / float64(len(window))
		if connectivity < a.cfg.DriftConnectivityThreshold {
			points = append(points, model.DriftPoint{
				Timestamp:    minStart,
				Connectivity: util.Round3(connectivity),
				ClaimIDs:     ids,
			})
		}
	}

	return points
}

// undirectedReachable returns every node connected to any seed when edge
// direction is ignored.
func undirectedReachable(st *graph.Store, seeds []string) map[string]bool {
	reachable := make(map[string]bool)
	queue := make([]string, 0, len(seeds))
	for _, id := range seeds {
		if !reachable[id] {
			reachable[id] = true
			queue = append(queue, id)
		}
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, r := range st.OutEdges(id) {
			if !reachable[r.TargetID] {
				reachable[r.TargetID] = true
				queue = append(queue, r.TargetID)
			}
		}
		for _, r := range st.InEdges(id) {
			if !reachable[r.SourceID] {
				reachable[r.SourceID] = true
				queue = append(queue, r.SourceID)
			}
		}
	}

	return reachable
}
