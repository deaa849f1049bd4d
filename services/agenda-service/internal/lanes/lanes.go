// Package lanes computes the side-by-side column layout for overlapping
// appointments on one resource. It is presentation-adjacent: the output has
// no bearing on whether a booking is allowed (package conflict owns that),
// but both are bounded by the same conflict.MaxConcurrent policy.
package lanes

import (
	"sort"

	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/conflict"
	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/timeutil"
)

// MaxLanes mirrors the booking-side concurrency cap. Rendering never needs
// more lanes than the conflict detector admits occupants.
const MaxLanes = conflict.MaxConcurrent

// Item is one agenda entry to lay out. All items passed to Layout must
// belong to the same resource key; the caller groups beforehand.
type Item struct {
	ID       string
	StartMin int
	EndMin   int
}

// Placement is the rendering slot for one item: Lane is the column index
// (0 or 1) and Columns how many columns the item's overlap cluster needs.
type Placement struct {
	Lane    int
	Columns int
}

// Layout partitions items into overlap clusters and assigns each item a lane.
//
// Clustering is transitive: an item joins the current cluster when it
// overlaps any member already in it, so a long early appointment keeps
// pulling later items into the same cluster even when those do not touch
// each other. Within a multi-item cluster each item takes the first of the
// two lanes whose occupants it does not overlap; when neither lane admits it
// (legacy data can exceed the cap) it is forced onto the less populated lane
// and rendering degrades to visual overlap inside that lane.
func Layout(items []Item) map[string]Placement {
	out := make(map[string]Placement, len(items))
	if len(items) == 0 {
		return out
	}

	sorted := make([]Item, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].StartMin != sorted[j].StartMin {
			return sorted[i].StartMin < sorted[j].StartMin
		}
		if sorted[i].EndMin != sorted[j].EndMin {
			return sorted[i].EndMin < sorted[j].EndMin
		}
		return sorted[i].ID < sorted[j].ID
	})

	var cluster []Item
	for _, it := range sorted {
		if len(cluster) == 0 || overlapsAny(it, cluster) {
			cluster = append(cluster, it)
			continue
		}
		layoutCluster(cluster, out)
		cluster = []Item{it}
	}
	layoutCluster(cluster, out)
	return out
}

func overlapsAny(it Item, cluster []Item) bool {
	for _, member := range cluster {
		if timeutil.Overlaps(it.StartMin, it.EndMin, member.StartMin, member.EndMin) {
			return true
		}
	}
	return false
}

func layoutCluster(cluster []Item, out map[string]Placement) {
	if len(cluster) == 0 {
		return
	}
	if len(cluster) == 1 {
		out[cluster[0].ID] = Placement{Lane: 0, Columns: 1}
		return
	}

	var buckets [MaxLanes][]Item
	assigned := make(map[string]int, len(cluster))

	for _, it := range cluster {
		lane := -1
		for l := 0; l < MaxLanes; l++ {
			if !overlapsAny(it, buckets[l]) {
				lane = l
				break
			}
		}
		if lane < 0 {
			// Capacity overflow: pick the emptier lane and let rendering
			// stack inside it.
			lane = 0
			if len(buckets[1]) < len(buckets[0]) {
				lane = 1
			}
		}
		buckets[lane] = append(buckets[lane], it)
		assigned[it.ID] = lane
	}

	columns := 0
	for l := 0; l < MaxLanes; l++ {
		if len(buckets[l]) > 0 {
			columns++
		}
	}

	for id, lane := range assigned {
		out[id] = Placement{Lane: lane, Columns: columns}
	}
}
