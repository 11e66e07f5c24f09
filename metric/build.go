/*
 * DMPR multipath routing daemon. Copyright (C) 2021-present David Coles
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation; either version 2 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License along
 * with this program; if not, write to the Free Software Foundation, Inc.,
 * 51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
 */

package metric

import "sort"

// Neighbor is one entry of the local neighbour database, projected
// down to what Build needs: who they are, what they advertise
// reaching, and which local interfaces have heard from them.
type Neighbor struct {
	ID         string
	Networks   []Network
	Interfaces []string
}

// OtherFIB is a neighbour's own last-advertised routing state for one
// metric, used during relaxation to extend routes through them.
type OtherFIB struct {
	FIB       FIB
	PathChars *Table
}

// Build runs the three-phase construction of one metric's FIB:
//
//   - Phase A selects, for each direct neighbour, the best local
//     interface reaching them under this metric.
//   - Phase B relaxes through every neighbour's own advertised FIB,
//     accepting a multi-hop route when it introduces a destination or
//     has a strictly lower summed Weight than the current entry (for
//     every metric, the bandwidth ones included) and does not loop
//     back through self.
//   - Phase C interns every edge's link characteristics into interner
//     (shared across all five metrics, matching the single
//     path_characteristics table the wire format carries) and
//     recomputes each route's Weight from the interned values.
func Build(desc Descriptor, selfID string, neighbors []Neighbor, ifaceChars map[string]Characteristics, others map[string]OtherFIB, interner *Table) FIB {
	fib := make(FIB)

	// Phase A: direct neighbours.
	for _, n := range neighbors {
		best, ok := bestInterface(desc, n.Interfaces, ifaceChars)
		if !ok {
			continue
		}
		fib[n.ID] = Entry{
			NextHop:  n.ID,
			Networks: n.Networks,
			Weight:   desc.Scalar(best.chars),
			Paths:    Path{{From: selfID, To: n.ID}: best.name},
		}
	}

	// Phase B: relaxation through neighbours' own FIBs.
	for _, n := range neighbors {
		direct, ok := fib[n.ID]
		if !ok {
			continue
		}
		other, ok := others[n.ID]
		if !ok {
			continue
		}
		for destID, destEntry := range other.FIB {
			if destID == selfID {
				continue
			}
			if pathLoopsThroughSelf(destEntry.Paths, selfID) {
				continue
			}
			weight := direct.Weight + destEntry.Weight
			current, exists := fib[destID]
			if exists && !(weight < current.Weight) {
				continue
			}
			fib[destID] = Entry{
				NextHop:  n.ID,
				Networks: destEntry.Networks,
				Weight:   weight,
				Paths:    destEntry.Paths.Clone(),
			}
		}
	}

	// destIDs fixes iteration order for the rest of Build: Go
	// deliberately randomizes the start point of a range over a map, so
	// without this, which characteristics triple lands on which
	// interned id (and the order relaxed-path merges happen in) could
	// differ between two recalculations over identical input.
	destIDs := make([]string, 0, len(fib))
	for destID := range fib {
		destIDs = append(destIDs, destID)
	}
	sort.Strings(destIDs)

	// Phase C: intern characteristics and close/reweigh every route.
	for _, destID := range destIDs {
		entry := fib[destID]
		edges := sortedEdges(entry.Paths)
		interned := make(Path, len(entry.Paths))
		if destID == entry.NextHop {
			// Direct neighbour: the single edge currently maps to a
			// local interface name.
			for _, edge := range edges {
				c := ifaceChars[entry.Paths[edge]]
				interned[edge] = interner.Intern(c)
			}
		} else {
			// Relayed: every edge currently maps to an id in the
			// advertising neighbour's own numbering.
			other := others[entry.NextHop]
			for _, edge := range edges {
				c, ok := other.PathChars.Lookup(entry.Paths[edge])
				if !ok {
					continue
				}
				interned[edge] = interner.Intern(c)
			}
		}
		entry.Paths = interned
		fib[destID] = entry
	}

	// Close relayed routes over the direct edge to their next hop.
	// Two passes guarantee the closure is stable even when a relayed
	// route's next hop is itself still being closed in this loop.
	for pass := 0; pass < 2; pass++ {
		for _, destID := range destIDs {
			entry := fib[destID]
			if destID == entry.NextHop {
				continue
			}
			direct, ok := fib[entry.NextHop]
			if !ok {
				continue
			}
			entry.Paths.Merge(direct.Paths)
			fib[destID] = entry
		}
	}

	// Recompute weight from the now-closed, interned path set, summing
	// in a fixed edge order so the result doesn't depend on
	// floating-point addition's sensitivity to operand order.
	for _, destID := range destIDs {
		entry := fib[destID]
		var total float64
		for _, edge := range sortedEdges(entry.Paths) {
			c, ok := interner.Lookup(entry.Paths[edge])
			if !ok {
				continue
			}
			total += desc.Scalar(c)
		}
		entry.Weight = total
		fib[destID] = entry
	}

	return fib
}

// sortedEdges returns p's edges in a fixed order (by From, then To),
// so callers that must fold over a Path deterministically don't
// inherit Go's unstable map iteration order.
func sortedEdges(p Path) []Edge {
	edges := make([]Edge, 0, len(p))
	for edge := range p {
		edges = append(edges, edge)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}

type candidate struct {
	name  string
	chars Characteristics
}

func bestInterface(desc Descriptor, ifaces []string, ifaceChars map[string]Characteristics) (candidate, bool) {
	var chosen candidate
	var chosenValue float64
	found := false
	for _, name := range ifaces {
		c, ok := ifaceChars[name]
		if !ok || !desc.filter(c) {
			continue
		}
		v := desc.Scalar(c)
		if !found || desc.better(v, chosenValue) || desc.Better == nil {
			chosen = candidate{name: name, chars: c}
			chosenValue = v
			found = true
		}
	}
	return chosen, found
}

// pathLoopsThroughSelf reports whether any edge of p touches selfID,
// which would mean accepting this route creates a routing loop back
// through this node.
func pathLoopsThroughSelf(p Path, selfID string) bool {
	for edge := range p {
		if edge.From == selfID || edge.To == selfID {
			return true
		}
	}
	return false
}
