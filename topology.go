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

package dmpr

import (
	"sort"

	"github.com/nwmesh/dmpr/metric"
)

// topology is a flattened view of direct neighbours (and which local
// interfaces saw each one) plus, per metric, every contributing
// neighbour's own advertised FIB for that metric. It is rebuilt from
// the neighbour database on every recalculation; nothing about it
// persists across ticks.
type topology struct {
	neighbors []metric.Neighbor
	others    map[string]map[string]metric.OtherFIB // metric table name -> neighbor id -> their FIB
}

// buildTopology flattens the neighbour database into a topology.
// ifaceOrder (normally Config.Interfaces, in configured order) fixes
// the order of each neighbour's Interfaces slice and of the neighbours
// slice itself, so two calls against unchanged neighbour state produce
// byte-identical output regardless of Go's unstable map iteration
// order.
func buildTopology(ndb *neighborDB, ifaceOrder []string) topology {
	t := topology{
		others: map[string]map[string]metric.OtherFIB{},
	}
	for _, d := range metric.All() {
		t.others[d.Table] = map[string]metric.OtherFIB{}
	}

	byID := ndb.neighbors(ifaceOrder)
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		msg, ok := ndb.latest(id)
		if !ok {
			continue
		}
		t.neighbors = append(t.neighbors, metric.Neighbor{
			ID:         id,
			Networks:   msg.Networks,
			Interfaces: byID[id],
		})

		if msg.RoutingPaths.Empty() {
			continue
		}
		pathChars := metric.FromSnapshot(msg.RoutingPaths.PathChars)
		for _, d := range metric.All() {
			fib, ok := msg.RoutingPaths.Table(d.Table)
			if !ok || len(fib) == 0 {
				continue
			}
			t.others[d.Table][id] = metric.OtherFIB{FIB: fib, PathChars: pathChars}
		}
	}

	return t
}
