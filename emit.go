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
	"net/netip"
	"sort"

	"github.com/nwmesh/dmpr/metric"
)

// RouteRow is one flattened routing-table entry handed to the
// installer callback.
type RouteRow struct {
	Proto     string
	Prefix    string
	PrefixLen int
	Interface string
	NextHop   string
}

// RoutingTable is the complete set of rows to install, keyed by the
// emitted table name (e.g. "lowest-loss").
type RoutingTable map[string][]RouteRow

// emitRoutingTable flattens every metric's FIB into rows, resolving
// each destination's outbound interface by comparing the metric's
// scalar of the interned self->next-hop edge characteristics against
// that of each candidate interface that actually heard that neighbour
// (the first candidate with an equal scalar is used), and the next-hop
// IP from the neighbour's last advertisement on that interface.
func emitRoutingTable(cfg Config, top topology, paths metric.RoutingPaths, interner *metric.Table, ndb *neighborDB) RoutingTable {
	table := RoutingTable{}

	ifacesByNeighbor := map[string][]string{}
	for _, n := range top.neighbors {
		ifacesByNeighbor[n.ID] = n.Interfaces
	}

	for _, desc := range metric.All() {
		fib, _ := paths.Table(desc.Table)

		// Iterate destinations in a fixed order: map iteration order is
		// unstable across calls, and rows built in varying order cause
		// the installer to see spurious changes between otherwise
		// identical recalculations (see install.Netlink.Update, which
		// always replaces a table wholesale).
		destIDs := make([]string, 0, len(fib))
		for destID := range fib {
			destIDs = append(destIDs, destID)
		}
		sort.Strings(destIDs)

		var rows []RouteRow
		for _, destID := range destIDs {
			entry := fib[destID]
			iface, ok := resolveInterface(cfg, desc, entry.NextHop, ifacesByNeighbor[entry.NextHop], entry.Paths, interner)
			if !ok {
				continue
			}
			nextHopAddr, ok := nextHopIPv4(ndb, iface, entry.NextHop)
			if !ok {
				continue
			}
			for _, net := range entry.Networks {
				prefix, prefixLen, ok := splitPrefix(net.V4Prefix)
				if !ok {
					continue
				}
				rows = append(rows, RouteRow{
					Proto:     "v4",
					Prefix:    prefix,
					PrefixLen: prefixLen,
					Interface: iface,
					NextHop:   nextHopAddr,
				})
			}
		}
		table[desc.RouteTableKey] = rows
	}

	return table
}

func resolveInterface(cfg Config, desc metric.Descriptor, nextHop string, candidates []string, paths metric.Path, interner *metric.Table) (string, bool) {
	id, ok := paths[metric.Edge{From: cfg.ID, To: nextHop}]
	if !ok {
		return "", false
	}
	want, ok := interner.Lookup(id)
	if !ok {
		return "", false
	}
	for _, name := range candidates {
		iface, ok := cfg.findInterface(name)
		if !ok || iface.LinkCharacteristics == nil {
			continue
		}
		if desc.Scalar(iface.LinkCharacteristics.toMetric()) == desc.Scalar(want) {
			return name, true
		}
	}
	return "", false
}

func nextHopIPv4(ndb *neighborDB, iface, id string) (string, bool) {
	rec, ok := ndb.get(iface, id)
	if !ok || rec.msg.OriginatorAddrV4 == "" {
		return "", false
	}
	return rec.msg.OriginatorAddrV4, true
}

func splitPrefix(v4Prefix string) (string, int, bool) {
	p, err := netip.ParsePrefix(v4Prefix)
	if err != nil {
		return "", 0, false
	}
	return p.Addr().String(), p.Bits(), true
}
