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
	"time"

	"github.com/nwmesh/dmpr/wire"
)

// neighborRecord is one sender's last-seen advertisement on one
// interface.
type neighborRecord struct {
	rxTime time.Time
	msg    wire.Advertisement
}

// neighborDB is the two-level interface -> sender-id -> record table
// of directly heard neighbours. Writes happen only from the receive
// path and the aging sweep; both run under the engine's mutex, so
// neighborDB itself does no locking of its own.
type neighborDB struct {
	byIface map[string]map[string]neighborRecord
}

func newNeighborDB() *neighborDB {
	return &neighborDB{byIface: map[string]map[string]neighborRecord{}}
}

func (n *neighborDB) get(iface, id string) (neighborRecord, bool) {
	rec, ok := n.byIface[iface][id]
	return rec, ok
}

func (n *neighborDB) store(iface, id string, rec neighborRecord) {
	m, ok := n.byIface[iface]
	if !ok {
		m = map[string]neighborRecord{}
		n.byIface[iface] = m
	}
	m[id] = rec
}

// age drops every record older than holdTime and reports whether any
// were removed.
func (n *neighborDB) age(now time.Time, holdTime time.Duration) bool {
	removed := false
	for iface, senders := range n.byIface {
		for id, rec := range senders {
			if now.Sub(rec.rxTime) > holdTime {
				delete(senders, id)
				removed = true
			}
		}
		if len(senders) == 0 {
			delete(n.byIface, iface)
		}
	}
	return removed
}

// reset discards every stored record, used on stop/restart.
func (n *neighborDB) reset() {
	n.byIface = map[string]map[string]neighborRecord{}
}

// neighbors returns every distinct sender id seen on any interface,
// along with the interfaces it was seen on, de-duplicated. Each id's
// interface list is ordered by position in ifaceOrder (normally
// Config.Interfaces), falling back to alphabetical order for any
// interface ifaceOrder doesn't name, so that callers selecting among
// tied candidates (see metric.Build's bestInterface) make the same
// choice on every call given the same inputs — map iteration order
// is not stable across repeated ranges over the same map.
func (n *neighborDB) neighbors(ifaceOrder []string) map[string][]string {
	rank := make(map[string]int, len(ifaceOrder))
	for i, name := range ifaceOrder {
		rank[name] = i
	}

	out := map[string][]string{}
	for iface, senders := range n.byIface {
		for id := range senders {
			out[id] = append(out[id], iface)
		}
	}
	for _, ifaces := range out {
		sort.Slice(ifaces, func(i, j int) bool {
			ri, iok := rank[ifaces[i]]
			rj, jok := rank[ifaces[j]]
			if iok && jok {
				return ri < rj
			}
			if iok != jok {
				return iok
			}
			return ifaces[i] < ifaces[j]
		})
	}
	return out
}

// latest returns the most recently received advertisement from id,
// across every interface it was heard on (a neighbour reachable over
// parallel links has one record per interface).
func (n *neighborDB) latest(id string) (wire.Advertisement, bool) {
	var best neighborRecord
	found := false
	for _, senders := range n.byIface {
		rec, ok := senders[id]
		if !ok {
			continue
		}
		if !found || rec.rxTime.After(best.rxTime) {
			best = rec
			found = true
		}
	}
	return best.msg, found
}
