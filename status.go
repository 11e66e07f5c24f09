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
	"time"

	"github.com/nwmesh/dmpr/metric"
)

// Status is a point-in-time introspection dump of the engine,
// sufficient for a "dmprd validate" style diagnostic print or a test
// assertion that recalculation is idempotent.
type Status struct {
	Started     bool
	ID          string
	Neighbors   int
	LastRecalc  time.Time
	FIBSizes    map[string]int
	RoutesCount map[string]int
}

// Snapshot returns the engine's current status. Safe to call from any
// goroutine.
func (e *Engine) Snapshot() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	sizes := map[string]int{}
	routes := map[string]int{}
	for _, d := range metric.All() {
		if fib, ok := e.state.paths.Table(d.Table); ok {
			sizes[d.Table] = len(fib)
		}
		routes[d.RouteTableKey] = len(e.state.table[d.RouteTableKey])
	}

	return Status{
		Started:     e.started,
		ID:          e.cfg.ID,
		Neighbors:   len(e.ndb.neighbors(nil)),
		LastRecalc:  e.state.computedAt,
		FIBSizes:    sizes,
		RoutesCount: routes,
	}
}
