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

// Network is one advertised IPv4 prefix, in the wire shape every
// advertisement and FIB entry carries it in.
type Network struct {
	V4Prefix string `json:"v4-prefix"`
}

// Entry is one destination's best-known route under a single metric.
type Entry struct {
	NextHop  string    `json:"next-hop"`
	Networks []Network `json:"networks"`
	Weight   float64   `json:"weight"`
	Paths    Path      `json:"paths"`
}

// FIB is a metric's complete set of reachable destinations, keyed by
// destination node id.
type FIB map[string]Entry

// Clone returns a deep-enough copy of f safe to hand to another
// goroutine or store as a snapshot.
func (f FIB) Clone() FIB {
	out := make(FIB, len(f))
	for id, e := range f {
		ne := e
		ne.Networks = append([]Network(nil), e.Networks...)
		ne.Paths = e.Paths.Clone()
		out[id] = ne
	}
	return out
}

// RoutingPaths is the full per-metric snapshot exchanged on the wire
// and held locally as the engine's current routing state: the five
// metrics' FIBs plus the shared path-characteristics table every one
// of them references by id.
type RoutingPaths struct {
	LowLoss          FIB                         `json:"low_loss"`
	HighBandwidth    FIB                         `json:"high_bandwidth"`
	BandwidthAndLoss FIB                         `json:"bw_and_loss"`
	NoCost           FIB                         `json:"no_cost"`
	BandwidthAndCost FIB                         `json:"bw_and_cost"`
	PathChars        map[string]Characteristics `json:"path_characteristics"`
}

// Empty reports whether none of the five metric FIBs have any
// entries — such a routingpaths object contributes nothing to
// relaxation and is ignored by the topology synthesizer.
func (r RoutingPaths) Empty() bool {
	return len(r.LowLoss) == 0 && len(r.HighBandwidth) == 0 &&
		len(r.BandwidthAndLoss) == 0 && len(r.NoCost) == 0 && len(r.BandwidthAndCost) == 0
}

// Table selects one metric's FIB by its wire table name.
func (r RoutingPaths) Table(name string) (FIB, bool) {
	switch name {
	case "low_loss":
		return r.LowLoss, true
	case "high_bandwidth":
		return r.HighBandwidth, true
	case "bw_and_loss":
		return r.BandwidthAndLoss, true
	case "no_cost":
		return r.NoCost, true
	case "bw_and_cost":
		return r.BandwidthAndCost, true
	default:
		return nil, false
	}
}

// Set stores fib under name, panicking on an unknown name since that
// indicates a programming error in the metric descriptor table, not a
// runtime condition.
func (r *RoutingPaths) Set(name string, fib FIB) {
	switch name {
	case "low_loss":
		r.LowLoss = fib
	case "high_bandwidth":
		r.HighBandwidth = fib
	case "bw_and_loss":
		r.BandwidthAndLoss = fib
	case "no_cost":
		r.NoCost = fib
	case "bw_and_cost":
		r.BandwidthAndCost = fib
	default:
		panic("metric: unknown table name " + name)
	}
}
