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

// bwLossWeight1 and bwLossWeight2 are the compound metric's fixed
// weighting of bandwidth against loss for the "formular_bw_loss" table.
const (
	bwLossWeight1 = 1.0
	bwLossWeight2 = 100.0
	bwLossScale   = 10_000_000.0
)

func noCostFilter(c Characteristics) bool { return c.Cost == 0 }

// All returns the five standard descriptors, in the order their FIBs
// are published in RoutingPaths.
func All() []Descriptor {
	return []Descriptor{LowLoss, HighBandwidth, BandwidthAndLoss, NoCost, BandwidthAndCost}
}

// LowLoss prefers the path with the least cumulative packet loss.
var LowLoss = Descriptor{
	Table:         "low_loss",
	RouteTableKey: "lowest-loss",
	Scalar:        func(c Characteristics) float64 { return float64(c.Loss) },
	Better:        func(a, b float64) bool { return a < b },
}

// HighBandwidth picks the parallel link with the greatest bandwidth to
// each direct neighbour; a route's Weight is its summed bandwidth.
var HighBandwidth = Descriptor{
	Table:         "high_bandwidth",
	RouteTableKey: "highest-bandwidth",
	Scalar:        func(c Characteristics) float64 { return float64(c.Bandwidth) },
	Better:        func(a, b float64) bool { return a > b },
}

// BandwidthAndLoss prefers the path minimizing a compound score that
// penalizes both low bandwidth and high loss.
var BandwidthAndLoss = Descriptor{
	Table:         "bw_and_loss",
	RouteTableKey: "formular_bw_loss",
	Scalar: func(c Characteristics) float64 {
		bw := float64(c.Bandwidth)
		if bw <= 0 {
			bw = 1
		}
		return bwLossWeight1*(bwLossScale/bw) + bwLossWeight2*float64(c.Loss)
	},
	Better: func(a, b float64) bool { return a < b },
}

// NoCost only considers links with zero cost, with no further
// preference among them.
var NoCost = Descriptor{
	Table:         "no_cost",
	RouteTableKey: "no-cost",
	Filter:        noCostFilter,
	Scalar:        func(c Characteristics) float64 { return float64(c.Cost) },
}

// BandwidthAndCost restricts to zero-cost links, then picks the one
// with the greatest bandwidth to each direct neighbour; a route's
// Weight is its summed bandwidth.
var BandwidthAndCost = Descriptor{
	Table:         "bw_and_cost",
	RouteTableKey: "filtered-bw-cost",
	Filter:        noCostFilter,
	Scalar:        func(c Characteristics) float64 { return float64(c.Bandwidth) },
	Better:        func(a, b float64) bool { return a > b },
}
