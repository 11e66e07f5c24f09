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

// Descriptor parameterizes Build for one routing policy. It replaces
// what used to be five near-identical compression/relaxation
// pipelines with data driving a single one.
type Descriptor struct {
	// Table is the wire name this metric is published under, e.g.
	// "low_loss".
	Table string

	// RouteTableKey is the name this metric's flattened routing table
	// is emitted under, distinct from Table (the wire advertisement
	// key), e.g. "lowest-loss".
	RouteTableKey string

	// Filter reports whether a link may be used at all under this
	// metric (the cost-gated metrics require Cost == 0).
	Filter func(Characteristics) bool

	// Scalar extracts the value compared by Better, and summed (edge
	// by edge) to produce a route's total Weight.
	Scalar func(Characteristics) float64

	// Better reports whether a is a strictly better value than b. A
	// nil Better means no preference is expressed among candidates
	// that pass Filter, so the last one encountered wins.
	Better func(a, b float64) bool
}

func (d Descriptor) filter(c Characteristics) bool {
	if d.Filter == nil {
		return true
	}
	return d.Filter(c)
}

func (d Descriptor) better(a, b float64) bool {
	if d.Better == nil {
		return false
	}
	return d.Better(a, b)
}
