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

// Package metric implements the per-metric forwarding-information-base
// builder: a single generic three-phase algorithm (direct-neighbour
// selection, relaxation through advertised paths, path-characteristics
// interning) driven by a small Descriptor per routing policy, instead
// of five hand-duplicated implementations.
package metric

import "strconv"

// Characteristics is the {loss, bandwidth, cost} triple annotating an
// edge of a path, either a local interface's link characteristics or
// one entry of a neighbour's interned path_characteristics table.
type Characteristics struct {
	Loss      int   `json:"loss"`
	Bandwidth int64 `json:"bandwidth"`
	Cost      int   `json:"cost"`
}

// Table is a hash-consed {loss,bandwidth,cost} -> opaque-id table, the
// Go-native replacement for the wire format's ad-hoc integer string
// interning scheme (see path_characteristics in the wire envelope).
// Equal triples always share an id; ids are assigned in first-seen
// order starting at "1" so they remain the decimal strings the wire
// format requires.
type Table struct {
	byID    map[string]Characteristics
	byValue map[Characteristics]string
	next    int
}

func NewTable() *Table {
	return &Table{
		byID:    map[string]Characteristics{},
		byValue: map[Characteristics]string{},
		next:    1,
	}
}

// Intern returns the id for c, minting a new one if c hasn't been seen
// in this table before.
func (t *Table) Intern(c Characteristics) string {
	if id, ok := t.byValue[c]; ok {
		return id
	}
	for {
		id := strconv.Itoa(t.next)
		t.next++
		if _, used := t.byID[id]; !used {
			t.byID[id] = c
			t.byValue[c] = id
			return id
		}
	}
}

// Lookup returns the characteristics interned under id.
func (t *Table) Lookup(id string) (Characteristics, bool) {
	c, ok := t.byID[id]
	return c, ok
}

// Snapshot returns the table contents as a plain map, suitable for
// embedding in an outgoing advertisement's path_characteristics field.
func (t *Table) Snapshot() map[string]Characteristics {
	out := make(map[string]Characteristics, len(t.byID))
	for k, v := range t.byID {
		out[k] = v
	}
	return out
}

// FromSnapshot builds a read-only lookup table from a received
// advertisement's path_characteristics field.
func FromSnapshot(m map[string]Characteristics) *Table {
	t := NewTable()
	for id, c := range m {
		t.byID[id] = c
		t.byValue[c] = id
	}
	return t
}
