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

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Edge is one hop of a path, identified by the stable node ids at
// either end. Keeping From and To as distinct fields, instead of a
// single delimited string, is what lets loop detection match on whole
// ids rather than risk a false match on a shared substring.
type Edge struct {
	From string
	To   string
}

func (e Edge) String() string {
	return e.From + ">" + e.To
}

// ParseEdge splits the wire "<from>><to>" form back into an Edge. The
// separator is assumed not to occur inside an id (true of UUIDs and
// any other printable node id in practice).
func ParseEdge(s string) (Edge, error) {
	from, to, ok := strings.Cut(s, ">")
	if !ok {
		return Edge{}, fmt.Errorf("metric: malformed path edge %q", s)
	}
	return Edge{From: from, To: to}, nil
}

// Path is the set of edges a route traverses, each mapped to the
// interned id of that edge's link characteristics.
type Path map[Edge]string

// Clone returns an independent copy of p.
func (p Path) Clone() Path {
	out := make(Path, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Merge copies every edge of other into p, overwriting on conflict.
func (p Path) Merge(other Path) {
	for k, v := range other {
		p[k] = v
	}
}

func (p Path) MarshalJSON() ([]byte, error) {
	flat := make(map[string]string, len(p))
	for edge, id := range p {
		flat[edge.String()] = id
	}
	return json.Marshal(flat)
}

func (p *Path) UnmarshalJSON(data []byte) error {
	var flat map[string]string
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	out := make(Path, len(flat))
	for k, v := range flat {
		edge, err := ParseEdge(k)
		if err != nil {
			return err
		}
		out[edge] = v
	}
	*p = out
	return nil
}
