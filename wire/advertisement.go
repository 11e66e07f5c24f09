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

// Package wire is the on-the-wire advertisement format: the JSON
// envelope exchanged between neighbours over UDP multicast, and the
// structural-equality check used to tell whether a received
// advertisement changed anything beyond its sequence number.
package wire

import (
	"encoding/json"
	"reflect"

	"github.com/nwmesh/dmpr/metric"
)

// Advertisement is one neighbour's periodic broadcast: who it is, what
// networks it originates, and its complete current routing state
// under all five metrics.
type Advertisement struct {
	ID               string              `json:"id"`
	SequenceNo       uint64              `json:"sequence-no"`
	OriginatorAddrV4 string              `json:"originator-addr-v4,omitempty"`
	OriginatorAddrV6 string              `json:"originator-addr-v6,omitempty"`
	Networks         []metric.Network    `json:"networks"`
	RoutingPaths     metric.RoutingPaths `json:"routingpaths"`
}

// Encode marshals the advertisement to its wire JSON form.
func Encode(a Advertisement) ([]byte, error) {
	return json.Marshal(a)
}

// Decode unmarshals a received packet payload into an Advertisement.
func Decode(payload []byte) (Advertisement, error) {
	var a Advertisement
	err := json.Unmarshal(payload, &a)
	return a, err
}

// Equal reports whether a and b carry the same content, ignoring the
// sequence number. Used to suppress duplicate-content re-advertisements
// from counting as a change worth recalculating over.
func Equal(a, b Advertisement) bool {
	a.SequenceNo = 0
	b.SequenceNo = 0
	return reflect.DeepEqual(a, b)
}
