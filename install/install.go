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

// Package install is the reference FIB-installer external
// collaborator: it programs each of the five metric routing tables
// into a distinct Linux policy-routing table. The core never imports
// this package; a host binary wires an Installer's Update method in
// as the RegisterInstaller callback.
package install

import "github.com/nwmesh/dmpr"

// tableIDs assigns each emitted metric routing table a distinct
// Linux routing table id (arbitrary, but stable and out of the
// range used by the main/default/local tables).
var tableIDs = map[string]int{
	"lowest-loss":       201,
	"highest-bandwidth": 202,
	"formular_bw_loss":  203,
	"no-cost":           204,
	"filtered-bw-cost":  205,
}

// Installer is the host-side FIB installer.
type Installer interface {
	// Update is called with a freshly computed routing table whenever
	// the engine completes a recalculation.
	Update(table dmpr.RoutingTable) error
}
