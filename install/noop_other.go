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

//go:build !linux

package install

import "github.com/nwmesh/dmpr"

// Netlink is a no-op stand-in on non-Linux platforms, so dmprd still
// builds and runs (without actually programming any FIB) elsewhere.
type Netlink struct{}

func NewNetlink() *Netlink { return &Netlink{} }

func (n *Netlink) Update(dmpr.RoutingTable) error { return nil }
