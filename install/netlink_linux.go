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

//go:build linux

package install

import (
	"fmt"
	"net"

	"github.com/vishvananda/netlink"

	"github.com/nwmesh/dmpr"
)

// Netlink installs DMPR routing tables into the Linux kernel via
// rtnetlink, one policy-routing table per metric.
type Netlink struct {
	// installed tracks what this Installer put in the kernel, keyed by
	// routing table id, so the next Update can withdraw those routes
	// before installing the new set instead of only ever adding.
	installed map[int][]*netlink.Route
}

func NewNetlink() *Netlink {
	return &Netlink{installed: map[int][]*netlink.Route{}}
}

func (n *Netlink) Update(table dmpr.RoutingTable) error {
	for key, tableID := range tableIDs {
		rows := table[key]

		var next []*netlink.Route
		for _, row := range rows {
			if row.Proto != "v4" {
				continue
			}
			link, err := netlink.LinkByName(row.Interface)
			if err != nil {
				return fmt.Errorf("install: interface %q: %w", row.Interface, err)
			}
			dst := &net.IPNet{
				IP:   net.ParseIP(row.Prefix),
				Mask: net.CIDRMask(row.PrefixLen, 32),
			}
			route := &netlink.Route{
				Table:     tableID,
				LinkIndex: link.Attrs().Index,
				Dst:       dst,
				Gw:        net.ParseIP(row.NextHop),
			}
			next = append(next, route)
		}

		if err := n.replaceTable(tableID, next); err != nil {
			return err
		}
	}
	return nil
}

func (n *Netlink) replaceTable(tableID int, next []*netlink.Route) error {
	for _, old := range n.installed[tableID] {
		_ = netlink.RouteDel(old)
	}
	for _, route := range next {
		if err := netlink.RouteReplace(route); err != nil {
			return fmt.Errorf("install: table %d: %w", tableID, err)
		}
	}
	n.installed[tableID] = next
	return nil
}
