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

import "github.com/nwmesh/dmpr/wire"

// buildAdvertisement composes the outgoing advertisement for iface,
// embedding the engine's current routing state if any metric has
// entries, or an empty one otherwise.
func buildAdvertisement(cfg Config, iface string, seq uint64, fib routingState) wire.Advertisement {
	addrV4, _ := cfg.originatorAddr("v4", iface)
	addrV6, _ := cfg.originatorAddr("v6", iface)

	adv := wire.Advertisement{
		ID:               cfg.ID,
		SequenceNo:       seq,
		OriginatorAddrV4: addrV4,
		OriginatorAddrV6: addrV6,
		Networks:         cfg.v4Networks(),
	}

	if !fib.paths.Empty() {
		adv.RoutingPaths = fib.paths
	}

	return adv
}
