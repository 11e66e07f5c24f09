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

import (
	"fmt"

	"github.com/nwmesh/dmpr/metric"
)

// LinkCharacteristics is the {bandwidth, loss, cost} triple annotating
// a physical interface. Bandwidth is bytes/second, loss an integer
// percentage 0-100, cost an integer currency where 0 means free.
type LinkCharacteristics struct {
	Bandwidth int64
	Loss      int
	Cost      int
}

func (l LinkCharacteristics) toMetric() metric.Characteristics {
	return metric.Characteristics{Loss: l.Loss, Bandwidth: l.Bandwidth, Cost: l.Cost}
}

// defaultLinkCharacteristics is substituted, with a logged warning,
// for any interface whose configuration omits link-characteristics.
var defaultLinkCharacteristics = LinkCharacteristics{Bandwidth: 5000, Loss: 0, Cost: 0}

// Interface describes one local network interface the engine will
// advertise over and accept neighbours on.
type Interface struct {
	Name                string               `toml:"name"`
	AddrV4              string               `toml:"addr-v4"`
	AddrV6              string               `toml:"addr-v6,omitempty"`
	LinkCharacteristics *LinkCharacteristics `toml:"link-characteristics,omitempty"` // nil means "use the default"
}

// Network is one locally originated prefix, advertised to neighbours.
type Network struct {
	Proto     string `toml:"proto"` // "v4" or "v6"
	Prefix    string `toml:"prefix"`
	PrefixLen int    `toml:"prefix-len"`
}

// Config is the engine's complete static configuration, supplied once
// at registration and treated as immutable thereafter.
type Config struct {
	ID string `toml:"id"`

	AdvertiseInterval       int `toml:"rtn-msg-interval"`        // seconds, default 30
	AdvertiseIntervalJitter int `toml:"rtn-msg-interval-jitter"` // seconds, default AdvertiseInterval/4
	HoldTime                int `toml:"rtn-msg-hold-time"`       // seconds, default AdvertiseInterval*3

	MulticastV4 string `toml:"mcast-v4-tx-addr"`
	MulticastV6 string `toml:"mcast-v6-tx-addr"`

	Interfaces []Interface `toml:"interfaces"`
	Networks   []Network   `toml:"networks"`

	ProtoTransportEnable []string `toml:"proto-transport-enable,omitempty"`
}

// normalize validates c and fills in defaults, returning the warnings
// that should be logged about any substitution it made. It never
// mutates c.
func (c Config) normalize() (Config, []string, error) {
	var warnings []string

	if c.ID == "" {
		return Config{}, nil, configErrorf("id is required")
	}

	if len(c.Interfaces) == 0 {
		return Config{}, nil, configErrorf("at least one interface is required")
	}

	if c.MulticastV4 == "" {
		return Config{}, nil, configErrorf("mcast-v4-tx-addr is required")
	}

	if c.MulticastV6 == "" {
		return Config{}, nil, configErrorf("mcast-v6-tx-addr is required")
	}

	seen := map[string]bool{}
	ifaces := make([]Interface, len(c.Interfaces))
	for i, iface := range c.Interfaces {
		if iface.Name == "" {
			return Config{}, nil, configErrorf("interface %d: name is required", i)
		}
		if iface.AddrV4 == "" {
			return Config{}, nil, configErrorf("interface %q: addr-v4 is required", iface.Name)
		}
		if seen[iface.Name] {
			return Config{}, nil, configErrorf("interface %q: duplicate name", iface.Name)
		}
		seen[iface.Name] = true

		if iface.LinkCharacteristics == nil {
			warnings = append(warnings, "interface "+iface.Name+": missing link-characteristics, defaulting to {bandwidth:5000, loss:0, cost:0}")
			lc := defaultLinkCharacteristics
			iface.LinkCharacteristics = &lc
		}
		ifaces[i] = iface
	}
	c.Interfaces = ifaces

	for i, n := range c.Networks {
		switch n.Proto {
		case "v4", "v6":
		default:
			return Config{}, nil, configErrorf("network %d: proto must be \"v4\" or \"v6\", got %q", i, n.Proto)
		}
		if n.Prefix == "" {
			return Config{}, nil, configErrorf("network %d: prefix is required", i)
		}
	}

	if c.AdvertiseInterval <= 0 {
		c.AdvertiseInterval = 30
	}
	if c.AdvertiseIntervalJitter <= 0 {
		c.AdvertiseIntervalJitter = c.AdvertiseInterval / 4
	}
	if c.HoldTime <= 0 {
		c.HoldTime = c.AdvertiseInterval * 3
	}

	return c, warnings, nil
}

func (c Config) findInterface(name string) (Interface, bool) {
	for _, iface := range c.Interfaces {
		if iface.Name == name {
			return iface, true
		}
	}
	return Interface{}, false
}

// originatorAddr returns the locally configured address of the given
// family on iface, used to populate outgoing advertisements.
func (c Config) originatorAddr(proto, iface string) (string, bool) {
	i, ok := c.findInterface(iface)
	if !ok {
		return "", false
	}
	switch proto {
	case "v4":
		if i.AddrV4 == "" {
			return "", false
		}
		return i.AddrV4, true
	case "v6":
		if i.AddrV6 == "" {
			return "", false
		}
		return i.AddrV6, true
	default:
		return "", false
	}
}

// v4Networks returns the locally originated v4 networks in wire form
// ("<dotted>/<len>").
func (c Config) v4Networks() []metric.Network {
	var out []metric.Network
	for _, n := range c.Networks {
		if n.Proto != "v4" {
			continue
		}
		out = append(out, metric.Network{V4Prefix: fmt.Sprintf("%s/%d", n.Prefix, n.PrefixLen)})
	}
	return out
}
