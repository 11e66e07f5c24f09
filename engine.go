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

// Package dmpr is the Dynamic MultiPath Routing engine: a
// distance-vector routing core that advertises and resolves routes
// under several competing metrics at once over a set of heterogeneous
// local interfaces. It has no goroutines of its own; a host drives it
// through Tick, Receive and the Start/Stop/Restart lifecycle and must
// serialize calls into a single Engine (Engine itself guards its
// state with a mutex, but makes no ordering promises across
// concurrent callers beyond that).
package dmpr

import (
	"math/rand"
	"net/netip"
	"sync"
	"time"

	"github.com/nwmesh/dmpr/log"
	"github.com/nwmesh/dmpr/metric"
	"github.com/nwmesh/dmpr/wire"
)

// ClockFunc returns the current time; it must be monotonic across a
// run. It is the engine's only source of time, so tests can supply a
// simulated clock.
type ClockFunc func() time.Time

// TransmitFunc serializes payload onto the wire on the named local
// interface, addressed to the given multicast group.
type TransmitFunc func(iface, proto, dstMcastAddr string, payload []byte) error

// InstallFunc is called with a freshly computed routing table
// whenever a recalculation completes.
type InstallFunc func(RoutingTable) error

// routingState is the engine's complete derived state: the five
// metric FIBs, the path-characteristics table they were interned
// against, and the flattened routing table built from them. It is
// replaced wholesale on every recalculation.
type routingState struct {
	paths      metric.RoutingPaths
	interner   *metric.Table
	table      RoutingTable
	computedAt time.Time
}

// Engine is one instance of the routing daemon core. Nothing about it
// is package-scoped: a process may run as many Engines as it likes,
// each independently configured and driven.
type Engine struct {
	mu  sync.Mutex
	log log.Log

	cfg        Config
	configured bool

	clock    ClockFunc
	transmit TransmitFunc
	install  InstallFunc

	rand *rand.Rand

	ndb *neighborDB
	seq map[string]uint64

	started    bool
	nextTxTime time.Time

	state routingState
}

// New creates an unconfigured Engine. logger may be nil, in which
// case diagnostics are discarded.
func New(logger log.Log) *Engine {
	if logger == nil {
		logger = log.Nil{}
	}
	return &Engine{
		log:  logger,
		ndb:  newNeighborDB(),
		seq:  map[string]uint64{},
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SeedRand replaces the engine's jitter source, for deterministic
// tests. Must be called before Start.
func (e *Engine) SeedRand(r *rand.Rand) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rand = r
}

// RegisterConfig validates and normalizes cfg and, if valid, adopts
// it. The engine remains unregistered on error.
func (e *Engine) RegisterConfig(cfg Config) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	normalized, warnings, err := cfg.normalize()
	if err != nil {
		return err
	}
	for _, w := range warnings {
		e.log.Warn("configuration default applied", log.KV{"reason": w})
	}

	e.cfg = normalized
	e.configured = true
	return nil
}

func (e *Engine) RegisterClock(f ClockFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clock = f
}

func (e *Engine) RegisterTransmit(f TransmitFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.transmit = f
}

func (e *Engine) RegisterInstaller(f InstallFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.install = f
}

// Start (re)initializes runtime state and begins the advertise/age
// cycle driven by subsequent Tick calls. It requires a config, clock,
// transmit and installer to already be registered.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.startLocked()
}

func (e *Engine) startLocked() error {
	if !e.configured {
		return internalErrorf("start: no configuration registered")
	}
	if e.clock == nil || e.transmit == nil || e.install == nil {
		return internalErrorf("start: clock, transmit and installer callbacks must all be registered")
	}

	e.ndb.reset()
	e.seq = map[string]uint64{}
	e.state = routingState{}

	now := e.clock()
	e.nextTxTime = now.Add(e.jitter())
	e.started = true

	return nil
}

// Stop clears the routing table and halts the advertise/age cycle.
// Tick becomes a no-op until Start is called again.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stopLocked()
}

func (e *Engine) stopLocked() error {
	e.started = false
	e.state = routingState{}
	if e.install != nil {
		return e.install(RoutingTable{})
	}
	return nil
}

// Restart is Stop followed by Start.
func (e *Engine) Restart() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.stopLocked(); err != nil {
		return err
	}
	return e.startLocked()
}

func (e *Engine) jitter() time.Duration {
	j := e.cfg.AdvertiseIntervalJitter
	if j <= 0 {
		return 0
	}
	return time.Duration(e.rand.Intn(j+1)) * time.Second
}

// Tick drives aging and, when due, (re)transmission. It is a no-op if
// the engine is not started.
func (e *Engine) Tick() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.started {
		return nil
	}

	now := e.clock()
	holdTime := time.Duration(e.cfg.HoldTime) * time.Second

	if e.ndb.age(now, holdTime) {
		e.recalcLocked(now)
	}

	if now.Before(e.nextTxTime) {
		return nil
	}

	for _, iface := range e.cfg.Interfaces {
		seq := e.seq[iface.Name]
		adv := buildAdvertisement(e.cfg, iface.Name, seq, e.state)
		e.seq[iface.Name] = seq + 1

		payload, err := wire.Encode(adv)
		if err != nil {
			e.log.Error("failed to encode advertisement", log.KV{"interface": iface.Name, "error": err.Error()})
			continue
		}
		if err := e.transmit(iface.Name, "v4", e.cfg.MulticastV4, payload); err != nil {
			e.log.Warn("transmit failed", log.KV{"interface": iface.Name, "error": err.Error()})
		}
	}

	interval := time.Duration(e.cfg.AdvertiseInterval) * time.Second
	e.nextTxTime = now.Add(interval).Add(e.jitter())

	return nil
}

// Receive processes one advertisement heard on iface.
func (e *Engine) Receive(iface string, adv wire.Advertisement) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.clock == nil {
		return internalErrorf("receive: clock not registered")
	}

	if _, ok := e.cfg.findInterface(iface); !ok {
		e.log.Error("advertisement on unconfigured interface", log.KV{"interface": iface, "from": adv.ID})
		return nil
	}

	if adv.ID == e.cfg.ID {
		e.log.Error("dropped advertisement from self", log.KV{"interface": iface})
		return nil
	}

	now := e.clock()
	prior, exists := e.ndb.get(iface, adv.ID)

	if exists && adv.SequenceNo <= prior.msg.SequenceNo {
		e.log.Debug("dropped stale advertisement", log.KV{"interface": iface, "from": adv.ID, "sequence-no": adv.SequenceNo})
		return nil
	}

	if exists && wire.Equal(prior.msg, adv) {
		e.ndb.store(iface, adv.ID, neighborRecord{rxTime: now, msg: adv})
		return nil
	}

	e.ndb.store(iface, adv.ID, neighborRecord{rxTime: now, msg: adv})
	e.recalcLocked(now)

	return nil
}

// recalcLocked rebuilds the topology view, rebuilds all five metric
// FIBs against it, flattens them into a routing table, and invokes the
// installer callback. Caller must hold e.mu.
func (e *Engine) recalcLocked(now time.Time) {
	ifaceOrder := make([]string, len(e.cfg.Interfaces))
	ifaceChars := map[string]metric.Characteristics{}
	for i, iface := range e.cfg.Interfaces {
		ifaceOrder[i] = iface.Name
		if iface.LinkCharacteristics != nil {
			ifaceChars[iface.Name] = iface.LinkCharacteristics.toMetric()
		}
	}

	top := buildTopology(e.ndb, ifaceOrder)

	interner := metric.NewTable()
	var paths metric.RoutingPaths
	for _, d := range metric.All() {
		fib := metric.Build(d, e.cfg.ID, top.neighbors, ifaceChars, top.others[d.Table], interner)
		paths.Set(d.Table, fib)
	}
	paths.PathChars = interner.Snapshot()

	table := emitRoutingTable(e.cfg, top, paths, interner, e.ndb)

	e.state = routingState{paths: paths, interner: interner, table: table, computedAt: now}

	if e.install != nil {
		if err := e.install(table); err != nil {
			e.log.Error("installer callback failed", log.KV{"error": err.Error()})
		}
	}
}

// NextHopAddr resolves the IP address to use as next hop for id, as
// last advertised on iface. It returns ok=false (no error) when the
// neighbour is unknown or has not advertised that address family;
// InternalError is reserved for genuinely invalid arguments.
func (e *Engine) NextHopAddr(proto, id, iface string) (netip.Addr, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if proto != "v4" && proto != "v6" {
		return netip.Addr{}, false, internalErrorf("unsupported proto %q", proto)
	}
	if _, ok := e.cfg.findInterface(iface); !ok {
		return netip.Addr{}, false, internalErrorf("unknown interface %q", iface)
	}

	rec, ok := e.ndb.get(iface, id)
	if !ok {
		return netip.Addr{}, false, nil
	}

	addrStr := rec.msg.OriginatorAddrV4
	if proto == "v6" {
		addrStr = rec.msg.OriginatorAddrV6
	}
	if addrStr == "" {
		return netip.Addr{}, false, nil
	}

	addr, err := netip.ParseAddr(addrStr)
	if err != nil {
		return netip.Addr{}, false, nil
	}
	return addr, true, nil
}
