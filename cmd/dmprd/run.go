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

package main

import (
	"context"
	"fmt"
	"net/netip"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nwmesh/dmpr"
	dmprlog "github.com/nwmesh/dmpr/log"
	"github.com/nwmesh/dmpr/install"
	"github.com/nwmesh/dmpr/transport"
	"github.com/nwmesh/dmpr/wire"
)

const multicastPort = 8886

func newRunCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "dmprd.toml", "path to a TOML configuration file")
	return cmd
}

func runDaemon(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger := dmprlog.NewLogrus(logrus.StandardLogger())
	e := dmpr.New(logger)

	if err := e.RegisterConfig(cfg); err != nil {
		return err
	}

	group, err := netip.ParseAddr(cfg.MulticastV4)
	if err != nil {
		return fmt.Errorf("dmprd: mcast-v4-tx-addr: %w", err)
	}

	mcasts := map[string]*transport.Multicast{}
	for _, iface := range cfg.Interfaces {
		m, err := transport.NewMulticast(iface.Name, group, multicastPort)
		if err != nil {
			return err
		}
		mcasts[iface.Name] = m
		defer m.Close()
	}

	e.RegisterClock(time.Now)
	e.RegisterTransmit(func(ifaceName, proto, dst string, payload []byte) error {
		m, ok := mcasts[ifaceName]
		if !ok {
			return fmt.Errorf("dmprd: no transport bound for interface %q", ifaceName)
		}
		return m.Send(payload, multicastPort)
	})

	installer := install.NewNetlink()
	e.RegisterInstaller(installer.Update)

	if err := e.Start(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for ifaceName, m := range mcasts {
		ifaceName, m := ifaceName, m
		go func() {
			_ = m.Listen(ctx, func(payload []byte) {
				adv, err := wire.Decode(payload)
				if err != nil {
					logger.Warn("dropped malformed advertisement", dmprlog.KV{"interface": ifaceName, "error": err.Error()})
					return
				}
				if err := e.Receive(ifaceName, adv); err != nil {
					logger.Error("receive failed", dmprlog.KV{"interface": ifaceName, "error": err.Error()})
				}
			})
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := e.Tick(); err != nil {
				logger.Error("tick failed", dmprlog.KV{"error": err.Error()})
			}
		case <-sigCh:
			cancel()
			return e.Stop()
		}
	}
}
