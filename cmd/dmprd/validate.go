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
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nwmesh/dmpr"
)

func newValidateCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load and normalize a configuration file, printing diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			e := dmpr.New(nil)
			e.RegisterClock(time.Now)
			e.RegisterTransmit(func(string, string, string, []byte) error { return nil })
			e.RegisterInstaller(func(dmpr.RoutingTable) error { return nil })

			if err := e.RegisterConfig(cfg); err != nil {
				var confErr *dmpr.ConfigurationError
				if ok := asConfigurationError(err, &confErr); ok {
					fmt.Fprintln(os.Stderr, confErr)
					os.Exit(1)
				}
				return err
			}

			js, err := json.MarshalIndent(e.Snapshot(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(js))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "dmprd.toml", "path to a TOML configuration file")
	return cmd
}

func asConfigurationError(err error, target **dmpr.ConfigurationError) bool {
	ce, ok := err.(*dmpr.ConfigurationError)
	if ok {
		*target = ce
	}
	return ok
}
