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

// Command dmprd runs the DMPR routing daemon: it loads a TOML
// configuration, wires real UDP multicast transport, a logrus
// logger, and (on Linux) a netlink FIB installer into a dmpr.Engine,
// and drives it with a 1Hz ticker until interrupted.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "dmprd",
		Short: "Dynamic MultiPath Routing daemon",
		Long: `dmprd advertises and resolves routes under several competing
metrics at once (lowest loss, highest bandwidth, a compound
bandwidth/loss score, a cost-free policy, and cost-free/high-bandwidth)
across a node's local interfaces, exchanging state with neighbours
over UDP multicast.`,
	}

	root.AddCommand(newRunCommand())
	root.AddCommand(newValidateCommand())
	root.AddCommand(newVersionCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
