/*
   Copyright The containerd Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package app assembles axiomd's *cli.App the way cmd/ctr/app does: one
// urfave/cli application with subcommands living in their own files under
// cmd/axiomd/commands.
package app

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/nullframe/axiomkernel/cmd/axiomd/commands"
)

// Version is set at build time in a real release; fixed here since this
// core doesn't carry its own release tooling.
var Version = "0.1.0"

func init() {
	cli.VersionPrinter = func(cliContext *cli.Context) {
		fmt.Println(cliContext.App.Name, Version)
	}
}

// New returns the assembled axiomd CLI application.
func New() *cli.App {
	app := cli.NewApp()
	app.Name = "axiomd"
	app.Version = Version
	app.Usage = "capability-secured microkernel core: boot, inspect, and replay"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path to axiomd's TOML config file",
			Value:   "/etc/axiomd/config.toml",
		},
	}
	app.Commands = []*cli.Command{
		commands.BootCommand,
		commands.ConfigCommand,
		commands.InspectCommand,
		commands.ReplayCommand,
	}
	return app
}
