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

package commands

import (
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v2"

	axconfig "github.com/nullframe/axiomkernel/cmd/axiomd/config"
)

// ConfigCommand groups config-file subcommands, the way `ctr` groups
// everything underneath a themed command.
var ConfigCommand = &cli.Command{
	Name:  "config",
	Usage: "axiomd configuration file operations",
	Subcommands: []*cli.Command{
		configDefaultCommand,
	},
}

var configDefaultCommand = &cli.Command{
	Name:  "default",
	Usage: "print axiomd's default configuration",
	Action: func(cliContext *cli.Context) error {
		return toml.NewEncoder(os.Stdout).Encode(axconfig.Default())
	},
}
