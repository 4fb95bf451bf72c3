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
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/containerd/log"
	"github.com/urfave/cli/v2"

	axconfig "github.com/nullframe/axiomkernel/cmd/axiomd/config"
	"github.com/nullframe/axiomkernel/core/axiom"
	"github.com/nullframe/axiomkernel/core/supervisor"
	"github.com/nullframe/axiomkernel/persist/boltlog"
)

// BootCommand runs the bootstrap sequence (§4.1: register pid 0, then pid
// 1), wires the bolt persistence adapter to the commit log's trim hook,
// and then blocks until signaled, flushing the log on the way out. It is
// the CLI-level stand-in for the host's "assemble the plugin graph and
// start polling" responsibility.
var BootCommand = &cli.Command{
	Name:  "boot",
	Usage: "run the bootstrap sequence and hold the kernel open",
	Action: func(cliContext *cli.Context) error {
		ctx := cliContext.Context
		cfg, err := loadConfigOrDefault(cliContext)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(cfg.Root, 0711); err != nil {
			return err
		}

		sup := supervisor.New(supervisor.ClockFunc(func() uint64 { return uint64(time.Now().UnixNano()) }))
		if err := sup.Bootstrap(ctx, cfg.InitName); err != nil {
			return err
		}

		dbPath := filepath.Join(cfg.Root, "commitlog.db")
		db, err := boltlog.Open(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		sup.CommitLog().TrimHook = func(dropped []axiom.Commit) {
			if err := db.AppendCommits(dropped); err != nil {
				log.G(ctx).WithError(err).Error("failed to persist trimmed commits")
			}
		}

		log.G(ctx).WithField("root", cfg.Root).WithField("init", cfg.InitName).Info("kernel booted")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.G(ctx).Info("shutting down, flushing commit log")
		return db.AppendCommits(sup.CommitLog().Commits())
	},
}

func loadConfigOrDefault(cliContext *cli.Context) (*axconfig.Config, error) {
	path := cliContext.String("config")
	if path == "" {
		return axconfig.Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return axconfig.Default(), nil
	}
	return axconfig.Load(path)
}
