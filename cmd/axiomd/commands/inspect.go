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
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/nullframe/axiomkernel/core/axiom"
	"github.com/nullframe/axiomkernel/core/kernel"
	"github.com/nullframe/axiomkernel/core/replay"
	"github.com/nullframe/axiomkernel/persist/boltlog"
)

// InspectCommand reconstructs kernel state from the persisted commit log
// via core/replay and prints whichever read-only view was asked for — the
// same ListProcesses/ListCaps/ListEndpoints/GetSystemMetrics surface a
// live kernel exposes, since replay produces a byte-identical KernelCore.
var InspectCommand = &cli.Command{
	Name:  "inspect",
	Usage: "inspect replayed kernel state or the raw commit log",
	Subcommands: []*cli.Command{
		inspectSub("processes", printProcesses),
		inspectSub("caps", printCaps),
		inspectSub("endpoints", printEndpoints),
		inspectSub("commits", printCommits),
		inspectSub("metrics", printMetrics),
	},
}

func inspectSub(name string, show func(*kernel.KernelCore, []axiom.Commit)) *cli.Command {
	return &cli.Command{
		Name: name,
		Action: func(cliContext *cli.Context) error {
			k, commits, err := loadReplayedKernel(cliContext)
			if err != nil {
				return err
			}
			show(k, commits)
			return nil
		},
	}
}

func loadReplayedKernel(cliContext *cli.Context) (*kernel.KernelCore, []axiom.Commit, error) {
	cfg, err := loadConfigOrDefault(cliContext)
	if err != nil {
		return nil, nil, err
	}
	db, err := boltlog.Open(filepath.Join(cfg.Root, "commitlog.db"))
	if err != nil {
		return nil, nil, err
	}
	defer db.Close()

	commits, err := db.LoadCommits()
	if err != nil {
		return nil, nil, err
	}
	k, err := replay.Replay(commits)
	if err != nil {
		return nil, nil, err
	}
	return k, commits, nil
}

func printProcesses(k *kernel.KernelCore, _ []axiom.Commit) {
	for _, p := range k.ListProcesses() {
		fmt.Printf("pid=%d parent=%d name=%q state=%s\n", p.PID, p.Parent, p.Name, p.State)
	}
}

func printCaps(k *kernel.KernelCore, _ []axiom.Commit) {
	for _, p := range k.ListProcesses() {
		cs, ok := k.GetCapSpace(p.PID)
		if !ok {
			continue
		}
		for _, c := range cs.List() {
			fmt.Printf("pid=%d slot=%d id=%d type=%s object=%d perms=%v\n", p.PID, c.Slot, c.ID, c.ObjectType, c.ObjectID, c.Permissions)
		}
	}
}

func printEndpoints(k *kernel.KernelCore, _ []axiom.Commit) {
	for _, e := range k.ListEndpoints() {
		fmt.Printf("id=%d owner=%d\n", e.ID, e.Owner)
	}
}

func printMetrics(k *kernel.KernelCore, _ []axiom.Commit) {
	m := k.GetSystemMetrics(0)
	fmt.Printf("processes=%d total_ipc=%d total_memory=%d\n", m.ProcessCount, m.TotalIPCCount, m.TotalMemory)
}

func printCommits(_ *kernel.KernelCore, commits []axiom.Commit) {
	for _, c := range commits {
		var caused int64 = -1
		if c.CausedBy != nil {
			caused = int64(*c.CausedBy)
		}
		fmt.Printf("seq=%d id=%x kind=%d caused_by=%d\n", c.Seq, c.ID, c.Type.Kind, caused)
	}
}
