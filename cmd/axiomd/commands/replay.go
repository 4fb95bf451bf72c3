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

	"github.com/containerd/log"
	"github.com/urfave/cli/v2"

	"github.com/nullframe/axiomkernel/core/axiom"
	"github.com/nullframe/axiomkernel/core/replay"
	"github.com/nullframe/axiomkernel/persist/boltlog"
)

// ReplayCommand folds the persisted commit log through core/replay and
// reports the resulting state hash, the same deterministic check a host
// runs after restoring from disk before trusting the kernel it rebuilt.
var ReplayCommand = &cli.Command{
	Name:  "replay",
	Usage: "replay the persisted commit log and print the resulting state hash",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "parallel",
			Usage: "cut the log at up to N evenly spaced points and verify each prefix from genesis concurrently via errgroup",
		},
	},
	Action: func(cliContext *cli.Context) error {
		ctx := cliContext.Context
		cfg, err := loadConfigOrDefault(cliContext)
		if err != nil {
			return err
		}
		db, err := boltlog.Open(filepath.Join(cfg.Root, "commitlog.db"))
		if err != nil {
			return err
		}
		defer db.Close()

		commits, err := db.LoadCommits()
		if err != nil {
			return err
		}
		if len(commits) == 0 {
			fmt.Println("commit log is empty, nothing to replay")
			return nil
		}

		n := cliContext.Int("parallel")
		if n <= 1 {
			k, err := replay.Replay(commits)
			if err != nil {
				return err
			}
			hash := k.StateHash()
			fmt.Printf("replayed %d commits, state_hash=%x\n", len(commits), hash)
			return nil
		}

		snapshots := splitSnapshots(commits, n)
		log.G(ctx).WithField("segments", len(snapshots)).Info("verifying replay segments concurrently")
		if err := replay.VerifyAll(ctx, snapshots); err != nil {
			return err
		}
		fmt.Printf("replayed %d commits across %d segments, all state hashes verified\n", len(commits), len(snapshots))
		return nil
	},
}

// splitSnapshots cuts commits at up to n evenly spaced points and returns
// the prefix-from-genesis ending at each cut (so the prefixes nest, each
// containing the previous one) so each segment remains independently replayable
// (§4.3 requires folding from Genesis, not from an arbitrary midpoint),
// each carrying the expected hash its own last commit implies once
// replayed standalone.
func splitSnapshots(commits []axiom.Commit, n int) []replay.Snapshot {
	if n > len(commits) {
		n = len(commits)
	}
	chunk := (len(commits) + n - 1) / n
	snapshots := make([]replay.Snapshot, 0, n)
	for start := 0; start < len(commits); start += chunk {
		end := start + chunk
		if end > len(commits) {
			end = len(commits)
		}
		segment := commits[:end]
		k, err := replay.Replay(segment)
		expected := [32]byte{}
		if err == nil {
			expected = k.StateHash()
		}
		snapshots = append(snapshots, replay.Snapshot{
			Label:    fmt.Sprintf("segment[0:%d]", end),
			Commits:  segment,
			Expected: expected,
		})
	}
	return snapshots
}
