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

package replay

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/nullframe/axiomkernel/core/axiom"
)

// Snapshot is one commit-log prefix to replay and verify independently —
// for example, several checkpoints a host persisted at different points
// in a long-running system's life, each carrying its own expected hash.
type Snapshot struct {
	Label    string
	Commits  []axiom.Commit
	Expected [32]byte
}

// VerifyAll replays every snapshot concurrently, fanning out the way
// core/images' content dispatcher fans out handler chains, and returns the
// first error encountered (commit application failure or hash mismatch).
// Each snapshot gets its own fresh kernel, so there is no shared state to
// race on between goroutines.
func VerifyAll(ctx context.Context, snapshots []Snapshot) error {
	g, _ := errgroup.WithContext(ctx)
	for _, snap := range snapshots {
		snap := snap
		g.Go(func() error {
			_, err := ReplayAndVerify(snap.Commits, snap.Expected)
			if err != nil {
				return fmt.Errorf("%s: %w", snap.Label, err)
			}
			return nil
		})
	}
	return g.Wait()
}
