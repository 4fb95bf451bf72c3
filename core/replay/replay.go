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

// Package replay is the deterministic reducer (§4.3): a pure fold of
// apply_commit over a commit slice, reconstructing kernel state and
// verifying it against a recorded state hash. Nothing here reads a clock
// or calls out to a host — see R1-R4.
package replay

import (
	"fmt"

	"github.com/nullframe/axiomkernel/core/axiom"
	"github.com/nullframe/axiomkernel/core/kernel"
)

// MismatchError is returned by ReplayAndVerify when the replayed state
// hash doesn't match what was expected, carrying both hashes so a caller
// can report the divergence instead of just "it didn't match".
type MismatchError struct {
	Expected [32]byte
	Actual   [32]byte
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("state hash mismatch: expected %x, got %x", e.Expected, e.Actual)
}

// Replay folds ApplyCommit over commits, in order, starting from a fresh
// kernel. Commits must start at Genesis and be in ascending seq order —
// the same order the live commit log stores them in.
func Replay(commits []axiom.Commit) (*kernel.KernelCore, error) {
	k := kernel.NewKernelCore()
	for _, c := range commits {
		if err := k.ApplyCommit(c.Type); err != nil {
			return nil, fmt.Errorf("replay: commit seq %d (%v): %w", c.Seq, c.Type.Kind, err)
		}
	}
	return k, nil
}

// ReplayAndVerify replays commits and compares the resulting state hash
// against expected, returning a *MismatchError on divergence (P2).
func ReplayAndVerify(commits []axiom.Commit, expected [32]byte) (*kernel.KernelCore, error) {
	k, err := Replay(commits)
	if err != nil {
		return nil, err
	}
	actual := k.StateHash()
	if actual != expected {
		return k, &MismatchError{Expected: expected, Actual: actual}
	}
	return k, nil
}
