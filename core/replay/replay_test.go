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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nullframe/axiomkernel/core/axiom"
	"github.com/nullframe/axiomkernel/core/kernel"
)

func buildSampleLog(t *testing.T) *axiom.CommitLog {
	t.Helper()
	l := axiom.NewCommitLog(1)
	l.Append(axiom.CommitType{Kind: axiom.CommitProcessCreated, PID: 0, ProcessName: "supervisor"}, nil, 2)
	l.Append(axiom.CommitType{Kind: axiom.CommitProcessCreated, PID: 1, Parent: 0, ProcessName: "init"}, nil, 3)
	l.Append(axiom.CommitType{Kind: axiom.CommitEndpointCreated, EndpointID: 1, Owner: 1}, nil, 4)
	l.Append(axiom.CommitType{Kind: axiom.CommitCapInserted, PID: 1, Slot: 0, CapID: 1, ObjectType: uint8(kernel.ObjectTypeEndpoint), ObjectID: 1, Perms: kernel.ReadWrite().ToByte()}, nil, 5)
	return l
}

func TestReplayReconstructsProcessTable(t *testing.T) {
	l := buildSampleLog(t)
	k, err := Replay(l.Commits())
	require.NoError(t, err)

	procs := k.ListProcesses()
	require.Len(t, procs, 2)
	assert.Equal(t, kernel.ProcessID(1), procs[1].PID)
	assert.Equal(t, "init", procs[1].Name)
}

func TestReplayIsDeterministicAcrossRuns(t *testing.T) {
	l := buildSampleLog(t)
	k1, err := Replay(l.Commits())
	require.NoError(t, err)
	k2, err := Replay(l.Commits())
	require.NoError(t, err)

	assert.Equal(t, k1.StateHash(), k2.StateHash())
}

func TestReplayAndVerifyDetectsMismatch(t *testing.T) {
	l := buildSampleLog(t)
	_, err := ReplayAndVerify(l.Commits(), [32]byte{0xDE, 0xAD})

	var mismatch *MismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestReplayAndVerifySucceedsOnMatchingHash(t *testing.T) {
	l := buildSampleLog(t)
	k, err := Replay(l.Commits())
	require.NoError(t, err)
	expected := k.StateHash()

	_, err = ReplayAndVerify(l.Commits(), expected)
	assert.NoError(t, err)
}

func TestVerifyAllRunsSnapshotsConcurrently(t *testing.T) {
	l := buildSampleLog(t)
	k, err := Replay(l.Commits())
	require.NoError(t, err)
	expected := k.StateHash()

	snapshots := []Snapshot{
		{Label: "a", Commits: l.Commits(), Expected: expected},
		{Label: "b", Commits: l.Commits(), Expected: expected},
	}
	assert.NoError(t, VerifyAll(context.Background(), snapshots))
}

func TestVerifyAllReportsFirstMismatch(t *testing.T) {
	l := buildSampleLog(t)
	snapshots := []Snapshot{
		{Label: "bad", Commits: l.Commits(), Expected: [32]byte{0x01}},
	}
	err := VerifyAll(context.Background(), snapshots)
	assert.ErrorContains(t, err, "bad")
}
