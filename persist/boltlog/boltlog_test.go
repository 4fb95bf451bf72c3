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

package boltlog

import (
	"path/filepath"
	"testing"

	"github.com/containerd/errdefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nullframe/axiomkernel/core/axiom"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "commitlog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleCommits() []axiom.Commit {
	l := axiom.NewCommitLog(1)
	l.Append(axiom.CommitType{Kind: axiom.CommitProcessCreated, PID: 1, ProcessName: "init"}, nil, 2)
	l.Append(axiom.CommitType{Kind: axiom.CommitEndpointCreated, EndpointID: 1, Owner: 1}, nil, 3)
	return l.Commits()
}

func TestAppendAndLoadCommitsRoundTrip(t *testing.T) {
	db := openTestDB(t)
	commits := sampleCommits()

	require.NoError(t, db.AppendCommits(commits))

	loaded, err := db.LoadCommits()
	require.NoError(t, err)
	require.Len(t, loaded, len(commits))
	for i := range commits {
		assert.Equal(t, commits[i].ID, loaded[i].ID)
		assert.Equal(t, commits[i].Type.Kind, loaded[i].Type.Kind)
	}
}

func TestAppendCommitsRecordsSegmentDigest(t *testing.T) {
	db := openTestDB(t)
	commits := sampleCommits()
	require.NoError(t, db.AppendCommits(commits))

	dgst, err := db.SegmentDigest(commits[len(commits)-1].Seq)
	require.NoError(t, err)
	assert.NotEmpty(t, dgst.String())
}

func TestSegmentDigestMissingReturnsNotFound(t *testing.T) {
	db := openTestDB(t)
	_, err := db.SegmentDigest(999)
	assert.ErrorIs(t, err, errdefs.ErrNotFound)
}

func TestAppendEventsRoundTrip(t *testing.T) {
	db := openTestDB(t)
	events := []axiom.SysEvent{
		{Kind: axiom.SysEventRequest, ID: 1, Sender: 1, SyscallNum: 3},
		{Kind: axiom.SysEventResponse, ID: 2, Sender: 1, RequestID: 1, ResultCode: 0},
	}
	require.NoError(t, db.AppendEvents(events))

	loaded, err := db.LoadEvents()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, events[0].SyscallNum, loaded[0].SyscallNum)
	assert.Equal(t, events[1].RequestID, loaded[1].RequestID)
}

func TestAppendCommitsEmptyIsNoop(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.AppendCommits(nil))

	loaded, err := db.LoadCommits()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
