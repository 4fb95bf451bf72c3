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

package axiom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCommitLogGenesis(t *testing.T) {
	l := NewCommitLog(100)
	require.Equal(t, 1, l.Len())

	genesis := l.Commits()[0]
	assert.Equal(t, CommitID{}, genesis.PrevCommit)
	assert.Equal(t, uint64(0), genesis.Seq)
	assert.Equal(t, CommitGenesis, genesis.Type.Kind)
	assert.Equal(t, genesis.ID, l.Head())
}

func TestCommitLogAppendChainsToHead(t *testing.T) {
	l := NewCommitLog(1)
	headBefore := l.Head()

	id := l.Append(CommitType{Kind: CommitProcessCreated, PID: 1, ProcessName: "init"}, nil, 2)
	assert.Equal(t, id, l.Head())
	assert.Equal(t, uint64(1), l.CurrentSeq())

	commits := l.Commits()
	require.Len(t, commits, 2)
	assert.Equal(t, headBefore, commits[1].PrevCommit)
}

func TestCommitLogVerifyIntegrity(t *testing.T) {
	l := NewCommitLog(1)
	l.Append(CommitType{Kind: CommitProcessCreated, PID: 1, ProcessName: "init"}, nil, 2)
	l.Append(CommitType{Kind: CommitEndpointCreated, EndpointID: 1, Owner: 1}, nil, 3)

	assert.True(t, l.VerifyIntegrity())
}

func TestCommitLogVerifyIntegrityDetectsTamper(t *testing.T) {
	l := NewCommitLog(1)
	l.Append(CommitType{Kind: CommitProcessCreated, PID: 1, ProcessName: "init"}, nil, 2)

	commits := l.Commits()
	commits[1].Timestamp = 9999

	assert.False(t, l.VerifyIntegrity())
}

func TestCommitLogTrimHookFiresOnOverflow(t *testing.T) {
	l := NewCommitLog(1)
	var dropped []Commit
	l.TrimHook = func(c []Commit) { dropped = append(dropped, c...) }

	for i := 0; i < MaxCommitLogEntries+5; i++ {
		l.Append(CommitType{Kind: CommitProcessCreated, PID: uint64(i), ProcessName: "p"}, nil, uint64(i))
	}

	// The Genesis commit counts toward the bound: Max+6 commits in all, Max kept.
	assert.Len(t, dropped, 6)
	assert.LessOrEqual(t, l.Len(), MaxCommitLogEntries)
}

func TestCommitHashDeterministic(t *testing.T) {
	a := Commit{Seq: 1, Timestamp: 2, Type: CommitType{Kind: CommitProcessCreated, PID: 1, Parent: 0, ProcessName: "x"}}
	b := a
	assert.Equal(t, computeHash(a), computeHash(b))

	b.Type.ProcessName = "y"
	assert.NotEqual(t, computeHash(a), computeHash(b))
}

func TestGatewayLogsRequestAndResponse(t *testing.T) {
	g := NewAxiomGateway(1)
	reqID := g.LogRequest(1, 0x10, [4]uint32{1, 2, 3, 4}, 10)
	g.LogResponse(1, reqID, 0, 11)

	events := g.SysLog().Events()
	require.Len(t, events, 2)
	assert.Equal(t, SysEventRequest, events[0].Kind)
	assert.Equal(t, SysEventResponse, events[1].Kind)
	assert.Equal(t, reqID, events[1].RequestID)
}
