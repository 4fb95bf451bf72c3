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

// AxiomGateway owns the SysLog and the CommitLog: the single source of
// truth for "what happened." It does not itself know what a syscall means
// — that is core/kernel's job — it only ever logs requests/responses and
// appends the commits it's handed.
type AxiomGateway struct {
	syslog    *SysLog
	commitlog *CommitLog
}

// NewAxiomGateway creates a gateway with a fresh SysLog and a CommitLog
// seeded with a Genesis commit at timestamp.
func NewAxiomGateway(timestamp uint64) *AxiomGateway {
	return &AxiomGateway{
		syslog:    NewSysLog(),
		commitlog: NewCommitLog(timestamp),
	}
}

// SysLog returns the request/response log.
func (g *AxiomGateway) SysLog() *SysLog { return g.syslog }

// CommitLog returns the hash-chained mutation log.
func (g *AxiomGateway) CommitLog() *CommitLog { return g.commitlog }

// LogRequest records a Request event and returns its id.
func (g *AxiomGateway) LogRequest(sender uint64, syscallNum uint32, args [4]uint32, timestamp uint64) EventID {
	return g.syslog.LogRequest(sender, syscallNum, args, timestamp)
}

// LogResponse records a Response event answering reqID.
func (g *AxiomGateway) LogResponse(sender uint64, reqID EventID, resultCode int64, timestamp uint64) {
	g.syslog.LogResponse(sender, reqID, resultCode, timestamp)
}

// AppendCommit appends ct to the commit log, chained to the current head
// and attributed to the causing request, returning its id.
func (g *AxiomGateway) AppendCommit(ct CommitType, causedBy *EventID, timestamp uint64) CommitID {
	return g.commitlog.Append(ct, causedBy, timestamp)
}
