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

package hostadapter

import (
	"context"

	"github.com/containerd/log"

	"github.com/nullframe/axiomkernel/core/kernel"
	"github.com/nullframe/axiomkernel/core/supervisor"
)

// PendingSyscall is one item poll_pending_syscalls() hands the supervisor:
// a worker's pid, its syscall number, its three mailbox argument words,
// and the variable-length data that went with it.
type PendingSyscall struct {
	PID        kernel.ProcessID
	SyscallNum kernel.SyscallNum
	Args       [3]uint32
	Data       []byte
}

// PollPendingSyscalls scans the registry for mailboxes in Pending state
// and returns one PendingSyscall per hit. The supervisor is never blocked
// by a worker: a mailbox that isn't yet Pending is simply skipped, per the
// concurrency model's suspension-point description.
func (r *Registry) PollPendingSyscalls(dataFor func(*WorkerContext) []byte) []PendingSyscall {
	var out []PendingSyscall
	for _, wc := range r.All() {
		num, args, ok := wc.Mailbox.TryTakeSyscall()
		if !ok {
			continue
		}
		var data []byte
		if dataFor != nil {
			data = dataFor(wc)
		}
		out = append(out, PendingSyscall{PID: wc.PID, SyscallNum: kernel.SyscallNum(num), Args: args, Data: data})
	}
	return out
}

// Tick runs one iteration of the host's polling loop: poll for pending
// syscalls, hand each to sup.ProcessSyscall, then write the result back
// into that worker's mailbox and flip it to Ready. Across workers the
// order items are processed in is whatever PollPendingSyscalls returned —
// unspecified but deterministic-per-run, since replay reconstructs order
// from commit sequence numbers rather than from poll order.
func (r *Registry) Tick(ctx context.Context, sup *supervisor.Supervisor, dataFor func(*WorkerContext) []byte) {
	for _, pending := range r.PollPendingSyscalls(dataFor) {
		wc, ok := r.Get(pending.PID)
		if !ok {
			log.G(ctx).WithField("pid", pending.PID).WithError(ErrUnknownContext).Warn("dropping pending syscall")
			continue
		}
		args4 := [4]uint32{pending.Args[0], pending.Args[1], pending.Args[2], 0}
		result := sup.ProcessSyscall(ctx, pending.PID, pending.SyscallNum, args4, pending.Data)
		wc.Mailbox.WriteResult(result.ResultCode, result.ResponseData)
	}
}
