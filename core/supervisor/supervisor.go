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

// Package supervisor is the thin wiring layer the system overview's control
// flow describes: a worker writes a syscall to its mailbox, the supervisor
// hands (sender, syscall_num, args, data) to Axiom, and Axiom calls back
// into the kernel. axiom and kernel can't import each other directly
// (kernel names the commit shape axiom owns), so this package, not either
// of them, holds one AxiomGateway and one KernelCore and implements the
// process_syscall pipeline described in §4.1.
package supervisor

import (
	"context"
	"fmt"

	"github.com/containerd/log"

	"github.com/nullframe/axiomkernel/core/axiom"
	"github.com/nullframe/axiomkernel/core/kernel"
)

// Clock is the host's wallclock, read once per syscall per §4.1 step 1.
// Never consulted by replay — see R4.
type Clock interface {
	NowNanos() uint64
}

// ClockFunc adapts a plain function to Clock.
type ClockFunc func() uint64

// NowNanos implements Clock.
func (f ClockFunc) NowNanos() uint64 { return f() }

// Supervisor is the single writer of kernel state and the only caller of
// Axiom's gateway operation. It is not safe for concurrent use — see the
// concurrency model: exactly one goroutine, the host's poll loop, may call
// ProcessSyscall.
type Supervisor struct {
	axiom        *axiom.AxiomGateway
	kernel       *kernel.KernelCore
	clock        Clock
	bootstrapped bool
}

// New constructs a Supervisor with a fresh kernel and a gateway whose
// CommitLog begins with one Genesis commit stamped at clock.NowNanos().
func New(clock Clock) *Supervisor {
	now := clock.NowNanos()
	return &Supervisor{
		axiom:  axiom.NewAxiomGateway(now),
		kernel: kernel.NewKernelCore(),
		clock:  clock,
	}
}

// Kernel exposes the read-only kernel surface (ListProcesses, ListCaps,
// CapInspect, GetSystemMetrics) used by inspection tooling.
func (s *Supervisor) Kernel() *kernel.KernelCore { return s.kernel }

// SysLog returns the request/response audit trail.
func (s *Supervisor) SysLog() *axiom.SysLog { return s.axiom.SysLog() }

// CommitLog returns the hash-chained mutation log.
func (s *Supervisor) CommitLog() *axiom.CommitLog { return s.axiom.CommitLog() }

// Bootstrap performs the two direct, un-gated registrations permitted at
// system start (§4.1): pid 0 for the supervisor itself, pid 1 for init.
// Both still produce ProcessCreated commits, appended directly since no
// SysEvent caused them. A second call fails — once init is running, every
// other path into the kernel must go through ProcessSyscall.
func (s *Supervisor) Bootstrap(ctx context.Context, initName string) error {
	if s.bootstrapped {
		return fmt.Errorf("bootstrap already ran")
	}

	now := s.clock.NowNanos()
	if _, commits := s.kernel.RegisterProcess(0, 0, "supervisor", now); len(commits) > 0 {
		s.appendAll(commits, nil, now)
	}
	log.G(ctx).WithField("pid", 0).Info("registered supervisor")

	now = s.clock.NowNanos()
	if _, commits := s.kernel.RegisterProcess(1, 0, initName, now); len(commits) > 0 {
		s.appendAll(commits, nil, now)
	}
	log.G(ctx).WithField("pid", 1).WithField("name", initName).Info("registered init")

	s.bootstrapped = true
	return nil
}

// Result is what the host writes back into the worker's mailbox: a result
// code, a formatted rich result, and the response bytes to copy into the
// mailbox's payload region.
type Result struct {
	ResultCode   int64
	Outcome      kernel.Outcome
	ResponseData []byte
}

// ProcessSyscall is Axiom's one operation (§4.1): log the request, execute
// it against the kernel, commit every mutation, run the step-5 formatter
// (which may itself produce extra commits — receive-with-caps is the
// motivating case), log the response, and return. No step may be skipped
// or reordered, even on the error path; Axiom itself never rejects a
// request, it just returns whatever result_code the kernel produced.
func (s *Supervisor) ProcessSyscall(ctx context.Context, sender kernel.ProcessID, syscallNum kernel.SyscallNum, args [4]uint32, data []byte) Result {
	ts := s.clock.NowNanos()
	reqID := s.axiom.LogRequest(uint64(sender), uint32(syscallNum), args, ts)

	if syscallNum == kernel.SyscallDebug {
		log.G(ctx).WithField("pid", sender).Info(string(data))
	}

	outcome, commits, err := s.kernel.Execute(sender, kernel.SyscallRequest{Num: syscallNum, Args: args, Data: data}, ts)
	s.appendAll(commits, &reqID, ts)

	extra := s.format(sender, syscallNum, &outcome, err, ts)
	s.appendAll(extra, &reqID, ts)

	resultCode := kernel.ResultCode(err)
	responseBytes := encodeResponse(outcome)

	s.axiom.LogResponse(uint64(sender), reqID, resultCode, s.clock.NowNanos())

	return Result{ResultCode: resultCode, Outcome: outcome, ResponseData: responseBytes}
}

// format is the §4.1 step-5 formatter: today the only syscall whose raw
// kernel result needs a second kernel call to finish formatting is
// Receive, whose transferred capabilities aren't installed until the raw
// message pop is known to have succeeded (see InstallTransferredCaps).
func (s *Supervisor) format(sender kernel.ProcessID, syscallNum kernel.SyscallNum, outcome *kernel.Outcome, execErr error, ts uint64) []kernel.CommitType {
	if execErr != nil || outcome.Message == nil {
		return nil
	}
	if syscallNum != kernel.SyscallReceive {
		return nil
	}
	if len(outcome.Message.TransferredCaps) == 0 {
		return nil
	}

	slots, commits, err := s.kernel.InstallTransferredCaps(sender, outcome.Message)
	if err != nil {
		// Installing transferred caps failed after the message was already
		// popped; per §9 this can't be partially rolled back, so the
		// receive syscall still reports its commits honestly and the
		// caller sees the message without its caps installed.
		log.G(context.Background()).WithError(err).Warn("failed to install transferred caps")
		return nil
	}
	outcome.InstalledCapSlots = slots
	return commits
}

func (s *Supervisor) appendAll(commits []kernel.CommitType, causedBy *axiom.EventID, ts uint64) {
	for _, ct := range commits {
		s.axiom.AppendCommit(ct, causedBy, ts)
	}
}
