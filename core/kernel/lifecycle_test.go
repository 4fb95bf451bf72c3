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

package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nullframe/axiomkernel/core/axiom"
)

func TestExitTearsDownEndpointsThenCaps(t *testing.T) {
	k := newTestKernelWithProcess(t, 1)
	_, _, err := k.CreateEndpoint(1, 1)
	require.NoError(t, err)

	commits, err := k.Exit(1, 0, 2)
	require.NoError(t, err)
	require.Len(t, commits, 3)
	assert.Equal(t, axiom.CommitProcessExited, commits[0].Kind)
	assert.Equal(t, axiom.CommitEndpointDestroyed, commits[1].Kind)
	assert.Equal(t, axiom.CommitCapRemoved, commits[2].Kind)

	p, ok := k.GetProcess(1)
	require.True(t, ok)
	assert.Equal(t, ProcessStateZombie, p.State)
}

func TestExitOnAlreadyZombieFails(t *testing.T) {
	k := newTestKernelWithProcess(t, 1)
	_, err := k.Exit(1, 0, 1)
	require.NoError(t, err)

	_, err = k.Exit(1, 0, 2)
	assert.ErrorIs(t, err, ErrProcessNotFound)
}

func TestKillRequiresWriteCapabilityOnTarget(t *testing.T) {
	k := newTestKernelWithProcess(t, 1)
	k.RegisterProcess(2, 1, "child", 1)

	cs, _ := k.GetCapSpace(1)
	roSlot := cs.Insert(Capability{ID: 1, ObjectType: ObjectTypeProcess, ObjectID: 2, Permissions: ReadOnly()})

	_, err := k.Kill(1, roSlot, 2, 10)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	rwSlot := cs.Insert(Capability{ID: 2, ObjectType: ObjectTypeProcess, ObjectID: 2, Permissions: ReadWrite()})
	commits, err := k.Kill(1, rwSlot, 2, 11)
	require.NoError(t, err)
	assert.Equal(t, axiom.CommitProcessExited, commits[0].Kind)

	p, ok := k.GetProcess(2)
	require.True(t, ok)
	assert.Equal(t, ProcessStateZombie, p.State)
}

func TestKillWithWrongObjectTypeCapFails(t *testing.T) {
	k := newTestKernelWithProcess(t, 1)
	k.RegisterProcess(2, 1, "child", 1)

	cs, _ := k.GetCapSpace(1)
	slot := cs.Insert(Capability{ID: 1, ObjectType: ObjectTypeEndpoint, ObjectID: 2, Permissions: ReadWrite()})

	_, err := k.Kill(1, slot, 2, 10)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestFaultTransitionsToZombieWithReason(t *testing.T) {
	k := newTestKernelWithProcess(t, 1)
	commits, err := k.Fault(1, 7, "segfault", 5)
	require.NoError(t, err)
	require.NotEmpty(t, commits)
	assert.Equal(t, axiom.CommitProcessFaulted, commits[0].Kind)
	assert.Equal(t, uint32(7), commits[0].Reason)
	assert.Equal(t, "segfault", commits[0].Description)
}
