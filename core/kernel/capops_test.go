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
)

func TestGrantCapabilityRequiresGrantPermission(t *testing.T) {
	k := newTestKernelWithProcess(t, 1)
	k.RegisterProcess(2, 1, "child", 1)

	cs, _ := k.GetCapSpace(1)
	slot := cs.Insert(Capability{ID: 1, ObjectType: ObjectTypeEndpoint, ObjectID: 9, Permissions: ReadWrite()})

	_, _, err := k.GrantCapability(1, slot, 2, ReadOnly(), 1)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestGrantCapabilityCannotEscalatePermissions(t *testing.T) {
	k := newTestKernelWithProcess(t, 1)
	k.RegisterProcess(2, 1, "child", 1)

	cs, _ := k.GetCapSpace(1)
	slot := cs.Insert(Capability{ID: 1, ObjectType: ObjectTypeEndpoint, ObjectID: 9, Permissions: Permissions{Read: true, Grant: true}})

	_, _, err := k.GrantCapability(1, slot, 2, ReadWrite(), 1)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestGrantCapabilityInstallsNarrowerCopy(t *testing.T) {
	k := newTestKernelWithProcess(t, 1)
	k.RegisterProcess(2, 1, "child", 1)

	cs, _ := k.GetCapSpace(1)
	slot := cs.Insert(Capability{ID: 1, ObjectType: ObjectTypeEndpoint, ObjectID: 9, Permissions: Full()})

	toSlot, commits, err := k.GrantCapability(1, slot, 2, ReadOnly(), 1)
	require.NoError(t, err)
	require.Len(t, commits, 2)

	toCS, _ := k.GetCapSpace(2)
	got, ok := toCS.Get(toSlot)
	require.True(t, ok)
	assert.Equal(t, ReadOnly(), got.Permissions)
	assert.Equal(t, ObjectTypeEndpoint, got.ObjectType)
}

func TestDeriveCapabilityRejectsEqualOrWiderPerms(t *testing.T) {
	k := newTestKernelWithProcess(t, 1)
	cs, _ := k.GetCapSpace(1)
	slot := cs.Insert(Capability{ID: 1, ObjectType: ObjectTypeEndpoint, ObjectID: 9, Permissions: ReadOnly()})

	_, _, err := k.DeriveCapability(1, slot, ReadOnly(), 1)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, _, err = k.DeriveCapability(1, slot, ReadWrite(), 1)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestRevokeCapabilityReportsDerivedChildren(t *testing.T) {
	k := newTestKernelWithProcess(t, 1)
	cs, _ := k.GetCapSpace(1)
	parentSlot := cs.Insert(Capability{ID: 1, ObjectType: ObjectTypeEndpoint, ObjectID: 9, Permissions: Full()})

	childSlot, _, err := k.DeriveCapability(1, parentSlot, ReadOnly(), 1)
	require.NoError(t, err)

	note, commits, err := k.RevokeCapability(1, parentSlot, 2)
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Len(t, note.Children, 1)

	_, stillThere := cs.Get(childSlot)
	assert.True(t, stillThere, "cheap revocation does not cascade to derived children")
}

func TestInspectCapabilityIsReadOnly(t *testing.T) {
	k := newTestKernelWithProcess(t, 1)
	cs, _ := k.GetCapSpace(1)
	slot := cs.Insert(Capability{ID: 1, ObjectType: ObjectTypeConsole, ObjectID: 0, Permissions: ReadWrite()})

	info, err := k.InspectCapability(1, slot)
	require.NoError(t, err)
	assert.Equal(t, ObjectTypeConsole, info.ObjectType)
	assert.Equal(t, 1, cs.Len())
}
