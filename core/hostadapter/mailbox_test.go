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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailboxWriteSyscallThenTake(t *testing.T) {
	m := NewMailbox(16)
	assert.False(t, m.IsPending())

	m.WriteSyscall(0x09, [3]uint32{1, 2, 3})
	assert.True(t, m.IsPending())

	num, args, ok := m.TryTakeSyscall()
	require.True(t, ok)
	assert.Equal(t, uint32(0x09), num)
	assert.Equal(t, [3]uint32{1, 2, 3}, args)
}

func TestMailboxTryTakeSyscallFalseWhenIdle(t *testing.T) {
	m := NewMailbox(16)
	_, _, ok := m.TryTakeSyscall()
	assert.False(t, ok)
}

func TestMailboxWriteResultThenTakeResponse(t *testing.T) {
	m := NewMailbox(16)
	m.WriteResult(-3, []byte("hello world"))

	code, data := m.TakeResponse()
	assert.Equal(t, int64(-3), code)
	assert.Equal(t, "hello world", string(data))
	assert.False(t, m.IsPending())
}

func TestMailboxWriteResultTruncatesOversizedPayload(t *testing.T) {
	m := NewMailbox(1)
	big := make([]byte, 100)
	for i := range big {
		big[i] = byte(i)
	}
	m.WriteResult(0, big)

	_, data := m.TakeResponse()
	assert.Len(t, data, 4)
}
