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

import "encoding/binary"

const fnvOffsetBasis uint64 = 0xcbf29ce484222325
const fnvPrime uint64 = 0x100000001b3

// Hasher is the non-cryptographic 64-bit mixer used for both the commit
// hash chain and the replay state hash (see core/replay). It is not
// intended to resist a malicious host; it exists so replay is pure and
// byte-stable, per the hash chain invariant — an implementation may freely
// substitute a cryptographic hash as long as it stays a pure function of
// its bytes. Exported so core/kernel can build the state hash with the
// exact same mixer computeHash uses for commits.
type Hasher struct {
	h uint64
}

// NewHasher returns a hasher primed with the FNV-1a offset basis.
func NewHasher() *Hasher { return &Hasher{h: fnvOffsetBasis} }

// WriteByte folds a single byte into the mixer.
func (f *Hasher) WriteByte(b byte) {
	f.h ^= uint64(b)
	f.h *= fnvPrime
}

// WriteBytes folds a byte slice in order.
func (f *Hasher) WriteBytes(b []byte) {
	for _, c := range b {
		f.WriteByte(c)
	}
}

// WriteU32 folds a little-endian uint32.
func (f *Hasher) WriteU32(v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	f.WriteBytes(buf[:])
}

// WriteU64 folds a little-endian uint64.
func (f *Hasher) WriteU64(v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	f.WriteBytes(buf[:])
}

// WriteI32 folds a little-endian int32.
func (f *Hasher) WriteI32(v int32) { f.WriteU32(uint32(v)) }

// WriteStr writes a length-prefixed string so that ("ab","c") and ("a","bc")
// hash differently, per the state hash requirement in §4.3.
func (f *Hasher) WriteStr(s string) {
	f.WriteU64(uint64(len(s)))
	f.WriteBytes([]byte(s))
}

// WriteBool folds a boolean as a single byte.
func (f *Hasher) WriteBool(b bool) {
	if b {
		f.WriteByte(1)
	} else {
		f.WriteByte(0)
	}
}

// Sum turns the 64-bit mixer state into a 32-byte digest by repeated
// multiply-and-copy.
func (f *Hasher) Sum() [32]byte {
	var out [32]byte
	h := f.h
	for i := 0; i < 32; i += 8 {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], h)
		copy(out[i:], buf[:])
		h *= fnvPrime
	}
	return out
}
