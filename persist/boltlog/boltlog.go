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

// Package boltlog is the host-side persistence adapter for the feed Axiom
// exposes (§6: "the kernel persists nothing itself... it exposes
// commitlog() and syslog()"). It is a collaborator, not part of the core:
// the core never calls into it directly, a host wires it in by subscribing
// to CommitLog's TrimHook and calling AppendCommits/AppendEvents whenever
// it wants a checkpoint.
package boltlog

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"

	"github.com/containerd/errdefs"
	digest "github.com/opencontainers/go-digest"
	bolt "go.etcd.io/bbolt"

	"github.com/nullframe/axiomkernel/core/axiom"
)

var (
	bucketKeyStorageVersion = []byte("v1")
	bucketKeyCommits        = []byte("commits")
	bucketKeySysLog         = []byte("syslog")
	bucketKeyDigests        = []byte("digests")
)

// DB wraps a bbolt handle with the bucket layout this adapter needs: a
// bucket per log, keyed by fixed-width big-endian sequence/id so range
// iteration comes out in order for free, mirroring the metadata plugin's
// bucket-per-version layout. Keys are the commit seq and event id the logs
// already assigned; bolt's NextSequence is not used.
type DB struct {
	bolt *bolt.DB
}

// Open opens (creating if absent) a bolt database at path and ensures the
// top-level buckets exist.
func Open(path string) (*DB, error) {
	b, err := bolt.Open(path, 0644, nil)
	if err != nil {
		return nil, fmt.Errorf("opening commit log database: %w", err)
	}
	db := &DB{bolt: b}
	err = b.Update(func(tx *bolt.Tx) error {
		v1, err := tx.CreateBucketIfNotExists(bucketKeyStorageVersion)
		if err != nil {
			return err
		}
		if _, err := v1.CreateBucketIfNotExists(bucketKeyCommits); err != nil {
			return err
		}
		if _, err := v1.CreateBucketIfNotExists(bucketKeySysLog); err != nil {
			return err
		}
		_, err = v1.CreateBucketIfNotExists(bucketKeyDigests)
		return err
	})
	if err != nil {
		b.Close()
		return nil, err
	}
	return db, nil
}

// Close releases the underlying bolt handle.
func (d *DB) Close() error { return d.bolt.Close() }

func seqKey(seq uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], seq)
	return b[:]
}

// AppendCommits persists a batch of commits keyed by their sequence
// number, and records a content digest over the batch so a later spot
// check can confirm the segment wasn't corrupted independent of the hash
// chain itself.
func (d *DB) AppendCommits(commits []axiom.Commit) error {
	if len(commits) == 0 {
		return nil
	}
	return d.bolt.Update(func(tx *bolt.Tx) error {
		v1 := tx.Bucket(bucketKeyStorageVersion)
		bkt := v1.Bucket(bucketKeyCommits)
		digests := v1.Bucket(bucketKeyDigests)

		var segment bytes.Buffer
		for _, c := range commits {
			buf, err := encodeCommit(c)
			if err != nil {
				return err
			}
			if err := bkt.Put(seqKey(c.Seq), buf); err != nil {
				return err
			}
			segment.Write(buf)
		}

		dgst := digest.FromBytes(segment.Bytes())
		return digests.Put(seqKey(commits[len(commits)-1].Seq), []byte(dgst.String()))
	})
}

// LoadCommits returns every persisted commit, in seq order.
func (d *DB) LoadCommits() ([]axiom.Commit, error) {
	var out []axiom.Commit
	err := d.bolt.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucketKeyStorageVersion).Bucket(bucketKeyCommits)
		return bkt.ForEach(func(_, v []byte) error {
			c, err := decodeCommit(v)
			if err != nil {
				return err
			}
			out = append(out, c)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AppendEvents persists a batch of SysLog events keyed by event id.
func (d *DB) AppendEvents(events []axiom.SysEvent) error {
	if len(events) == 0 {
		return nil
	}
	return d.bolt.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucketKeyStorageVersion).Bucket(bucketKeySysLog)
		for _, e := range events {
			buf, err := encodeEvent(e)
			if err != nil {
				return err
			}
			if err := bkt.Put(seqKey(uint64(e.ID)), buf); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadEvents returns every persisted SysLog event, in id order.
func (d *DB) LoadEvents() ([]axiom.SysEvent, error) {
	var out []axiom.SysEvent
	err := d.bolt.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucketKeyStorageVersion).Bucket(bucketKeySysLog)
		return bkt.ForEach(func(_, v []byte) error {
			e, err := decodeEvent(v)
			if err != nil {
				return err
			}
			out = append(out, e)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SegmentDigest returns the content digest recorded for the segment ending
// at seq, or errdefs.ErrNotFound if no segment ends there.
func (d *DB) SegmentDigest(seq uint64) (digest.Digest, error) {
	var dgst digest.Digest
	err := d.bolt.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucketKeyStorageVersion).Bucket(bucketKeyDigests)
		v := bkt.Get(seqKey(seq))
		if v == nil {
			return fmt.Errorf("no digest recorded for segment ending at seq %d: %w", seq, errdefs.ErrNotFound)
		}
		d, err := digest.Parse(string(v))
		if err != nil {
			return err
		}
		dgst = d
		return nil
	})
	return dgst, err
}

func encodeCommit(c axiom.Commit) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("encoding commit: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeCommit(b []byte) (axiom.Commit, error) {
	var c axiom.Commit
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&c); err != nil {
		return axiom.Commit{}, fmt.Errorf("decoding commit: %w", err)
	}
	return c, nil
}

func encodeEvent(e axiom.SysEvent) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		return nil, fmt.Errorf("encoding syslog event: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeEvent(b []byte) (axiom.SysEvent, error) {
	var e axiom.SysEvent
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&e); err != nil {
		return axiom.SysEvent{}, fmt.Errorf("decoding syslog event: %w", err)
	}
	return e, nil
}
