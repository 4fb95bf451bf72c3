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

// Package plugins names the plugin.Type values and shared InitContext
// property keys the axiomd plugin graph is built from, the way
// containerd's top-level plugins package does for its own registry.
package plugins

import "github.com/containerd/plugin"

const (
	// SupervisorPlugin assembles the Supervisor: an AxiomGateway bound to
	// a fresh KernelCore, ready to run Bootstrap and accept syscalls.
	SupervisorPlugin plugin.Type = "io.axiomkernel.supervisor.v1"
	// PersistPlugin wires the bbolt-backed commit/syslog persistence
	// adapter to the supervisor's logs.
	PersistPlugin plugin.Type = "io.axiomkernel.persist.v1"
	// HostAdapterPlugin wires the worker-context registry and poll loop.
	HostAdapterPlugin plugin.Type = "io.axiomkernel.hostadapter.v1"
)

// PropertyRootDir is the InitContext property key carrying the host's
// persistent-state directory, the same role containerd's plugins.go gives
// it.
const PropertyRootDir = "root"
