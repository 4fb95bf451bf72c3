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

// Package hostadapter (the plugin, not core/hostadapter) registers the
// worker-context registry a host binary polls on its own ticker. It
// depends on the supervisor plugin so PollPendingSyscalls has somewhere to
// deliver decoded syscalls to.
package hostadapter

import (
	"github.com/containerd/plugin"
	"github.com/containerd/plugin/registry"

	coreha "github.com/nullframe/axiomkernel/core/hostadapter"
	axplugins "github.com/nullframe/axiomkernel/plugins"
)

func init() {
	registry.Register(&plugin.Registration{
		Type:     axplugins.HostAdapterPlugin,
		ID:       "default",
		Requires: []plugin.Type{axplugins.SupervisorPlugin},
		InitFn: func(ic *plugin.InitContext) (interface{}, error) {
			return coreha.NewRegistry(), nil
		},
	})
}
