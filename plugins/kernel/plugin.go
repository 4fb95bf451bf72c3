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

// Package kernel (the plugin, not core/kernel) registers the supervisor
// plugin: a fresh Supervisor, bootstrapped with pid 0/1, ready for the
// host adapter plugin to hand syscalls to.
package kernel

import (
	"time"

	"github.com/containerd/log"
	"github.com/containerd/plugin"
	"github.com/containerd/plugin/registry"

	"github.com/nullframe/axiomkernel/core/supervisor"
	axplugins "github.com/nullframe/axiomkernel/plugins"
)

// Config is the supervisor plugin's TOML configuration.
type Config struct {
	// InitName is the process name registered for pid 1 during bootstrap.
	InitName string `toml:"init_name"`
}

func init() {
	registry.Register(&plugin.Registration{
		Type:   axplugins.SupervisorPlugin,
		ID:     "default",
		Config: &Config{InitName: "init"},
		InitFn: func(ic *plugin.InitContext) (interface{}, error) {
			cfg, _ := ic.Config.(*Config)
			initName := "init"
			if cfg != nil && cfg.InitName != "" {
				initName = cfg.InitName
			}

			sup := supervisor.New(supervisor.ClockFunc(func() uint64 { return uint64(time.Now().UnixNano()) }))
			if err := sup.Bootstrap(ic.Context, initName); err != nil {
				return nil, err
			}

			log.G(ic.Context).WithField("init", initName).Info("supervisor bootstrapped")
			return sup, nil
		},
	})
}
