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

// Package bolt registers the commit/syslog persistence plugin: it opens a
// bolt database under the host's root directory and subscribes to the
// supervisor's CommitLog.TrimHook, so commits are flushed before
// MAX_COMMITLOG_ENTRIES trims them from memory, per §5's "the host is
// expected to persist them before trimming."
package bolt

import (
	"os"
	"path/filepath"

	"github.com/containerd/log"
	"github.com/containerd/plugin"
	"github.com/containerd/plugin/registry"

	"github.com/nullframe/axiomkernel/core/axiom"
	"github.com/nullframe/axiomkernel/core/supervisor"
	"github.com/nullframe/axiomkernel/persist/boltlog"
	axplugins "github.com/nullframe/axiomkernel/plugins"
)

func init() {
	registry.Register(&plugin.Registration{
		Type:     axplugins.PersistPlugin,
		ID:       "bolt",
		Requires: []plugin.Type{axplugins.SupervisorPlugin},
		InitFn: func(ic *plugin.InitContext) (interface{}, error) {
			root := ic.Properties[axplugins.PropertyRootDir]
			if err := os.MkdirAll(root, 0711); err != nil {
				return nil, err
			}

			sp, err := ic.GetSingle(axplugins.SupervisorPlugin)
			if err != nil {
				return nil, err
			}
			sup := sp.(*supervisor.Supervisor)

			path := filepath.Join(root, "commitlog.db")
			db, err := boltlog.Open(path)
			if err != nil {
				return nil, err
			}

			sup.CommitLog().TrimHook = func(dropped []axiom.Commit) {
				if err := db.AppendCommits(dropped); err != nil {
					log.G(ic.Context).WithError(err).Error("failed to persist trimmed commits")
				}
			}

			ic.Meta.Exports["path"] = path
			log.G(ic.Context).WithField("path", path).Info("commit log persistence ready")
			return db, nil
		},
	})
}
