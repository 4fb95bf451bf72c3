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

// Package config is axiomd's TOML configuration, laid out the way
// cmd/containerd/server/config is: a flat struct decoded straight off
// disk, with a Default() a "config default" subcommand can dump.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config is axiomd's top-level configuration.
type Config struct {
	Version int `toml:"version"`

	// Root is the directory the bolt persistence adapter stores its
	// commit/syslog database under.
	Root string `toml:"root"`

	// InitName is the process name registered for pid 1 at bootstrap.
	InitName string `toml:"init_name"`

	// MailboxPayloadWords bounds how many response-payload words each
	// worker's mailbox reserves beyond the fixed 7-word header.
	MailboxPayloadWords int `toml:"mailbox_payload_words"`

	ResourceCaps ResourceCaps `toml:"resource_caps"`
}

// ResourceCaps mirrors §5's explicit resource caps in the config file. The
// kernel and the commit and system logs enforce their own compiled-in
// constants and do not read these values.
type ResourceCaps struct {
	MaxMessageSize      int `toml:"max_message_size"`
	MaxCapsPerMessage   int `toml:"max_caps_per_message"`
	MaxCommitLogEntries int `toml:"max_commitlog_entries"`
	MaxSysLogEntries    int `toml:"max_syslog_entries"`
}

// Default returns axiomd's baseline configuration.
func Default() *Config {
	return &Config{
		Version:             1,
		Root:                "/var/lib/axiomd",
		InitName:            "init",
		MailboxPayloadWords: 4096,
		ResourceCaps: ResourceCaps{
			MaxMessageSize:      64 * 1024,
			MaxCapsPerMessage:   16,
			MaxCommitLogEntries: 100000,
			MaxSysLogEntries:    100000,
		},
	}
}

// Load reads and decodes a TOML config file at path, starting from
// Default() so any field the file omits keeps its default value.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decoding config %s: %w", path, err)
	}
	return cfg, nil
}
