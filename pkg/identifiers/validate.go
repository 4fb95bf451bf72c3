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

// Package identifiers validates the human-readable names attached to kernel
// objects: process names. The kernel's registration path does not call it;
// a caller that wants a name checked calls Validate itself. Names never participate in
// capability authentication, only in Debug output and inspection results, but
// they are still persisted in commits and hashed during replay, so the set of
// legal bytes must be frozen.
package identifiers

import (
	"fmt"
	"regexp"

	"github.com/containerd/errdefs"
)

const (
	maxLength  = 76
	alphanum   = `[A-Za-z0-9]+`
	separators = `[._-]`
)

var identifierRe = regexp.MustCompile(reAnchor(alphanum + reGroup(separators+reGroup(alphanum)) + "*"))

// Validate returns nil if s is a valid process name.
//
// The rule set mirrors RFC 1035 §2.3.1 hostnames, relaxed to allow numerals
// after a period and mixed case. It exists so that a process name can be
// embedded unescaped into a commit's hashed byte stream and into log lines
// without further quoting.
func Validate(s string) error {
	if len(s) == 0 {
		return fmt.Errorf("identifier must not be empty: %w", errdefs.ErrInvalidArgument)
	}

	if len(s) > maxLength {
		return fmt.Errorf("identifier %q greater than maximum length (%d characters): %w", s, maxLength, errdefs.ErrInvalidArgument)
	}

	if !identifierRe.MatchString(s) {
		return fmt.Errorf("identifier %q must match %v: %w", s, identifierRe, errdefs.ErrInvalidArgument)
	}
	return nil
}

func reGroup(s string) string {
	return `(?:` + s + `)`
}

func reAnchor(s string) string {
	return `^` + s + `$`
}
