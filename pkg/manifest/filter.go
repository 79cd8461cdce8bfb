// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package manifest

import "strings"

// 🔍 Filter selects projects by a case-sensitive substring of their name.
// The zero value matches every project.
type Filter string

// Match reports whether the project name contains the filter.
func (f Filter) Match(name string) bool {
	if f == "" {
		return true
	}
	return strings.Contains(name, string(f))
}

// Select splits projects into matched and skipped, keeping manifest order.
func (f Filter) Select(projects []Project) (matched, skipped []Project) {
	for _, p := range projects {
		if f.Match(p.Name) {
			matched = append(matched, p)
		} else {
			skipped = append(skipped, p)
		}
	}
	return matched, skipped
}
