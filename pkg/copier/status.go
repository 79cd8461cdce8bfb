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

package copier

// 📊 FileStatus is what a copy did to one destination file
type FileStatus int

const (
	StatusUnknown   FileStatus = iota
	StatusNew                  // Destination did not exist
	StatusModified             // Destination existed with different content
	StatusUnchanged            // Destination already had the same content
	StatusSkipped              // Source matched an exclude pattern
)

// String returns a string representation of FileStatus
func (s FileStatus) String() string {
	switch s {
	case StatusNew:
		return "new"
	case StatusModified:
		return "modified"
	case StatusUnchanged:
		return "unchanged"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// 📄 FileResult describes one file handled by the engine
type FileResult struct {
	Source      string     // Absolute source path
	Destination string     // Absolute destination path
	Path        string     // Destination path relative to the destination root
	Status      FileStatus // What happened
	Size        int64      // Bytes copied
	Checksum    string     // SHA-256 of the copied content
}

// 📋 Report collects the results of one CopyMapping call
type Report struct {
	Entries int          // Mapping entries completed
	Files   []FileResult // Every file visited, in copy order
}

// Count returns the number of files with the given status.
func (r *Report) Count(status FileStatus) int {
	n := 0
	for _, f := range r.Files {
		if f.Status == status {
			n++
		}
	}
	return n
}

// Bytes returns the total number of bytes copied.
func (r *Report) Bytes() int64 {
	var n int64
	for _, f := range r.Files {
		if f.Status != StatusSkipped {
			n += f.Size
		}
	}
	return n
}
