// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/NVIDIA/sigterm-capture/pkg/errors"
)

// FileMode is applied after every write so the artifact is readable by
// whoever collects the mounted volume, independent of the process umask.
const FileMode os.FileMode = 0o644

// FileStore writes artifacts to <Dir>/status-<Host>-<name>.txt.
type FileStore struct {
	Dir  string
	Host string
}

// NewFileStore returns a FileStore rooted at dir for the given host.
func NewFileStore(dir, host string) *FileStore {
	return &FileStore{Dir: dir, Host: host}
}

// Path returns the file an artifact with the given name is written to.
func (s *FileStore) Path(name string) string {
	file := fmt.Sprintf("status-%s-%s.txt", SanitizeSegment(s.Host), SanitizeSegment(name))
	return filepath.Join(s.Dir, file)
}

func (s *FileStore) Save(ctx context.Context, a Artifact) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(errors.ErrCodePersistence, "artifact write cancelled", err)
	}

	p := s.Path(a.Name)
	ectx := map[string]any{"path": p, "artifact": a.Name}

	if err := os.WriteFile(p, a.Content, FileMode); err != nil {
		writes.WithLabelValues("file", "error").Inc()
		return errors.WrapWithContext(errors.ErrCodePersistence, "failed to write artifact", err, ectx)
	}
	if err := os.Chmod(p, FileMode); err != nil {
		writes.WithLabelValues("file", "error").Inc()
		return errors.WrapWithContext(errors.ErrCodePersistence, "failed to set artifact permissions", err, ectx)
	}

	writes.WithLabelValues("file", "ok").Inc()
	return nil
}
