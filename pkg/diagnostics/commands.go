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

package diagnostics

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/sigterm-capture/pkg/errors"
)

// Command is one diagnostic command whose standard output becomes the
// artifact Name.
type Command struct {
	Name    string `json:"name" yaml:"name" toml:"name"`
	Command string `json:"command" yaml:"command" toml:"command"`
}

// CommandFile is the on-disk format of DIAGNOSTIC_COMMANDS_FILE.
//
//	commands:
//	  - name: process
//	    command: ps aux
//	  - name: sockets
//	    command: ss -tanp
//
// Files ending in .toml use the equivalent [[commands]] tables.
type CommandFile struct {
	Commands []Command `yaml:"commands" toml:"commands"`
}

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// DefaultCommands returns the built-in command list: the process table and
// the environment.
func DefaultCommands() []Command {
	return []Command{
		{Name: "process", Command: "ps aux"},
		{Name: "env", Command: "env"},
	}
}

// LoadCommands reads an ordered command list from a YAML or TOML file.
// The file replaces the defaults entirely.
func LoadCommands(path string) ([]Command, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInvalidRequest, "failed to read diagnostic commands file", err,
			map[string]any{"path": path})
	}

	var f CommandFile
	if err := decodeCommandFile(path, data, &f); err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInvalidRequest, "failed to parse diagnostic commands file", err,
			map[string]any{"path": path})
	}

	if err := ValidateCommands(f.Commands); err != nil {
		return nil, err
	}
	return f.Commands, nil
}

func decodeCommandFile(path string, data []byte, f *CommandFile) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		_, err := toml.Decode(string(data), f)
		return err
	}
	return yaml.Unmarshal(data, f)
}

// ValidateCommands checks that every command has a usable, unique name and
// a non-empty command line.
func ValidateCommands(cmds []Command) error {
	if len(cmds) == 0 {
		return errors.New(errors.ErrCodeInvalidRequest, "diagnostic command list is empty")
	}

	seen := make(map[string]struct{}, len(cmds))
	for i, c := range cmds {
		if !validName.MatchString(c.Name) {
			return errors.New(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("command %d: invalid name %q", i, c.Name))
		}
		if c.Command == "" {
			return errors.New(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("command %q: empty command line", c.Name))
		}
		if _, dup := seen[c.Name]; dup {
			return errors.New(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("command %q: duplicate name", c.Name))
		}
		seen[c.Name] = struct{}{}
	}
	return nil
}
