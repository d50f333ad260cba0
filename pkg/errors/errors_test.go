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

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeConfigurationAbsent, "metadata endpoint not configured")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Code != ErrCodeConfigurationAbsent {
		t.Errorf("expected code %s, got %s", ErrCodeConfigurationAbsent, err.Code)
	}
	if err.Message != "metadata endpoint not configured" {
		t.Errorf("expected message 'metadata endpoint not configured', got %s", err.Message)
	}
	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeMetadataUnavailable, "fetch failed", cause)

	if err.Code != ErrCodeMetadataUnavailable {
		t.Errorf("expected code %s, got %s", ErrCodeMetadataUnavailable, err.Code)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to be wrapped")
	}
}

func TestWrapWithContext(t *testing.T) {
	cause := errors.New("exit status 1")
	ctx := map[string]any{
		"command": "ps aux",
		"name":    "process",
	}

	err := WrapWithContext(ErrCodeCommandExecution, "diagnostic command failed", cause, ctx)

	if err.Code != ErrCodeCommandExecution {
		t.Errorf("expected code %s, got %s", ErrCodeCommandExecution, err.Code)
	}
	if err.Context == nil {
		t.Fatal("expected context to be set")
	}
	if err.Context["command"] != "ps aux" {
		t.Errorf("expected command to be ps aux")
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name     string
		err      *StructuredError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(ErrCodeConfigurationAbsent, "not configured"),
			expected: "[CONFIGURATION_ABSENT] not configured",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodePersistence, "write failed", errors.New("read-only file system")),
			expected: "[PERSISTENCE_FAILURE] write failed: read-only file system",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(ErrCodeInternal, "wrapped", cause)

	unwrapped := err.Unwrap()
	if !errors.Is(unwrapped, cause) {
		t.Errorf("expected unwrapped error to be original cause")
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"nil", nil, ""},
		{"plain error", errors.New("boom"), ErrCodeInternal},
		{"structured", New(ErrCodeTimeout, "slow"), ErrCodeTimeout},
		{"wrapped by fmt", fmt.Errorf("outer: %w", New(ErrCodeControlPlaneFault, "denied")), ErrCodeControlPlaneFault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIs(t *testing.T) {
	inner := New(ErrCodeConfigurationAbsent, "endpoint unset")
	outer := Wrap(ErrCodeMetadataUnavailable, "resolve failed", inner)

	if !Is(outer, ErrCodeMetadataUnavailable) {
		t.Error("expected outer code to match")
	}
	if !Is(outer, ErrCodeConfigurationAbsent) {
		t.Error("expected inner code to match")
	}
	if Is(outer, ErrCodeTimeout) {
		t.Error("unexpected match for absent code")
	}
	if Is(errors.New("plain"), ErrCodeInternal) {
		t.Error("plain errors carry no code")
	}
}

func TestErrorCodes(t *testing.T) {
	codes := []ErrorCode{
		ErrCodeConfigurationAbsent,
		ErrCodeMetadataUnavailable,
		ErrCodeControlPlaneFault,
		ErrCodeCommandExecution,
		ErrCodePersistence,
		ErrCodeTimeout,
		ErrCodeInternal,
		ErrCodeInvalidRequest,
	}

	for _, code := range codes {
		if string(code) == "" {
			t.Errorf("error code should not be empty: %v", code)
		}
	}
}
