// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package types

import (
	"fmt"
	"time"
)

// The error taxonomy splits failures into two classes. InputError and
// ConfigError are raised before any LLM call and abort the evaluation.
// LLMError, ParseError and TimeoutError occur inside a single agent
// call; the orchestrator absorbs them (one retry, then a neutral
// fallback result) and the evaluation continues.

// InputError reports an invalid EvaluationRequest.
type InputError struct {
	Reason string
}

// NewInputError builds an InputError with a formatted reason.
func NewInputError(format string, args ...any) *InputError {
	return &InputError{Reason: fmt.Sprintf(format, args...)}
}

func (e *InputError) Error() string {
	return "invalid input: " + e.Reason
}

// ConfigError reports a missing credential or an unknown provider.
type ConfigError struct {
	Reason string
}

// NewConfigError builds a ConfigError with a formatted reason.
func NewConfigError(format string, args ...any) *ConfigError {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

func (e *ConfigError) Error() string {
	return "configuration: " + e.Reason
}

// LLMError wraps a transport or provider-side failure from a single
// ChatModel call.
type LLMError struct {
	Provider string
	Err      error
}

// NewLLMError wraps err as a provider failure.
func NewLLMError(provider string, err error) *LLMError {
	return &LLMError{Provider: provider, Err: err}
}

func (e *LLMError) Error() string {
	return fmt.Sprintf("llm provider %s: %v", e.Provider, e.Err)
}

func (e *LLMError) Unwrap() error {
	return e.Err
}

// ParseError reports an LLM reply that could not be decoded into the
// agent result schema after fence stripping. Raw keeps the offending
// text so the fallback result can carry a truncated copy.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse agent reply: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// TimeoutError reports a per-agent deadline expiry. The orchestrator
// treats it exactly like an LLMError.
type TimeoutError struct {
	Role    AgentRole
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("agent %s timed out after %s", e.Role, e.Elapsed)
}
