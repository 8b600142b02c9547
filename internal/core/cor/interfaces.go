// Copyright 2025 Kondomino, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cor is a small chain-of-responsibility framework used to assemble
// the classification pipeline out of named, individually instrumented steps.
// A Chain executes Commands in order, piping each command's primary output
// into the next command's primary input through a shared Context. Commands
// record errors on the Context instead of returning them, which lets a chain
// decide whether to halt or continue, and lets callers inspect every failure
// after the run.
package cor

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CtxIn and CtxOut are the reserved context keys for the pipeline data flow.
// After every command, the chain moves the value under CtxOut to CtxIn.
const (
	CtxIn  = "__IN__"
	CtxOut = "__OUT__"
)

// Context is the shared state of one workflow execution: a property bag for
// inter-command data, an error map keyed by command name, and the list of
// temporary files to delete when the run finishes. It also carries the Go
// context so cancellation and trace spans flow through the chain.
type Context interface {
	SetContext(context context.Context)
	GetContext() context.Context

	// Add stores a key-value pair and returns the Context for chaining.
	Add(key string, value interface{}) Context
	Get(key string) interface{}
	Remove(key string)

	// AddError records a failure under the name of the command that hit it.
	AddError(key string, err error)
	GetErrors() map[string]error
	HasErrors() bool

	// AddTempFile registers a file for deletion when Close is called.
	AddTempFile(file string)
	GetTempFiles() []string

	// Close deletes all registered temporary files. Defer it at the start
	// of a workflow run.
	Close()
}

// Executable is anything with a single unit of work driven by a Context.
type Executable interface {
	Execute(context Context)
}

// Command is an atomic, named, instrumented unit of work. Commands must be
// safe for concurrent use; one command instance is shared across runs.
type Command interface {
	Executable

	GetName() string

	// GetInputParam and GetOutputParam return the context keys this command
	// reads from and writes to. They default to CtxIn/CtxOut, which is what
	// makes chain piping work.
	GetInputParam() string
	GetOutputParam() string

	// IsExecutable is the precondition check a chain runs before Execute.
	IsExecutable(context Context) bool

	GetTracer() trace.Tracer
	GetMeter() metric.Meter
	GetSuccessCounter() metric.Int64Counter
	GetErrorCounter() metric.Int64Counter
}

// Chain is an ordered sequence of commands. A Chain is itself a Command, so
// chains nest.
type Chain interface {
	Command

	// ContinueOnFailure controls whether later commands still run after an
	// earlier one has recorded an error. Off by default.
	ContinueOnFailure(bool) Chain

	// AddCommand appends a command and returns the chain for fluent setup.
	AddCommand(command Command) Chain
}
