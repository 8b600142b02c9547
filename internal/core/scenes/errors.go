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

package scenes

import "errors"

// Sentinel errors for the classification pipeline. Callers match them with
// errors.Is; pipeline stages wrap them with context via fmt.Errorf("%w").
var (
	// ErrSourceUnavailable means the temporal label source failed for the
	// whole video. There is nothing to classify, so the run fails.
	ErrSourceUnavailable = errors.New("temporal label source unavailable")

	// ErrRunCancelled means the parent context was cancelled while visual
	// evidence was being gathered. Partial results are discarded.
	ErrRunCancelled = errors.New("classification run cancelled")

	// ErrInvariantViolated means aggregation could not produce a
	// non-overlapping timeline from its input. It indicates a bug upstream
	// and fails the run rather than emitting a broken timeline.
	ErrInvariantViolated = errors.New("scene timeline invariant violated")
)
