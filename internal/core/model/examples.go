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

// This file provides factory functions for hardcoded example instances of
// the data models. The visual label example is embedded in the generative
// classifier prompt as a few-shot sample of the expected JSON shape; the
// annotation example backs unit tests and local experimentation.
package model

import "time"

// GetExampleVisualLabels creates a sample classifier response. It is
// injected into the generative model's prompt so that the model returns a
// plain JSON array of name/confidence pairs rather than free-form prose.
//
// Outputs:
//   - []VisualLabel: a hardcoded, correctly shaped classifier output.
func GetExampleVisualLabels() []VisualLabel {
	return []VisualLabel{
		{Name: "kitchen", Confidence: 0.93},
		{Name: "countertop", Confidence: 0.88},
		{Name: "refrigerator", Confidence: 0.81},
	}
}

// GetExampleAnnotation creates a small but representative annotation for a
// short property walkthrough: a confident kitchen segment, a weaker bedroom
// segment, some structural noise, and a shot change between the rooms.
//
// Outputs:
//   - *VideoAnnotation: a pointer to a hardcoded annotation.
func GetExampleAnnotation() *VideoAnnotation {
	return &VideoAnnotation{
		VideoURI: "gs://kondo-movie-samples/walkthrough.mp4",
		Duration: 12 * time.Second,
		Labels: []RawLabel{
			{Name: "kitchen", Confidence: 0.85, Start: 0, End: 5 * time.Second, Granularity: GranularitySegment},
			{Name: "countertop", Confidence: 0.97, Start: 1 * time.Second, End: 4 * time.Second, Granularity: GranularityShot},
			{Name: "bedroom", Confidence: 0.64, Start: 6 * time.Second, End: 11 * time.Second, Granularity: GranularitySegment},
			{Name: "room", Confidence: 0.82, Start: 6 * time.Second, End: 12 * time.Second, Granularity: GranularitySegment},
			{Name: "lens flare", Confidence: 0.99, Start: 3 * time.Second, End: 3 * time.Second, Granularity: GranularityFrame},
		},
		Shots: []ShotBoundary{
			{Start: 0, End: 5 * time.Second},
			{Start: 5 * time.Second, End: 12 * time.Second},
		},
	}
}
