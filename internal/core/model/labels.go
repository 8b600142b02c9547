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

// Package model defines the core data structures for the scene classification
// engine. This file contains the input side of the pipeline: the raw temporal
// labels produced by the video-wide label source, the optional shot-change
// hints that accompany them, and the tier-tagged labels produced by the
// filtering stage.
//
// All of these values are created once per pipeline run and never mutated
// afterwards; stages communicate by producing new values, not by editing the
// ones they received.
package model

import "time"

// SourceGranularity identifies which detection mode of the temporal label
// source produced a raw label. Frame-level labels carry a single point in
// time, segment and shot labels carry a range.
type SourceGranularity string

const (
	GranularitySegment SourceGranularity = "segment"
	GranularityShot    SourceGranularity = "shot"
	GranularityFrame   SourceGranularity = "frame"
)

// RawLabel is a single observation from the temporal label source: a label
// name, the model's confidence in it, and the time range it covers. For
// frame-granularity labels Start and End are equal. RawLabels arrive in no
// particular order; the consolidation stage re-sorts as needed.
type RawLabel struct {
	Name        string
	Confidence  float64
	Start       time.Duration
	End         time.Duration
	Granularity SourceGranularity
}

// ShotBoundary is a coarse scene-cut hint from the temporal label source.
// Boundaries are advisory only: they bias the gap tolerance used when merging
// time windows into candidate scenes, they never create or split scenes on
// their own.
type ShotBoundary struct {
	Start time.Duration
	End   time.Duration
}

// VideoAnnotation bundles everything the temporal label source returns for a
// single video. It is the input to the pure classification stages.
type VideoAnnotation struct {
	VideoURI string
	Duration time.Duration
	Labels   []RawLabel
	Shots    []ShotBoundary
}

// Tier is the importance class assigned to a raw label by the filtering
// stage. Specific labels (kitchen, swimming pool) are strong scene evidence,
// Generic labels (room, interior) are weak evidence, and Excluded labels
// (floor, wall) are structural noise admitted only as a last resort.
type Tier int

const (
	TierSpecific Tier = iota
	TierGeneric
	TierExcluded
)

// String returns the lowercase name of the tier for logs and diagnostics.
func (t Tier) String() string {
	switch t {
	case TierSpecific:
		return "specific"
	case TierGeneric:
		return "generic"
	case TierExcluded:
		return "excluded"
	default:
		return "unknown"
	}
}

// FilteredLabel is a RawLabel that survived filtering, annotated with the
// tier that admitted it. It is derived data and never mutated after creation.
type FilteredLabel struct {
	RawLabel
	Tier Tier
}
