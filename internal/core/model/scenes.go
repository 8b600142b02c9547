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

// This file contains the output side of the pipeline data model: candidate
// scenes produced by temporal consolidation, keyframes scheduled against the
// visual budget, visual evidence returned by the image classifier, and the
// final resolved scene timeline together with its serializable record form.
package model

import "time"

// ExcludedCategory is the category assigned to a scene for which no
// confident classification could be made by either evidence path. Scenes
// carrying it are placeholders: downstream aggregation drops them by default
// so that weak evidence is never presented as a real classification.
const ExcludedCategory = "__excluded__"

// CandidateScene is a contiguous run of time windows that agreed on a single
// winning label. It is the unit of work for keyframe scheduling and hybrid
// resolution. IDs are sequence numbers assigned in timeline order so that
// identical inputs yield byte-identical output.
type CandidateScene struct {
	ID                  string
	Start               time.Duration
	End                 time.Duration
	Category            string
	Tier                Tier
	WindowConfidences   []float64
	AggregateConfidence float64
	SupportingWindows   int
	LowSupport          bool
}

// Midpoint returns the timestamp halfway through the scene, which is where
// the scheduler samples a keyframe.
func (c *CandidateScene) Midpoint() time.Duration {
	return c.Start + (c.End-c.Start)/2
}

// Keyframe is a scheduled visual sample: one frame of one candidate scene,
// selected within the keyframe budget. ImageRef is filled in by the
// extractor once the frame has been written somewhere readable (a local
// temp file in this implementation).
type Keyframe struct {
	SceneID   string
	Timestamp time.Duration
	ImageRef  string
}

// VisualLabel is a single label returned by the visual classifier for a
// keyframe image.
type VisualLabel struct {
	Name       string  `json:"name" bigquery:"name"`
	Confidence float64 `json:"confidence" bigquery:"confidence"`
}

// Provenance records which evidence path produced a final scene's category.
type Provenance string

const (
	// ProvenanceTemporalOnly marks scenes classified from video-wide labels
	// alone, either because no keyframe was scheduled or the visual call
	// failed or disagreed below threshold.
	ProvenanceTemporalOnly Provenance = "temporal_only"
	// ProvenanceVisualOnly marks scenes where the keyframe classifier
	// overrode or supplied the category without temporal agreement.
	ProvenanceVisualOnly Provenance = "visual_only"
	// ProvenanceHybrid marks scenes where both evidence paths agreed.
	ProvenanceHybrid Provenance = "hybrid"
)

// FinalScene is one entry of the resolved timeline: a non-overlapping,
// categorized span with the provenance and evidence that justify it.
type FinalScene struct {
	ID             string
	Start          time.Duration
	End            time.Duration
	Category       string
	Confidence     float64
	Provenance     Provenance
	TemporalLabels []string
	VisualLabels   []VisualLabel
	VisualDegraded bool
	// LowSupport carries the consolidator's weak-evidence flag through to
	// the record. Informational: flagged scenes are kept, not dropped.
	LowSupport bool
}

// Excluded reports whether the scene is an exclusion placeholder rather than
// a real classification.
func (s *FinalScene) Excluded() bool {
	return s.Category == ExcludedCategory
}

// SceneRecord is the flat, serializable form of a FinalScene, shaped for
// JSON responses and the BigQuery scene table. Times are seconds so the
// record is meaningful without knowing Go's duration encoding.
type SceneRecord struct {
	RunID          string        `json:"run_id,omitempty" bigquery:"run_id"`
	VideoURI       string        `json:"video_uri,omitempty" bigquery:"video_uri"`
	SceneID        string        `json:"id" bigquery:"scene_id"`
	Start          float64       `json:"start" bigquery:"start_seconds"`
	End            float64       `json:"end" bigquery:"end_seconds"`
	Category       string        `json:"category" bigquery:"category"`
	Confidence     float64       `json:"confidence" bigquery:"confidence"`
	Provenance     string        `json:"provenance" bigquery:"provenance"`
	TemporalLabels []string      `json:"temporal_labels" bigquery:"temporal_labels"`
	VisualLabels   []VisualLabel `json:"visual_labels" bigquery:"visual_labels"`
	VisualDegraded bool          `json:"visual_degraded,omitempty" bigquery:"visual_degraded"`
	LowSupport     bool          `json:"low_support,omitempty" bigquery:"low_support"`
	CreatedAt      time.Time     `json:"created_at,omitempty" bigquery:"created_at"`
}

// ToRecord flattens the scene into its serializable record, stamping the
// run and source video it belongs to.
func (s *FinalScene) ToRecord(runID string, videoURI string) *SceneRecord {
	return &SceneRecord{
		RunID:          runID,
		VideoURI:       videoURI,
		SceneID:        s.ID,
		Start:          s.Start.Seconds(),
		End:            s.End.Seconds(),
		Category:       s.Category,
		Confidence:     s.Confidence,
		Provenance:     string(s.Provenance),
		TemporalLabels: s.TemporalLabels,
		VisualLabels:   s.VisualLabels,
		VisualDegraded: s.VisualDegraded,
		LowSupport:     s.LowSupport,
		CreatedAt:      time.Now().UTC(),
	}
}

// RunSummary is the per-run diagnostic counter set logged at the end of a
// classification run and returned alongside the timeline by the API.
type RunSummary struct {
	RunID              string  `json:"run_id"`
	VideoURI           string  `json:"video_uri"`
	LabelsReceived     int     `json:"labels_received"`
	LabelsKept         int     `json:"labels_kept"`
	ShotBoundaries     int     `json:"shot_boundaries"`
	CandidateScenes    int     `json:"candidate_scenes"`
	KeyframesScheduled int     `json:"keyframes_scheduled"`
	KeyframesFailed    int     `json:"keyframes_failed"`
	FinalScenes        int     `json:"final_scenes"`
	ElapsedSeconds     float64 `json:"elapsed_seconds"`
}
