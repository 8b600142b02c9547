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

import (
	"fmt"
	"sort"
	"time"

	"github.com/Kondomino/kondo-movie/internal/core/model"
)

// AggregatePolicy selects how per-window confidences are collapsed into a
// candidate scene's aggregate confidence.
type AggregatePolicy string

const (
	AggregateMean AggregatePolicy = "mean"
	AggregateMax  AggregatePolicy = "max"
)

// Defaults for the consolidation stage.
const (
	DefaultWindow               = time.Second
	DefaultGapTolerance         = 1
	DefaultMinSupportingWindows = 2
)

// ConsolidateConfig tunes the temporal consolidation stage. The zero value
// is usable; zero fields fall back to the package defaults.
type ConsolidateConfig struct {
	// Window is the width of the fixed timeline slices.
	Window time.Duration
	// GapTolerance is the number of consecutive unlabeled windows a scene
	// may bridge. Zero means the default of one window; a negative value
	// disables bridging entirely. A detected shot change inside a gap
	// shrinks the tolerance for that gap to zero.
	GapTolerance int
	// MinSupportingWindows is the support below which a scene is flagged
	// low-support. Flagged scenes are still emitted; dropping weak evidence
	// is the aggregator's call, not this stage's.
	MinSupportingWindows int
	// Aggregate selects mean or max confidence aggregation.
	Aggregate AggregatePolicy
}

func (c ConsolidateConfig) withDefaults() ConsolidateConfig {
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	if c.GapTolerance == 0 {
		c.GapTolerance = DefaultGapTolerance
	} else if c.GapTolerance < 0 {
		c.GapTolerance = 0
	}
	if c.MinSupportingWindows <= 0 {
		c.MinSupportingWindows = DefaultMinSupportingWindows
	}
	if c.Aggregate == "" {
		c.Aggregate = AggregateMean
	}
	return c
}

// windowWinner is the single label that represents a time window after
// tier-priority resolution.
type windowWinner struct {
	name       string
	confidence float64
	tier       model.Tier
	labelStart time.Duration
}

// Consolidate collapses filtered labels into candidate scenes.
//
// The timeline is cut into fixed windows. Each window that overlaps at
// least one label elects a winner: the best tier present (specific beats
// generic beats excluded), then the highest confidence within that tier.
// Confidence ties go to the label whose own evidence starts later, then to
// the lexically smaller name, so the result is deterministic regardless of
// input order.
//
// Adjacent windows with the same winning label merge into one scene, and a
// scene may bridge up to GapTolerance unlabeled windows, unless a shot
// boundary falls inside the gap, in which case the cut wins and the scene
// closes. Aggregate confidence is the mean (or max) of the winning windows'
// confidences.
//
// Scene IDs are sequence numbers in timeline order. Low-support scenes are
// flagged, never dropped. The function is pure and never fails; empty input
// yields an empty, non-nil slice.
func Consolidate(cfg ConsolidateConfig, filtered []model.FilteredLabel, shots []model.ShotBoundary) []model.CandidateScene {
	cfg = cfg.withDefaults()

	winners := electWinners(cfg.Window, filtered)
	if len(winners) == 0 {
		return []model.CandidateScene{}
	}

	cuts := shotCuts(shots)

	indices := make([]int, 0, len(winners))
	for idx := range winners {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	var out []model.CandidateScene
	var run *sceneRun
	for _, idx := range indices {
		w := winners[idx]
		switch {
		case run == nil:
			run = newSceneRun(idx, w)
		case w.name == run.name && idx-run.endIdx-1 <= cfg.GapTolerance && !cutBetween(cuts, cfg.Window, run.endIdx, idx):
			run.extend(idx, w)
		default:
			out = append(out, run.close(cfg, len(out)))
			run = newSceneRun(idx, w)
		}
	}
	out = append(out, run.close(cfg, len(out)))
	return out
}

// electWinners buckets every label into the windows its range overlaps and
// resolves each window to a single winner. A label whose end lands exactly
// on a window boundary does not claim the window after the boundary.
func electWinners(window time.Duration, filtered []model.FilteredLabel) map[int]windowWinner {
	winners := make(map[int]windowWinner)
	for _, label := range filtered {
		startIdx := int(label.Start / window)
		endIdx := int(label.End / window)
		if label.End > label.Start && label.End == time.Duration(endIdx)*window {
			endIdx--
		}
		if endIdx < startIdx {
			endIdx = startIdx
		}
		candidate := windowWinner{
			name:       normalize(label.Name),
			confidence: label.Confidence,
			tier:       label.Tier,
			labelStart: label.Start,
		}
		for idx := startIdx; idx <= endIdx; idx++ {
			current, ok := winners[idx]
			if !ok || beats(candidate, current) {
				winners[idx] = candidate
			}
		}
	}
	return winners
}

// beats reports whether a should replace b as a window's winner. Lower tier
// value is higher priority; inside a tier higher confidence wins; exact
// confidence ties go to the later-starting evidence, then the lexically
// smaller name.
func beats(a, b windowWinner) bool {
	if a.tier != b.tier {
		return a.tier < b.tier
	}
	if a.confidence != b.confidence {
		return a.confidence > b.confidence
	}
	if a.labelStart != b.labelStart {
		return a.labelStart > b.labelStart
	}
	return a.name < b.name
}

// shotCuts extracts the interior cut points from shot annotations. The
// start of the first shot is the start of the video, not a cut.
func shotCuts(shots []model.ShotBoundary) []time.Duration {
	cuts := make([]time.Duration, 0, len(shots))
	for _, shot := range shots {
		if shot.Start > 0 {
			cuts = append(cuts, shot.Start)
		}
	}
	sort.Slice(cuts, func(i, j int) bool { return cuts[i] < cuts[j] })
	return cuts
}

// cutBetween reports whether a shot cut falls inside the gap between the
// last supporting window and the next labeled window. No gap, no cut.
func cutBetween(cuts []time.Duration, window time.Duration, lastIdx, nextIdx int) bool {
	if nextIdx-lastIdx <= 1 {
		return false
	}
	gapStart := time.Duration(lastIdx+1) * window
	gapEnd := time.Duration(nextIdx) * window
	for _, cut := range cuts {
		if cut >= gapStart && cut <= gapEnd {
			return true
		}
	}
	return false
}

// sceneRun accumulates one in-progress candidate scene during the merge
// scan.
type sceneRun struct {
	name        string
	tier        model.Tier
	startIdx    int
	endIdx      int
	confidences []float64
}

func newSceneRun(idx int, w windowWinner) *sceneRun {
	return &sceneRun{
		name:        w.name,
		tier:        w.tier,
		startIdx:    idx,
		endIdx:      idx,
		confidences: []float64{w.confidence},
	}
}

func (r *sceneRun) extend(idx int, w windowWinner) {
	r.endIdx = idx
	r.confidences = append(r.confidences, w.confidence)
}

func (r *sceneRun) close(cfg ConsolidateConfig, seq int) model.CandidateScene {
	return model.CandidateScene{
		ID:                  fmt.Sprintf("scene-%04d", seq+1),
		Start:               time.Duration(r.startIdx) * cfg.Window,
		End:                 time.Duration(r.endIdx+1) * cfg.Window,
		Category:            r.name,
		Tier:                r.tier,
		WindowConfidences:   r.confidences,
		AggregateConfidence: aggregate(cfg.Aggregate, r.confidences),
		SupportingWindows:   len(r.confidences),
		LowSupport:          len(r.confidences) < cfg.MinSupportingWindows,
	}
}

// aggregate collapses window confidences per policy. For max, ties keep
// the later window's value.
func aggregate(policy AggregatePolicy, confidences []float64) float64 {
	if len(confidences) == 0 {
		return 0
	}
	if policy == AggregateMax {
		best := confidences[0]
		for _, c := range confidences[1:] {
			if c >= best {
				best = c
			}
		}
		return best
	}
	var sum float64
	for _, c := range confidences {
		sum += c
	}
	return sum / float64(len(confidences))
}
