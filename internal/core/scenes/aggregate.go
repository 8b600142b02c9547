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

// AggregateConfig tunes the final aggregation stage.
type AggregateConfig struct {
	// MergeTolerance is the largest gap between two same-category scenes
	// that still merges them. Zero merges only touching or overlapping
	// scenes.
	MergeTolerance time.Duration
	// KeepExcluded retains exclusion placeholders in the output instead of
	// dropping them. Off by default.
	KeepExcluded bool
}

// Aggregate turns resolved scenes into the final timeline. It drops
// exclusion placeholders (unless configured to keep them), merges
// adjacent or overlapping same-category scenes, and re-validates ordering.
//
// A merged scene keeps the earliest start, the latest end, the maximum
// member confidence, and the union of both members' evidence. The
// low-support flag survives a merge only when every member carried it,
// since merging is itself added support. Provenance
// is Hybrid when any member was Hybrid, otherwise the members' common
// provenance (mixed temporal/visual members also become Hybrid, since the
// merged span is then supported by both paths).
//
// Overlapping scenes of different categories cannot merge; the later scene
// is clipped to start where the earlier one ends, and dropped if nothing
// remains. If the result still violates the non-overlap invariant the
// function fails with ErrInvariantViolated rather than emit a broken
// timeline.
func Aggregate(cfg AggregateConfig, resolved []model.FinalScene) ([]model.FinalScene, error) {
	kept := make([]model.FinalScene, 0, len(resolved))
	for _, scene := range resolved {
		if scene.Excluded() && !cfg.KeepExcluded {
			continue
		}
		kept = append(kept, scene)
	}
	if len(kept) == 0 {
		return []model.FinalScene{}, nil
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Start != kept[j].Start {
			return kept[i].Start < kept[j].Start
		}
		return kept[i].End < kept[j].End
	})

	out := make([]model.FinalScene, 0, len(kept))
	current := kept[0]
	for _, next := range kept[1:] {
		if next.Category == current.Category && next.Start <= current.End+cfg.MergeTolerance {
			current = mergeScenes(current, next)
			continue
		}
		// Different category overlap: the earlier scene holds its ground.
		if next.Start < current.End {
			next.Start = current.End
			if next.End <= next.Start {
				continue
			}
		}
		out = append(out, current)
		current = next
	}
	out = append(out, current)

	for i := 1; i < len(out); i++ {
		if out[i].Start < out[i-1].End {
			return nil, fmt.Errorf("scenes %s and %s overlap after aggregation: %w",
				out[i-1].ID, out[i].ID, ErrInvariantViolated)
		}
	}
	return out, nil
}

func mergeScenes(a, b model.FinalScene) model.FinalScene {
	merged := a
	if b.End > merged.End {
		merged.End = b.End
	}
	if b.Confidence > merged.Confidence {
		merged.Confidence = b.Confidence
	}
	merged.Provenance = mergeProvenance(a.Provenance, b.Provenance)
	merged.TemporalLabels = unionStrings(a.TemporalLabels, b.TemporalLabels)
	merged.VisualLabels = unionVisual(a.VisualLabels, b.VisualLabels)
	merged.VisualDegraded = a.VisualDegraded || b.VisualDegraded
	merged.LowSupport = a.LowSupport && b.LowSupport
	return merged
}

func mergeProvenance(a, b model.Provenance) model.Provenance {
	if a == b {
		return a
	}
	return model.ProvenanceHybrid
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, s := range a {
		seen[s] = struct{}{}
	}
	for _, s := range b {
		seen[s] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// unionVisual merges visual labels by name, keeping the highest confidence
// seen for each, sorted by name for stable output.
func unionVisual(a, b []model.VisualLabel) []model.VisualLabel {
	byName := make(map[string]float64, len(a)+len(b))
	for _, l := range append(append([]model.VisualLabel{}, a...), b...) {
		if c, ok := byName[l.Name]; !ok || l.Confidence > c {
			byName[l.Name] = l.Confidence
		}
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]model.VisualLabel, 0, len(names))
	for _, name := range names {
		out = append(out, model.VisualLabel{Name: name, Confidence: byName[name]})
	}
	return out
}
