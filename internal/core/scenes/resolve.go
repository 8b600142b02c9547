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
	"github.com/Kondomino/kondo-movie/internal/core/model"
)

// Resolve merges one candidate scene's temporal evidence with whatever
// visual labels its keyframe produced, applying the hybrid rules in strict
// order:
//
//  1. A visual label that exactly names a canonical category at or above
//     the visual threshold wins outright. Provenance is Hybrid when the
//     temporal evidence maps to the same category, VisualOnly otherwise.
//  2. A visual label from a category's indicator list at or above the
//     visual threshold assigns that category, same provenance split.
//  3. With no usable visual evidence, a specific-tier temporal label that
//     maps to a canonical category stands on its own as TemporalOnly.
//  4. Otherwise the scene becomes an exclusion placeholder for the
//     aggregator to drop.
//
// Rules 1–2 take the winning visual label's confidence; rules 3–4 keep the
// candidate's aggregate confidence. Pass nil visual labels for scenes whose
// keyframe was never scheduled or failed; they fall through to rule 3.
//
// The function is pure and deterministic: for equal-confidence visual
// matches the lexically smaller label name wins.
func Resolve(tax *Taxonomy, candidate model.CandidateScene, visual []model.VisualLabel) model.FinalScene {
	out := model.FinalScene{
		ID:             candidate.ID,
		Start:          candidate.Start,
		End:            candidate.End,
		Confidence:     candidate.AggregateConfidence,
		Provenance:     model.ProvenanceTemporalOnly,
		TemporalLabels: []string{candidate.Category},
		VisualLabels:   visual,
		LowSupport:     candidate.LowSupport,
	}

	temporalCategory, temporalOK := "", false
	if candidate.Tier == model.TierSpecific {
		temporalCategory, temporalOK = tax.CategoryFor(candidate.Category)
	}

	if match, ok := bestVisualMatch(tax, visual); ok {
		out.Category = match.category
		out.Confidence = match.confidence
		if temporalOK && temporalCategory == match.category {
			out.Provenance = model.ProvenanceHybrid
		} else {
			out.Provenance = model.ProvenanceVisualOnly
		}
		return out
	}

	if temporalOK {
		out.Category = temporalCategory
		return out
	}

	out.Category = model.ExcludedCategory
	return out
}

type visualMatch struct {
	category   string
	confidence float64
	exact      bool
}

// bestVisualMatch scans the visual labels for the strongest admissible
// match, preferring exact canonical names over indicator hits regardless of
// confidence, then higher confidence, then the lexically smaller category.
func bestVisualMatch(tax *Taxonomy, visual []model.VisualLabel) (visualMatch, bool) {
	threshold := tax.Thresholds().Visual
	var best visualMatch
	found := false
	for _, label := range visual {
		if label.Confidence < threshold {
			continue
		}
		category, ok := tax.CategoryFor(label.Name)
		if !ok {
			continue
		}
		match := visualMatch{
			category:   category,
			confidence: label.Confidence,
			exact:      tax.IsCanonical(label.Name),
		}
		if !found || matchBeats(match, best) {
			best = match
			found = true
		}
	}
	return best, found
}

func matchBeats(a, b visualMatch) bool {
	if a.exact != b.exact {
		return a.exact
	}
	if a.confidence != b.confidence {
		return a.confidence > b.confidence
	}
	return a.category < b.category
}
