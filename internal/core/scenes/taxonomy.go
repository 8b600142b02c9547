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

// Package scenes implements the pure classification pipeline: label
// filtering, temporal consolidation into candidate scenes, keyframe
// scheduling and visual evidence collection, hybrid resolution, and final
// aggregation into a non-overlapping timeline.
//
// Everything in this package except GatherVisualEvidence is deterministic
// and free of I/O; the cloud collaborators (label source, keyframe
// extractor, visual classifier) are injected as interfaces and live in the
// cloud package.
//
// This file defines the Taxonomy: the tier tables that decide which raw
// labels are evidence at all, the canonical category set, and the indicator
// table that maps supporting labels (stove, bathtub, sofa) to the category
// they indicate.
package scenes

import (
	"sort"
	"strings"

	"github.com/Kondomino/kondo-movie/internal/core/model"
)

// Thresholds holds the per-tier minimum confidences plus the minimum
// confidence a visual label needs before the resolver will act on it.
type Thresholds struct {
	Specific float64
	Generic  float64
	Excluded float64
	Visual   float64
}

// DefaultThresholds returns the shipped threshold set. Specific labels are
// admitted cheaply because they are strong evidence, generic labels need
// more support, and excluded labels must be near-certain before they are
// kept at all.
func DefaultThresholds() Thresholds {
	return Thresholds{Specific: 0.60, Generic: 0.80, Excluded: 0.95, Visual: 0.75}
}

// Taxonomy is the immutable vocabulary of a classification run: which label
// names belong to which tier, which categories are canonical, and which
// indicator labels map to which canonical category. Build one with
// NewTaxonomy (or DefaultTaxonomy) and share it freely; it is safe for
// concurrent use because it is never mutated after construction.
type Taxonomy struct {
	thresholds Thresholds
	specific   map[string]struct{}
	generic    map[string]struct{}
	excluded   map[string]struct{}
	categories map[string]struct{}
	indicators map[string]string
	ordered    []string
}

// NewTaxonomy builds a taxonomy from explicit tables. The indicators map is
// keyed by canonical category; its values are the labels that indicate that
// category. Every indicator key becomes a canonical category, and every
// canonical category indicates itself. All names are normalized to lowercase
// with surrounding whitespace trimmed, so lookups are case-insensitive.
func NewTaxonomy(th Thresholds, specific, generic, excluded []string, indicators map[string][]string) *Taxonomy {
	t := &Taxonomy{
		thresholds: th,
		specific:   toSet(specific),
		generic:    toSet(generic),
		excluded:   toSet(excluded),
		categories: make(map[string]struct{}),
		indicators: make(map[string]string),
	}
	for category, labels := range indicators {
		category = normalize(category)
		t.categories[category] = struct{}{}
		t.indicators[category] = category
		for _, label := range labels {
			t.indicators[normalize(label)] = category
		}
	}
	t.ordered = make([]string, 0, len(t.categories))
	for category := range t.categories {
		t.ordered = append(t.ordered, category)
	}
	sort.Strings(t.ordered)
	return t
}

// DefaultTaxonomy returns the compiled-in residential property vocabulary.
// The same tables ship in the TOML config; this is the fallback when a
// deployment does not override them.
func DefaultTaxonomy() *Taxonomy {
	return NewTaxonomy(
		DefaultThresholds(),
		DefaultSpecificLabels(),
		DefaultGenericLabels(),
		DefaultExcludedLabels(),
		DefaultIndicators(),
	)
}

// DefaultSpecificLabels returns the shipped specific-tier label list.
func DefaultSpecificLabels() []string {
	return []string{
		"kitchen", "bedroom", "bathroom", "living room", "dining room",
		"office", "hallway", "lobby", "entrance", "foyer", "balcony",
		"patio", "garden", "yard", "backyard", "outdoor", "swimming pool",
		"deck", "terrace", "garage", "closet", "pantry", "basement",
		"attic", "laundry room", "gym",
	}
}

// DefaultGenericLabels returns the shipped generic-tier label list.
func DefaultGenericLabels() []string {
	return []string{"room", "interior", "space", "area", "home", "house", "apartment"}
}

// DefaultExcludedLabels returns the shipped excluded-tier label list:
// structural and material terms that say nothing about which room the
// camera is in.
func DefaultExcludedLabels() []string {
	return []string{
		"floor", "flooring", "wall", "ceiling", "furniture", "table",
		"chair", "tile", "wood", "door", "window", "property", "lighting",
	}
}

// DefaultIndicators returns the shipped category→indicator table. Keys are
// the canonical categories of the engine.
func DefaultIndicators() map[string][]string {
	return map[string][]string{
		"kitchen":     {"stove", "refrigerator", "countertop", "oven", "cooktop", "range hood", "kitchen island"},
		"bedroom":     {"bed", "mattress", "headboard", "bed frame", "nightstand"},
		"bathroom":    {"bathtub", "shower", "toilet", "sink", "vanity", "bath"},
		"living room": {"sofa", "couch", "fireplace", "television", "coffee table"},
		"dining room": {"dining table", "dining"},
		"office":      {"desk", "computer", "workspace", "bookshelf"},
		"garage":      {"carport", "garage door"},
		"outdoor":     {"swimming pool", "pool", "patio", "balcony", "garden", "yard", "backyard", "lawn", "deck", "terrace", "facade", "driveway"},
	}
}

// Thresholds returns the taxonomy's threshold set.
func (t *Taxonomy) Thresholds() Thresholds {
	return t.thresholds
}

// Categories returns the canonical category names in sorted order.
func (t *Taxonomy) Categories() []string {
	return t.ordered
}

// TierFor decides whether a label name at a given confidence is admissible
// evidence. It returns the tier that admits the label and true, or false
// when the label is unknown to every table or falls below its tier's
// threshold.
func (t *Taxonomy) TierFor(name string, confidence float64) (model.Tier, bool) {
	name = normalize(name)
	if _, ok := t.specific[name]; ok {
		return model.TierSpecific, confidence >= t.thresholds.Specific
	}
	if _, ok := t.generic[name]; ok {
		return model.TierGeneric, confidence >= t.thresholds.Generic
	}
	if _, ok := t.excluded[name]; ok {
		return model.TierExcluded, confidence >= t.thresholds.Excluded
	}
	return 0, false
}

// IsCanonical reports whether a label name is exactly a canonical category.
func (t *Taxonomy) IsCanonical(name string) bool {
	_, ok := t.categories[normalize(name)]
	return ok
}

// CategoryFor maps a label name to the canonical category it indicates,
// either because it is the category itself or because it appears in that
// category's indicator list.
func (t *Taxonomy) CategoryFor(name string) (string, bool) {
	category, ok := t.indicators[normalize(name)]
	return category, ok
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[normalize(name)] = struct{}{}
	}
	return set
}
