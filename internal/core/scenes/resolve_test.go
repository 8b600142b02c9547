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

package scenes_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Kondomino/kondo-movie/internal/core/model"
	"github.com/Kondomino/kondo-movie/internal/core/scenes"
)

func resolveCandidate(category string, tier model.Tier, confidence float64) model.CandidateScene {
	return model.CandidateScene{
		ID:                  "scene-0001",
		Start:               0,
		End:                 5 * time.Second,
		Category:            category,
		Tier:                tier,
		AggregateConfidence: confidence,
	}
}

func TestResolveVisualExactMatchOverridesTemporal(t *testing.T) {
	tax := scenes.DefaultTaxonomy()
	out := scenes.Resolve(tax,
		resolveCandidate("swimming pool", model.TierSpecific, 0.70),
		[]model.VisualLabel{{Name: "kitchen", Confidence: 0.90}})

	assert.Equal(t, "kitchen", out.Category)
	assert.Equal(t, model.ProvenanceVisualOnly, out.Provenance)
	assert.InDelta(t, 0.90, out.Confidence, 1e-9)
}

func TestResolveAgreementYieldsHybrid(t *testing.T) {
	tax := scenes.DefaultTaxonomy()
	out := scenes.Resolve(tax,
		resolveCandidate("kitchen", model.TierSpecific, 0.80),
		[]model.VisualLabel{{Name: "kitchen", Confidence: 0.92}})

	assert.Equal(t, "kitchen", out.Category)
	assert.Equal(t, model.ProvenanceHybrid, out.Provenance)
	assert.InDelta(t, 0.92, out.Confidence, 1e-9)
}

func TestResolveIndicatorMatch(t *testing.T) {
	tax := scenes.DefaultTaxonomy()
	out := scenes.Resolve(tax,
		resolveCandidate("kitchen", model.TierSpecific, 0.80),
		[]model.VisualLabel{{Name: "stove", Confidence: 0.85}})

	assert.Equal(t, "kitchen", out.Category)
	assert.Equal(t, model.ProvenanceHybrid, out.Provenance)
}

func TestResolveExactMatchBeatsStrongerIndicator(t *testing.T) {
	tax := scenes.DefaultTaxonomy()
	out := scenes.Resolve(tax,
		resolveCandidate("bedroom", model.TierSpecific, 0.80),
		[]model.VisualLabel{
			{Name: "stove", Confidence: 0.99},
			{Name: "bedroom", Confidence: 0.80},
		})

	assert.Equal(t, "bedroom", out.Category)
	assert.Equal(t, model.ProvenanceHybrid, out.Provenance)
}

func TestResolveSubThresholdVisualFallsBackToTemporal(t *testing.T) {
	tax := scenes.DefaultTaxonomy()
	out := scenes.Resolve(tax,
		resolveCandidate("swimming pool", model.TierSpecific, 0.70),
		[]model.VisualLabel{{Name: "kitchen", Confidence: 0.60}})

	// The temporal label maps through the indicator table to its canonical
	// category.
	assert.Equal(t, "outdoor", out.Category)
	assert.Equal(t, model.ProvenanceTemporalOnly, out.Provenance)
	assert.InDelta(t, 0.70, out.Confidence, 1e-9)
}

func TestResolveNoVisualEvidenceTemporalOnly(t *testing.T) {
	tax := scenes.DefaultTaxonomy()
	out := scenes.Resolve(tax, resolveCandidate("kitchen", model.TierSpecific, 0.75), nil)

	assert.Equal(t, "kitchen", out.Category)
	assert.Equal(t, model.ProvenanceTemporalOnly, out.Provenance)
	assert.InDelta(t, 0.75, out.Confidence, 1e-9)
}

func TestResolveGenericWithoutVisualBecomesExcluded(t *testing.T) {
	tax := scenes.DefaultTaxonomy()
	out := scenes.Resolve(tax, resolveCandidate("room", model.TierGeneric, 0.85), nil)

	assert.True(t, out.Excluded())
	assert.Equal(t, model.ProvenanceTemporalOnly, out.Provenance)
}

func TestResolveGenericWithVisualEvidence(t *testing.T) {
	tax := scenes.DefaultTaxonomy()
	out := scenes.Resolve(tax,
		resolveCandidate("room", model.TierGeneric, 0.85),
		[]model.VisualLabel{{Name: "bathtub", Confidence: 0.88}})

	assert.Equal(t, "bathroom", out.Category)
	assert.Equal(t, model.ProvenanceVisualOnly, out.Provenance)
}

func TestResolveCarriesLowSupportFlag(t *testing.T) {
	tax := scenes.DefaultTaxonomy()
	candidate := resolveCandidate("kitchen", model.TierSpecific, 0.75)
	candidate.LowSupport = true

	out := scenes.Resolve(tax, candidate, nil)

	assert.True(t, out.LowSupport)
	assert.Equal(t, "kitchen", out.Category)
}

func TestResolvePreservesEvidence(t *testing.T) {
	tax := scenes.DefaultTaxonomy()
	visual := []model.VisualLabel{
		{Name: "kitchen", Confidence: 0.92},
		{Name: "plant", Confidence: 0.50},
	}
	out := scenes.Resolve(tax, resolveCandidate("kitchen", model.TierSpecific, 0.80), visual)

	assert.Equal(t, []string{"kitchen"}, out.TemporalLabels)
	assert.Equal(t, visual, out.VisualLabels)
}
