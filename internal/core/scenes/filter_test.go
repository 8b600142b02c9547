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

func TestFilterLabelsTierThresholds(t *testing.T) {
	tax := scenes.DefaultTaxonomy()

	tests := []struct {
		name       string
		label      string
		confidence float64
		kept       bool
		tier       model.Tier
	}{
		{"specific at threshold", "kitchen", 0.60, true, model.TierSpecific},
		{"specific below threshold", "kitchen", 0.59, false, 0},
		{"generic at threshold", "room", 0.80, true, model.TierGeneric},
		{"generic below threshold", "room", 0.79, false, 0},
		{"excluded at threshold", "floor", 0.95, true, model.TierExcluded},
		{"excluded below threshold", "floor", 0.94, false, 0},
		{"case insensitive", "Kitchen", 0.75, true, model.TierSpecific},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := scenes.FilterLabels(tax, []model.RawLabel{
				{Name: tc.label, Confidence: tc.confidence, Start: 0, End: time.Second},
			})
			if !tc.kept {
				assert.Empty(t, out)
				return
			}
			assert.Len(t, out, 1)
			assert.Equal(t, tc.tier, out[0].Tier)
		})
	}
}

func TestFilterLabelsDropsUnknownAndMalformed(t *testing.T) {
	tax := scenes.DefaultTaxonomy()
	out := scenes.FilterLabels(tax, []model.RawLabel{
		{Name: "lens flare", Confidence: 0.99, Start: 0, End: time.Second},
		{Name: "kitchen", Confidence: 1.2, Start: 0, End: time.Second},
		{Name: "kitchen", Confidence: -0.1, Start: 0, End: time.Second},
		{Name: "kitchen", Confidence: 0.9, Start: 2 * time.Second, End: time.Second},
		{Name: "kitchen", Confidence: 0.9, Start: 0, End: time.Second},
	})
	assert.Len(t, out, 1)
	assert.Equal(t, "kitchen", out[0].Name)
}

func TestFilterLabelsEmptyInput(t *testing.T) {
	out := scenes.FilterLabels(scenes.DefaultTaxonomy(), nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestTaxonomyCategoryLookups(t *testing.T) {
	tax := scenes.DefaultTaxonomy()

	category, ok := tax.CategoryFor("stove")
	assert.True(t, ok)
	assert.Equal(t, "kitchen", category)

	category, ok = tax.CategoryFor("swimming pool")
	assert.True(t, ok)
	assert.Equal(t, "outdoor", category)

	_, ok = tax.CategoryFor("room")
	assert.False(t, ok)

	assert.True(t, tax.IsCanonical("kitchen"))
	assert.False(t, tax.IsCanonical("stove"))
}
