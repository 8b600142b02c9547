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

func specific(name string, confidence float64, start, end time.Duration) model.FilteredLabel {
	return model.FilteredLabel{
		RawLabel: model.RawLabel{Name: name, Confidence: confidence, Start: start, End: end},
		Tier:     model.TierSpecific,
	}
}

func TestConsolidateSingleLabelSpan(t *testing.T) {
	out := scenes.Consolidate(scenes.ConsolidateConfig{}, []model.FilteredLabel{
		specific("kitchen", 0.85, 0, 5*time.Second),
	}, nil)

	assert.Len(t, out, 1)
	assert.Equal(t, "scene-0001", out[0].ID)
	assert.Equal(t, time.Duration(0), out[0].Start)
	assert.Equal(t, 5*time.Second, out[0].End)
	assert.Equal(t, "kitchen", out[0].Category)
	assert.InDelta(t, 0.85, out[0].AggregateConfidence, 1e-9)
	assert.Equal(t, 5, out[0].SupportingWindows)
	assert.False(t, out[0].LowSupport)
}

func TestConsolidateBridgesGapWithinTolerance(t *testing.T) {
	out := scenes.Consolidate(scenes.ConsolidateConfig{GapTolerance: 1}, []model.FilteredLabel{
		specific("kitchen", 0.80, 0, 2*time.Second),
		// One unlabeled window at [2s,3s), then kitchen resumes.
		specific("kitchen", 0.90, 3*time.Second, 5*time.Second),
	}, nil)

	assert.Len(t, out, 1)
	assert.Equal(t, time.Duration(0), out[0].Start)
	assert.Equal(t, 5*time.Second, out[0].End)
	assert.Equal(t, 4, out[0].SupportingWindows)
}

func TestConsolidateZeroConfigBridgesOneWindow(t *testing.T) {
	out := scenes.Consolidate(scenes.ConsolidateConfig{}, []model.FilteredLabel{
		specific("kitchen", 0.80, 0, 2*time.Second),
		specific("kitchen", 0.90, 3*time.Second, 5*time.Second),
	}, nil)

	assert.Len(t, out, 1)
	assert.Equal(t, time.Duration(0), out[0].Start)
	assert.Equal(t, 5*time.Second, out[0].End)
	assert.Equal(t, 4, out[0].SupportingWindows)
}

func TestConsolidateNegativeGapToleranceDisablesBridging(t *testing.T) {
	out := scenes.Consolidate(scenes.ConsolidateConfig{GapTolerance: -1}, []model.FilteredLabel{
		specific("kitchen", 0.80, 0, 2*time.Second),
		specific("kitchen", 0.90, 3*time.Second, 5*time.Second),
	}, nil)

	assert.Len(t, out, 2)
	assert.Equal(t, 2*time.Second, out[0].End)
	assert.Equal(t, 3*time.Second, out[1].Start)
}

func TestConsolidateShotCutClosesGap(t *testing.T) {
	labels := []model.FilteredLabel{
		specific("kitchen", 0.80, 0, 2*time.Second),
		specific("kitchen", 0.90, 3*time.Second, 5*time.Second),
	}
	shots := []model.ShotBoundary{
		{Start: 0, End: 2500 * time.Millisecond},
		{Start: 2500 * time.Millisecond, End: 5 * time.Second},
	}

	out := scenes.Consolidate(scenes.ConsolidateConfig{GapTolerance: 1}, labels, shots)

	assert.Len(t, out, 2)
	assert.Equal(t, 2*time.Second, out[0].End)
	assert.Equal(t, 3*time.Second, out[1].Start)
	assert.Equal(t, "scene-0002", out[1].ID)
}

func TestConsolidateCategoryChangeSplitsScenes(t *testing.T) {
	out := scenes.Consolidate(scenes.ConsolidateConfig{}, []model.FilteredLabel{
		specific("kitchen", 0.85, 0, 3*time.Second),
		specific("bedroom", 0.75, 3*time.Second, 6*time.Second),
	}, nil)

	assert.Len(t, out, 2)
	assert.Equal(t, "kitchen", out[0].Category)
	assert.Equal(t, "bedroom", out[1].Category)
	assert.Equal(t, out[0].End, out[1].Start)
}

func TestConsolidateTierPriorityInsideWindow(t *testing.T) {
	labels := []model.FilteredLabel{
		specific("kitchen", 0.61, 0, 2*time.Second),
		{
			RawLabel: model.RawLabel{Name: "room", Confidence: 0.95, Start: 0, End: 2 * time.Second},
			Tier:     model.TierGeneric,
		},
		{
			RawLabel: model.RawLabel{Name: "floor", Confidence: 0.99, Start: 0, End: 2 * time.Second},
			Tier:     model.TierExcluded,
		},
	}
	out := scenes.Consolidate(scenes.ConsolidateConfig{}, labels, nil)

	assert.Len(t, out, 1)
	assert.Equal(t, "kitchen", out[0].Category)
	assert.Equal(t, model.TierSpecific, out[0].Tier)
}

func TestConsolidateDeterministicAcrossInputOrder(t *testing.T) {
	a := []model.FilteredLabel{
		specific("kitchen", 0.85, 0, 2*time.Second),
		specific("bedroom", 0.85, time.Second, 3*time.Second),
	}
	b := []model.FilteredLabel{a[1], a[0]}

	outA := scenes.Consolidate(scenes.ConsolidateConfig{}, a, nil)
	outB := scenes.Consolidate(scenes.ConsolidateConfig{}, b, nil)

	assert.Equal(t, outA, outB)
	// The contested window [1s,2s) goes to the later-starting evidence.
	assert.Equal(t, "bedroom", outA[1].Category)
	assert.Equal(t, time.Second, outA[1].Start)
}

func TestConsolidateLowSupportFlag(t *testing.T) {
	out := scenes.Consolidate(scenes.ConsolidateConfig{MinSupportingWindows: 2}, []model.FilteredLabel{
		specific("closet", 0.70, 0, time.Second),
	}, nil)

	assert.Len(t, out, 1)
	assert.True(t, out[0].LowSupport)
	assert.Equal(t, 1, out[0].SupportingWindows)
}

func TestConsolidateFrameLabelClaimsOneWindow(t *testing.T) {
	out := scenes.Consolidate(scenes.ConsolidateConfig{}, []model.FilteredLabel{
		{
			RawLabel: model.RawLabel{
				Name: "kitchen", Confidence: 0.9,
				Start: 1500 * time.Millisecond, End: 1500 * time.Millisecond,
				Granularity: model.GranularityFrame,
			},
			Tier: model.TierSpecific,
		},
	}, nil)

	assert.Len(t, out, 1)
	assert.Equal(t, time.Second, out[0].Start)
	assert.Equal(t, 2*time.Second, out[0].End)
}

func TestConsolidateMaxAggregatePolicy(t *testing.T) {
	out := scenes.Consolidate(scenes.ConsolidateConfig{Aggregate: scenes.AggregateMax}, []model.FilteredLabel{
		specific("kitchen", 0.70, 0, time.Second),
		specific("kitchen", 0.90, time.Second, 2*time.Second),
	}, nil)

	assert.Len(t, out, 1)
	assert.InDelta(t, 0.90, out[0].AggregateConfidence, 1e-9)
}

func TestConsolidateEmptyInput(t *testing.T) {
	out := scenes.Consolidate(scenes.ConsolidateConfig{}, nil, nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}
