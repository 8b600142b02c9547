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

// Package model_test verifies the data model helpers: record flattening,
// scene geometry, and the canned example values used in prompts and tests.
package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/zeebo/assert"

	"github.com/Kondomino/kondo-movie/internal/core/model"
)

func TestSceneToRecord(t *testing.T) {
	scene := &model.FinalScene{
		ID:             "scene-0003",
		Start:          2500 * time.Millisecond,
		End:            9 * time.Second,
		Category:       "kitchen",
		Confidence:     0.87,
		Provenance:     model.ProvenanceHybrid,
		TemporalLabels: []string{"kitchen"},
		VisualLabels:   []model.VisualLabel{{Name: "refrigerator", Confidence: 0.81}},
		LowSupport:     true,
	}

	record := scene.ToRecord("run-123", "gs://bucket/video.mp4")
	assert.Equal(t, "run-123", record.RunID)
	assert.Equal(t, "gs://bucket/video.mp4", record.VideoURI)
	assert.Equal(t, "scene-0003", record.SceneID)
	assert.Equal(t, 2.5, record.Start)
	assert.Equal(t, 9.0, record.End)
	assert.Equal(t, "hybrid", record.Provenance)
	assert.True(t, record.LowSupport)
	assert.False(t, record.CreatedAt.IsZero())

	data, err := json.Marshal(record)
	assert.NoError(t, err)
	assert.That(t, len(data) > 0)
}

func TestSceneMidpoint(t *testing.T) {
	scene := &model.CandidateScene{Start: 2 * time.Second, End: 8 * time.Second}
	assert.Equal(t, 5*time.Second, scene.Midpoint())

	point := &model.CandidateScene{Start: 3 * time.Second, End: 3 * time.Second}
	assert.Equal(t, 3*time.Second, point.Midpoint())
}

func TestExcludedScene(t *testing.T) {
	scene := &model.FinalScene{Category: model.ExcludedCategory}
	assert.True(t, scene.Excluded())

	scene.Category = "garage"
	assert.False(t, scene.Excluded())
}

func TestTierString(t *testing.T) {
	assert.Equal(t, "specific", model.TierSpecific.String())
	assert.Equal(t, "generic", model.TierGeneric.String())
	assert.Equal(t, "excluded", model.TierExcluded.String())
	assert.Equal(t, "unknown", model.Tier(42).String())
}

func TestExampleAnnotation(t *testing.T) {
	annotation := model.GetExampleAnnotation()
	assert.That(t, len(annotation.Labels) > 0)
	for _, label := range annotation.Labels {
		assert.That(t, label.Confidence >= 0 && label.Confidence <= 1)
		assert.That(t, label.End >= label.Start)
	}
}

func TestExampleVisualLabels(t *testing.T) {
	labels := model.GetExampleVisualLabels()
	assert.That(t, len(labels) > 0)

	data, err := json.Marshal(labels)
	assert.NoError(t, err)

	var parsed []model.VisualLabel
	assert.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, len(labels), len(parsed))
}
