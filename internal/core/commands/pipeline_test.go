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

package commands_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Kondomino/kondo-movie/internal/cloud"
	"github.com/Kondomino/kondo-movie/internal/core/commands"
	"github.com/Kondomino/kondo-movie/internal/core/cor"
	"github.com/Kondomino/kondo-movie/internal/core/model"
	"github.com/Kondomino/kondo-movie/internal/core/scenes"
	test "github.com/Kondomino/kondo-movie/internal/testutil"
)

// buildClassificationChain wires the pipeline commands around in-memory
// fakes, skipping the steps that require real GCS and BigQuery clients. The
// scheduler reads the video path from the local-video key that GCSToTempFile
// would normally populate.
func buildClassificationChain(source scenes.LabelSource, extractor scenes.KeyframeExtractor, classifier scenes.VisualClassifier) cor.Chain {
	taxonomy := scenes.DefaultTaxonomy()

	scheduler := commands.NewKeyframeScheduler(
		"gather-visual-evidence",
		scenes.ScheduleConfig{},
		extractor,
		classifier)
	scheduler.InputParamName = commands.GetLocalVideoName()

	chain := cor.NewBaseChain("classification-under-test")
	chain.AddCommand(commands.NewVideoAnnotator("annotate-video", source))
	chain.AddCommand(commands.NewLabelFilter("filter-labels", taxonomy))
	chain.AddCommand(commands.NewTemporalConsolidator("consolidate-windows", scenes.ConsolidateConfig{}))
	chain.AddCommand(scheduler)
	chain.AddCommand(commands.NewHybridResolver("resolve-hybrid", taxonomy))
	chain.AddCommand(commands.NewSceneAggregator("aggregate-scenes", scenes.AggregateConfig{}))
	return chain
}

func newChainContext(obj *cloud.GCSObject) cor.Context {
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(context.Background())
	chainCtx.Add(commands.GetLocalVideoName(), "/tmp/video-under-test.mp4")
	chainCtx.Add(cor.CtxIn, obj)
	return chainCtx
}

func TestClassificationChainProducesTimeline(t *testing.T) {
	source := &test.FakeLabelSource{
		Default: &model.VideoAnnotation{
			VideoURI: "gs://kondo-video-input/tour.mp4",
			Duration: 10 * time.Second,
			Labels: []model.RawLabel{
				{Name: "kitchen", Confidence: 0.85, Start: 0, End: 5 * time.Second, Granularity: model.GranularitySegment},
				{Name: "bedroom", Confidence: 0.90, Start: 6 * time.Second, End: 10 * time.Second, Granularity: model.GranularitySegment},
				{Name: "confetti", Confidence: 0.40, Start: 0, End: 10 * time.Second, Granularity: model.GranularitySegment},
			},
		},
	}
	extractor := &test.FakeKeyframeExtractor{}
	classifier := &test.FakeVisualClassifier{
		ByRefSubstring: map[string][]model.VisualLabel{
			"frame@2.5s": {{Name: "kitchen", Confidence: 0.92}},
			"frame@8s":   {{Name: "bedroom", Confidence: 0.88}},
		},
	}

	chain := buildClassificationChain(source, extractor, classifier)
	chainCtx := newChainContext(&cloud.GCSObject{Bucket: "kondo-video-input", Name: "tour.mp4", MIMEType: "video/mp4"})
	chain.Execute(chainCtx)

	assert.False(t, chainCtx.HasErrors())

	final, ok := chainCtx.Get(commands.GetFinalScenesName()).([]model.FinalScene)
	assert.True(t, ok)
	assert.Equal(t, 2, len(final))

	assert.Equal(t, "kitchen", final[0].Category)
	assert.Equal(t, model.ProvenanceHybrid, final[0].Provenance)
	assert.Equal(t, time.Duration(0), final[0].Start)
	assert.Equal(t, 5*time.Second, final[0].End)

	assert.Equal(t, "bedroom", final[1].Category)
	assert.Equal(t, model.ProvenanceHybrid, final[1].Provenance)
	assert.Equal(t, 6*time.Second, final[1].Start)
	assert.Equal(t, 10*time.Second, final[1].End)

	records, ok := chainCtx.Get(cor.CtxOut).([]*model.SceneRecord)
	assert.True(t, ok)
	assert.Equal(t, 2, len(records))
	assert.Equal(t, "gs://kondo-video-input/tour.mp4", records[0].VideoURI)
	assert.NotEmpty(t, records[0].RunID)
	assert.Equal(t, records[0].RunID, records[1].RunID)
	assert.Equal(t, "scene-0001", records[0].SceneID)

	summary, ok := chainCtx.Get(commands.GetRunSummaryName()).(*model.RunSummary)
	assert.True(t, ok)
	assert.Equal(t, 3, summary.LabelsReceived)
	assert.Equal(t, 2, summary.LabelsKept)
	assert.Equal(t, 2, summary.CandidateScenes)
	assert.Equal(t, 2, summary.FinalScenes)
	assert.Equal(t, 0, summary.KeyframesFailed)
}

func TestClassificationChainDegradesOnKeyframeFailure(t *testing.T) {
	source := &test.FakeLabelSource{
		Default: &model.VideoAnnotation{
			VideoURI: "gs://kondo-video-input/tour.mp4",
			Duration: 10 * time.Second,
			Labels: []model.RawLabel{
				{Name: "kitchen", Confidence: 0.85, Start: 0, End: 5 * time.Second, Granularity: model.GranularitySegment},
				{Name: "bedroom", Confidence: 0.90, Start: 6 * time.Second, End: 10 * time.Second, Granularity: model.GranularitySegment},
			},
		},
	}
	// The bedroom keyframe at the 8s midpoint fails; the scene must fall
	// back to temporal evidence while the kitchen scene stays hybrid.
	extractor := &test.FakeKeyframeExtractor{FailAt: map[time.Duration]bool{8 * time.Second: true}}
	classifier := &test.FakeVisualClassifier{
		ByRefSubstring: map[string][]model.VisualLabel{
			"frame@2.5s": {{Name: "kitchen", Confidence: 0.92}},
		},
	}

	chain := buildClassificationChain(source, extractor, classifier)
	chainCtx := newChainContext(&cloud.GCSObject{Bucket: "kondo-video-input", Name: "tour.mp4", MIMEType: "video/mp4"})
	chain.Execute(chainCtx)

	assert.False(t, chainCtx.HasErrors())

	final := chainCtx.Get(commands.GetFinalScenesName()).([]model.FinalScene)
	assert.Equal(t, 2, len(final))
	assert.Equal(t, model.ProvenanceHybrid, final[0].Provenance)
	assert.False(t, final[0].VisualDegraded)
	assert.Equal(t, model.ProvenanceTemporalOnly, final[1].Provenance)
	assert.True(t, final[1].VisualDegraded)

	summary := chainCtx.Get(commands.GetRunSummaryName()).(*model.RunSummary)
	assert.Equal(t, 2, summary.KeyframesScheduled)
	assert.Equal(t, 1, summary.KeyframesFailed)
}

func TestClassificationChainFailsWhenSourceUnavailable(t *testing.T) {
	source := &test.FakeLabelSource{Err: scenes.ErrSourceUnavailable}
	chain := buildClassificationChain(source, &test.FakeKeyframeExtractor{}, &test.FakeVisualClassifier{})

	chainCtx := newChainContext(&cloud.GCSObject{Bucket: "kondo-video-input", Name: "tour.mp4", MIMEType: "video/mp4"})
	chain.Execute(chainCtx)

	assert.True(t, chainCtx.HasErrors())
	assert.Nil(t, chainCtx.Get(commands.GetFinalScenesName()))
}

func TestClassifyTriggerReaderRejectsNonVideo(t *testing.T) {
	reader := commands.NewClassifyTriggerReader("read-classify-trigger")

	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(context.Background())
	chainCtx.Add(cor.CtxIn, test.GetTestNonVideoMessageText())
	reader.Execute(chainCtx)

	assert.True(t, chainCtx.HasErrors())
}

func TestClassifyTriggerReaderParsesNotification(t *testing.T) {
	reader := commands.NewClassifyTriggerReader("read-classify-trigger")

	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(context.Background())
	chainCtx.Add(cor.CtxIn, test.GetTestVideoMessageText())
	reader.Execute(chainCtx)

	assert.False(t, chainCtx.HasErrors())
	obj, ok := chainCtx.Get(cloud.GetGCSObjectName()).(*cloud.GCSObject)
	assert.True(t, ok)
	assert.Equal(t, "kondo-video-input", obj.Bucket)
	assert.Equal(t, "test-house-tour-001.mp4", obj.Name)
	assert.Equal(t, "gs://kondo-video-input/test-house-tour-001.mp4", obj.URI())
}
