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

// This file defines the final pipeline step: aggregation into the
// non-overlapping timeline plus assembly of the serializable scene records
// and the run summary diagnostics.
package commands

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Kondomino/kondo-movie/internal/cloud"
	"github.com/Kondomino/kondo-movie/internal/core/cor"
	"github.com/Kondomino/kondo-movie/internal/core/model"
	"github.com/Kondomino/kondo-movie/internal/core/scenes"
)

// GetFinalScenesName returns the context key holding the final timeline.
func GetFinalScenesName() string {
	return "__FINAL_SCENES__"
}

// GetRunSummaryName returns the context key holding the run summary.
func GetRunSummaryName() string {
	return "__RUN_SUMMARY__"
}

// SceneAggregator merges the resolved scenes into the final timeline and
// builds the flat records handed to persistence and the API. A violated
// timeline invariant fails the run here rather than letting a broken
// timeline escape.
type SceneAggregator struct {
	cor.BaseCommand
	config scenes.AggregateConfig
}

func NewSceneAggregator(name string, config scenes.AggregateConfig) *SceneAggregator {
	return &SceneAggregator{BaseCommand: *cor.NewBaseCommand(name), config: config}
}

func (c *SceneAggregator) Execute(context cor.Context) {
	resolved := context.Get(c.GetInputParam()).([]model.FinalScene)

	final, err := scenes.Aggregate(c.config, resolved)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("scene aggregation failed: %w", err))
		return
	}

	runID, _ := context.Get(GetRunIDName()).(string)
	videoURI := ""
	if obj, ok := context.Get(cloud.GetGCSObjectName()).(*cloud.GCSObject); ok {
		videoURI = obj.URI()
	}

	records := make([]*model.SceneRecord, 0, len(final))
	for i := range final {
		records = append(records, final[i].ToRecord(runID, videoURI))
	}

	summary := c.buildSummary(context, runID, videoURI, final)
	slog.Info("classification run complete",
		"run_id", summary.RunID,
		"video", summary.VideoURI,
		"final_scenes", summary.FinalScenes,
		"keyframes_failed", summary.KeyframesFailed,
		"elapsed_seconds", summary.ElapsedSeconds)

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetFinalScenesName(), final)
	context.Add(GetRunSummaryName(), summary)
	context.Add(c.GetOutputParam(), records)
}

func (c *SceneAggregator) buildSummary(context cor.Context, runID string, videoURI string, final []model.FinalScene) *model.RunSummary {
	summary := &model.RunSummary{
		RunID:       runID,
		VideoURI:    videoURI,
		FinalScenes: len(final),
	}
	if annotation, ok := context.Get(GetVideoAnnotationName()).(*model.VideoAnnotation); ok {
		summary.LabelsReceived = len(annotation.Labels)
		summary.ShotBoundaries = len(annotation.Shots)
	}
	if kept, ok := context.Get(GetLabelsKeptName()).(int); ok {
		summary.LabelsKept = kept
	}
	if candidates, ok := context.Get(GetCandidateScenesName()).([]model.CandidateScene); ok {
		summary.CandidateScenes = len(candidates)
	}
	if evidence, ok := context.Get(GetVisualEvidenceName()).(*scenes.VisualEvidence); ok {
		summary.KeyframesScheduled = len(evidence.Keyframes) + len(evidence.Failures)
		summary.KeyframesFailed = len(evidence.Failures)
	}
	if start, ok := context.Get(GetRunStartName()).(time.Time); ok {
		summary.ElapsedSeconds = time.Since(start).Seconds()
	}
	return summary
}
