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

// This file defines the command that runs the visual evidence pass: it
// schedules keyframes within the budget, fans them out over the extractor
// and classifier worker pool, and joins before handing the evidence to the
// resolver. Individual keyframe failures degrade their scene only; a
// cancelled parent context fails the whole command.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/Kondomino/kondo-movie/internal/core/cor"
	"github.com/Kondomino/kondo-movie/internal/core/model"
	"github.com/Kondomino/kondo-movie/internal/core/scenes"
)

// GetVisualEvidenceName returns the context key holding the run's visual
// evidence.
func GetVisualEvidenceName() string {
	return "__VISUAL__"
}

// KeyframeScheduler is the visual half of the pipeline packaged as one
// command. Its input is the local video path produced by GCSToTempFile; the
// candidate scenes come from their well-known context key.
type KeyframeScheduler struct {
	cor.BaseCommand
	config     scenes.ScheduleConfig
	extractor  scenes.KeyframeExtractor
	classifier scenes.VisualClassifier
}

func NewKeyframeScheduler(name string, config scenes.ScheduleConfig, extractor scenes.KeyframeExtractor, classifier scenes.VisualClassifier) *KeyframeScheduler {
	return &KeyframeScheduler{
		BaseCommand: *cor.NewBaseCommand(name),
		config:      config,
		extractor:   extractor,
		classifier:  classifier,
	}
}

func (c *KeyframeScheduler) Execute(context cor.Context) {
	localVideo := context.Get(c.GetInputParam()).(string)
	candidates := context.Get(GetCandidateScenesName()).([]model.CandidateScene)

	keyframes := scenes.SelectKeyframes(candidates, c.config.Budget)
	evidence, err := scenes.GatherVisualEvidence(
		context.GetContext(), c.config, localVideo, c.extractor, c.classifier, keyframes)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("visual evidence pass failed: %w", err))
		return
	}

	for _, kf := range evidence.Keyframes {
		context.AddTempFile(kf.ImageRef)
	}
	for sceneID, reason := range evidence.Failures {
		slog.Warn("keyframe degraded to temporal evidence",
			"scene", sceneID,
			"reason", reason,
			"run_id", context.Get(GetRunIDName()))
	}
	slog.Info("visual evidence gathered",
		"scheduled", len(keyframes),
		"succeeded", len(evidence.Keyframes),
		"failed", len(evidence.Failures),
		"run_id", context.Get(GetRunIDName()))

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetVisualEvidenceName(), evidence)
	context.Add(c.GetOutputParam(), evidence)
}
