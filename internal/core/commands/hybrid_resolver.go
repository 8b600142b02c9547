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

package commands

import (
	"log/slog"

	"github.com/Kondomino/kondo-movie/internal/core/cor"
	"github.com/Kondomino/kondo-movie/internal/core/model"
	"github.com/Kondomino/kondo-movie/internal/core/scenes"
)

// HybridResolver applies the hybrid classification rules to every candidate
// scene, pairing each with whatever visual labels its keyframe produced.
// Scenes whose keyframe failed are resolved on temporal evidence alone and
// marked degraded.
type HybridResolver struct {
	cor.BaseCommand
	taxonomy *scenes.Taxonomy
}

func NewHybridResolver(name string, taxonomy *scenes.Taxonomy) *HybridResolver {
	return &HybridResolver{BaseCommand: *cor.NewBaseCommand(name), taxonomy: taxonomy}
}

func (c *HybridResolver) Execute(context cor.Context) {
	evidence := context.Get(c.GetInputParam()).(*scenes.VisualEvidence)
	candidates := context.Get(GetCandidateScenesName()).([]model.CandidateScene)

	resolved := make([]model.FinalScene, 0, len(candidates))
	for _, candidate := range candidates {
		scene := scenes.Resolve(c.taxonomy, candidate, evidence.Labels[candidate.ID])
		if _, failed := evidence.Failures[candidate.ID]; failed {
			scene.VisualDegraded = true
		}
		resolved = append(resolved, scene)
	}

	slog.Debug("hybrid resolution complete",
		"scenes", len(resolved),
		"run_id", context.Get(GetRunIDName()))

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), resolved)
}
