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

// GetCandidateScenesName returns the context key holding the run's
// candidate scene list.
func GetCandidateScenesName() string {
	return "__CANDIDATES__"
}

// TemporalConsolidator collapses the filtered label stream into candidate
// scenes, consulting the annotation's shot boundaries for gap decisions.
type TemporalConsolidator struct {
	cor.BaseCommand
	config scenes.ConsolidateConfig
}

func NewTemporalConsolidator(name string, config scenes.ConsolidateConfig) *TemporalConsolidator {
	return &TemporalConsolidator{BaseCommand: *cor.NewBaseCommand(name), config: config}
}

func (c *TemporalConsolidator) Execute(context cor.Context) {
	filtered := context.Get(c.GetInputParam()).([]model.FilteredLabel)
	annotation := context.Get(GetVideoAnnotationName()).(*model.VideoAnnotation)

	candidates := scenes.Consolidate(c.config, filtered, annotation.Shots)
	slog.Info("temporal consolidation complete",
		"candidates", len(candidates),
		"run_id", context.Get(GetRunIDName()))

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetCandidateScenesName(), candidates)
	context.Add(c.GetOutputParam(), candidates)
}
