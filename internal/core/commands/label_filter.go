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

// GetLabelsKeptName returns the context key holding the count of labels
// that survived filtering, consumed by the run summary.
func GetLabelsKeptName() string {
	return "__LABELS_KEPT__"
}

// LabelFilter reduces the raw annotation to tier-tagged evidence using the
// configured taxonomy. It never fails; a video whose labels all get dropped
// simply produces an empty timeline downstream.
type LabelFilter struct {
	cor.BaseCommand
	taxonomy *scenes.Taxonomy
}

func NewLabelFilter(name string, taxonomy *scenes.Taxonomy) *LabelFilter {
	return &LabelFilter{BaseCommand: *cor.NewBaseCommand(name), taxonomy: taxonomy}
}

func (c *LabelFilter) Execute(context cor.Context) {
	annotation := context.Get(c.GetInputParam()).(*model.VideoAnnotation)

	filtered := scenes.FilterLabels(c.taxonomy, annotation.Labels)
	slog.Debug("labels filtered",
		"received", len(annotation.Labels),
		"kept", len(filtered),
		"run_id", context.Get(GetRunIDName()))

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetLabelsKeptName(), len(filtered))
	context.Add(c.GetOutputParam(), filtered)
}
