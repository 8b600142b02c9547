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

// This file defines the command that runs the temporal label source over
// the whole video. It is the first cloud call of a run and the only one
// whose failure is fatal: without the video-wide label stream there is
// nothing to classify.
package commands

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Kondomino/kondo-movie/internal/cloud"
	"github.com/Kondomino/kondo-movie/internal/core/cor"
	"github.com/Kondomino/kondo-movie/internal/core/scenes"
)

// GetVideoAnnotationName returns the context key holding the run's
// model.VideoAnnotation.
func GetVideoAnnotationName() string {
	return "__ANNOTATION__"
}

// GetRunIDName returns the context key holding the run's diagnostic ID.
func GetRunIDName() string {
	return "__RUN_ID__"
}

// GetRunStartName returns the context key holding the run's start time.
func GetRunStartName() string {
	return "__RUN_START__"
}

// VideoAnnotator calls the temporal label source for the video referenced
// by the incoming GCS object and publishes the annotation for the rest of
// the chain. It also stamps the run ID and start time used by diagnostics,
// unless an enclosing chain already set them.
type VideoAnnotator struct {
	cor.BaseCommand
	source scenes.LabelSource
}

func NewVideoAnnotator(name string, source scenes.LabelSource) *VideoAnnotator {
	return &VideoAnnotator{BaseCommand: *cor.NewBaseCommand(name), source: source}
}

func (c *VideoAnnotator) Execute(context cor.Context) {
	obj := context.Get(c.GetInputParam()).(*cloud.GCSObject)

	if context.Get(GetRunIDName()) == nil {
		context.Add(GetRunIDName(), uuid.NewString())
		context.Add(GetRunStartName(), time.Now())
	}
	// Register the source object under its well-known key for the callers
	// that feed this chain directly instead of through the trigger reader.
	if context.Get(cloud.GetGCSObjectName()) == nil {
		context.Add(cloud.GetGCSObjectName(), obj)
	}

	annotation, err := c.source.Annotate(context.GetContext(), obj.URI())
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("temporal annotation of %s failed: %w", obj.URI(), err))
		return
	}

	slog.Info("video annotated",
		"video", obj.URI(),
		"labels", len(annotation.Labels),
		"shots", len(annotation.Shots),
		"run_id", context.Get(GetRunIDName()))

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetVideoAnnotationName(), annotation)
	context.Add(c.GetOutputParam(), annotation)
}
