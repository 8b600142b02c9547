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

// This file implements the temporal label source on top of the Video
// Intelligence API. One annotate call requests label detection at shot and
// frame granularity together with shot-change detection, so a single pass
// over the video yields both the label stream and the cut hints the
// consolidator uses.
package cloud

import (
	"context"
	"fmt"
	"time"

	videointelligence "cloud.google.com/go/videointelligence/apiv1"
	"cloud.google.com/go/videointelligence/apiv1/videointelligencepb"

	"github.com/Kondomino/kondo-movie/internal/core/model"
	"github.com/Kondomino/kondo-movie/internal/core/scenes"
)

// DefaultLabelDetectionModel is the Video Intelligence label model variant
// used when the config does not name one.
const DefaultLabelDetectionModel = "builtin/stable"

// VideoIntelligenceLabelSource implements scenes.LabelSource against the
// Video Intelligence API.
type VideoIntelligenceLabelSource struct {
	client  *videointelligence.Client
	model   string
	timeout time.Duration
}

// NewVideoIntelligenceLabelSource builds a label source from an initialized
// client and the config section.
func NewVideoIntelligenceLabelSource(client *videointelligence.Client, cfg VideoIntelligence) *VideoIntelligenceLabelSource {
	modelName := cfg.Model
	if modelName == "" {
		modelName = DefaultLabelDetectionModel
	}
	timeout := time.Duration(cfg.TimeoutInSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &VideoIntelligenceLabelSource{client: client, model: modelName, timeout: timeout}
}

// Annotate runs the long-running annotate operation for the given GCS video
// URI and flattens the response into the engine's annotation model. Any
// failure is wrapped in scenes.ErrSourceUnavailable: without temporal
// labels there is no run.
func (s *VideoIntelligenceLabelSource) Annotate(ctx context.Context, videoURI string) (*model.VideoAnnotation, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	op, err := s.client.AnnotateVideo(callCtx, &videointelligencepb.AnnotateVideoRequest{
		InputUri: videoURI,
		Features: []videointelligencepb.Feature{
			videointelligencepb.Feature_LABEL_DETECTION,
			videointelligencepb.Feature_SHOT_CHANGE_DETECTION,
		},
		VideoContext: &videointelligencepb.VideoContext{
			LabelDetectionConfig: &videointelligencepb.LabelDetectionConfig{
				LabelDetectionMode: videointelligencepb.LabelDetectionMode_SHOT_AND_FRAME_MODE,
				Model:              s.model,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("annotate %s: %v: %w", videoURI, err, scenes.ErrSourceUnavailable)
	}
	resp, err := op.Wait(callCtx)
	if err != nil {
		return nil, fmt.Errorf("annotate %s: wait: %v: %w", videoURI, err, scenes.ErrSourceUnavailable)
	}
	if len(resp.GetAnnotationResults()) == 0 {
		return nil, fmt.Errorf("annotate %s: empty annotation results: %w", videoURI, scenes.ErrSourceUnavailable)
	}

	result := resp.GetAnnotationResults()[0]
	annotation := &model.VideoAnnotation{VideoURI: videoURI}
	if segment := result.GetSegment(); segment != nil {
		annotation.Duration = segment.GetEndTimeOffset().AsDuration()
	}

	for _, label := range result.GetSegmentLabelAnnotations() {
		annotation.Labels = append(annotation.Labels, segmentLabels(label, model.GranularitySegment)...)
	}
	for _, label := range result.GetShotLabelAnnotations() {
		annotation.Labels = append(annotation.Labels, segmentLabels(label, model.GranularityShot)...)
	}
	for _, label := range result.GetFrameLabelAnnotations() {
		name := label.GetEntity().GetDescription()
		for _, frame := range label.GetFrames() {
			at := frame.GetTimeOffset().AsDuration()
			annotation.Labels = append(annotation.Labels, model.RawLabel{
				Name:        name,
				Confidence:  float64(frame.GetConfidence()),
				Start:       at,
				End:         at,
				Granularity: model.GranularityFrame,
			})
		}
	}

	for _, shot := range result.GetShotAnnotations() {
		annotation.Shots = append(annotation.Shots, model.ShotBoundary{
			Start: shot.GetStartTimeOffset().AsDuration(),
			End:   shot.GetEndTimeOffset().AsDuration(),
		})
	}
	return annotation, nil
}

func segmentLabels(label *videointelligencepb.LabelAnnotation, granularity model.SourceGranularity) []model.RawLabel {
	name := label.GetEntity().GetDescription()
	out := make([]model.RawLabel, 0, len(label.GetSegments()))
	for _, segment := range label.GetSegments() {
		out = append(out, model.RawLabel{
			Name:        name,
			Confidence:  float64(segment.GetConfidence()),
			Start:       segment.GetSegment().GetStartTimeOffset().AsDuration(),
			End:         segment.GetSegment().GetEndTimeOffset().AsDuration(),
			Granularity: granularity,
		})
	}
	return out
}
