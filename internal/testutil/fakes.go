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

package test

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Kondomino/kondo-movie/internal/core/model"
	"github.com/Kondomino/kondo-movie/internal/core/scenes"
)

// FakeLabelSource serves a canned annotation keyed by video URI, falling
// back to a default when the URI is unknown. It satisfies
// scenes.LabelSource for pipeline tests that must not call the Video
// Intelligence API.
type FakeLabelSource struct {
	Annotations map[string]*model.VideoAnnotation
	Default     *model.VideoAnnotation
	Err         error
}

func (f *FakeLabelSource) Annotate(_ context.Context, videoURI string) (*model.VideoAnnotation, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	if annotation, ok := f.Annotations[videoURI]; ok {
		return annotation, nil
	}
	if f.Default != nil {
		return f.Default, nil
	}
	return nil, fmt.Errorf("no canned annotation for %s: %w", videoURI, scenes.ErrSourceUnavailable)
}

// FakeKeyframeExtractor records timestamps and hands back synthetic image
// refs without touching ffmpeg. FailAt marks timestamps whose extraction
// should fail.
type FakeKeyframeExtractor struct {
	FailAt map[time.Duration]bool
}

func (f *FakeKeyframeExtractor) Extract(_ context.Context, videoRef string, at time.Duration) (string, error) {
	if f.FailAt[at] {
		return "", fmt.Errorf("frame decode failed at %s in %s", at, videoRef)
	}
	return fmt.Sprintf("%s#frame@%s.jpg", videoRef, at), nil
}

// FakeVisualClassifier returns labels keyed by a substring of the image
// ref, so tests can steer per-scene visual evidence through the synthetic
// refs the fake extractor emits.
type FakeVisualClassifier struct {
	ByRefSubstring map[string][]model.VisualLabel
	Default        []model.VisualLabel
}

func (f *FakeVisualClassifier) Classify(_ context.Context, imageRef string) ([]model.VisualLabel, error) {
	for sub, labels := range f.ByRefSubstring {
		if strings.Contains(imageRef, sub) {
			return labels, nil
		}
	}
	return f.Default, nil
}

var (
	_ scenes.LabelSource       = (*FakeLabelSource)(nil)
	_ scenes.KeyframeExtractor = (*FakeKeyframeExtractor)(nil)
	_ scenes.VisualClassifier  = (*FakeVisualClassifier)(nil)
)
