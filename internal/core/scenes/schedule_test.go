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

package scenes_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Kondomino/kondo-movie/internal/core/model"
	"github.com/Kondomino/kondo-movie/internal/core/scenes"
)

func candidate(seq int, confidence float64, start, end time.Duration) model.CandidateScene {
	return model.CandidateScene{
		ID:                  fmt.Sprintf("scene-%04d", seq),
		Start:               start,
		End:                 end,
		Category:            "kitchen",
		AggregateConfidence: confidence,
	}
}

type fakeExtractor struct {
	mu       sync.Mutex
	inFlight int32
	peak     int32
	failAt   map[time.Duration]error
	delay    time.Duration
}

func (f *fakeExtractor) Extract(ctx context.Context, videoRef string, at time.Duration) (string, error) {
	current := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	f.mu.Lock()
	if current > f.peak {
		f.peak = current
	}
	err := f.failAt[at]
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("/tmp/frames/%d.jpg", at.Milliseconds()), nil
}

type fakeClassifier struct {
	labels map[string][]model.VisualLabel
	err    error
}

func (f *fakeClassifier) Classify(ctx context.Context, imageRef string) ([]model.VisualLabel, error) {
	if f.err != nil {
		return nil, f.err
	}
	if labels, ok := f.labels[imageRef]; ok {
		return labels, nil
	}
	return []model.VisualLabel{{Name: "kitchen", Confidence: 0.9}}, nil
}

func TestSelectKeyframesHonorsBudget(t *testing.T) {
	var candidates []model.CandidateScene
	for i := 0; i < 12; i++ {
		start := time.Duration(i*10) * time.Second
		candidates = append(candidates, candidate(i+1, float64(i)/12.0, start, start+10*time.Second))
	}

	out := scenes.SelectKeyframes(candidates, 10)

	assert.Len(t, out, 10)
	// The two weakest scenes (indices 0 and 1) fall outside the budget.
	scheduled := make(map[string]bool)
	for _, kf := range out {
		scheduled[kf.SceneID] = true
	}
	assert.False(t, scheduled["scene-0001"])
	assert.False(t, scheduled["scene-0002"])
}

func TestSelectKeyframesMidpointTimestamps(t *testing.T) {
	out := scenes.SelectKeyframes([]model.CandidateScene{
		candidate(1, 0.9, 2*time.Second, 8*time.Second),
	}, 10)

	assert.Len(t, out, 1)
	assert.Equal(t, 5*time.Second, out[0].Timestamp)
}

func TestSelectKeyframesTieGoesToEarlierScene(t *testing.T) {
	out := scenes.SelectKeyframes([]model.CandidateScene{
		candidate(1, 0.8, 0, 2*time.Second),
		candidate(2, 0.8, 10*time.Second, 12*time.Second),
	}, 1)

	assert.Len(t, out, 1)
	assert.Equal(t, "scene-0001", out[0].SceneID)
}

func TestGatherVisualEvidenceDegradesFailedSceneOnly(t *testing.T) {
	candidates := []model.CandidateScene{
		candidate(1, 0.9, 0, 2*time.Second),
		candidate(2, 0.8, 4*time.Second, 6*time.Second),
	}
	keyframes := scenes.SelectKeyframes(candidates, 10)
	extractor := &fakeExtractor{failAt: map[time.Duration]error{
		5 * time.Second: errors.New("frame decode failed"),
	}}

	evidence, err := scenes.GatherVisualEvidence(context.Background(), scenes.ScheduleConfig{},
		"gs://bucket/video.mp4", extractor, &fakeClassifier{}, keyframes)

	assert.NoError(t, err)
	assert.Len(t, evidence.Labels["scene-0001"], 1)
	assert.NotContains(t, evidence.Labels, "scene-0002")
	assert.Contains(t, evidence.Failures["scene-0002"], "frame decode failed")
}

func TestGatherVisualEvidenceCancellationAbortsRun(t *testing.T) {
	candidates := []model.CandidateScene{
		candidate(1, 0.9, 0, 2*time.Second),
		candidate(2, 0.8, 4*time.Second, 6*time.Second),
	}
	keyframes := scenes.SelectKeyframes(candidates, 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	evidence, err := scenes.GatherVisualEvidence(ctx, scenes.ScheduleConfig{},
		"gs://bucket/video.mp4", &fakeExtractor{delay: 50 * time.Millisecond}, &fakeClassifier{}, keyframes)

	assert.Nil(t, evidence)
	assert.ErrorIs(t, err, scenes.ErrRunCancelled)
}

func TestGatherVisualEvidenceBoundsConcurrency(t *testing.T) {
	var candidates []model.CandidateScene
	for i := 0; i < 8; i++ {
		start := time.Duration(i*4) * time.Second
		candidates = append(candidates, candidate(i+1, 0.9, start, start+2*time.Second))
	}
	keyframes := scenes.SelectKeyframes(candidates, 8)
	extractor := &fakeExtractor{delay: 10 * time.Millisecond}

	_, err := scenes.GatherVisualEvidence(context.Background(), scenes.ScheduleConfig{Workers: 2},
		"gs://bucket/video.mp4", extractor, &fakeClassifier{}, keyframes)

	assert.NoError(t, err)
	assert.LessOrEqual(t, extractor.peak, int32(2))
}

func TestGatherVisualEvidenceEmptySchedule(t *testing.T) {
	evidence, err := scenes.GatherVisualEvidence(context.Background(), scenes.ScheduleConfig{},
		"gs://bucket/video.mp4", &fakeExtractor{}, &fakeClassifier{}, nil)

	assert.NoError(t, err)
	assert.Empty(t, evidence.Keyframes)
	assert.Empty(t, evidence.Failures)
}
