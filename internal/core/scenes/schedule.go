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

package scenes

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Kondomino/kondo-movie/internal/core/model"
)

// Defaults for keyframe scheduling and visual evidence collection.
const (
	DefaultKeyframeBudget = 10
	DefaultWorkers        = 5
	DefaultCallTimeout    = 30 * time.Second
)

// KeyframeExtractor produces a single still image from a video at a given
// timestamp and returns a reference to it (a local file path in this
// implementation). Implementations live in the cloud package; tests inject
// fakes.
type KeyframeExtractor interface {
	Extract(ctx context.Context, videoRef string, at time.Duration) (string, error)
}

// VisualClassifier labels a single keyframe image.
type VisualClassifier interface {
	Classify(ctx context.Context, imageRef string) ([]model.VisualLabel, error)
}

// ScheduleConfig tunes visual evidence collection. Zero fields fall back to
// the package defaults.
type ScheduleConfig struct {
	// Budget caps how many scenes receive a keyframe per run.
	Budget int
	// Workers bounds how many keyframes are in flight at once.
	Workers int
	// CallTimeout bounds each extract-and-classify pair.
	CallTimeout time.Duration
}

func (c ScheduleConfig) withDefaults() ScheduleConfig {
	if c.Budget <= 0 {
		c.Budget = DefaultKeyframeBudget
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = DefaultCallTimeout
	}
	return c
}

// SelectKeyframes ranks candidate scenes by aggregate confidence (ties go
// to the earlier scene) and schedules one midpoint keyframe for each of the
// top scenes within the budget. Scenes outside the budget simply get no
// visual evidence; they are not errors.
//
// The returned keyframes are ordered by scene start so the schedule is
// stable for identical input.
func SelectKeyframes(candidates []model.CandidateScene, budget int) []model.Keyframe {
	if budget <= 0 {
		budget = DefaultKeyframeBudget
	}
	ranked := make([]model.CandidateScene, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].AggregateConfidence != ranked[j].AggregateConfidence {
			return ranked[i].AggregateConfidence > ranked[j].AggregateConfidence
		}
		return ranked[i].Start < ranked[j].Start
	})
	if len(ranked) > budget {
		ranked = ranked[:budget]
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Start < ranked[j].Start })

	out := make([]model.Keyframe, 0, len(ranked))
	for i := range ranked {
		out = append(out, model.Keyframe{SceneID: ranked[i].ID, Timestamp: ranked[i].Midpoint()})
	}
	return out
}

// VisualEvidence is the joined result of a visual evidence pass: the
// keyframes that were actually extracted, the labels gathered per scene,
// and the per-scene failure reasons for calls that did not succeed.
type VisualEvidence struct {
	Keyframes []model.Keyframe
	Labels    map[string][]model.VisualLabel
	Failures  map[string]string
}

// visualResult carries one scene's outcome from a worker back to the join.
type visualResult struct {
	keyframe model.Keyframe
	labels   []model.VisualLabel
	err      error
}

// GatherVisualEvidence runs the scheduled keyframes through the extractor
// and classifier with a bounded worker pool. Each keyframe gets its own
// timeout; a failed extract or classify call degrades only that scene,
// which simply ends up with no visual labels and a recorded failure reason.
//
// Cancellation of the parent context is different: the whole run aborts
// with ErrRunCancelled and partial results are discarded, since a timeline
// built from an arbitrary prefix of the schedule would be misleading.
//
// All workers are joined before returning, so the caller can hand the
// evidence to the resolver without further synchronization.
func GatherVisualEvidence(ctx context.Context, cfg ScheduleConfig, videoRef string, extractor KeyframeExtractor, classifier VisualClassifier, keyframes []model.Keyframe) (*VisualEvidence, error) {
	cfg = cfg.withDefaults()

	evidence := &VisualEvidence{
		Keyframes: make([]model.Keyframe, 0, len(keyframes)),
		Labels:    make(map[string][]model.VisualLabel, len(keyframes)),
		Failures:  make(map[string]string),
	}
	if len(keyframes) == 0 {
		return evidence, nil
	}

	jobs := make(chan model.Keyframe, len(keyframes))
	results := make(chan visualResult, len(keyframes))

	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for kf := range jobs {
				results <- gatherOne(ctx, cfg.CallTimeout, videoRef, extractor, classifier, kf)
			}
		}()
	}
	for _, kf := range keyframes {
		jobs <- kf
	}
	close(jobs)
	wg.Wait()
	close(results)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("visual evidence pass aborted: %w", ErrRunCancelled)
	}

	collected := make([]visualResult, 0, len(keyframes))
	for res := range results {
		collected = append(collected, res)
	}
	// Stable order regardless of worker completion order.
	sort.Slice(collected, func(i, j int) bool {
		return collected[i].keyframe.Timestamp < collected[j].keyframe.Timestamp
	})
	for _, res := range collected {
		if res.err != nil {
			evidence.Failures[res.keyframe.SceneID] = res.err.Error()
			continue
		}
		evidence.Keyframes = append(evidence.Keyframes, res.keyframe)
		evidence.Labels[res.keyframe.SceneID] = res.labels
	}
	return evidence, nil
}

// gatherOne extracts and classifies a single keyframe under its own
// timeout.
func gatherOne(ctx context.Context, timeout time.Duration, videoRef string, extractor KeyframeExtractor, classifier VisualClassifier, kf model.Keyframe) visualResult {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	imageRef, err := extractor.Extract(callCtx, videoRef, kf.Timestamp)
	if err != nil {
		return visualResult{keyframe: kf, err: fmt.Errorf("extract keyframe at %s: %w", kf.Timestamp, err)}
	}
	kf.ImageRef = imageRef

	labels, err := classifier.Classify(callCtx, imageRef)
	if err != nil {
		return visualResult{keyframe: kf, err: fmt.Errorf("classify keyframe %s: %w", imageRef, err)}
	}
	return visualResult{keyframe: kf, labels: labels}
}
