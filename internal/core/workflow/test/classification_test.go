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

// This file exercises the full triggered classification workflow end to
// end: a simulated GCS notification goes in, and an ordered scene timeline
// comes out of the annotate, filter, consolidate, keyframe, resolve, and
// persist sequence. The test video must already exist in the configured
// input bucket.
package workflow_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/codes"

	"github.com/Kondomino/kondo-movie/internal/core/commands"
	"github.com/Kondomino/kondo-movie/internal/core/cor"
	"github.com/Kondomino/kondo-movie/internal/core/model"
	"github.com/Kondomino/kondo-movie/internal/core/workflow"
	test "github.com/Kondomino/kondo-movie/internal/testutil"
)

func TestTriggeredClassificationChain(t *testing.T) {
	traceCtx, span := tracer.Start(ctx, "scene-classification-test")
	defer span.End()

	classification, err := workflow.NewTriggeredClassificationWorkflow(config, cloudClients, "")
	test.HandleErr(err, t)

	chainCtx := cor.NewBaseContext()
	defer chainCtx.Close()
	chainCtx.SetContext(traceCtx)
	chainCtx.Add(cor.CtxIn, test.GetTestVideoMessageText())

	classification.Execute(chainCtx)

	for k, err := range chainCtx.GetErrors() {
		fmt.Printf("Error: (%s): %v\n", k, err)
	}
	if chainCtx.HasErrors() {
		span.SetStatus(codes.Error, "failed to execute classification test")
	}
	assert.False(t, chainCtx.HasErrors())
	span.SetStatus(codes.Ok, "passed - scene classification test")

	// The timeline invariants hold regardless of what the video contains:
	// ordered, non-overlapping scenes with populated provenance.
	final, ok := chainCtx.Get(commands.GetFinalScenesName()).([]model.FinalScene)
	assert.True(t, ok)
	var prevEnd time.Duration
	for _, scene := range final {
		assert.True(t, scene.Start >= prevEnd)
		assert.True(t, scene.End > scene.Start)
		assert.NotEmpty(t, scene.Category)
		assert.NotEmpty(t, scene.Provenance)
		prevEnd = scene.End
	}

	summary, ok := chainCtx.Get(commands.GetRunSummaryName()).(*model.RunSummary)
	assert.True(t, ok)
	assert.NotEmpty(t, summary.RunID)
	logger.Info("classification summary",
		"run_id", summary.RunID,
		"labels_received", summary.LabelsReceived,
		"candidate_scenes", summary.CandidateScenes,
		"final_scenes", summary.FinalScenes)
}

func TestTriggeredClassificationRejectsNonVideo(t *testing.T) {
	traceCtx, span := tracer.Start(ctx, "scene-classification-reject-test")
	defer span.End()

	classification, err := workflow.NewTriggeredClassificationWorkflow(config, cloudClients, "")
	test.HandleErr(err, t)

	chainCtx := cor.NewBaseContext()
	defer chainCtx.Close()
	chainCtx.SetContext(traceCtx)
	chainCtx.Add(cor.CtxIn, test.GetTestNonVideoMessageText())

	classification.Execute(chainCtx)

	assert.True(t, chainCtx.HasErrors())
	assert.Nil(t, chainCtx.Get(commands.GetFinalScenesName()))
	span.SetStatus(codes.Ok, "passed - non-video rejection test")
}
