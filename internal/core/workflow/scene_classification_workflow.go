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

// Package workflow assembles the pipeline commands into the scene
// classification chains. Two entry points share one core chain: the
// Pub/Sub-triggered workflow prepends the notification parser, while the
// synchronous service path feeds a GCS object reference straight into the
// core chain.
package workflow

import (
	"fmt"

	"github.com/Kondomino/kondo-movie/internal/cloud"
	"github.com/Kondomino/kondo-movie/internal/core/commands"
	"github.com/Kondomino/kondo-movie/internal/core/cor"
)

// SceneClassificationWorkflow runs the full classification pipeline for one
// video: temporal annotation, filtering, consolidation, the visual evidence
// pass, hybrid resolution, aggregation, and persistence.
type SceneClassificationWorkflow struct {
	cor.BaseCommand
	config         *cloud.Config
	serviceClients *cloud.ServiceClients
	chain          cor.Chain
}

// Execute runs the underlying chain.
func (w *SceneClassificationWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// initializeChain builds the command sequence. The chain input is a
// *cloud.GCSObject; every later step finds its secondary inputs under the
// well-known context keys its producer registered.
func (w *SceneClassificationWorkflow) initializeChain(classifierName string) error {
	classifier, err := w.serviceClients.Classifier(classifierName)
	if err != nil {
		return err
	}
	taxonomy := w.config.Taxonomy()

	out := cor.NewBaseChain(w.GetName())

	// Temporal half: annotate the whole video, filter the labels, collapse
	// them into candidate scenes.
	out.AddCommand(commands.NewVideoAnnotator("annotate-video", w.serviceClients.LabelSource))
	out.AddCommand(commands.NewLabelFilter("filter-labels", taxonomy))
	out.AddCommand(commands.NewTemporalConsolidator("consolidate-windows", w.config.ConsolidateConfig()))

	// Visual half: pull the source video down for ffmpeg, then run the
	// budgeted keyframe pass. The downloader reads the GCS object from its
	// well-known key since the piped input at this point is the candidate
	// list.
	download := commands.NewGCSToTempFile("download-source-video", w.serviceClients.StorageClient, "source-video-")
	download.InputParamName = cloud.GetGCSObjectName()
	out.AddCommand(download)
	out.AddCommand(commands.NewKeyframeScheduler(
		"gather-visual-evidence",
		w.config.ScheduleConfig(),
		commands.NewFFMpegKeyframeExtractor(w.config.Application.FFMpegPath),
		classifier))
	out.AddCommand(commands.NewKeyframeUpload(
		"upload-keyframe-audit",
		w.serviceClients.StorageClient,
		w.config.Storage.KeyframeAuditBucket))

	// Resolution and output.
	out.AddCommand(commands.NewHybridResolver("resolve-hybrid", taxonomy))
	out.AddCommand(commands.NewSceneAggregator("aggregate-scenes", w.config.AggregateConfig()))
	out.AddCommand(commands.NewScenePersistToBigQuery(
		"write-to-bigquery",
		w.serviceClients.BigQueryClient,
		w.config.BigQueryDataSource.DatasetName,
		w.config.BigQueryDataSource.SceneTable))

	w.chain = out
	return nil
}

// NewSceneClassificationWorkflow builds the core pipeline. classifierName
// selects the visual classifier ("vision" or a configured Gemini model
// key); empty means the config's choice.
func NewSceneClassificationWorkflow(
	config *cloud.Config,
	serviceClients *cloud.ServiceClients,
	classifierName string) (*SceneClassificationWorkflow, error) {

	if classifierName == "" {
		classifierName = config.Classification.Classifier
	}
	pipeline := &SceneClassificationWorkflow{
		BaseCommand:    *cor.NewBaseCommand("scene-classification-pipeline"),
		config:         config,
		serviceClients: serviceClients,
	}
	if err := pipeline.initializeChain(classifierName); err != nil {
		return nil, fmt.Errorf("build classification chain: %w", err)
	}
	return pipeline, nil
}

// NewTriggeredClassificationWorkflow wraps the core pipeline behind the
// notification parser for the Pub/Sub path. Its chain input is the raw
// notification JSON string.
func NewTriggeredClassificationWorkflow(
	config *cloud.Config,
	serviceClients *cloud.ServiceClients,
	classifierName string) (cor.Chain, error) {

	core, err := NewSceneClassificationWorkflow(config, serviceClients, classifierName)
	if err != nil {
		return nil, err
	}
	out := cor.NewBaseChain("triggered-scene-classification")
	out.AddCommand(commands.NewClassifyTriggerReader("read-classify-trigger"))
	out.AddCommand(core)
	return out, nil
}
