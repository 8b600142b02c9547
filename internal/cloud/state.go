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

// This file initializes and holds every Google Cloud client the engine
// talks to. NewCloudServiceClients runs once at startup and produces a
// single ServiceClients container that the workflows, services, and API
// layer share.
package cloud

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	videointelligence "cloud.google.com/go/videointelligence/apiv1"
	vision "cloud.google.com/go/vision/v2/apiv1"
	"google.golang.org/genai"

	"github.com/Kondomino/kondo-movie/internal/core/scenes"
)

// ServiceClients is the dependency container for all external connections:
// raw API clients plus the configured collaborator implementations the
// pipeline consumes (label source, visual classifiers, listeners).
type ServiceClients struct {
	StorageClient  *storage.Client
	PubsubClient   *pubsub.Client
	GenAIClient    *genai.Client
	BigQueryClient *bigquery.Client
	IAMClient      *credentials.IamCredentialsClient
	VideoClient    *videointelligence.Client
	VisionClient   *vision.ImageAnnotatorClient

	PubSubListeners map[string]*PubSubListener
	LabelSource     scenes.LabelSource
	// Classifiers holds the configured visual classifiers keyed by logical
	// name ("vision" plus one entry per configured Gemini model), each
	// already wrapped in its quota decorator.
	Classifiers map[string]scenes.VisualClassifier
}

// Close releases all client connections. Useful in tests and controlled
// shutdowns; in the server the root context teardown does most of this.
func (c *ServiceClients) Close() {
	_ = c.StorageClient.Close()
	_ = c.PubsubClient.Close()
	_ = c.BigQueryClient.Close()
	_ = c.IAMClient.Close()
	_ = c.VideoClient.Close()
	_ = c.VisionClient.Close()
}

// Classifier returns the visual classifier selected by the classification
// config, or an error naming the missing key.
func (c *ServiceClients) Classifier(name string) (scenes.VisualClassifier, error) {
	if name == "" {
		name = "vision"
	}
	classifier, ok := c.Classifiers[name]
	if !ok {
		return nil, fmt.Errorf("no visual classifier configured under %q", name)
	}
	return classifier, nil
}

// NewCloudServiceClients builds every client and collaborator from the
// configuration. Any single failure aborts startup; a half-connected engine
// is not worth running.
//
// Inputs:
//   - ctx: the root context governing client lifecycles.
//   - config: the loaded application configuration.
//
// Outputs:
//   - *ServiceClients: the fully initialized container.
//   - error: the first client initialization failure.
func NewCloudServiceClients(ctx context.Context, config *Config) (clients *ServiceClients, err error) {
	sc, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}

	pc, err := pubsub.NewClient(ctx, config.Application.GoogleProjectId)
	if err != nil {
		return nil, fmt.Errorf("pubsub client: %w", err)
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  config.Application.GoogleProjectId,
		Location: config.Application.GoogleLocation,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}

	bc, err := bigquery.NewClient(ctx, config.Application.GoogleProjectId)
	if err != nil {
		return nil, fmt.Errorf("bigquery client: %w", err)
	}

	ic, err := credentials.NewIamCredentialsClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("iam credentials client: %w", err)
	}

	vc, err := videointelligence.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("video intelligence client: %w", err)
	}

	vsc, err := vision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}

	// Listeners are created without commands; the workflows attach them
	// once the chains are assembled.
	subscriptions := make(map[string]*PubSubListener)
	for subKey := range config.TopicSubscriptions {
		values := config.TopicSubscriptions[subKey]
		actual, err := NewPubSubListener(pc, values.Name, nil)
		if err != nil {
			return nil, err
		}
		subscriptions[subKey] = actual
	}

	classifiers := make(map[string]scenes.VisualClassifier)
	classifiers["vision"] = NewQuotaAwareClassifier(
		NewVisionVisualClassifier(vsc, config.Vision), DefaultVisionRateLimit)
	for name, modelCfg := range config.GeminiModels {
		classifiers[name] = NewQuotaAwareClassifier(
			NewGeminiVisualClassifier(gc, modelCfg), modelCfg.RateLimit)
	}

	clients = &ServiceClients{
		StorageClient:   sc,
		PubsubClient:    pc,
		GenAIClient:     gc,
		BigQueryClient:  bc,
		IAMClient:       ic,
		VideoClient:     vc,
		VisionClient:    vsc,
		PubSubListeners: subscriptions,
		LabelSource:     NewVideoIntelligenceLabelSource(vc, config.VideoIntelligence),
		Classifiers:     classifiers,
	}
	return clients, nil
}
