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

// Package services holds the business logic behind the API surface. This
// file defines the SceneService: synchronous classification runs, stored
// timeline retrieval from BigQuery, and signed URLs for the keyframe audit
// images.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/Kondomino/kondo-movie/internal/cloud"
	"github.com/Kondomino/kondo-movie/internal/core/commands"
	"github.com/Kondomino/kondo-movie/internal/core/cor"
	"github.com/Kondomino/kondo-movie/internal/core/model"
	"github.com/Kondomino/kondo-movie/internal/core/workflow"
)

// ClassificationResult is what a synchronous run hands back to the caller:
// the resolved timeline in record form plus the run diagnostics.
type ClassificationResult struct {
	Scenes  []*model.SceneRecord `json:"scenes"`
	Summary *model.RunSummary    `json:"summary"`
}

// SceneService runs classification pipelines on demand and serves the
// stored results.
type SceneService struct {
	BigqueryClient *bigquery.Client
	StorageClient  *storage.Client
	IAMClient      *credentials.IamCredentialsClient
	SignerEmail    string
	DatasetName    string
	SceneTable     string
	Config         *cloud.Config
	ServiceClients *cloud.ServiceClients
}

// GetFQN returns the queryable fully qualified name of the scene table,
// with the project separator rewritten for standard SQL.
func (s *SceneService) GetFQN() string {
	fqn := s.BigqueryClient.Dataset(s.DatasetName).Table(s.SceneTable).FullyQualifiedName()
	return strings.Replace(fqn, ":", ".", -1)
}

// Classify runs the full classification pipeline synchronously for one
// video object and returns the resulting timeline. classifierName selects
// the visual classifier; empty uses the configured default. The pipeline
// persists the run to BigQuery as a side effect, same as the triggered
// path.
func (s *SceneService) Classify(ctx context.Context, bucket string, object string, classifierName string) (*ClassificationResult, error) {
	pipeline, err := workflow.NewSceneClassificationWorkflow(s.Config, s.ServiceClients, classifierName)
	if err != nil {
		return nil, err
	}

	chainCtx := cor.NewBaseContext()
	defer chainCtx.Close()
	chainCtx.SetContext(ctx)
	chainCtx.Add(cor.CtxIn, &cloud.GCSObject{Bucket: bucket, Name: object, MIMEType: "video/mp4"})

	pipeline.Execute(chainCtx)

	if chainCtx.HasErrors() {
		for step, stepErr := range chainCtx.GetErrors() {
			return nil, fmt.Errorf("classification failed at %s: %w", step, stepErr)
		}
	}

	records, _ := chainCtx.Get(cor.CtxOut).([]*model.SceneRecord)
	summary, _ := chainCtx.Get(commands.GetRunSummaryName()).(*model.RunSummary)
	return &ClassificationResult{Scenes: records, Summary: summary}, nil
}

// GetScenesByRun retrieves one run's stored timeline in playback order.
func (s *SceneService) GetScenesByRun(ctx context.Context, runID string) ([]*model.SceneRecord, error) {
	queryText := fmt.Sprintf(QryScenesByRun, s.GetFQN(), runID)
	return s.readScenes(ctx, queryText)
}

// GetScenesByVideo retrieves the most recent stored timeline for a video
// URI.
func (s *SceneService) GetScenesByVideo(ctx context.Context, videoURI string) ([]*model.SceneRecord, error) {
	fqn := s.GetFQN()
	queryText := fmt.Sprintf(QryScenesByVideo, fqn, videoURI, fqn, videoURI)
	return s.readScenes(ctx, queryText)
}

// GetRuns lists the run IDs recorded for a video URI.
func (s *SceneService) GetRuns(ctx context.Context, videoURI string) ([]string, error) {
	queryText := fmt.Sprintf(QryRunsByVideo, s.GetFQN(), videoURI)
	itr, err := s.BigqueryClient.Query(queryText).Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	out := make([]string, 0)
	for {
		var row struct {
			RunID string `bigquery:"run_id"`
		}
		err := itr.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate runs: %w", err)
		}
		out = append(out, row.RunID)
	}
	return out, nil
}

// CategoryCount is one row of the per-category scene breakdown.
type CategoryCount struct {
	Category   string `bigquery:"category" json:"category"`
	SceneCount int64  `bigquery:"scene_count" json:"scene_count"`
}

// GetCategoryCounts aggregates the stored scene counts per category for a
// video URI across all of its runs.
func (s *SceneService) GetCategoryCounts(ctx context.Context, videoURI string) ([]*CategoryCount, error) {
	queryText := fmt.Sprintf(QryCategoryCounts, s.GetFQN(), videoURI)
	itr, err := s.BigqueryClient.Query(queryText).Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count categories: %w", err)
	}
	out := make([]*CategoryCount, 0)
	for {
		row := &CategoryCount{}
		err := itr.Next(row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate category counts: %w", err)
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *SceneService) readScenes(ctx context.Context, queryText string) ([]*model.SceneRecord, error) {
	itr, err := s.BigqueryClient.Query(queryText).Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenes: %w", err)
	}
	out := make([]*model.SceneRecord, 0)
	for {
		record := &model.SceneRecord{}
		err := itr.Next(record)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate scenes: %w", err)
		}
		out = append(out, record)
	}
	return out, nil
}

// GenerateSignedURL creates a time-limited GET URL for a stored object,
// used to serve keyframe audit images to callers without exposing the
// bucket. Accepts gs:// URIs.
func (s *SceneService) GenerateSignedURL(gcsURI string, expires time.Duration) (string, error) {
	const prefix = "gs://"
	if !strings.HasPrefix(gcsURI, prefix) {
		return "", fmt.Errorf("invalid GCS URI format: %s", gcsURI)
	}
	path := strings.TrimPrefix(gcsURI, prefix)
	parts := strings.SplitN(path, "/", 2)
	if len(parts) < 2 {
		return "", fmt.Errorf("invalid GCS URI: unable to determine bucket and object from %s", gcsURI)
	}
	bucketName := parts[0]
	objectName := parts[1]

	opts := &storage.SignedURLOptions{
		Scheme:         storage.SigningSchemeV4,
		Method:         "GET",
		Expires:        time.Now().Add(expires),
		GoogleAccessID: s.SignerEmail,
	}
	u, err := s.StorageClient.Bucket(bucketName).SignedURL(objectName, opts)
	if err != nil {
		return "", fmt.Errorf("Bucket(%q).Object(%q).SignedURL: %w", bucketName, objectName, err)
	}
	return u, nil
}
