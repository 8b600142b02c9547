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

// Package services_test contains the integration test for the SceneService
// read path. It queries the live scene table configured in the test TOML
// files, so it needs application default credentials and at least one
// stored classification run.
package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/zeebo/assert"

	"github.com/Kondomino/kondo-movie/internal/cloud"
	"github.com/Kondomino/kondo-movie/internal/core/services"
	test "github.com/Kondomino/kondo-movie/internal/testutil"
)

func TestSceneServiceReads(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config := test.GetConfig()

	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	test.HandleErr(err, t)
	defer cloudClients.Close()

	sceneService := &services.SceneService{
		BigqueryClient: cloudClients.BigQueryClient,
		StorageClient:  cloudClients.StorageClient,
		IAMClient:      cloudClients.IAMClient,
		SignerEmail:    config.Application.SignerServiceAccountEmail,
		DatasetName:    config.BigQueryDataSource.DatasetName,
		SceneTable:     config.BigQueryDataSource.SceneTable,
		Config:         config,
		ServiceClients: cloudClients,
	}

	videoURI := "gs://kondo-video-input/test-house-tour-001.mp4"

	runs, err := sceneService.GetRuns(ctx, videoURI)
	assert.Nil(t, err)

	scenes, err := sceneService.GetScenesByVideo(ctx, videoURI)
	assert.Nil(t, err)
	for _, scene := range scenes {
		assert.True(t, scene.End > scene.Start)
		fmt.Printf("%s [%0.1fs - %0.1fs] %s (%s)\n", scene.SceneID, scene.Start, scene.End, scene.Category, scene.Provenance)
	}

	counts, err := sceneService.GetCategoryCounts(ctx, videoURI)
	assert.Nil(t, err)
	for _, count := range counts {
		fmt.Printf("%s: %d\n", count.Category, count.SceneCount)
	}

	fmt.Printf("runs recorded: %d\n", len(runs))
}
