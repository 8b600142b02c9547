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

// Package test provides shared helpers for the test suite: test-environment
// configuration loading, canned trigger payloads, and in-memory fakes for
// the classification interfaces.
package test

import (
	"log"
	"os"
	"testing"

	"github.com/Kondomino/kondo-movie/internal/cloud"
)

// StateManager caches the loaded configuration so the TOML files are parsed
// once per test run instead of once per test.
type StateManager struct {
	config *cloud.Config
}

var state = &StateManager{}

// HandleErr fails the test when err is non-nil.
func HandleErr(err error, t *testing.T) {
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// GetTestVideoMessageText returns a JSON payload that mimics the GCS
// OBJECT_FINALIZE notification Pub/Sub delivers when a video lands in the
// input bucket. Used to exercise the triggered classification workflow.
func GetTestVideoMessageText() string {
	return `{
  "kind": "storage#object",
  "id": "kondo-video-input/test-house-tour-001.mp4/1756700000000000",
  "selfLink": "https://www.googleapis.com/storage/v1/b/kondo-video-input/o/test-house-tour-001.mp4",
  "name": "test-house-tour-001.mp4",
  "bucket": "kondo-video-input",
  "generation": "1756700000000000",
  "metageneration": "1",
  "contentType": "video/mp4",
  "timeCreated": "2025-08-20T09:15:00.000Z",
  "updated": "2025-08-20T09:15:00.000Z",
  "storageClass": "STANDARD",
  "timeStorageClassUpdated": "2025-08-20T09:15:00.000Z",
  "size": "104857600",
  "md5Hash": "2Qn9yUq4bYBr8M2Y6FQq2g==",
  "mediaLink": "https://storage.googleapis.com/download/storage/v1/b/kondo-video-input/o/test-house-tour-001.mp4?generation=1756700000000000&alt=media",
  "crc32c": "AAXUSQ==",
  "etag": "CICAgIDQ0uqvAxAB"
}`
}

// GetTestNonVideoMessageText returns a notification for a text object. The
// trigger reader must reject it without running the pipeline.
func GetTestNonVideoMessageText() string {
	return `{
  "kind": "storage#object",
  "name": "notes.txt",
  "bucket": "kondo-video-input",
  "contentType": "text/plain",
  "size": "42"
}`
}

// SetupOS points the configuration loader at the test TOML files under
// configs/.
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	err = os.Setenv(cloud.EnvConfigRuntime, "test")
	return err
}

// GetConfig is the singleton accessor for the test configuration.
func GetConfig() *cloud.Config {
	if state.config == nil {
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(&config)
		state.config = config
	}
	return state.config
}
