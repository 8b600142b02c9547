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

// This file centralizes the BigQuery SQL used by the scene service. The
// queries use fmt.Sprintf placeholders filled in at runtime with the fully
// qualified table name and the lookup values.
package services

const (
	// QryScenesByRun returns one classification run's full timeline in
	// playback order.
	QryScenesByRun = "SELECT * FROM `%s` WHERE run_id = '%s' ORDER BY start_seconds asc"

	// QryScenesByVideo returns the most recent run's timeline for a video.
	// Run IDs are UUIDs, so recency has to come from the created_at stamp on
	// the records. A plain ORDER BY over all runs would interleave timelines.
	QryScenesByVideo = "SELECT * FROM `%s` WHERE video_uri = '%s' AND run_id = (SELECT run_id FROM `%s` WHERE video_uri = '%s' ORDER BY created_at DESC LIMIT 1) ORDER BY start_seconds asc"

	// QryRunsByVideo lists the distinct run IDs recorded for a video.
	QryRunsByVideo = "SELECT DISTINCT run_id FROM `%s` WHERE video_uri = '%s'"

	// QryCategoryCounts aggregates how many scenes of each category a video's
	// stored runs contain.
	QryCategoryCounts = "SELECT category, COUNT(*) as scene_count FROM `%s` WHERE video_uri = '%s' GROUP BY category ORDER BY scene_count desc"
)
