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

package commands

import (
	"fmt"
	"log/slog"

	"cloud.google.com/go/bigquery"

	"github.com/Kondomino/kondo-movie/internal/core/cor"
	"github.com/Kondomino/kondo-movie/internal/core/model"
)

// ScenePersistToBigQuery streams the run's scene records into the scene
// table. The streaming inserter maps struct fields to columns via the
// bigquery tags on model.SceneRecord.
type ScenePersistToBigQuery struct {
	cor.BaseCommand
	client  *bigquery.Client
	dataset string
	table   string
}

func NewScenePersistToBigQuery(name string, client *bigquery.Client, dataset string, table string) *ScenePersistToBigQuery {
	return &ScenePersistToBigQuery{
		BaseCommand: *cor.NewBaseCommand(name),
		client:      client,
		dataset:     dataset,
		table:       table,
	}
}

func (s *ScenePersistToBigQuery) Execute(context cor.Context) {
	records := context.Get(s.GetInputParam()).([]*model.SceneRecord)
	if len(records) == 0 {
		// An empty timeline is a valid outcome; there is just nothing to
		// store.
		s.GetSuccessCounter().Add(context.GetContext(), 1)
		context.Add(s.GetOutputParam(), records)
		return
	}

	inserter := s.client.Dataset(s.dataset).Table(s.table).Inserter()
	if err := inserter.Put(context.GetContext(), records); err != nil {
		s.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(s.GetName(), fmt.Errorf("bigquery insert failed for run %s: %w", records[0].RunID, err))
		return
	}

	s.GetSuccessCounter().Add(context.GetContext(), 1)
	slog.Info("scene timeline persisted",
		"run_id", records[0].RunID,
		"video", records[0].VideoURI,
		"scenes", len(records))
	context.Add(s.GetOutputParam(), records)
}
