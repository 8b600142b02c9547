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

package main

import (
	"context"
	"log"

	"github.com/Kondomino/kondo-movie/internal/cloud"
	"github.com/Kondomino/kondo-movie/internal/core/workflow"
)

// SetupListeners attaches the triggered classification workflow to the
// video input subscription and starts receiving. Uploads to the input
// bucket flow through Pub/Sub into the full classification chain.
func SetupListeners(config *cloud.Config, cloudClients *cloud.ServiceClients, ctx context.Context) {
	classification, err := workflow.NewTriggeredClassificationWorkflow(config, cloudClients, "")
	if err != nil {
		log.Fatalf("failed to build classification workflow: %v\n", err)
	}
	cloudClients.PubSubListeners["VideoInputTopic"].SetCommand(classification)
	cloudClients.PubSubListeners["VideoInputTopic"].Listen(ctx)
}
