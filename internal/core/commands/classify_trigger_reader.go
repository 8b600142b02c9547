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

// Package commands provides the pipeline steps of the scene classification
// workflow as chain-of-responsibility commands. This file defines the entry
// command for runs triggered by a GCS upload: it parses the Pub/Sub
// notification into the minimal object reference the rest of the chain
// works with.
package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Kondomino/kondo-movie/internal/cloud"
	"github.com/Kondomino/kondo-movie/internal/core/cor"
)

// ClassifyTriggerReader parses a GCS object-finalize notification into a
// cloud.GCSObject and rejects non-video uploads before any cloud call is
// made.
type ClassifyTriggerReader struct {
	cor.BaseCommand
}

func NewClassifyTriggerReader(name string) *ClassifyTriggerReader {
	return &ClassifyTriggerReader{BaseCommand: *cor.NewBaseCommand(name)}
}

// Execute unmarshals the notification JSON from the context input and
// publishes the simplified object reference both under the well-known GCS
// object key and as the chain output.
func (c *ClassifyTriggerReader) Execute(context cor.Context) {
	in := context.Get(c.GetInputParam()).(string)

	var out cloud.GCSPubSubNotification
	if err := json.Unmarshal([]byte(in), &out); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to unmarshal GCS notification: %w", err))
		return
	}

	if !strings.HasPrefix(out.ContentType, "video/") {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("object gs://%s/%s is %q, not a video", out.Bucket, out.Name, out.ContentType))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	msg := &cloud.GCSObject{Bucket: out.Bucket, Name: out.Name, MIMEType: out.ContentType}
	context.Add(cloud.GetGCSObjectName(), msg)
	context.Add(c.GetOutputParam(), msg)
}
