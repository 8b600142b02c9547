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

// This file defines the command that downloads the source video from GCS to
// a local temporary file. Keyframe extraction shells out to ffmpeg, which
// needs a local path; the annotate call upstream works on the gs:// URI and
// does not.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"cloud.google.com/go/storage"

	"github.com/Kondomino/kondo-movie/internal/cloud"
	"github.com/Kondomino/kondo-movie/internal/core/cor"
)

// GetLocalVideoName returns the context key holding the local path of the
// downloaded source video.
func GetLocalVideoName() string {
	return "__LOCAL_VIDEO__"
}

// GCSToTempFile streams a GCS object into a local temporary file and
// registers it for cleanup at the end of the run.
type GCSToTempFile struct {
	cor.BaseCommand
	client         *storage.Client
	tempFilePrefix string
}

func NewGCSToTempFile(name string, client *storage.Client, tempFilePrefix string) *GCSToTempFile {
	return &GCSToTempFile{
		BaseCommand:    *cor.NewBaseCommand(name),
		client:         client,
		tempFilePrefix: tempFilePrefix,
	}
}

func (c *GCSToTempFile) Execute(context cor.Context) {
	msg := context.Get(c.GetInputParam()).(*cloud.GCSObject)

	obj := c.client.Bucket(msg.Bucket).Object(msg.Name)
	reader, err := obj.NewReader(context.GetContext())
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to create GCS reader for gs://%s/%s: %w", msg.Bucket, msg.Name, err))
		return
	}
	defer func(reader *storage.Reader) {
		if err := reader.Close(); err != nil {
			slog.Warn("failed to close GCS reader", "error", err)
		}
	}(reader)

	tempFile, err := os.CreateTemp("", c.tempFilePrefix)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("could not create temp file: %w", err))
		return
	}

	written, err := io.Copy(tempFile, reader)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to copy gs://%s/%s after %d bytes: %w", msg.Bucket, msg.Name, written, err))
		_ = tempFile.Close()
		return
	}
	_ = tempFile.Close()

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	slog.Info("downloaded source video",
		"object", msg.URI(),
		"local", tempFile.Name(),
		"bytes", written)
	context.AddTempFile(tempFile.Name())
	context.Add(GetLocalVideoName(), tempFile.Name())
	context.Add(c.GetOutputParam(), tempFile.Name())
}
