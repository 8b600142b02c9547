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

// This file defines the keyframe audit upload: every successfully
// classified keyframe is copied to a GCS bucket so operators can see the
// exact frame the classifier saw. Upload failures are logged and do not
// fail the run; the audit trail is best effort.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/h2non/filetype"

	"github.com/Kondomino/kondo-movie/internal/core/cor"
	"github.com/Kondomino/kondo-movie/internal/core/scenes"
)

// GetKeyframeAuditName returns the context key holding the map of scene ID
// to audit object path.
func GetKeyframeAuditName() string {
	return "__KEYFRAME_AUDIT__"
}

// KeyframeUpload copies extracted keyframes to the audit bucket. Object
// names carry the run ID and scene ID plus a random suffix so repeated runs
// never overwrite each other's evidence.
type KeyframeUpload struct {
	cor.BaseCommand
	client *storage.Client
	bucket string
}

func NewKeyframeUpload(name string, client *storage.Client, bucket string) *KeyframeUpload {
	return &KeyframeUpload{BaseCommand: *cor.NewBaseCommand(name), client: client, bucket: bucket}
}

func (c *KeyframeUpload) Execute(context cor.Context) {
	evidence := context.Get(c.GetInputParam()).(*scenes.VisualEvidence)
	runID, _ := context.Get(GetRunIDName()).(string)

	audit := make(map[string]string, len(evidence.Keyframes))
	for _, kf := range evidence.Keyframes {
		objectName := fmt.Sprintf("keyframes/%s/%s-%s.jpg", runID, kf.SceneID, uuid.NewString())
		if err := c.uploadOne(context, kf.ImageRef, objectName); err != nil {
			slog.Warn("keyframe audit upload failed",
				"scene", kf.SceneID,
				"object", objectName,
				"error", err)
			continue
		}
		audit[kf.SceneID] = fmt.Sprintf("gs://%s/%s", c.bucket, objectName)
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetKeyframeAuditName(), audit)
	// Pass the evidence through untouched for the resolver.
	context.Add(c.GetOutputParam(), evidence)
}

func (c *KeyframeUpload) uploadOne(context cor.Context, localPath string, objectName string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open keyframe %s: %w", localPath, err)
	}
	defer func() { _ = file.Close() }()

	head := make([]byte, 261)
	n, _ := io.ReadFull(file, head)
	contentType := "image/jpeg"
	if kind, err := filetype.Match(head[:n]); err == nil && kind.MIME.Value != "" {
		contentType = kind.MIME.Value
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind keyframe %s: %w", localPath, err)
	}

	writer := c.client.Bucket(c.bucket).Object(objectName).NewWriter(context.GetContext())
	writer.ContentType = contentType
	if _, err := io.Copy(writer, file); err != nil {
		_ = writer.Close()
		return fmt.Errorf("copy keyframe to gs://%s/%s: %w", c.bucket, objectName, err)
	}
	return writer.Close()
}
