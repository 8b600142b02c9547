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

// This file implements the keyframe extractor by shelling out to ffmpeg.
// Seeking before the input (-ss ahead of -i) makes the seek a cheap
// keyframe jump instead of a decode of everything before the timestamp.
package commands

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/Kondomino/kondo-movie/internal/core/scenes"
)

const (
	// DefaultFFMpegPath is used when the config does not locate the binary.
	DefaultFFMpegPath = "ffmpeg"

	// keyframeArgs extracts a single frame at the given offset:
	// -y overwrite, -hide_banner quiet, -ss seek, -i input,
	// -vframes 1 one frame, -q:v 2 high JPEG quality.
	keyframeArgs = "-y -hide_banner -ss %s -i %s -vframes 1 -q:v 2 %s"

	keyframeTempPrefix = "keyframe-"
	commandSeparator   = " "
)

// FFMpegKeyframeExtractor implements scenes.KeyframeExtractor by invoking
// the ffmpeg binary. It is stateless and safe for concurrent use by the
// visual evidence worker pool.
type FFMpegKeyframeExtractor struct {
	commandPath string
}

func NewFFMpegKeyframeExtractor(commandPath string) *FFMpegKeyframeExtractor {
	if commandPath == "" {
		commandPath = DefaultFFMpegPath
	}
	return &FFMpegKeyframeExtractor{commandPath: commandPath}
}

// Extract writes the frame at the given offset of the local video file to a
// temporary JPEG and returns its path. The caller owns the file.
func (e *FFMpegKeyframeExtractor) Extract(ctx context.Context, videoRef string, at time.Duration) (string, error) {
	tempFile, err := os.CreateTemp("", keyframeTempPrefix+"*.jpg")
	if err != nil {
		return "", fmt.Errorf("could not create keyframe temp file: %w", err)
	}
	_ = tempFile.Close()

	offset := fmt.Sprintf("%.3f", at.Seconds())
	args := fmt.Sprintf(keyframeArgs, offset, videoRef, tempFile.Name())
	cmd := exec.CommandContext(ctx, e.commandPath, strings.Split(args, commandSeparator)...)
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		_ = os.Remove(tempFile.Name())
		return "", fmt.Errorf("ffmpeg keyframe at %s from %s: %w", offset, videoRef, err)
	}
	return tempFile.Name(), nil
}

var _ scenes.KeyframeExtractor = (*FFMpegKeyframeExtractor)(nil)
