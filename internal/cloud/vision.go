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

// This file implements the default visual classifier on the Vision API.
// Keyframes are local files at this point in the pipeline, so the image
// bytes are sent inline rather than via a GCS URI.
package cloud

import (
	"context"
	"fmt"
	"os"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"

	"github.com/Kondomino/kondo-movie/internal/core/model"
)

// DefaultVisionMaxResults caps how many labels a single keyframe request
// returns when the config does not set one.
const DefaultVisionMaxResults = 20

// DefaultVisionRateLimit is the sustained requests-per-second budget for
// the Vision classifier.
const DefaultVisionRateLimit = 5

// VisionVisualClassifier implements scenes.VisualClassifier with Vision API
// label detection.
type VisionVisualClassifier struct {
	client     *vision.ImageAnnotatorClient
	maxResults int32
}

func NewVisionVisualClassifier(client *vision.ImageAnnotatorClient, cfg Vision) *VisionVisualClassifier {
	maxResults := int32(cfg.MaxResults)
	if maxResults <= 0 {
		maxResults = DefaultVisionMaxResults
	}
	return &VisionVisualClassifier{client: client, maxResults: maxResults}
}

// Classify reads the keyframe file and runs label detection on it,
// returning the labels in API order (descending score).
func (c *VisionVisualClassifier) Classify(ctx context.Context, imageRef string) ([]model.VisualLabel, error) {
	content, err := os.ReadFile(imageRef)
	if err != nil {
		return nil, fmt.Errorf("read keyframe %s: %w", imageRef, err)
	}

	resp, err := c.client.BatchAnnotateImages(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: content},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_LABEL_DETECTION, MaxResults: c.maxResults},
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("vision label detection for %s: %w", imageRef, err)
	}
	if len(resp.GetResponses()) == 0 {
		return nil, fmt.Errorf("vision label detection for %s: empty response", imageRef)
	}
	annotated := resp.GetResponses()[0]
	if status := annotated.GetError(); status != nil {
		return nil, fmt.Errorf("vision label detection for %s: %s", imageRef, status.GetMessage())
	}

	labels := make([]model.VisualLabel, 0, len(annotated.GetLabelAnnotations()))
	for _, annotation := range annotated.GetLabelAnnotations() {
		labels = append(labels, model.VisualLabel{
			Name:       annotation.GetDescription(),
			Confidence: float64(annotation.GetScore()),
		})
	}
	return labels, nil
}
