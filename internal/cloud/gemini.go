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

// This file implements the alternate visual classifier on a Gemini
// multimodal model. The keyframe bytes go inline with a prompt that carries
// a few-shot example of the expected JSON, so the response parses straight
// into visual labels.
package cloud

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/h2non/filetype"
	"google.golang.org/genai"

	"github.com/Kondomino/kondo-movie/internal/core/model"
)

// DefaultSafetySettings disables content blocking for all harm categories.
// The inputs are real-estate walkthrough frames from trusted buckets.
var DefaultSafetySettings = []*genai.SafetySetting{
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
}

const geminiClassifyPrompt = `List the objects and room types visible in this image as a JSON array of
{"name": string, "confidence": number} objects, confidence in [0,1],
strongest first. Example output:
%s
Return only the JSON array.`

// GeminiVisualClassifier implements scenes.VisualClassifier on a Gemini
// multimodal model.
type GeminiVisualClassifier struct {
	models    *genai.Models
	modelName string
	config    *genai.GenerateContentConfig
}

// NewGeminiVisualClassifier builds the classifier from an initialized genai
// client and the model's config section.
func NewGeminiVisualClassifier(client *genai.Client, cfg GeminiModel) *GeminiVisualClassifier {
	generateConfig := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](cfg.Temperature),
		TopP:             genai.Ptr[float32](cfg.TopP),
		TopK:             genai.Ptr[float32](cfg.TopK),
		MaxOutputTokens:  cfg.MaxTokens,
		SafetySettings:   DefaultSafetySettings,
		ResponseMIMEType: cfg.OutputFormat,
	}
	if cfg.SystemInstructions != "" {
		generateConfig.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: cfg.SystemInstructions}},
		}
	}
	return &GeminiVisualClassifier{
		models:    client.Models,
		modelName: cfg.Model,
		config:    generateConfig,
	}
}

// Classify sends the keyframe bytes and the labeling prompt to the model
// and parses its JSON response.
func (c *GeminiVisualClassifier) Classify(ctx context.Context, imageRef string) ([]model.VisualLabel, error) {
	imageBytes, err := os.ReadFile(imageRef)
	if err != nil {
		return nil, fmt.Errorf("read keyframe %s: %w", imageRef, err)
	}
	mimeType := "image/jpeg"
	if kind, err := filetype.Match(imageBytes); err == nil && kind.MIME.Value != "" {
		mimeType = kind.MIME.Value
	}

	example, _ := json.Marshal(model.GetExampleVisualLabels())
	content := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{Text: fmt.Sprintf(geminiClassifyPrompt, string(example))},
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: imageBytes}},
		},
	}}

	resp, err := c.models.GenerateContent(ctx, c.modelName, content, c.config)
	if err != nil {
		return nil, fmt.Errorf("gemini classify %s: %w", imageRef, err)
	}

	var text strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			text.WriteString(part.Text)
		}
	}
	payload := strings.TrimSpace(text.String())
	payload = strings.TrimPrefix(payload, "```json")
	payload = strings.TrimSuffix(payload, "```")

	var labels []model.VisualLabel
	if err := json.Unmarshal([]byte(payload), &labels); err != nil {
		return nil, fmt.Errorf("gemini classify %s: parse response: %w", imageRef, err)
	}
	return labels, nil
}
