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

// Package cloud holds the application configuration and the Google Cloud
// collaborators of the classification engine: the Video Intelligence label
// source, the Vision and Gemini visual classifiers, storage helpers, and the
// Pub/Sub listener. This file defines the TOML-backed configuration structs.
//
// Configuration is loaded once at startup (see LoadConfig in utils.go) and
// treated as immutable afterwards.
package cloud

import (
	"time"

	"github.com/Kondomino/kondo-movie/internal/core/scenes"
)

// BigQueryDataSource names the dataset and table the final scene timeline is
// streamed to.
type BigQueryDataSource struct {
	DatasetName string `toml:"dataset"`
	SceneTable  string `toml:"scene_table"`
}

// TopicSubscription configures a single Pub/Sub subscription.
type TopicSubscription struct {
	Name             string `toml:"name"`
	DeadLetterTopic  string `toml:"dead_letter_topic"`
	TimeoutInSeconds int    `toml:"timeout_in_seconds"`
}

// Storage names the GCS buckets the engine touches: where source videos
// arrive and where extracted keyframes are kept for audit.
type Storage struct {
	VideoInputBucket    string `toml:"video_input_bucket"`
	KeyframeAuditBucket string `toml:"keyframe_audit_bucket"`
}

// VideoIntelligence configures the temporal label source.
type VideoIntelligence struct {
	// Model is the label detection model variant, e.g. "builtin/stable".
	Model            string `toml:"model"`
	TimeoutInSeconds int    `toml:"timeout_in_seconds"`
}

// Vision configures the Vision API keyframe classifier.
type Vision struct {
	MaxResults int `toml:"max_results"`
}

// GeminiModel configures the generative visual classifier and its rate
// limit, following the Vertex AI generation parameter set.
type GeminiModel struct {
	Model              string  `toml:"model"`
	SystemInstructions string  `toml:"system_instructions"`
	Temperature        float32 `toml:"temperature"`
	TopP               float32 `toml:"top_p"`
	TopK               float32 `toml:"top_k"`
	MaxTokens          int32   `toml:"max_tokens"`
	OutputFormat       string  `toml:"output_format"`
	RateLimit          int     `toml:"rate_limit"`
}

// Classification carries the tunable knobs and vocabulary tables of the
// pure pipeline. Empty tables fall back to the compiled-in defaults.
type Classification struct {
	SpecificThreshold float64 `toml:"specific_threshold"`
	GenericThreshold  float64 `toml:"generic_threshold"`
	ExcludedThreshold float64 `toml:"excluded_threshold"`
	VisualThreshold   float64 `toml:"visual_threshold"`

	SpecificLabels []string            `toml:"specific_labels"`
	GenericLabels  []string            `toml:"generic_labels"`
	ExcludedLabels []string            `toml:"excluded_labels"`
	Indicators     map[string][]string `toml:"indicators"`

	WindowSeconds float64 `toml:"window_seconds"`
	// GapTolerance follows the consolidation stage's convention: omitted or
	// zero takes the package default, a negative value disables bridging.
	GapTolerance         int    `toml:"gap_tolerance"`
	MinSupportingWindows int    `toml:"min_supporting_windows"`
	AggregatePolicy      string `toml:"aggregate_policy"`

	KeyframeBudget       int     `toml:"keyframe_budget"`
	KeyframeCallTimeout  int     `toml:"keyframe_call_timeout_in_seconds"`
	MergeToleranceSecond float64 `toml:"merge_tolerance_seconds"`
	KeepExcluded         bool    `toml:"keep_excluded"`

	// Classifier selects which visual classifier backs keyframe analysis:
	// "vision" or a key of the GeminiModels map.
	Classifier string `toml:"classifier"`
}

// Config is the root configuration object, loaded from .env.toml plus the
// runtime-specific override file.
type Config struct {
	Application struct {
		Name                      string `toml:"name"`
		GoogleProjectId           string `toml:"google_project_id"`
		GoogleLocation            string `toml:"location"`
		ThreadPoolSize            int    `toml:"thread_pool_size"`
		FFMpegPath                string `toml:"ffmpeg_path"`
		SignerServiceAccountEmail string `toml:"signer_service_account_email"`
	} `toml:"application"`
	Storage            Storage                      `toml:"storage"`
	BigQueryDataSource BigQueryDataSource           `toml:"big_query_data_source"`
	VideoIntelligence  VideoIntelligence            `toml:"video_intelligence"`
	Vision             Vision                       `toml:"vision"`
	GeminiModels       map[string]GeminiModel       `toml:"gemini_models"`
	Classification     Classification               `toml:"classification"`
	TopicSubscriptions map[string]TopicSubscription `toml:"topic_subscriptions"`
}

// NewConfig creates a Config with its maps initialized so the TOML decoder
// can populate them.
func NewConfig() *Config {
	return &Config{
		GeminiModels:       make(map[string]GeminiModel),
		TopicSubscriptions: make(map[string]TopicSubscription),
	}
}

// Taxonomy builds the classification vocabulary from the config, falling
// back to the compiled-in tables wherever the config is silent.
func (c *Config) Taxonomy() *scenes.Taxonomy {
	th := scenes.DefaultThresholds()
	if c.Classification.SpecificThreshold > 0 {
		th.Specific = c.Classification.SpecificThreshold
	}
	if c.Classification.GenericThreshold > 0 {
		th.Generic = c.Classification.GenericThreshold
	}
	if c.Classification.ExcludedThreshold > 0 {
		th.Excluded = c.Classification.ExcludedThreshold
	}
	if c.Classification.VisualThreshold > 0 {
		th.Visual = c.Classification.VisualThreshold
	}

	specific := c.Classification.SpecificLabels
	if len(specific) == 0 {
		specific = scenes.DefaultSpecificLabels()
	}
	generic := c.Classification.GenericLabels
	if len(generic) == 0 {
		generic = scenes.DefaultGenericLabels()
	}
	excluded := c.Classification.ExcludedLabels
	if len(excluded) == 0 {
		excluded = scenes.DefaultExcludedLabels()
	}
	indicators := c.Classification.Indicators
	if len(indicators) == 0 {
		indicators = scenes.DefaultIndicators()
	}
	return scenes.NewTaxonomy(th, specific, generic, excluded, indicators)
}

// ConsolidateConfig maps the config onto the consolidation stage settings.
func (c *Config) ConsolidateConfig() scenes.ConsolidateConfig {
	return scenes.ConsolidateConfig{
		Window:               secondsToDuration(c.Classification.WindowSeconds),
		GapTolerance:         c.Classification.GapTolerance,
		MinSupportingWindows: c.Classification.MinSupportingWindows,
		Aggregate:            scenes.AggregatePolicy(c.Classification.AggregatePolicy),
	}
}

// ScheduleConfig maps the config onto the visual evidence settings.
func (c *Config) ScheduleConfig() scenes.ScheduleConfig {
	return scenes.ScheduleConfig{
		Budget:      c.Classification.KeyframeBudget,
		Workers:     c.Application.ThreadPoolSize,
		CallTimeout: time.Duration(c.Classification.KeyframeCallTimeout) * time.Second,
	}
}

// AggregateConfig maps the config onto the final aggregation settings.
func (c *Config) AggregateConfig() scenes.AggregateConfig {
	return scenes.AggregateConfig{
		MergeTolerance: secondsToDuration(c.Classification.MergeToleranceSecond),
		KeepExcluded:   c.Classification.KeepExcluded,
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
