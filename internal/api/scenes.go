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

// Package api defines the HTTP surface of the classification engine. Routes
// are thin: parse, delegate to the scene service, serialize.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Kondomino/kondo-movie/internal/core/services"
)

// ClassifyRequest is the body of a synchronous classification call.
type ClassifyRequest struct {
	Bucket     string `json:"bucket" binding:"required"`
	Object     string `json:"object" binding:"required"`
	Classifier string `json:"classifier"`
}

// SceneRouter registers the classification and retrieval endpoints on the
// given route group.
func SceneRouter(r *gin.RouterGroup, sceneService *services.SceneService) {
	scenes := r.Group("/scenes")
	{
		// Synchronous classification of one stored video. The triggered
		// Pub/Sub path covers new uploads; this endpoint exists for
		// reclassification and manual runs.
		scenes.POST("/classify", func(c *gin.Context) {
			var req ClassifyRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			result, err := sceneService.Classify(c, req.Bucket, req.Object, req.Classifier)
			if err != nil {
				slog.Error("classification run failed",
					"bucket", req.Bucket,
					"object", req.Object,
					"error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "classification failed"})
				return
			}
			c.JSON(http.StatusOK, result)
		})

		// Latest stored timeline for a video URI.
		scenes.GET("", func(c *gin.Context) {
			videoURI := c.Query("video")
			if len(videoURI) == 0 {
				c.Status(http.StatusBadRequest)
				return
			}
			out, err := sceneService.GetScenesByVideo(c, videoURI)
			if err != nil {
				slog.Error("scene lookup failed", "video", videoURI, "error", err)
				c.Status(http.StatusInternalServerError)
				return
			}
			c.JSON(http.StatusOK, out)
		})
	}

	runs := r.Group("/runs")
	{
		runs.GET("", func(c *gin.Context) {
			videoURI := c.Query("video")
			if len(videoURI) == 0 {
				c.Status(http.StatusBadRequest)
				return
			}
			out, err := sceneService.GetRuns(c, videoURI)
			if err != nil {
				slog.Error("run lookup failed", "video", videoURI, "error", err)
				c.Status(http.StatusInternalServerError)
				return
			}
			c.JSON(http.StatusOK, out)
		})

		runs.GET("/:run_id/scenes", func(c *gin.Context) {
			runID := c.Param("run_id")
			out, err := sceneService.GetScenesByRun(c, runID)
			if err != nil {
				slog.Error("run scene lookup failed", "run_id", runID, "error", err)
				c.Status(http.StatusInternalServerError)
				return
			}
			if len(out) == 0 {
				c.Status(http.StatusNotFound)
				return
			}
			c.JSON(http.StatusOK, out)
		})
	}

	keyframes := r.Group("/keyframes")
	{
		// Signed GET URL for a keyframe audit image, valid for 15 minutes.
		keyframes.GET("/signed-url", func(c *gin.Context) {
			uri := c.Query("uri")
			if len(uri) == 0 {
				c.Status(http.StatusBadRequest)
				return
			}
			url, err := sceneService.GenerateSignedURL(uri, 15*time.Minute)
			if err != nil {
				slog.Error("signed url generation failed", "uri", uri, "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate signed URL"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"url": url})
		})
	}
}

// Dashboard registers the statistics endpoints.
func Dashboard(r *gin.RouterGroup, sceneService *services.SceneService) {
	stats := r.Group("/stats")
	{
		stats.GET("/categories", func(c *gin.Context) {
			videoURI := c.Query("video")
			if len(videoURI) == 0 {
				c.Status(http.StatusBadRequest)
				return
			}
			out, err := sceneService.GetCategoryCounts(c, videoURI)
			if err != nil {
				slog.Error("category count failed", "video", videoURI, "error", err)
				c.Status(http.StatusInternalServerError)
				return
			}
			c.JSON(http.StatusOK, out)
		})
	}
}
