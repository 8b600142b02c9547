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

// This file implements decorators around the visual classifier. The hosted
// classifier APIs enforce per-minute quotas; running ten keyframes through a
// worker pool without a limiter is a reliable way to trip them, so every
// classifier handed to the pipeline is wrapped in a rate limiter, and
// transient failures are retried a bounded number of times.
package cloud

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/Kondomino/kondo-movie/internal/core/model"
	"github.com/Kondomino/kondo-movie/internal/core/scenes"
)

// ClassifierMaxRetries bounds how many times a failed classify call is
// retried before the error is surfaced to the pipeline, where it degrades
// just that scene.
const ClassifierMaxRetries = 2

// QuotaAwareClassifier decorates a scenes.VisualClassifier with a token
// bucket rate limiter and a small retry loop.
type QuotaAwareClassifier struct {
	wrapped scenes.VisualClassifier
	limiter *rate.Limiter
}

// NewQuotaAwareClassifier wraps a classifier with a limiter allowing
// requestsPerSecond sustained calls with an equal burst.
func NewQuotaAwareClassifier(wrapped scenes.VisualClassifier, requestsPerSecond int) *QuotaAwareClassifier {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &QuotaAwareClassifier{
		wrapped: wrapped,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
	}
}

// Classify blocks until the limiter admits the call, then delegates.
// Failed calls are retried with a short backoff; context cancellation ends
// the wait immediately.
func (q *QuotaAwareClassifier) Classify(ctx context.Context, imageRef string) ([]model.VisualLabel, error) {
	var lastErr error
	for attempt := 0; attempt <= ClassifierMaxRetries; attempt++ {
		if err := q.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		labels, err := q.wrapped.Classify(ctx, imageRef)
		if err == nil {
			return labels, nil
		}
		lastErr = err
		select {
		case <-time.After(time.Duration(attempt+1) * time.Second):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("classifier failed after %d retries: %w", ClassifierMaxRetries, lastErr)
}
