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

package scenes

import (
	"context"

	"github.com/Kondomino/kondo-movie/internal/core/model"
)

// LabelSource produces the video-wide temporal labels and shot hints that
// seed a classification run. A failure here is fatal for the run; wrap the
// cause with ErrSourceUnavailable so callers can tell it apart from local
// keyframe failures.
type LabelSource interface {
	Annotate(ctx context.Context, videoURI string) (*model.VideoAnnotation, error)
}
