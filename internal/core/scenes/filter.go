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

import "github.com/Kondomino/kondo-movie/internal/core/model"

// FilterLabels reduces the raw label stream to tier-tagged evidence. A label
// survives only when its name appears in one of the taxonomy's tier tables
// and its confidence meets that tier's threshold. Labels unknown to every
// table are dropped: an unrecognized label is noise, not evidence.
//
// Malformed labels (confidence outside [0,1], end before start) are dropped
// here as well rather than failing the run; a single bad observation from
// the source must not abort an otherwise valid video.
//
// The function is pure. It never fails, and the input slice is not modified.
func FilterLabels(tax *Taxonomy, labels []model.RawLabel) []model.FilteredLabel {
	out := make([]model.FilteredLabel, 0, len(labels))
	for _, label := range labels {
		if label.Confidence < 0 || label.Confidence > 1 || label.End < label.Start {
			continue
		}
		tier, ok := tax.TierFor(label.Name, label.Confidence)
		if !ok {
			continue
		}
		out = append(out, model.FilteredLabel{RawLabel: label, Tier: tier})
	}
	return out
}
