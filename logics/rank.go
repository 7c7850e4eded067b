// Copyright 2025 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logics

import (
	"github.com/gorse-io/usercf/common/heap"
	"github.com/gorse-io/usercf/dataset"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

// Recommendation is a ranked item. Item is 1-based.
type Recommendation struct {
	Item  int     `json:"item"`
	Score float64 `json:"score"`
}

// TopN returns at most n items with positive predictions, ordered by
// descending score and then by ascending item.
func TopN(predictions []float64, m *dataset.RatingMatrix, target, n int) ([]Recommendation, error) {
	if err := m.CheckUser(target); err != nil {
		return nil, errors.Trace(err)
	}
	if len(predictions) != m.CountItems() {
		return nil, errors.NotValidf("%d predictions for %d items", len(predictions), m.CountItems())
	}
	return topN(predictions, n), nil
}

func topN(predictions []float64, n int) []Recommendation {
	filter := heap.NewTopKFilter[int, float64](n)
	for item, score := range predictions {
		if score > 0 {
			filter.Push(item, score)
		}
	}
	return lo.Map(filter.PopAll(), func(e heap.Elem[int, float64], _ int) Recommendation {
		return Recommendation{Item: e.Value + 1, Score: e.Weight}
	})
}
