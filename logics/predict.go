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
	"math"

	"github.com/gorse-io/usercf/dataset"
	"github.com/juju/errors"
)

// Predict estimates the ratings of the target user for the items they have
// not rated. Entries of rated items are left at 0, as are items no positively
// similar user has rated.
func Predict(m *dataset.RatingMatrix, target int) ([]float64, error) {
	if err := m.CheckUser(target); err != nil {
		return nil, errors.Trace(err)
	}
	return predict(m, target, similarities(m, target)), nil
}

// PredictWithSimilarities is Predict with a precomputed similarity vector.
func PredictWithSimilarities(m *dataset.RatingMatrix, target int, sims []float64) ([]float64, error) {
	if err := m.CheckUser(target); err != nil {
		return nil, errors.Trace(err)
	}
	if len(sims) != m.CountUsers() {
		return nil, errors.NotValidf("%d similarities for %d users", len(sims), m.CountUsers())
	}
	return predict(m, target, sims), nil
}

func predict(m *dataset.RatingMatrix, target int, sims []float64) []float64 {
	predictions := make([]float64, m.CountItems())
	for item := range predictions {
		if m.IsRated(target, item) {
			continue
		}
		numerator, denominator := 0.0, 0.0
		for u, sim := range sims {
			// the target itself and dissimilar users never vote
			if u == target || sim <= 0 || !m.IsRated(u, item) {
				continue
			}
			numerator += sim * float64(m.Rating(u, item))
			denominator += math.Abs(sim)
		}
		if denominator != 0 {
			predictions[item] = numerator / denominator
		}
	}
	return predictions
}
