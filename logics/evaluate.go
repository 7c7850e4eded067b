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
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// AccuracyReport is the root mean square error over Count rated items.
type AccuracyReport struct {
	RMSE  float64 `json:"rmse"`
	Count int     `json:"count"`
}

// NoData reports whether the error was computed over no item at all.
func (r AccuracyReport) NoData() bool {
	return r.Count == 0
}

// RMSE compares predictions with the ratings the target user actually gave.
// Predictions of rated items are 0 by construction, so this measures the
// error of that baseline rather than a held-out accuracy.
func RMSE(m *dataset.RatingMatrix, predictions []float64, target int) (AccuracyReport, error) {
	if err := m.CheckUser(target); err != nil {
		return AccuracyReport{}, errors.Trace(err)
	}
	if len(predictions) != m.CountItems() {
		return AccuracyReport{}, errors.NotValidf("%d predictions for %d items", len(predictions), m.CountItems())
	}
	return rmse(m, predictions, target), nil
}

func rmse(m *dataset.RatingMatrix, predictions []float64, target int) AccuracyReport {
	var estimates, truth []float64
	for item, rating := range m.Row(target) {
		if rating != dataset.Unrated {
			estimates = append(estimates, predictions[item])
			truth = append(truth, float64(rating))
		}
	}
	if len(truth) == 0 {
		return AccuracyReport{}
	}
	floats.Sub(estimates, truth)
	floats.Mul(estimates, estimates)
	return AccuracyReport{
		RMSE:  math.Sqrt(stat.Mean(estimates, nil)),
		Count: len(truth),
	}
}
