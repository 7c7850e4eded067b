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
	"time"

	"github.com/gorse-io/usercf/base/log"
	"github.com/gorse-io/usercf/dataset"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

// Result holds everything computed for one target user.
type Result struct {
	User            int              `json:"user"`
	Similarities    []float64        `json:"similarities"`
	Predictions     []float64        `json:"predictions"`
	Recommendations []Recommendation `json:"recommendations"`
	Accuracy        AccuracyReport   `json:"accuracy"`
}

// Recommend runs similarity, prediction, ranking and evaluation for the
// target user. The user index is 0-based and checked before anything is
// computed; n is the maximum number of recommendations.
func Recommend(m *dataset.RatingMatrix, target, n int) (*Result, error) {
	if m == nil {
		return nil, errors.NotValidf("nil rating matrix")
	}
	if err := m.CheckUser(target); err != nil {
		return nil, errors.Trace(err)
	}
	if n < 0 {
		return nil, errors.NotValidf("number of recommendations %d", n)
	}
	start := time.Now()
	sims := similarities(m, target)
	predictions := predict(m, target, sims)
	result := &Result{
		User:            target,
		Similarities:    sims,
		Predictions:     predictions,
		Recommendations: topN(predictions, n),
		Accuracy:        rmse(m, predictions, target),
	}
	log.Logger().Debug("recommend for user",
		zap.Int("user", target+1),
		zap.Int("n", n),
		zap.Int("recommendations", len(result.Recommendations)),
		zap.Float64("rmse", result.Accuracy.RMSE),
		zap.Duration("elapsed", time.Since(start)))
	return result, nil
}
