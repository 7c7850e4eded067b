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

// CosineSimilarity computes the cosine similarity between a pair of rating
// vectors over co-rated items only. Items unrated by either side contribute
// nothing. The similarity is 0 if either side has a zero norm.
func CosineSimilarity(a, b []int) float64 {
	m, n, l := .0, .0, .0
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] == dataset.Unrated || b[i] == dataset.Unrated {
			continue
		}
		x, y := float64(a[i]), float64(b[i])
		m += x * x
		n += y * y
		l += x * y
	}
	if m == 0 || n == 0 {
		return 0
	}
	return l / (math.Sqrt(m) * math.Sqrt(n))
}

// Similarities computes the similarity between the target user and every
// user of the matrix. The target user's own entry is always 0.
//
// TODO: memoize pairwise similarities (they are symmetric) once more than one
// user is served from the same matrix.
func Similarities(m *dataset.RatingMatrix, target int) ([]float64, error) {
	if err := m.CheckUser(target); err != nil {
		return nil, errors.Trace(err)
	}
	return similarities(m, target), nil
}

func similarities(m *dataset.RatingMatrix, target int) []float64 {
	sims := make([]float64, m.CountUsers())
	targetRow := m.Row(target)
	for u := range sims {
		if u != target {
			sims[u] = CosineSimilarity(targetRow, m.Row(u))
		}
	}
	return sims
}
