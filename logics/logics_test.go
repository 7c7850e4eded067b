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
	"math/rand"
	"testing"

	"github.com/gorse-io/usercf/dataset"
	"github.com/juju/errors"
	"github.com/stretchr/testify/suite"
)

const epsilon = 1e-9

type LogicsTestSuite struct {
	suite.Suite
	matrix *dataset.RatingMatrix
}

func (suite *LogicsTestSuite) SetupTest() {
	suite.matrix = dataset.MustNewRatingMatrix([][]int{
		{5, 3, 0, 1},
		{4, 0, 0, 1},
		{1, 1, 0, 5},
		{1, 0, 0, 4},
		{0, 1, 5, 4},
	})
}

func (suite *LogicsTestSuite) TestCosineSimilarity() {
	// co-rated items {1, 3}
	suite.InDelta(7/math.Sqrt(170), CosineSimilarity([]int{5, 3, 0, 1}, []int{0, 1, 5, 4}), epsilon)
	suite.InDelta(1, CosineSimilarity([]int{2, 0, 4}, []int{1, 3, 2}), epsilon)
	suite.InDelta(-1, CosineSimilarity([]int{1, 1}, []int{-1, -1}), epsilon)
	// no co-rated items
	suite.Zero(CosineSimilarity([]int{1, 0, 2}, []int{0, 3, 0}))
	suite.Zero(CosineSimilarity([]int{0, 0, 0}, []int{1, 2, 3}))
	suite.Zero(CosineSimilarity(nil, nil))
}

func (suite *LogicsTestSuite) TestCosineSimilaritySymmetryAndRange() {
	rng := rand.New(rand.NewSource(0))
	for trial := 0; trial < 1000; trial++ {
		a := make([]int, 8)
		b := make([]int, 8)
		for i := range a {
			a[i] = rng.Intn(11) - 5
			b[i] = rng.Intn(11) - 5
		}
		ab := CosineSimilarity(a, b)
		suite.Equal(ab, CosineSimilarity(b, a))
		suite.LessOrEqual(ab, 1+epsilon)
		suite.GreaterOrEqual(ab, -1-epsilon)
	}
}

func (suite *LogicsTestSuite) TestSimilarities() {
	sims, err := Similarities(suite.matrix, 0)
	suite.NoError(err)
	suite.Len(sims, 5)
	suite.Equal(0.0, sims[0])
	suite.InDelta(21/math.Sqrt(442), sims[1], epsilon)
	suite.InDelta(13/math.Sqrt(945), sims[2], epsilon)
	suite.InDelta(9/math.Sqrt(442), sims[3], epsilon)
	suite.InDelta(7/math.Sqrt(170), sims[4], epsilon)

	// the target is never compared against itself
	for u := 0; u < suite.matrix.CountUsers(); u++ {
		sims, err = Similarities(suite.matrix, u)
		suite.NoError(err)
		suite.Equal(0.0, sims[u])
	}
}

func (suite *LogicsTestSuite) TestPredict() {
	// only user 4 rated item 2 and sim(0, 4) = 7/√170 > 0
	predictions, err := Predict(suite.matrix, 0)
	suite.NoError(err)
	suite.Len(predictions, 4)
	suite.Equal(0.0, predictions[0])
	suite.Equal(0.0, predictions[1])
	suite.InDelta(5, predictions[2], epsilon)
	suite.Equal(0.0, predictions[3])

	// every other user rated item 0
	predictions, err = Predict(suite.matrix, 4)
	suite.NoError(err)
	s0, s1, s2, s3 := 7/math.Sqrt(170), 1.0, 21/math.Sqrt(442), 1.0
	expected := (s0*5 + s1*4 + s2*1 + s3*1) / (s0 + s1 + s2 + s3)
	suite.InDelta(expected, predictions[0], epsilon)
	suite.Equal([]float64{0, 0, 0}, predictions[1:])
}

func (suite *LogicsTestSuite) TestPredictIdempotent() {
	for u := 0; u < suite.matrix.CountUsers(); u++ {
		a, err := Predict(suite.matrix, u)
		suite.NoError(err)
		b, err := Predict(suite.matrix, u)
		suite.NoError(err)
		suite.Equal(a, b)
	}
}

func (suite *LogicsTestSuite) TestPredictIgnoresDissimilarUsers() {
	m := dataset.MustNewRatingMatrix([][]int{
		{1, 1, 0, 0},
		{-1, -1, 5, 0},
		{1, 0, 0, 3},
		{0, 0, 4, 0},
	})
	sims, err := Similarities(m, 0)
	suite.NoError(err)
	suite.InDelta(-1, sims[1], epsilon)
	suite.InDelta(1, sims[2], epsilon)
	suite.Zero(sims[3])
	predictions, err := PredictWithSimilarities(m, 0, sims)
	suite.NoError(err)
	// item 2: only dissimilar (user 1) and uncorrelated (user 3) raters
	suite.Equal([]float64{0, 0, 0, 3}, predictions)

	_, err = PredictWithSimilarities(m, 0, sims[:2])
	suite.True(errors.Is(err, errors.NotValid))
}

func (suite *LogicsTestSuite) TestAllZeroUser() {
	m := dataset.MustNewRatingMatrix([][]int{
		{4, 0, 2},
		{0, 0, 0},
		{5, 3, 1},
	})
	for _, u := range []int{0, 2} {
		sims, err := Similarities(m, u)
		suite.NoError(err)
		suite.Zero(sims[1])
	}
	sims, err := Similarities(m, 1)
	suite.NoError(err)
	suite.Equal([]float64{0, 0, 0}, sims)
	predictions, err := Predict(m, 1)
	suite.NoError(err)
	suite.Equal([]float64{0, 0, 0}, predictions)
	recommendations, err := TopN(predictions, m, 1, 3)
	suite.NoError(err)
	suite.Empty(recommendations)
	report, err := RMSE(m, predictions, 1)
	suite.NoError(err)
	suite.True(report.NoData())
	suite.Zero(report.RMSE)
}

func (suite *LogicsTestSuite) TestTopN() {
	predictions, err := Predict(suite.matrix, 0)
	suite.NoError(err)
	recommendations, err := TopN(predictions, suite.matrix, 0, 3)
	suite.NoError(err)
	suite.Len(recommendations, 1)
	suite.Equal(3, recommendations[0].Item)
	suite.InDelta(5, recommendations[0].Score, epsilon)

	recommendations, err = TopN(predictions, suite.matrix, 0, 0)
	suite.NoError(err)
	suite.Empty(recommendations)
}

func (suite *LogicsTestSuite) TestTopNTies() {
	m := dataset.MustNewRatingMatrix([][]int{
		{5, 0, 0, 0, 0},
		{5, 3, 3, 4, 0},
	})
	predictions, err := Predict(m, 0)
	suite.NoError(err)
	suite.Equal([]float64{0, 3, 3, 4, 0}, predictions)
	recommendations, err := TopN(predictions, m, 0, 10)
	suite.NoError(err)
	suite.Equal([]Recommendation{{Item: 4, Score: 4}, {Item: 2, Score: 3}, {Item: 3, Score: 3}}, recommendations)
	recommendations, err = TopN(predictions, m, 0, 2)
	suite.NoError(err)
	suite.Equal([]Recommendation{{Item: 4, Score: 4}, {Item: 2, Score: 3}}, recommendations)
}

func (suite *LogicsTestSuite) TestTopNProperties() {
	rng := rand.New(rand.NewSource(1))
	m := dataset.MustNewRatingMatrix([][]int{make([]int, 20)})
	for trial := 0; trial < 200; trial++ {
		predictions := make([]float64, 20)
		for i := range predictions {
			// include zeros, negatives and duplicates
			predictions[i] = float64(rng.Intn(9) - 3)
		}
		n := rng.Intn(25)
		recommendations, err := TopN(predictions, m, 0, n)
		suite.NoError(err)
		suite.LessOrEqual(len(recommendations), n)
		returned := make(map[int]bool)
		for i, r := range recommendations {
			suite.Greater(r.Score, 0.0)
			suite.Equal(predictions[r.Item-1], r.Score)
			if i > 0 {
				prev := recommendations[i-1]
				suite.True(prev.Score > r.Score || (prev.Score == r.Score && prev.Item < r.Item))
			}
			returned[r.Item-1] = true
		}
		positive := 0
		for item, score := range predictions {
			if score > 0 {
				positive++
				if !returned[item] && len(recommendations) > 0 {
					suite.GreaterOrEqual(recommendations[len(recommendations)-1].Score, score)
				}
			}
		}
		suite.Equal(min(n, positive), len(recommendations))
	}
}

func (suite *LogicsTestSuite) TestRMSE() {
	predictions, err := Predict(suite.matrix, 0)
	suite.NoError(err)
	report, err := RMSE(suite.matrix, predictions, 0)
	suite.NoError(err)
	suite.False(report.NoData())
	suite.Equal(3, report.Count)
	suite.InDelta(math.Sqrt(35.0/3.0), report.RMSE, epsilon)

	report, err = RMSE(suite.matrix, []float64{5, 3, 9, 1}, 0)
	suite.NoError(err)
	suite.Equal(3, report.Count)
	suite.Zero(report.RMSE)
	suite.False(report.NoData())

	_, err = RMSE(suite.matrix, []float64{1}, 0)
	suite.True(errors.Is(err, errors.NotValid))
}

func (suite *LogicsTestSuite) TestInvalidUser() {
	for _, u := range []int{-1, 5} {
		_, err := Similarities(suite.matrix, u)
		suite.True(errors.Is(err, errors.NotValid))
		_, err = Predict(suite.matrix, u)
		suite.True(errors.Is(err, errors.NotValid))
		_, err = PredictWithSimilarities(suite.matrix, u, make([]float64, 5))
		suite.True(errors.Is(err, errors.NotValid))
		_, err = TopN(make([]float64, 4), suite.matrix, u, 3)
		suite.True(errors.Is(err, errors.NotValid))
		_, err = RMSE(suite.matrix, make([]float64, 4), u)
		suite.True(errors.Is(err, errors.NotValid))
		_, err = Recommend(suite.matrix, u, 3)
		suite.True(errors.Is(err, errors.NotValid))
	}
	_, err := TopN([]float64{1}, suite.matrix, 0, 3)
	suite.True(errors.Is(err, errors.NotValid))
}

func (suite *LogicsTestSuite) TestRecommend() {
	result, err := Recommend(suite.matrix, 0, 3)
	suite.NoError(err)
	suite.Equal(0, result.User)
	suite.Equal(0.0, result.Similarities[0])
	suite.InDelta(5, result.Predictions[2], epsilon)
	suite.Len(result.Recommendations, 1)
	suite.Equal(3, result.Recommendations[0].Item)
	suite.Equal(3, result.Accuracy.Count)
	suite.InDelta(math.Sqrt(35.0/3.0), result.Accuracy.RMSE, epsilon)

	_, err = Recommend(suite.matrix, 0, -1)
	suite.True(errors.Is(err, errors.NotValid))
	_, err = Recommend(nil, 0, 1)
	suite.True(errors.Is(err, errors.NotValid))
}

func TestLogics(t *testing.T) {
	suite.Run(t, new(LogicsTestSuite))
}
