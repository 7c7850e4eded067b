// Copyright 2022 gorse Project Authors
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

package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorse-io/usercf/dataset"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type SQLiteTestSuite struct {
	suite.Suite
	path   string
	source *SQLSource
}

func (suite *SQLiteTestSuite) SetupTest() {
	var err error
	suite.path = SQLitePrefix + filepath.Join(suite.T().TempDir(), "ratings.db")
	suite.source, err = OpenSQL(suite.path, "")
	suite.Require().NoError(err)
	suite.Require().NoError(suite.source.Init())
}

func (suite *SQLiteTestSuite) TearDownTest() {
	suite.NoError(suite.source.Close())
}

func (suite *SQLiteTestSuite) TestLoad() {
	ctx := context.Background()
	err := suite.source.AddRatings(ctx, []Rating{
		{UserId: "1", ItemId: "1", Rating: 5},
		{UserId: "1", ItemId: "2", Rating: 3},
		{UserId: "1", ItemId: "10", Rating: 1},
		{UserId: "2", ItemId: "1", Rating: 4},
		{UserId: "10", ItemId: "3", Rating: 5},
	})
	suite.NoError(err)
	// overwrite
	err = suite.source.AddRatings(ctx, []Rating{{UserId: "2", ItemId: "10", Rating: 2}, {UserId: "1", ItemId: "2", Rating: 4}})
	suite.NoError(err)
	suite.NoError(suite.source.AddRatings(ctx, nil))

	m, err := suite.source.Load(ctx)
	suite.NoError(err)
	suite.Equal(3, m.CountUsers())
	suite.Equal(4, m.CountItems())
	// users 1, 2, 10 and items 1, 2, 3, 10 in numeric order
	suite.Equal([]int{5, 4, 0, 1}, m.Row(0))
	suite.Equal([]int{4, 0, 0, 2}, m.Row(1))
	suite.Equal([]int{0, 0, 5, 0}, m.Row(2))
	suite.Equal("10", m.UserName(2))
	suite.Equal("10", m.ItemName(3))
}

func (suite *SQLiteTestSuite) TestLoadStringIds() {
	ctx := context.Background()
	err := suite.source.AddRatings(ctx, []Rating{
		{UserId: "bob", ItemId: "dune", Rating: 2},
		{UserId: "alice", ItemId: "alien", Rating: 4},
	})
	suite.NoError(err)
	m, err := LoadRatingMatrix(ctx, suite.path, Options{})
	suite.NoError(err)
	suite.Equal("alice", m.UserName(0))
	suite.Equal("dune", m.ItemName(1))
	suite.Equal([]int{4, 0}, m.Row(0))
	suite.Equal([]int{0, 2}, m.Row(1))
}

func (suite *SQLiteTestSuite) TestLoadEmpty() {
	_, err := suite.source.Load(context.Background())
	suite.True(errors.Is(err, errors.NotValid))
}

func TestSQLite(t *testing.T) {
	suite.Run(t, new(SQLiteTestSuite))
}

func TestLoadRatingMatrix(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ratings.csv")
	assert.NoError(t, os.WriteFile(path, []byte("a,b\n1,0\n0,2\n"), 0644))
	m, err := LoadRatingMatrix(ctx, path, Options{CSV: dataset.DefaultCSVOptions()})
	assert.NoError(t, err)
	assert.Equal(t, 2, m.CountUsers())
	assert.Equal(t, "b", m.ItemName(1))

	_, err = LoadRatingMatrix(ctx, filepath.Join(t.TempDir(), "missing.csv"), Options{})
	assert.True(t, errors.Is(err, errors.NotFound))
	_, err = LoadRatingMatrix(ctx, "redis://127.0.0.1:6379", Options{})
	assert.True(t, errors.Is(err, errors.NotSupported))
	_, err = OpenSQL("mongodb://127.0.0.1:27017", "")
	assert.True(t, errors.Is(err, errors.NotSupported))
}
