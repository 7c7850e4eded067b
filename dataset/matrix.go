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

package dataset

import (
	"strconv"

	"github.com/juju/errors"
)

// Unrated is the rating stored for items a user has not rated.
const Unrated = 0

// RatingMatrix is a dense user-item rating table. Row u holds the ratings of
// user u and column i the ratings of item i. The matrix is never modified
// after construction.
type RatingMatrix struct {
	ratings [][]int
	users   *Dict
	items   *Dict
}

// NewRatingMatrix validates that ratings is a non-empty rectangle and wraps it.
func NewRatingMatrix(ratings [][]int) (*RatingMatrix, error) {
	if len(ratings) == 0 {
		return nil, errors.NotValidf("rating matrix without users")
	}
	numItems := len(ratings[0])
	if numItems == 0 {
		return nil, errors.NotValidf("rating matrix without items")
	}
	for u, row := range ratings {
		if len(row) != numItems {
			return nil, errors.NotValidf("rating matrix row %d with %d items (expected %d)", u+1, len(row), numItems)
		}
	}
	return &RatingMatrix{ratings: ratings}, nil
}

// MustNewRatingMatrix is like NewRatingMatrix but panics on malformed input.
func MustNewRatingMatrix(ratings [][]int) *RatingMatrix {
	m, err := NewRatingMatrix(ratings)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *RatingMatrix) CountUsers() int {
	return len(m.ratings)
}

func (m *RatingMatrix) CountItems() int {
	return len(m.ratings[0])
}

// Row returns the ratings of user u. Callers must not modify it.
func (m *RatingMatrix) Row(u int) []int {
	return m.ratings[u]
}

func (m *RatingMatrix) Rating(u, i int) int {
	return m.ratings[u][i]
}

func (m *RatingMatrix) IsRated(u, i int) bool {
	return m.ratings[u][i] != Unrated
}

// CountRated returns the number of items rated by user u.
func (m *RatingMatrix) CountRated(u int) int {
	n := 0
	for _, r := range m.ratings[u] {
		if r != Unrated {
			n++
		}
	}
	return n
}

// CheckUser returns a NotValid error unless u is a row of the matrix.
func (m *RatingMatrix) CheckUser(u int) error {
	if u < 0 || u >= len(m.ratings) {
		return errors.NotValidf("user index %d (expected 0 <= index < %d)", u, len(m.ratings))
	}
	return nil
}

// SetUserNames attaches display names to users. The number of names must
// match the number of users.
func (m *RatingMatrix) SetUserNames(names []string) error {
	dict, err := newNameDict(names, m.CountUsers(), "user")
	if err != nil {
		return errors.Trace(err)
	}
	m.users = dict
	return nil
}

// SetItemNames attaches display names to items. The number of names must
// match the number of items.
func (m *RatingMatrix) SetItemNames(names []string) error {
	dict, err := newNameDict(names, m.CountItems(), "item")
	if err != nil {
		return errors.Trace(err)
	}
	m.items = dict
	return nil
}

// UserName returns the display name of user u, or its 1-based number.
func (m *RatingMatrix) UserName(u int) string {
	return lookupName(m.users, u)
}

// ItemName returns the display name of item i, or its 1-based number.
func (m *RatingMatrix) ItemName(i int) string {
	return lookupName(m.items, i)
}

func newNameDict(names []string, expected int, kind string) (*Dict, error) {
	if len(names) != expected {
		return nil, errors.NotValidf("%d %s names for %d %ss", len(names), kind, expected, kind)
	}
	dict := NewDict()
	for _, name := range names {
		dict.Id(name)
	}
	if dict.Count() != expected {
		return nil, errors.NotValidf("duplicate %s names", kind)
	}
	return dict, nil
}

func lookupName(dict *Dict, id int) string {
	if dict != nil {
		if name, ok := dict.String(id); ok && name != "" {
			return name
		}
	}
	return strconv.Itoa(id + 1)
}
