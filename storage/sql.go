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
	"database/sql"
	"sort"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/gorse-io/usercf/base/log"
	"github.com/gorse-io/usercf/dataset"
	"github.com/juju/errors"
	_ "github.com/lib/pq"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	_ "modernc.org/sqlite"
)

// DefaultTable is the table read when none is configured.
const DefaultTable = "ratings"

// Rating is a row of the ratings table.
type Rating struct {
	UserId string `gorm:"column:user_id;type:varchar(256) not null;primaryKey"`
	ItemId string `gorm:"column:item_id;type:varchar(256) not null;primaryKey"`
	Rating int    `gorm:"column:rating;type:int not null"`
}

// SQLSource reads a rating matrix from a (user_id, item_id, rating) table.
type SQLSource struct {
	gormDB *gorm.DB
	client *sql.DB
	table  string
}

// OpenSQL connects to a MySQL, Postgres or SQLite database.
func OpenSQL(path, table string) (*SQLSource, error) {
	if table == "" {
		table = DefaultTable
	}
	var err error
	source := &SQLSource{table: table}
	config := NewGORMConfig()
	switch {
	case strings.HasPrefix(path, MySQLPrefix):
		name := path[len(MySQLPrefix):]
		if source.client, err = sql.Open("mysql", name); err != nil {
			return nil, errors.Trace(err)
		}
		source.gormDB, err = gorm.Open(mysql.New(mysql.Config{Conn: source.client}), config)
	case strings.HasPrefix(path, PostgresPrefix) || strings.HasPrefix(path, PostgreSQLPrefix):
		if source.client, err = sql.Open("postgres", path); err != nil {
			return nil, errors.Trace(err)
		}
		source.gormDB, err = gorm.Open(postgres.New(postgres.Config{Conn: source.client}), config)
	case strings.HasPrefix(path, SQLitePrefix):
		// append parameters
		if path, err = AppendURLParams(path, []lo.Tuple2[string, string]{
			{A: "_pragma", B: "busy_timeout(10000)"},
		}); err != nil {
			return nil, errors.Trace(err)
		}
		name := path[len(SQLitePrefix):]
		if source.client, err = sql.Open("sqlite", name); err != nil {
			return nil, errors.Trace(err)
		}
		source.gormDB, err = gorm.Open(sqlite.Dialector{Conn: source.client}, config)
	default:
		return nil, errors.NotSupportedf("database %s", log.RedactDBURL(path))
	}
	if err != nil {
		_ = source.client.Close()
		return nil, errors.Trace(err)
	}
	return source, nil
}

// Init creates the ratings table if it does not exist.
func (s *SQLSource) Init() error {
	return errors.Trace(s.gormDB.Table(s.table).AutoMigrate(&Rating{}))
}

// AddRatings inserts ratings, overwriting existing ratings of the same pairs.
func (s *SQLSource) AddRatings(ctx context.Context, ratings []Rating) error {
	if len(ratings) == 0 {
		return nil
	}
	err := s.gormDB.WithContext(ctx).Table(s.table).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&ratings).Error
	return errors.Trace(err)
}

// Load reads every rating into a matrix. Users and items are indexed by
// ascending identifier, numerically when all identifiers are integers.
func (s *SQLSource) Load(ctx context.Context) (*dataset.RatingMatrix, error) {
	rows, err := s.gormDB.WithContext(ctx).Table(s.table).
		Select("user_id, item_id, rating").Rows()
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer rows.Close()

	var ratings []Rating
	pairs := mapset.NewThreadUnsafeSet[lo.Tuple2[string, string]]()
	users := mapset.NewThreadUnsafeSet[string]()
	items := mapset.NewThreadUnsafeSet[string]()
	for rows.Next() {
		var rating Rating
		if err = rows.Scan(&rating.UserId, &rating.ItemId, &rating.Rating); err != nil {
			return nil, errors.Trace(err)
		}
		if !pairs.Add(lo.Tuple2[string, string]{A: rating.UserId, B: rating.ItemId}) {
			log.Logger().Warn("duplicate rating overwrites earlier one",
				zap.String("user_id", rating.UserId), zap.String("item_id", rating.ItemId))
		}
		users.Add(rating.UserId)
		items.Add(rating.ItemId)
		ratings = append(ratings, rating)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	if len(ratings) == 0 {
		return nil, errors.NotValidf("rating matrix without users")
	}

	userDict, itemDict := newSortedDict(users.ToSlice()), newSortedDict(items.ToSlice())
	matrix := make([][]int, userDict.Count())
	for u := range matrix {
		matrix[u] = make([]int, itemDict.Count())
	}
	for _, rating := range ratings {
		u, _ := userDict.Index(rating.UserId)
		i, _ := itemDict.Index(rating.ItemId)
		matrix[u][i] = rating.Rating
	}
	m, err := dataset.NewRatingMatrix(matrix)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if err = m.SetUserNames(dictNames(userDict)); err != nil {
		return nil, errors.Trace(err)
	}
	if err = m.SetItemNames(dictNames(itemDict)); err != nil {
		return nil, errors.Trace(err)
	}
	return m, nil
}

func (s *SQLSource) Close() error {
	return s.client.Close()
}

func newSortedDict(ids []string) *dataset.Dict {
	numeric := lo.EveryBy(ids, func(id string) bool {
		_, err := strconv.ParseInt(id, 10, 64)
		return err == nil
	})
	sort.Slice(ids, func(i, j int) bool {
		if numeric {
			a, _ := strconv.ParseInt(ids[i], 10, 64)
			b, _ := strconv.ParseInt(ids[j], 10, 64)
			return a < b
		}
		return ids[i] < ids[j]
	})
	dict := dataset.NewDict()
	for _, id := range ids {
		dict.Id(id)
	}
	return dict
}

func dictNames(dict *dataset.Dict) []string {
	names := make([]string, dict.Count())
	for i := range names {
		names[i], _ = dict.String(i)
	}
	return names
}
