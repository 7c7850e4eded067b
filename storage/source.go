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

	"github.com/gorse-io/usercf/base/log"
	"github.com/gorse-io/usercf/dataset"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

// Options configures LoadRatingMatrix.
type Options struct {
	CSV   dataset.CSVOptions
	Table string
}

// LoadRatingMatrix loads ratings from a database URL (mysql://, postgres://,
// postgresql:// or sqlite://) or otherwise from a delimited text file.
func LoadRatingMatrix(ctx context.Context, path string, opts Options) (*dataset.RatingMatrix, error) {
	if IsSQL(path) {
		source, err := OpenSQL(path, opts.Table)
		if err != nil {
			return nil, errors.Trace(err)
		}
		defer source.Close()
		m, err := source.Load(ctx)
		if err != nil {
			return nil, errors.Annotatef(err, "load %s", log.RedactDBURL(path))
		}
		log.Logger().Info("load rating matrix",
			zap.String("database", log.RedactDBURL(path)),
			zap.String("table", source.table),
			zap.Int("users", m.CountUsers()),
			zap.Int("items", m.CountItems()))
		return m, nil
	} else if IsURL(path) {
		return nil, errors.NotSupportedf("rating source %s", log.RedactDBURL(path))
	}
	return dataset.LoadCSVFile(path, opts.CSV)
}
