// Copyright 2021 gorse Project Authors
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
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gorse-io/usercf/base/log"
	"github.com/juju/errors"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// CSVOptions controls how a delimited rating table is read.
type CSVOptions struct {
	// Sep separates fields in a line.
	Sep string
	// Header marks the first line as item names instead of ratings.
	Header bool
	// Progress shows a progress bar while reading a file.
	Progress bool
}

// DefaultCSVOptions reads comma separated values with a header line.
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{Sep: ",", Header: true}
}

// LoadCSVFile reads a rating matrix from a delimited text file.
func LoadCSVFile(path string, opts CSVOptions) (*RatingMatrix, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundf("rating file %s", path)
		}
		return nil, errors.Trace(err)
	}
	defer file.Close()

	var reader io.Reader = file
	if opts.Progress {
		stat, err := file.Stat()
		if err != nil {
			return nil, errors.Trace(err)
		}
		pbReader := progressbar.NewReader(file, progressbar.DefaultBytes(stat.Size(), "Loading ratings"))
		reader = &pbReader
	}
	m, err := LoadCSV(reader, opts)
	if err != nil {
		return nil, errors.Annotatef(err, "load %s", path)
	}
	log.Logger().Info("load rating matrix",
		zap.String("path", path),
		zap.Int("users", m.CountUsers()),
		zap.Int("items", m.CountItems()))
	return m, nil
}

// LoadCSV reads a rating matrix from a delimited table. Each non-blank line is
// a user and each field an item rating. Empty or non-integer fields are read
// as Unrated.
func LoadCSV(r io.Reader, opts CSVOptions) (*RatingMatrix, error) {
	if opts.Sep == "" {
		opts.Sep = ","
	}
	var (
		names   []string
		ratings [][]int
		header  = opts.Header
	)
	sc := bufio.NewScanner(r)
	err := readLines(sc, opts.Sep, func(line int, fields []string) bool {
		if len(fields) == 1 && strings.TrimSpace(fields[0]) == "" {
			return true
		}
		if header {
			header = false
			names = make([]string, len(fields))
			for i, field := range fields {
				names[i] = strings.TrimSpace(field)
			}
			return true
		}
		row := make([]int, len(fields))
		for i, field := range fields {
			row[i] = parseRating(line, i, field)
		}
		ratings = append(ratings, row)
		return true
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	m, err := NewRatingMatrix(ratings)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if names != nil {
		if err = m.SetItemNames(names); err != nil {
			log.Logger().Warn("ignore item names in header", zap.Error(err))
		}
	}
	return m, nil
}

func parseRating(line, column int, field string) int {
	field = strings.TrimSpace(field)
	if field == "" {
		return Unrated
	}
	rating, err := strconv.Atoi(field)
	if err != nil {
		log.Logger().Debug("treat malformed rating as unrated",
			zap.Int("line", line+1), zap.Int("column", column+1), zap.String("value", field))
		return Unrated
	}
	return rating
}

// readLines parse fields of each line for csv file.
func readLines(sc *bufio.Scanner, sep string, handler func(int, []string) bool) error {
	lineCount := 0               // line number of current position
	fields := make([]string, 0)  // fields for current line
	builder := strings.Builder{} // string builder for current field
	quoted := false              // whether current position in quote
	for sc.Scan() {
		// read line
		line := []rune(sc.Text())
		// start of line
		if quoted {
			builder.WriteString("\r\n")
		}
		// parse line
		for i := 0; i < len(line); i++ {
			if string(line[i]) == sep && !quoted {
				// end of field
				fields = append(fields, builder.String())
				builder.Reset()
			} else if line[i] == '"' {
				if quoted {
					if i+1 >= len(line) || line[i+1] != '"' {
						// end of quoted
						quoted = false
					} else {
						i++
						builder.WriteRune('"')
					}
				} else {
					// start of quoted
					quoted = true
				}
			} else {
				builder.WriteRune(line[i])
			}
		}
		// end of line
		if !quoted {
			fields = append(fields, strings.TrimSuffix(builder.String(), "\r"))
			builder.Reset()
			if !handler(lineCount, fields) {
				return nil
			}
			fields = []string{}
		}
		// increase line count
		lineCount++
	}
	return sc.Err()
}
