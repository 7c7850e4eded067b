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

package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/gorse-io/usercf/config"
	"github.com/gorse-io/usercf/dataset"
	"github.com/gorse-io/usercf/logics"
	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

type predictionReport struct {
	Item   int     `json:"item"`
	Name   string  `json:"name"`
	Rating float64 `json:"rating"`
}

type recommendationReport struct {
	Item  int     `json:"item"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

type accuracyReport struct {
	RMSE   float64 `json:"rmse"`
	Count  int     `json:"count"`
	NoData bool    `json:"no_data"`
}

type report struct {
	User            int                    `json:"user"`
	Name            string                 `json:"name"`
	TopN            int                    `json:"top_n"`
	Predictions     []predictionReport     `json:"predictions"`
	Recommendations []recommendationReport `json:"recommendations"`
	Accuracy        accuracyReport         `json:"accuracy"`
}

func newReport(m *dataset.RatingMatrix, result *logics.Result, n int) *report {
	r := &report{
		User: result.User + 1,
		Name: m.UserName(result.User),
		TopN: n,
		Recommendations: lo.Map(result.Recommendations, func(rec logics.Recommendation, _ int) recommendationReport {
			return recommendationReport{Item: rec.Item, Name: m.ItemName(rec.Item - 1), Score: rec.Score}
		}),
		Accuracy: accuracyReport{
			RMSE:   result.Accuracy.RMSE,
			Count:  result.Accuracy.Count,
			NoData: result.Accuracy.NoData(),
		},
	}
	r.Predictions = make([]predictionReport, 0, len(result.Predictions))
	for item, prediction := range result.Predictions {
		if !m.IsRated(result.User, item) {
			r.Predictions = append(r.Predictions, predictionReport{
				Item:   item + 1,
				Name:   m.ItemName(item),
				Rating: prediction,
			})
		}
	}
	return r
}

func render(w io.Writer, format string, m *dataset.RatingMatrix, result *logics.Result, n int) error {
	r := newReport(m, result, n)
	switch format {
	case config.FormatJSON:
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return errors.Trace(err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return errors.Trace(err)
	case config.FormatTable:
		return renderTable(w, r)
	default:
		return errors.NotSupportedf("report format %q", format)
	}
}

func renderTable(w io.Writer, r *report) error {
	fmt.Fprintf(w, "Predicted Ratings for User %d:\n", r.User)
	table := tablewriter.NewWriter(w)
	table.Header("Item", "Name", "Predicted Rating")
	for _, p := range r.Predictions {
		if err := table.Append([]string{strconv.Itoa(p.Item), p.Name, fmt.Sprintf("%.4f", p.Rating)}); err != nil {
			return errors.Trace(err)
		}
	}
	if err := table.Render(); err != nil {
		return errors.Trace(err)
	}

	fmt.Fprintf(w, "\nTop %d Recommended Items:\n", r.TopN)
	if len(r.Recommendations) == 0 {
		fmt.Fprintln(w, "No item to recommend.")
	} else {
		table = tablewriter.NewWriter(w)
		table.Header("Rank", "Item", "Name", "Score")
		for i, rec := range r.Recommendations {
			if err := table.Append([]string{strconv.Itoa(i + 1), strconv.Itoa(rec.Item), rec.Name, fmt.Sprintf("%.4f", rec.Score)}); err != nil {
				return errors.Trace(err)
			}
		}
		if err := table.Render(); err != nil {
			return errors.Trace(err)
		}
	}

	fmt.Fprintln(w, "\nPerformance Report:")
	if r.Accuracy.NoData {
		_, err := fmt.Fprintf(w, "RMSE for User %d: no rated items to evaluate\n", r.User)
		return errors.Trace(err)
	}
	_, err := fmt.Fprintf(w, "RMSE for User %d: %.4f (over %d rated items)\n", r.User, r.Accuracy.RMSE, r.Accuracy.Count)
	return errors.Trace(err)
}
