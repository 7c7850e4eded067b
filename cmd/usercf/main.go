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

	"github.com/gorse-io/usercf/base/log"
	"github.com/gorse-io/usercf/cmd/version"
	"github.com/gorse-io/usercf/config"
	"github.com/gorse-io/usercf/logics"
	"github.com/gorse-io/usercf/storage"
	"github.com/juju/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCommand() *cobra.Command {
	command := &cobra.Command{
		Use:          "usercf",
		Short:        "Recommend items to a user by user-based collaborative filtering.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			// Show version
			if showVersion, _ := flags.GetBool("version"); showVersion {
				fmt.Fprint(cmd.OutOrStdout(), version.BuildInfo())
				return nil
			}

			// setup logger
			debug, _ := flags.GetBool("debug")
			if debug || flags.Changed("log-path") {
				log.SetLogger(flags, debug)
			}

			// load config
			configPath, _ := flags.GetString("config")
			conf, err := config.LoadConfig(configPath)
			if err != nil {
				return errors.Annotate(err, "failed to load config")
			}
			if flags.Changed("source") {
				conf.Data.Source, _ = flags.GetString("source")
			}
			if flags.Changed("top") {
				conf.Recommend.TopN, _ = flags.GetInt("top")
			}
			if flags.Changed("format") {
				conf.Output.Format, _ = flags.GetString("format")
			}
			if values, err := conf.Map(); err == nil {
				log.Logger().Debug("load config", zap.String("path", configPath), zap.Any("config", values))
			}

			// ask for missing parameters
			user, _ := flags.GetInt("user")
			if !flags.Changed("user") {
				p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
				if user, err = p.askInt("Enter the user index for which you want to recommend items: ", nil); err != nil {
					return errors.Trace(err)
				}
				if !flags.Changed("top") {
					if conf.Recommend.TopN, err = p.askInt("Enter the number of top recommended items: ", &conf.Recommend.TopN); err != nil {
						return errors.Trace(err)
					}
				}
			}
			if err = conf.Validate(); err != nil {
				return errors.Trace(err)
			}

			// load ratings
			m, err := storage.LoadRatingMatrix(cmd.Context(), conf.Data.Source, conf.StorageOptions())
			if err != nil {
				return errors.Annotate(err, "failed to load ratings")
			}

			// recommend
			result, err := logics.Recommend(m, user-1, conf.Recommend.TopN)
			if err != nil {
				return errors.Annotatef(err, "failed to recommend for user %d", user)
			}
			return errors.Trace(render(cmd.OutOrStdout(), conf.Output.Format, m, result, conf.Recommend.TopN))
		},
	}
	flags := command.Flags()
	log.AddFlags(flags)
	flags.Bool("debug", false, "use debug log mode")
	flags.BoolP("version", "v", false, "usercf version")
	flags.StringP("config", "c", "", "configuration file path")
	flags.StringP("source", "s", "", "rating file or database URL")
	flags.IntP("user", "u", 0, "user number (1-based)")
	flags.IntP("top", "n", 0, "number of recommended items")
	flags.String("format", config.FormatTable, "report format (table or json)")
	return command
}

func main() {
	if err := newCommand().Execute(); err != nil {
		log.Logger().Fatal("failed to execute", zap.Error(err))
	}
}
