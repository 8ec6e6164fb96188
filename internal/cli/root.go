// Copyright 2023 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package cli implements the chatmark command.
package cli

import (
	"context"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"zombiezen.com/go/chatmark"
	"zombiezen.com/go/chatmark/internal/config"
)

type ctxKey int

const appKey ctxKey = 0

// app holds the resolved settings for a command invocation.
type app struct {
	v        *viper.Viper
	renderer *chatmark.HTMLRenderer
}

func appFrom(cmd *cobra.Command) *app {
	a, _ := cmd.Context().Value(appKey).(*app)
	return a
}

// flagKeys maps command-line flags to the config keys they override.
var flagKeys = map[string]string{
	"id-prefix": "html.id_prefix",
	"sanitize":  "html.sanitize",
	"chroma":    "highlight.chroma_fallback",
	"verbose":   "log.verbose",
}

// Execute runs the root command with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the Cobra root command.
func NewRootCmd() *cobra.Command {
	var cfgPath string
	var output string

	cmd := &cobra.Command{
		Use:   "chatmark [flags] [FILE ...]",
		Short: "Render chat messages to HTML fragments",
		Long: "chatmark renders chat-style markup from files (or stdin) to safe HTML fragments.\n" +
			"Several files are rendered one after another with distinct id prefixes.",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			if cfgPath != "" {
				v.SetConfigFile(cfgPath)
			}
			for flag, key := range flagKeys {
				if f := cmd.Flags().Lookup(flag); f != nil {
					if err := v.BindPFlag(key, f); err != nil {
						return err
					}
				}
			}
			if err := config.Load(cmd.Context(), v); err != nil {
				return err
			}
			if v.GetBool("log.verbose") {
				chatmark.SetLogger(log.New(cmd.ErrOrStderr(), "", log.LstdFlags))
			} else {
				chatmark.SetLogger(nil)
			}
			ctx := context.WithValue(cmd.Context(), appKey, &app{
				v:        v,
				renderer: config.NewRenderer(v),
			})
			cmd.SetContext(ctx)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args, output)
		},
	}

	cmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (toml|yaml|json)")
	cmd.PersistentFlags().Bool("chroma", false, "highlight languages without a built-in lexer using chroma")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "log recovered rendering failures to stderr")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write HTML to this file instead of stdout")
	cmd.Flags().String("id-prefix", "", "prefix for generated ids")
	cmd.Flags().Bool("sanitize", false, "filter output through the sanitizer policy")

	cmd.AddCommand(newLanguagesCmd())
	cmd.AddCommand(newTreeCmd())
	cmd.AddCommand(newFmtCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}
