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

package cli

import (
	"fmt"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
	"zombiezen.com/go/chatmark/highlight"
)

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages [QUERY]",
		Short: "List the languages with a built-in highlighter",
		Long: "List the languages with a built-in highlighter.\n\n" +
			"With a query, only the names that fuzzily match it are listed, best match first.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			languages := appFrom(cmd).renderer.Languages
			if languages == nil {
				languages = highlight.Default()
			}
			names := languages.Languages()
			if len(args) > 0 {
				matches := fuzzy.Find(args[0], names)
				names = make([]string, len(matches))
				for i, m := range matches {
					names[i] = m.Str
				}
			}
			out := cmd.OutOrStdout()
			for _, name := range names {
				if _, err := fmt.Fprintln(out, name); err != nil {
					return err
				}
			}
			if languages.Fallback != nil && len(args) == 0 {
				_, err := fmt.Fprintln(out, "(other languages known to chroma)")
				return err
			}
			return nil
		},
	}
}
