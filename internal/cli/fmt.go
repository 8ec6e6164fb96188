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
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"zombiezen.com/go/chatmark"
	"zombiezen.com/go/chatmark/format"
)

func newFmtCmd() *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "fmt [FILE]",
		Short: "Rewrite a message in canonical markup",
		Long: "Rewrite a message in canonical markup.\n\n" +
			"The rewritten message renders to the same HTML as the original.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if write && (len(args) == 0 || args[0] == "-") {
				return errors.New("-w requires a file")
			}
			inputs, err := readInputs(cmd, args)
			if err != nil {
				return err
			}
			doc := chatmark.Parse([]byte(inputs[0].text))
			buf := new(bytes.Buffer)
			if err := format.Format(buf, doc); err != nil {
				return err
			}
			if !write {
				return writeOutput(cmd, "", buf.Bytes(), 0)
			}
			if buf.String() == inputs[0].text {
				return nil
			}
			info, err := os.Stat(inputs[0].name)
			if err != nil {
				return fmt.Errorf("fmt: %w", err)
			}
			return writeOutput(cmd, inputs[0].name, buf.Bytes(), info.Mode().Perm())
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the result back to the file instead of stdout")
	return cmd
}
