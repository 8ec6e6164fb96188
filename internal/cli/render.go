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
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/renameio/maybe"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// input is a message read from a file or stdin.
type input struct {
	name string
	text string
}

// readInputs reads the named files, or stdin if there are none.
// The name "-" also means stdin.
func readInputs(cmd *cobra.Command, args []string) ([]input, error) {
	if len(args) == 0 {
		args = []string{"-"}
	}
	inputs := make([]input, 0, len(args))
	for _, name := range args {
		var data []byte
		var err error
		if name == "-" {
			in := cmd.InOrStdin()
			if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
				return nil, errors.New("no input: pass a file or pipe a message on stdin")
			}
			data, err = io.ReadAll(in)
		} else {
			data, err = os.ReadFile(name)
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		inputs = append(inputs, input{name: name, text: string(data)})
	}
	return inputs, nil
}

func runRender(cmd *cobra.Command, args []string, output string) error {
	inputs, err := readInputs(cmd, args)
	if err != nil {
		return err
	}
	base := appFrom(cmd).renderer
	sb := new(strings.Builder)
	for i, in := range inputs {
		r := *base
		if len(inputs) > 1 {
			r.IDPrefix += "m" + strconv.Itoa(i+1) + "-"
		}
		sb.WriteString(r.RenderString(in.text))
	}

	return writeOutput(cmd, output, []byte(sb.String()), 0o644)
}

// writeOutput writes data to stdout when output is empty or "-",
// and otherwise replaces the named file atomically where the platform allows.
func writeOutput(cmd *cobra.Command, output string, data []byte, perm os.FileMode) error {
	if output == "" || output == "-" {
		if _, err := cmd.OutOrStdout().Write(data); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		return nil
	}
	if err := maybe.WriteFile(output, data, perm); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
