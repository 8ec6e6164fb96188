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
	"io"
	"os"
	"path/filepath"

	"github.com/google/renameio/maybe"
	"github.com/spf13/cobra"
	"zombiezen.com/go/chatmark/internal/config"
)

func newConfigCmd() *cobra.Command {
	var out string
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print or write a default config.toml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			content := config.RenderDefaultTOML()
			if out == "" {
				_, err := io.WriteString(cmd.OutOrStdout(), content)
				return err
			}
			return writeConfigFile(cmd, out, content, overwrite)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "write to this path (use \"default\" for "+config.DefaultConfigPath()+")")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace an existing file")
	return cmd
}

func writeConfigFile(cmd *cobra.Command, out, content string, overwrite bool) error {
	if out == "default" {
		out = config.DefaultConfigPath()
	}
	if _, err := os.Stat(out); err == nil && !overwrite {
		return fmt.Errorf("config already exists at %s; use --overwrite to replace it", out)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o700); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := maybe.WriteFile(out, []byte(content), 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
	return nil
}
