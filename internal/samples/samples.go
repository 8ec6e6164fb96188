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

// Package samples provides sample chat messages
// for property tests and benchmarks.
package samples

import (
	"embed"
	"io/fs"
	"path"
	"strings"
)

// Sample is a single message.
type Sample struct {
	Name string
	Text string
}

//go:embed messages/*.md
var messages embed.FS

// Load returns the sample messages sorted by name.
func Load() ([]Sample, error) {
	entries, err := fs.ReadDir(messages, "messages")
	if err != nil {
		return nil, err
	}
	var result []Sample
	for _, ent := range entries {
		data, err := fs.ReadFile(messages, path.Join("messages", ent.Name()))
		if err != nil {
			return nil, err
		}
		result = append(result, Sample{
			Name: strings.TrimSuffix(ent.Name(), ".md"),
			Text: string(data),
		})
	}
	return result, nil
}
