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

package config

// ConfigOption is a single configuration key.
type ConfigOption struct {
	Key     string
	Default any
	Comment string
}

// GetConfigOptions returns the configuration options, their defaults and their meanings.
// This is the single source of truth for defaults and the generated config file.
func GetConfigOptions() []ConfigOption {
	return []ConfigOption{
		{Key: "outline.min_headings", Default: 2, Comment: "Headings a message needs before a table of contents is inserted; 0 disables it"},
		{Key: "outline.title", Default: "Table of Contents", Comment: "Title shown above the table of contents"},

		{Key: "html.id_prefix", Default: "", Comment: "Prefix for generated ids, to keep several messages on one page apart"},
		{Key: "html.sanitize", Default: false, Comment: "Filter the rendered HTML through the sanitizer policy"},
		{Key: "html.external_link_icon", Default: true, Comment: "Append an icon to links that leave the site"},

		{Key: "highlight.chroma_fallback", Default: false, Comment: "Use chroma lexers for code languages without a built-in highlighter"},

		{Key: "log.verbose", Default: false, Comment: "Log recovered rendering failures to stderr"},
	}
}
