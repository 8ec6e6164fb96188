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

import (
	"github.com/spf13/viper"
	"zombiezen.com/go/chatmark"
	"zombiezen.com/go/chatmark/highlight"
)

// NewRenderer returns a renderer configured from a loaded Viper instance.
func NewRenderer(v *viper.Viper) *chatmark.HTMLRenderer {
	r := &chatmark.HTMLRenderer{
		IDPrefix:           v.GetString("html.id_prefix"),
		OutlineMinHeadings: v.GetInt("outline.min_headings"),
		OutlineTitle:       v.GetString("outline.title"),
		NoExternalLinkIcon: !v.GetBool("html.external_link_icon"),
	}
	if r.OutlineMinHeadings == 0 {
		r.OutlineMinHeadings = -1
	}
	if v.GetBool("html.sanitize") {
		r.Policy = chatmark.NewSanitizePolicy()
	}
	if v.GetBool("highlight.chroma_fallback") {
		r.Languages = highlight.Default().Clone()
		r.Languages.Fallback = highlight.ChromaFallback
	}
	return r
}
