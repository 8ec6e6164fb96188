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

package chatmark

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

var (
	classAttrPattern = regexp.MustCompile(`^[\w\- ]+$`)
	idAttrPattern    = regexp.MustCompile(`^[\w\-:.]+$`)
)

// NewSanitizePolicy returns an HTML sanitizer policy
// that admits everything an [HTMLRenderer] produces
// and rejects script, styles, event handlers and unsafe URL schemes.
// Assign it to [HTMLRenderer.Policy]
// or use it to filter HTML that was stored before rendering.
func NewSanitizePolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("nav", "div", "span", "button", "input", "kbd", "mark", "abbr", "sub", "sup", "del", "i")
	p.AllowAttrs("class").Matching(classAttrPattern).Globally()
	p.AllowAttrs("id").Matching(idAttrPattern).Globally()
	p.AllowAttrs("type").Matching(regexp.MustCompile(`^(?:button|checkbox)$`)).OnElements("button", "input")
	p.AllowAttrs("checked", "disabled").OnElements("input")
	p.AllowAttrs("data-copy-target").Matching(idAttrPattern).OnElements("button")
	p.AllowAttrs("aria-label").OnElements("button")
	p.AllowAttrs("loading").Matching(regexp.MustCompile(`^lazy$`)).OnElements("img")
	p.AllowAttrs("title").OnElements("a", "abbr", "img")
	p.AllowAttrs("start").Matching(bluemonday.Integer).OnElements("ol")
	p.RequireNoReferrerOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}
