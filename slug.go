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
	"strconv"
	"unicode"

	"github.com/shurcooL/sanitized_anchor_name"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slug returns the anchor identifier for a heading's text.
// Diacritics are removed, letters are lowercased,
// and runs of other characters become single hyphens.
// Text with no letters or digits produces "section".
func Slug(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}
	slug := sanitized_anchor_name.Create(cases.Lower(language.Und).String(folded))
	if slug == "" {
		return "section"
	}
	return slug
}

// slugger assigns unique slugs within a document.
// A repeated slug gets a numeric suffix: "intro", "intro-1", "intro-2".
type slugger struct {
	used map[string]bool
	next map[string]int
}

func newSlugger() *slugger {
	return &slugger{
		used: make(map[string]bool),
		next: make(map[string]int),
	}
}

func (s *slugger) unique(text string) string {
	base := Slug(text)
	slug := base
	n := s.next[base]
	if n > 0 {
		slug = base + "-" + strconv.Itoa(n)
	}
	for s.used[slug] {
		n++
		slug = base + "-" + strconv.Itoa(n)
	}
	s.next[base] = n + 1
	s.used[slug] = true
	return slug
}
