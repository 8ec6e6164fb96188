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
	"cmp"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// AbbreviationMap is a mapping of abbreviations to their expansions,
// as defined by lines of the form "*[HTML]: HyperText Markup Language".
type AbbreviationMap map[string]string

// Title returns the expansion of abbr.
func (m AbbreviationMap) Title(abbr string) (title string, ok bool) {
	title, ok = m[abbr]
	return
}

// Extract adds any abbreviation definitions contained in node to the map.
// In case of conflicts,
// Extract will not replace any existing definitions in the map
// and will use the first definition in source order.
func (m AbbreviationMap) Extract(node Node) {
	Walk(node, &WalkOptions{
		BlocksOnly: true,
		Pre: func(c *Cursor) bool {
			block := c.Node().Block()
			if block.Kind() != AbbreviationDefinitionKind {
				return true
			}
			abbr, title := block.Abbreviation()
			if _, exists := m[abbr]; !exists {
				m[abbr] = title
			}
			return false
		},
	})
}

// abbreviationMatcher finds whole-word uses of abbreviations in text.
type abbreviationMatcher struct {
	re     *regexp.Regexp
	titles AbbreviationMap
}

// newAbbreviationMatcher returns a matcher for m
// or nil if m is empty.
func newAbbreviationMatcher(m AbbreviationMap) *abbreviationMatcher {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for abbr := range m {
		keys = append(keys, regexp.QuoteMeta(abbr))
	}
	// Longest first, so that "HTML5" wins over "HTML".
	slices.SortFunc(keys, func(a, b string) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return &abbreviationMatcher{
		re:     regexp.MustCompile(strings.Join(keys, "|")),
		titles: m,
	}
}

// split returns the text as a sequence of text and abbreviation nodes
// or nil if the text contains no abbreviations.
func (am *abbreviationMatcher) split(text string) []*Inline {
	var result []*Inline
	pos := 0
	for _, loc := range am.re.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		if !isWordBoundary(text, start, end) {
			continue
		}
		if pos < start {
			result = append(result, &Inline{kind: TextKind, text: text[pos:start]})
		}
		abbr := text[start:end]
		result = append(result, &Inline{
			kind:  AbbreviationKind,
			text:  abbr,
			title: am.titles[abbr],
		})
		pos = end
	}
	if result == nil {
		return nil
	}
	if pos < len(text) {
		result = append(result, &Inline{kind: TextKind, text: text[pos:]})
	}
	return result
}

// isWordBoundary reports whether text[start:end] is not adjacent to a word character.
func isWordBoundary(text string, start, end int) bool {
	before, _ := utf8.DecodeLastRuneInString(text[:start])
	after, _ := utf8.DecodeRuneInString(text[end:])
	return !isWordRune(before) && !isWordRune(after)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
