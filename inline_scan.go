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
	"sort"
	"strings"

	"golang.org/x/net/html/atom"
)

// An inlineScanner finds the closing half of brackets, parentheses,
// code spans and honored tags in one inline text.
// Every answer is remembered, and a scan that meets an opener
// with a known answer jumps over it,
// so a text full of unclosed openers is scanned a bounded number of times
// instead of once per opener.
type inlineScanner struct {
	text string
	// runs maps a backtick run length to the starts of the runs of that length.
	runs      map[int][]int
	labelEnds map[int]int
	parenEnds map[int]int
	closers   map[atom.Atom][]tagBounds
}

type tagBounds struct {
	start, end int
}

// closingRun returns the start of the first run of exactly n backticks
// at or after from, or -1 if there is none.
// from must not be inside a run of backticks.
func (sc *inlineScanner) closingRun(from, n int) int {
	if sc.runs == nil {
		sc.runs = make(map[int][]int)
		for i := 0; i < len(sc.text); {
			if sc.text[i] != '`' {
				i++
				continue
			}
			m := backtickRunLength(sc.text[i:])
			sc.runs[m] = append(sc.runs[m], i)
			i += m
		}
	}
	starts := sc.runs[n]
	k := sort.SearchInts(starts, from)
	if k == len(starts) {
		return -1
	}
	return starts[k]
}

// labelEnd returns the index of the ']' that closes the link label
// opened by the '[' at open, or -1 if there is none.
// Escapes, code spans and balanced brackets inside the label are skipped.
func (sc *inlineScanner) labelEnd(open int) int {
	if end, ok := sc.labelEnds[open]; ok {
		return end
	}
	if sc.labelEnds == nil {
		sc.labelEnds = make(map[int]int)
	}
	text := sc.text
	stack := []int{open}
scan:
	for i := open + 1; i < len(text) && len(stack) > 0; {
		switch text[i] {
		case '\\':
			i += 2
			continue
		case '`':
			n := backtickRunLength(text[i:])
			if end := sc.closingRun(i+n, n); end >= 0 {
				i = end + n
			} else {
				i += n
			}
			continue
		case '[':
			if end, ok := sc.labelEnds[i]; ok {
				if end < 0 {
					break scan
				}
				i = end + 1
				continue
			}
			stack = append(stack, i)
		case ']':
			sc.labelEnds[stack[len(stack)-1]] = i
			stack = stack[:len(stack)-1]
		}
		i++
	}
	for _, o := range stack {
		sc.labelEnds[o] = -1
	}
	return sc.labelEnds[open]
}

// parenEnd returns the index of the ')' that closes the link target
// opened by the '(' at open, or -1 if there is none.
// Link targets do not span lines.
func (sc *inlineScanner) parenEnd(open int) int {
	if end, ok := sc.parenEnds[open]; ok {
		return end
	}
	if sc.parenEnds == nil {
		sc.parenEnds = make(map[int]int)
	}
	text := sc.text
	stack := []int{open}
scan:
	for i := open + 1; i < len(text) && len(stack) > 0; {
		switch text[i] {
		case '\\':
			i += 2
			continue
		case '\n':
			break scan
		case '(':
			if end, ok := sc.parenEnds[i]; ok {
				if end < 0 {
					break scan
				}
				i = end + 1
				continue
			}
			stack = append(stack, i)
		case ')':
			sc.parenEnds[stack[len(stack)-1]] = i
			stack = stack[:len(stack)-1]
		}
		i++
	}
	for _, o := range stack {
		sc.parenEnds[o] = -1
	}
	return sc.parenEnds[open]
}

// closingTag returns the bounds of the first closing tag for name
// that starts at or after from, or (-1, -1) if there is none.
func (sc *inlineScanner) closingTag(from int, name atom.Atom) (start, end int) {
	if sc.closers == nil {
		sc.closers = make(map[atom.Atom][]tagBounds)
		for offset := 0; ; {
			i := strings.Index(sc.text[offset:], "</")
			if i < 0 {
				break
			}
			start := offset + i
			if tag, ok := parseHTMLTag(sc.text[start:]); ok && tag.closing {
				sc.closers[tag.name] = append(sc.closers[tag.name], tagBounds{start, start + tag.end})
			}
			offset = start + 2
		}
	}
	tags := sc.closers[name]
	k := sort.Search(len(tags), func(k int) bool { return tags[k].start >= from })
	if k == len(tags) {
		return -1, -1
	}
	return tags[k].start, tags[k].end
}
