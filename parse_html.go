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
	"strings"

	"golang.org/x/net/html/atom"
)

// inlineTagKinds maps the literal HTML tags that are honored in text
// to the node they produce.
// Any other tag is shown as text.
var inlineTagKinds = map[atom.Atom]InlineKind{
	atom.Kbd:    KeyboardKind,
	atom.B:      StrongKind,
	atom.Strong: StrongKind,
	atom.I:      EmphasisKind,
	atom.Em:     EmphasisKind,
	atom.Del:    StrikethroughKind,
	atom.S:      StrikethroughKind,
	atom.Sub:    SubscriptKind,
	atom.Sup:    SuperscriptKind,
	atom.Mark:   MarkKind,
	atom.Br:     LineBreakKind,
}

// htmlTag is an attribute-less open or closing tag.
type htmlTag struct {
	name    atom.Atom
	closing bool
	end     int
}

// parseHTMLTag parses a tag like "<kbd>", "</kbd>" or "<br />"
// at the start of s.
// Tags with attributes are not recognized.
func parseHTMLTag(s string) (htmlTag, bool) {
	if len(s) < 3 || s[0] != '<' {
		return htmlTag{}, false
	}
	var tag htmlTag
	i := 1
	if s[i] == '/' {
		tag.closing = true
		i++
	}
	nameStart := i
	if i >= len(s) || !isASCIILetter(s[i]) {
		return htmlTag{}, false
	}
	for i < len(s) && (isASCIILetter(s[i]) || isASCIIDigit(s[i]) || s[i] == '-') {
		i++
	}
	tag.name = atom.Lookup([]byte(strings.ToLower(s[nameStart:i])))
	if tag.name == 0 {
		return htmlTag{}, false
	}
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	if !tag.closing && i < len(s) && s[i] == '/' {
		i++
	}
	if i >= len(s) || s[i] != '>' {
		return htmlTag{}, false
	}
	tag.end = i + 1
	return tag, true
}

func isASCIILetter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}
