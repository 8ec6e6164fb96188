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

// Package normhtml inspects rendered HTML in tests.
// [Normalize] removes insignificant differences between two renderings
// and [Audit] checks that a rendering stays within the renderer's vocabulary.
package normhtml

import (
	"bytes"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"go4.org/bytereplacer"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var whitespaceRE = regexp.MustCompile(`\s+`)

var htmlEscaper = bytereplacer.New(
	"&", "&amp;",
	`'`, "&#39;",
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&quot;",
)

type attribute struct {
	key   string
	value string
}

// Normalize strips insignificant output differences from HTML:
// whitespace around block elements, runs of whitespace outside <pre>,
// attribute order, and the order of class names.
func Normalize(b []byte) []byte {
	tok := html.NewTokenizerFragment(bytes.NewReader(b), "div")
	var output []byte
	last := html.StartTagToken
	var lastTag atom.Atom
	inPre := false
	for {
		tt := tok.Next()
		switch tt {
		case html.ErrorToken:
			return bytes.TrimRightFunc(output, unicode.IsSpace)
		case html.TextToken:
			data := tok.Text()
			afterTag := last == html.EndTagToken || last == html.StartTagToken
			if afterTag && lastTag == atom.Br {
				data = bytes.TrimLeft(data, "\n")
			}
			if !inPre {
				data = whitespaceRE.ReplaceAll(data, []byte(" "))
				if afterTag && blockTags[lastTag] {
					data = bytes.TrimLeftFunc(data, unicode.IsSpace)
				}
			}
			output = append(output, htmlEscaper.Replace(bytes.Clone(data))...)
		case html.EndTagToken:
			name, _ := tok.TagName()
			tag := atom.Lookup(name)
			if tag == atom.Pre {
				inPre = false
			} else if blockTags[tag] {
				output = bytes.TrimRightFunc(output, unicode.IsSpace)
			}
			output = append(output, "</"...)
			output = append(output, name...)
			output = append(output, '>')
			lastTag = tag
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := tok.TagName()
			tag := atom.Lookup(name)
			if tag == atom.Pre {
				inPre = true
			}
			if blockTags[tag] {
				output = bytes.TrimRightFunc(output, unicode.IsSpace)
			}
			output = append(output, '<')
			output = append(output, name...)
			for _, attr := range sortedAttributes(tok, hasAttr) {
				output = append(output, ' ')
				output = append(output, attr.key...)
				if attr.value != "" {
					output = append(output, `="`...)
					output = append(output, html.EscapeString(attr.value)...)
					output = append(output, '"')
				}
			}
			output = append(output, '>')
			lastTag = tag
		case html.CommentToken:
			output = append(output, tok.Raw()...)
		}

		last = tt
		if tt == html.SelfClosingTagToken {
			last = html.EndTagToken
		}
	}
}

func sortedAttributes(tok *html.Tokenizer, hasAttr bool) []attribute {
	var attrs []attribute
	for more := hasAttr; more; {
		var k, v []byte
		k, v, more = tok.TagAttr()
		attr := attribute{string(k), string(v)}
		if attr.key == "class" {
			classes := strings.Fields(attr.value)
			slices.Sort(classes)
			attr.value = strings.Join(classes, " ")
		}
		attrs = append(attrs, attr)
	}
	slices.SortFunc(attrs, func(a, b attribute) int {
		return strings.Compare(a.key, b.key)
	})
	return attrs
}

// Audit reports every way in which b strays outside
// the elements and attributes that the renderer produces:
// unknown elements, unknown or event handler attributes,
// URLs with schemes that can run script,
// and end tags that do not match an open element.
// Audit returns nil if b is clean.
func Audit(b []byte) []string {
	var problems []string
	var open []atom.Atom
	tok := html.NewTokenizerFragment(bytes.NewReader(b), "div")
	for {
		tt := tok.Next()
		switch tt {
		case html.ErrorToken:
			for _, tag := range open {
				problems = append(problems, fmt.Sprintf("<%v> never closed", tag))
			}
			return problems
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := tok.TagName()
			tag := atom.Lookup(name)
			if !allowedTags[tag] {
				problems = append(problems, fmt.Sprintf("unexpected element <%s>", name))
			}
			for more := hasAttr; more; {
				var k, v []byte
				k, v, more = tok.TagAttr()
				problems = append(problems, auditAttribute(string(name), string(k), string(v))...)
			}
			if tt == html.StartTagToken && !voidTags[tag] {
				open = append(open, tag)
			}
		case html.EndTagToken:
			name, _ := tok.TagName()
			tag := atom.Lookup(name)
			if len(open) == 0 || open[len(open)-1] != tag {
				problems = append(problems, fmt.Sprintf("unmatched </%s>", name))
				continue
			}
			open = open[:len(open)-1]
		case html.CommentToken, html.DoctypeToken:
			problems = append(problems, fmt.Sprintf("unexpected %q", tok.Raw()))
		}
	}
}

func auditAttribute(tag, key, value string) []string {
	if !allowedAttributes[key] {
		return []string{fmt.Sprintf("unexpected attribute %s on <%s>", key, tag)}
	}
	if key != "href" && key != "src" {
		return nil
	}
	scheme, _, ok := strings.Cut(strings.ToLower(strings.TrimSpace(value)), ":")
	if !ok || strings.ContainsAny(scheme, "/?#") {
		return nil
	}
	switch scheme {
	case "http", "https", "ftp", "mailto", "tel":
		return nil
	default:
		return []string{fmt.Sprintf("%s=%q on <%s> uses scheme %q", key, value, tag, scheme)}
	}
}

var allowedTags = setOf(
	atom.A, atom.Abbr, atom.Blockquote, atom.Br, atom.Button, atom.Code,
	atom.Del, atom.Div, atom.Em, atom.H1, atom.H2, atom.H3, atom.H4,
	atom.H5, atom.H6, atom.Hr, atom.I, atom.Img, atom.Input, atom.Kbd,
	atom.Li, atom.Mark, atom.Nav, atom.Ol, atom.P, atom.Pre, atom.Span,
	atom.Strong, atom.Sub, atom.Sup, atom.Table, atom.Tbody, atom.Td,
	atom.Th, atom.Thead, atom.Tr, atom.Ul,
)

var voidTags = setOf(atom.Br, atom.Hr, atom.Img, atom.Input)

var allowedAttributes = map[string]bool{
	"alt":              true,
	"aria-label":       true,
	"checked":          true,
	"class":            true,
	"data-copy-target": true,
	"disabled":         true,
	"href":             true,
	"id":               true,
	"loading":          true,
	"rel":              true,
	"src":              true,
	"start":            true,
	"target":           true,
	"title":            true,
	"type":             true,
}

var blockTags = setOf(
	atom.Blockquote, atom.Button, atom.Div, atom.H1, atom.H2, atom.H3,
	atom.H4, atom.H5, atom.H6, atom.Hr, atom.Li, atom.Nav, atom.Ol,
	atom.P, atom.Pre, atom.Table, atom.Tbody, atom.Td, atom.Th,
	atom.Thead, atom.Tr, atom.Ul,
)

func setOf(tags ...atom.Atom) map[atom.Atom]bool {
	m := make(map[atom.Atom]bool, len(tags))
	for _, tag := range tags {
		m[tag] = true
	}
	return m
}
