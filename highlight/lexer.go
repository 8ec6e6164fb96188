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

package highlight

import (
	"fmt"
	"regexp"
	"strings"
)

// A Rule classifies the text matched by a regular expression.
type Rule struct {
	Class   Class
	Pattern string
	// Group selects a capture group of Pattern to classify.
	// Zero classifies the whole match.
	// Text of the match outside the group is left unclassified.
	Group int
}

// A Lexer is a [Tokenizer] built from an ordered sequence of passes.
//
// Each pass scans only the text left unclassified by earlier passes.
// Within a pass, the rules are tried as alternatives:
// the leftmost match wins, and among matches starting at the same position,
// the earlier rule wins.
// Since patterns are compiled with package regexp,
// every pass runs in time linear in the size of its input.
type Lexer struct {
	passes []lexerPass
}

type lexerPass struct {
	re     *regexp.Regexp
	rules  []Rule
	groups []int
}

// NewLexer compiles a lexer from a sequence of passes.
func NewLexer(passes ...[]Rule) (*Lexer, error) {
	l := &Lexer{passes: make([]lexerPass, 0, len(passes))}
	for i, rules := range passes {
		if len(rules) == 0 {
			continue
		}
		p, err := compilePass(rules)
		if err != nil {
			return nil, fmt.Errorf("pass %d: %w", i, err)
		}
		l.passes = append(l.passes, p)
	}
	return l, nil
}

// MustLexer is like [NewLexer] but panics if a pattern cannot be compiled.
func MustLexer(passes ...[]Rule) *Lexer {
	l, err := NewLexer(passes...)
	if err != nil {
		panic(err)
	}
	return l
}

func compilePass(rules []Rule) (lexerPass, error) {
	p := lexerPass{
		rules:  rules,
		groups: make([]int, len(rules)),
	}
	sb := new(strings.Builder)
	group := 1
	for i, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return lexerPass{}, err
		}
		if r.Group < 0 || r.Group > re.NumSubexp() {
			return lexerPass{}, fmt.Errorf("rule %q: group %d out of range", r.Pattern, r.Group)
		}
		if i > 0 {
			sb.WriteString("|")
		}
		sb.WriteString("(")
		sb.WriteString(r.Pattern)
		sb.WriteString(")")
		p.groups[i] = group
		group += 1 + re.NumSubexp()
	}
	var err error
	p.re, err = regexp.Compile(sb.String())
	if err != nil {
		return lexerPass{}, err
	}
	return p, nil
}

// Tokenize splits code into tokens.
func (l *Lexer) Tokenize(code string) []Token {
	if code == "" {
		return nil
	}
	tokens := []Token{{Class: Plain, Text: code}}
	for i := range l.passes {
		tokens = l.passes[i].apply(tokens)
	}
	return tokens
}

func (p *lexerPass) apply(tokens []Token) []Token {
	result := make([]Token, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Class != Plain {
			result = append(result, tok)
			continue
		}
		result = p.split(result, tok.Text)
	}
	return result
}

func (p *lexerPass) split(dst []Token, text string) []Token {
	plainStart := 0
	for _, m := range p.re.FindAllStringSubmatchIndex(text, -1) {
		for i, r := range p.rules {
			g := p.groups[i] + r.Group
			if m[2*p.groups[i]] < 0 {
				continue
			}
			start, end := m[2*g], m[2*g+1]
			if start < plainStart || start >= end {
				break
			}
			dst = appendPlain(dst, text[plainStart:start])
			dst = append(dst, Token{Class: r.Class, Text: text[start:end]})
			plainStart = end
			break
		}
	}
	return appendPlain(dst, text[plainStart:])
}

func appendPlain(dst []Token, text string) []Token {
	if text == "" {
		return dst
	}
	return append(dst, Token{Class: Plain, Text: text})
}

// words returns a rule matching any of the space-separated words in list.
func words(class Class, list string) Rule {
	return Rule{Class: class, Pattern: wordPattern(list)}
}

// foldWords is like words but matches case-insensitively.
func foldWords(class Class, list string) Rule {
	return Rule{Class: class, Pattern: `(?i)` + wordPattern(list)}
}

func wordPattern(list string) string {
	fields := strings.Fields(list)
	for i, w := range fields {
		fields[i] = regexp.QuoteMeta(w)
	}
	return `\b(?:` + strings.Join(fields, "|") + `)\b`
}
