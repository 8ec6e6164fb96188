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
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// Chroma adapts a [chroma.Lexer] to the [Tokenizer] interface.
// Chroma token types are mapped to the closest [Class];
// anything without a counterpart is [Plain].
// If the lexer fails, the code is returned as a single plain token.
func Chroma(lexer chroma.Lexer) Tokenizer {
	return chromaTokenizer{lexer: chroma.Coalesce(lexer)}
}

// ChromaFallback returns a tokenizer for any language chroma knows about,
// or nil if chroma has no lexer for lang.
// It is suitable for use as [Registry.Fallback].
func ChromaFallback(lang string) Tokenizer {
	lexer := lexers.Get(lang)
	if lexer == nil {
		return nil
	}
	return Chroma(lexer)
}

type chromaTokenizer struct {
	lexer chroma.Lexer
}

func (t chromaTokenizer) Tokenize(code string) []Token {
	if code == "" {
		return nil
	}
	iter, err := t.lexer.Tokenise(nil, code)
	if err != nil {
		return identity(code)
	}
	var tokens []Token
	n := 0
	for _, ct := range iter.Tokens() {
		if ct.Value == "" {
			continue
		}
		n += len(ct.Value)
		c := chromaClass(ct.Type)
		if len(tokens) > 0 && tokens[len(tokens)-1].Class == c {
			tokens[len(tokens)-1].Text += ct.Value
			continue
		}
		tokens = append(tokens, Token{Class: c, Text: ct.Value})
	}
	return fitTokens(tokens, code, n)
}

// fitTokens verifies that tokens spell out code.
// Chroma lexers may append a trailing newline, which is removed;
// any other difference discards the tokenization.
func fitTokens(tokens []Token, code string, n int) []Token {
	if extra := n - len(code); extra > 0 && len(tokens) > 0 {
		last := &tokens[len(tokens)-1]
		if extra > len(last.Text) || strings.Trim(last.Text[len(last.Text)-extra:], "\n") != "" {
			return identity(code)
		}
		last.Text = last.Text[:len(last.Text)-extra]
		if last.Text == "" {
			tokens = tokens[:len(tokens)-1]
		}
	}
	sb := new(strings.Builder)
	sb.Grow(len(code))
	for _, tok := range tokens {
		sb.WriteString(tok.Text)
	}
	if sb.String() != code {
		return identity(code)
	}
	return tokens
}

func chromaClass(tt chroma.TokenType) Class {
	switch tt {
	case chroma.KeywordConstant:
		return Literal
	case chroma.KeywordType, chroma.NameClass:
		return Type
	case chroma.NameBuiltin, chroma.NameBuiltinPseudo, chroma.NameDecorator:
		return Builtin
	case chroma.NameTag:
		return Tag
	case chroma.NameAttribute:
		return Attribute
	case chroma.NameProperty:
		return Property
	case chroma.NameVariable,
		chroma.NameVariableAnonymous,
		chroma.NameVariableClass,
		chroma.NameVariableGlobal,
		chroma.NameVariableMagic:
		return Variable
	case chroma.NameVariableInstance:
		return InstanceVariable
	}
	switch {
	case tt.InCategory(chroma.Keyword):
		return Keyword
	case tt.InSubCategory(chroma.LiteralString):
		return String
	case tt.InSubCategory(chroma.LiteralNumber):
		return Number
	case tt.InCategory(chroma.Comment):
		return Comment
	default:
		return Plain
	}
}
