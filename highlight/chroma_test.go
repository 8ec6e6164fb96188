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
	"testing"
)

func TestChromaFallback(t *testing.T) {
	if got := ChromaFallback("no-such-language-xyz"); got != nil {
		t.Errorf("ChromaFallback(\"no-such-language-xyz\") = %v; want nil", got)
	}

	tokenizer := ChromaFallback("haskell")
	if tokenizer == nil {
		t.Fatal("ChromaFallback(\"haskell\") = nil")
	}
	const code = "module Main where\n\nmain = putStrLn \"hi\" -- greet"
	tokens := tokenizer.Tokenize(code)
	sb := new(strings.Builder)
	classified := 0
	for _, tok := range tokens {
		sb.WriteString(tok.Text)
		if tok.Class != Plain {
			classified++
		}
	}
	if got := sb.String(); got != code {
		t.Errorf("joined tokens = %q; want %q", got, code)
	}
	if classified == 0 {
		t.Errorf("Tokenize(%q) classified nothing: %v", code, tokens)
	}
}

func TestRegistryWithChromaFallback(t *testing.T) {
	reg := Default().Clone()
	reg.Fallback = ChromaFallback
	if _, isLexer := reg.Lookup("go").(*Lexer); !isLexer {
		t.Error("built-in lexer was not preferred over fallback")
	}
	if _, isChroma := reg.Lookup("elixir").(chromaTokenizer); !isChroma {
		t.Errorf("Lookup(\"elixir\") = %T; want chroma tokenizer", reg.Lookup("elixir"))
	}
}

func TestFitTokens(t *testing.T) {
	tokens := []Token{{Class: Keyword, Text: "x"}, {Class: Plain, Text: "\n"}}
	got := fitTokens(tokens, "x", 2)
	if len(got) != 1 || got[0].Text != "x" {
		t.Errorf("fitTokens trimmed result = %v; want [x]", got)
	}

	mismatch := []Token{{Class: Keyword, Text: "y"}}
	got = fitTokens(mismatch, "x", 1)
	if len(got) != 1 || got[0].Class != Plain || got[0].Text != "x" {
		t.Errorf("fitTokens mismatch = %v; want single plain token", got)
	}
}
