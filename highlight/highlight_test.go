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

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestLexers(t *testing.T) {
	tests := []struct {
		name string
		lang string
		code string
		want []Token
	}{
		{
			name: "GoKeywordsAndLiterals",
			lang: "go",
			code: `if x == nil { return "nil" } // done`,
			want: []Token{
				{Keyword, "if"},
				{Plain, " x == "},
				{Literal, "nil"},
				{Plain, " { "},
				{Keyword, "return"},
				{Plain, " "},
				{String, `"nil"`},
				{Plain, " } "},
				{Comment, "// done"},
			},
		},
		{
			name: "CommentInsideString",
			lang: "JavaScript",
			code: `const u = "http://x"; // c`,
			want: []Token{
				{Keyword, "const"},
				{Plain, " u = "},
				{String, `"http://x"`},
				{Plain, "; "},
				{Comment, "// c"},
			},
		},
		{
			name: "SQLCaseInsensitive",
			lang: "sql",
			code: "select * from t where id = 1",
			want: []Token{
				{Keyword, "select"},
				{Plain, " * "},
				{Keyword, "from"},
				{Plain, " t "},
				{Keyword, "where"},
				{Plain, " id = "},
				{Number, "1"},
			},
		},
		{
			name: "PythonComment",
			lang: "py",
			code: "def f(): # if",
			want: []Token{
				{Keyword, "def"},
				{Plain, " f(): "},
				{Comment, "# if"},
			},
		},
		{
			name: "HTMLTag",
			lang: "html",
			code: `<a href="x">hi</a>`,
			want: []Token{
				{Plain, "<"},
				{Tag, "a"},
				{Plain, " "},
				{Attribute, "href"},
				{Plain, "="},
				{String, `"x"`},
				{Plain, ">hi</"},
				{Tag, "a"},
				{Plain, ">"},
			},
		},
		{
			name: "JSONKeys",
			lang: "json",
			code: `{"a": 1, "b": "c"}`,
			want: []Token{
				{Plain, "{"},
				{Key, `"a"`},
				{Plain, ": "},
				{Number, "1"},
				{Plain, ", "},
				{Key, `"b"`},
				{Plain, ": "},
				{String, `"c"`},
				{Plain, "}"},
			},
		},
		{
			name: "ShellVariableInString",
			lang: "bash",
			code: `echo "$HOME" # hi`,
			want: []Token{
				{Builtin, "echo"},
				{Plain, " "},
				{String, `"$HOME"`},
				{Plain, " "},
				{Comment, "# hi"},
			},
		},
		{
			name: "Unknown",
			lang: "brainfunk",
			code: "x<y",
			want: []Token{
				{Plain, "x<y"},
			},
		},
		{
			name: "Empty",
			lang: "go",
			code: "",
			want: nil,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := Default().Lookup(test.lang).Tokenize(test.code)
			if diff := cmp.Diff(test.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Tokenize(%q) (-want +got):\n%s", test.code, diff)
			}
		})
	}
}

var sampleCode = []string{
	"",
	"package main\n\nimport \"fmt\"\n\nfunc main() {\n\tfmt.Println(\"hello, world\") // greet\n}\n",
	"/* unterminated comment\nint x = 0x1F;",
	"SELECT name, COUNT(*) FROM users -- trailing\nWHERE age > 21.5;",
	"<!-- c --><div class='a' id=\"b\">x &amp; y</div>",
	"a { color: #fff; margin: 0 auto !important; }\n@media (max-width: 10px) { .b:hover { top: 1px } }",
	"def f(x):\n    '''doc \"\"\"\n    '''\n    return x ** 2  # square\n",
	"echo \"unterminated\n$PATH ${HOME} $1\n# comment",
	"# Title\n\n- **bold** and *it* with `code` and [link](http://x)\n",
	"key: value # note\nlist:\n  - 'a'\n  - 1.5\nflag: yes\n",
	"fn main() { println!(\"{}\", 'c'); let r: &'static str = \"\\\"\"; }",
	"class A\n  def b\n    @x = :sym\n    $g = nil\n  end\nend\n",
	"<?php $x = 1; # note\necho \"hi\"; ?>",
	"`unterminated backtick \" ' /* //",
	"\\\\\"\"''``",
}

func TestTokenizePreservesText(t *testing.T) {
	reg := Default()
	for _, lang := range reg.Languages() {
		tokenizer := reg.Lookup(lang)
		for _, code := range sampleCode {
			tokens := tokenizer.Tokenize(code)
			sb := new(strings.Builder)
			for i, tok := range tokens {
				if tok.Text == "" {
					t.Errorf("Lookup(%q).Tokenize(%q)[%d] is empty", lang, code, i)
				}
				sb.WriteString(tok.Text)
			}
			if got := sb.String(); got != code {
				t.Errorf("Lookup(%q).Tokenize(%q) joined = %q; want input", lang, code, got)
			}
		}
	}
}

func TestDefaultLanguages(t *testing.T) {
	reg := Default()
	for _, lang := range []string{
		"javascript", "js", "typescript", "ts", "python", "py", "html", "css", "scss", "sass",
		"json", "xml", "sql", "bash", "shell", "sh", "php", "java", "cpp", "c", "csharp", "cs",
		"go", "rust", "ruby", "swift", "kotlin", "dart", "yaml", "yml", "markdown", "md",
	} {
		if !reg.Has(lang) {
			t.Errorf("Default().Has(%q) = false; want true", lang)
		}
	}
}

func TestRegistry(t *testing.T) {
	upper := TokenizerFunc(func(code string) []Token {
		return []Token{{Class: Keyword, Text: code}}
	})

	t.Run("NormalizedNames", func(t *testing.T) {
		reg := NewRegistry()
		reg.Register(upper, "Foo")
		got := reg.Lookup("  FOO ").Tokenize("x")
		want := []Token{{Class: Keyword, Text: "x"}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Lookup(\"  FOO \").Tokenize (-want +got):\n%s", diff)
		}
	})

	t.Run("Fallback", func(t *testing.T) {
		reg := NewRegistry()
		var asked []string
		reg.Fallback = func(lang string) Tokenizer {
			asked = append(asked, lang)
			if lang == "bar" {
				return upper
			}
			return nil
		}
		if got := reg.Lookup("Bar").Tokenize("y"); len(got) != 1 || got[0].Class != Keyword {
			t.Errorf("Lookup(\"Bar\").Tokenize(\"y\") = %v; want one keyword", got)
		}
		if got := reg.Lookup("baz").Tokenize("z"); len(got) != 1 || got[0].Class != Plain {
			t.Errorf("Lookup(\"baz\").Tokenize(\"z\") = %v; want one plain token", got)
		}
		reg.Lookup("")
		if diff := cmp.Diff([]string{"bar", "baz"}, asked); diff != "" {
			t.Errorf("fallback calls (-want +got):\n%s", diff)
		}
	})

	t.Run("CloneIsIndependent", func(t *testing.T) {
		reg := NewRegistry()
		reg.Register(upper, "a")
		clone := reg.Clone()
		clone.Register(upper, "b")
		if reg.Has("b") {
			t.Error("registering on clone changed original")
		}
		if diff := cmp.Diff([]string{"a", "b"}, clone.Languages()); diff != "" {
			t.Errorf("clone.Languages() (-want +got):\n%s", diff)
		}
	})

	t.Run("Nil", func(t *testing.T) {
		var reg *Registry
		got := reg.Lookup("go").Tokenize("go")
		want := []Token{{Class: Plain, Text: "go"}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("nil registry Lookup (-want +got):\n%s", diff)
		}
	})
}

func TestNewLexerErrors(t *testing.T) {
	tests := []struct {
		name  string
		rules []Rule
	}{
		{"BadPattern", []Rule{{Class: Keyword, Pattern: `(`}}},
		{"GroupOutOfRange", []Rule{{Class: Keyword, Pattern: `a(b)`, Group: 2}}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := NewLexer(test.rules); err == nil {
				t.Error("NewLexer did not return an error")
			}
		})
	}
}

func TestClassString(t *testing.T) {
	tests := []struct {
		class Class
		want  string
	}{
		{Keyword, "keyword"},
		{Attribute, "attr"},
		{InstanceVariable, "instance-variable"},
		{Class(200), "Class(200)"},
	}
	for _, test := range tests {
		if got := test.class.String(); got != test.want {
			t.Errorf("Class(%d).String() = %q; want %q", uint8(test.class), got, test.want)
		}
	}
}

func BenchmarkLexer(b *testing.B) {
	code := strings.Repeat(sampleCode[1], 50)
	tokenizer := Default().Lookup("go")
	b.SetBytes(int64(len(code)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tokenizer.Tokenize(code)
	}
}
