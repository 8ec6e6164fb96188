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
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"golang.org/x/net/html"
)

func TestEscapeString(t *testing.T) {
	tests := []struct {
		s    string
		want string
	}{
		{"", ""},
		{"plain text", "plain text"},
		{`<a href="x">'&'</a>`, "&lt;a href=&quot;x&quot;&gt;&#39;&amp;&#39;&lt;/a&gt;"},
		{"&amp;", "&amp;amp;"},
		{"héllo <wörld>", "héllo &lt;wörld&gt;"},
	}
	for _, test := range tests {
		if got := EscapeString(test.s); got != test.want {
			t.Errorf("EscapeString(%q) = %q; want %q", test.s, got, test.want)
		}
		if got := string(EscapeHTML([]byte("x"), []byte(test.s))); got != "x"+test.want {
			t.Errorf("EscapeHTML(\"x\", %q) = %q; want %q", test.s, got, "x"+test.want)
		}
	}
}

func FuzzEscapeString(f *testing.F) {
	f.Add("")
	f.Add(`<script>alert("x")</script>`)
	f.Add("it's & that's")
	f.Fuzz(func(t *testing.T, s string) {
		if !utf8.ValidString(s) {
			t.Skip("Invalid UTF-8")
		}
		escaped := EscapeString(s)
		if got := html.UnescapeString(escaped); got != s {
			t.Errorf("html.UnescapeString(EscapeString(%q)) = %q", s, got)
		}
	})
}

func TestNormalizeURI(t *testing.T) {
	tests := []struct {
		s    string
		want string
	}{
		{"", ""},
		{"https://example.com/", "https://example.com/"},
		{"https://example.com/a b", "https://example.com/a%20b"},
		{"/ü", "/%C3%BC"},
		{"%zz", "%25zz"},
		{"%2F", "%2F"},
		{"%2f", "%2f"},
		{"100%", "100%25"},
		{`a"b`, "a%22b"},
		{"[x]", "%5Bx%5D"},
		{"/path?q=1&r=2#frag", "/path?q=1&r=2#frag"},
	}
	for _, test := range tests {
		if got := NormalizeURI(test.s); got != test.want {
			t.Errorf("NormalizeURI(%q) = %q; want %q", test.s, got, test.want)
		}
	}
}

func TestClassifyLink(t *testing.T) {
	tests := []struct {
		dest string
		want linkTarget
	}{
		{"https://example.com", externalTarget},
		{"HTTP://EXAMPLE.COM", externalTarget},
		{"ftp://example.com/file", externalTarget},
		{"mailto:a@example.com", externalTarget},
		{"tel:+15555555555", externalTarget},
		{"/docs", localTarget},
		{"#section", localTarget},
		{"page.html", localTarget},
		{"page?at=a:b", localTarget},
		{"", localTarget},
		{"javascript:alert(1)", unsafeTarget},
		{" JavaScript:alert(1)", unsafeTarget},
		{"java\nscript:alert(1)", unsafeTarget},
		{"vbscript:msgbox", unsafeTarget},
		{"data:text/html,<script>", unsafeTarget},
		{"file:///etc/passwd", unsafeTarget},
	}
	for _, test := range tests {
		if got := classifyLink(test.dest); got != test.want {
			t.Errorf("classifyLink(%q) = %d; want %d", test.dest, got, test.want)
		}
	}
}

func TestIsSafeImageSource(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"/cat.png", true},
		{"cat.png", true},
		{"https://example.com/cat.png", true},
		{"http://example.com/cat.png", true},
		{"ftp://example.com/cat.png", false},
		{"data:image/png;base64,AAAA", false},
		{"javascript:alert(1)", false},
	}
	for _, test := range tests {
		if got := isSafeImageSource(test.src); got != test.want {
			t.Errorf("isSafeImageSource(%q) = %t; want %t", test.src, got, test.want)
		}
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Hello World!", "hello-world"},
		{"Café Résumé", "cafe-resume"},
		{"  Go 1.22 release ", "go-1-22-release"},
		{"C++ & Go", "c-go"},
		{"Straße", "straße"},
		{"日本語", "日本語"},
		{"🚀", "section"},
		{"", "section"},
	}
	for _, test := range tests {
		if got := Slug(test.text); got != test.want {
			t.Errorf("Slug(%q) = %q; want %q", test.text, got, test.want)
		}
	}
}

func TestSlugger(t *testing.T) {
	s := newSlugger()
	var got []string
	for _, text := range []string{"A", "A", "A-1", "A", "B"} {
		got = append(got, s.unique(text))
	}
	want := []string{"a", "a-1", "a-1-1", "a-2", "b"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("slugs (-want +got):\n%s", diff)
	}
}

func TestOutline(t *testing.T) {
	doc := Parse([]byte("# Intro\n\ntext\n\n> ## *Intro*\n\n## Café `x`\n\n###### Deep"))
	got := Outline(doc)
	want := []HeadingEntry{
		{Level: 1, Title: "Intro", Slug: "intro"},
		{Level: 2, Title: "Intro", Slug: "intro-1"},
		{Level: 2, Title: "Café x", Slug: "cafe-x"},
		{Level: 6, Title: "Deep", Slug: "deep"},
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreUnexported(HeadingEntry{})); diff != "" {
		t.Errorf("Outline(...) (-want +got):\n%s", diff)
	}
}

