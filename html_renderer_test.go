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
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"zombiezen.com/go/chatmark/highlight"
	"zombiezen.com/go/chatmark/internal/normhtml"
)

const tocAB = `<nav class="table-of-contents"><div class="toc-title">Table of Contents</div>` +
	`<ul class="toc-list">` +
	`<li class="toc-item toc-level-1"><a href="#a">A</a></li>` +
	`<li class="toc-item toc-level-2"><a href="#b">B</a></li>` +
	`</ul></nav>`

const externalIcon = ` <i class="fas fa-external-link-alt"></i>`

func TestRender(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "Empty",
			input: "",
			want:  "",
		},
		{
			name:  "Paragraph",
			input: "Hello **World**!",
			want:  "<p>Hello <strong>World</strong>!</p>\n",
		},
		{
			name:  "BoldItalic",
			input: "***both***",
			want:  "<p><strong><em>both</em></strong></p>\n",
		},
		{
			name:  "LineBreak",
			input: "a\nb",
			want:  "<p>a<br>\nb</p>\n",
		},
		{
			name:  "SingleHeading",
			input: "# Only",
			want:  "<h1 id=\"only\">Only</h1>\n",
		},
		{
			name:  "Outline",
			input: "# A\n\ntext\n\n## B",
			want: "<h1 id=\"a\">A</h1>\n" +
				tocAB + "\n" +
				"<p>text</p>\n" +
				"<h2 id=\"b\">B</h2>\n",
		},
		{
			name:  "DuplicateHeadings",
			input: "# A\n# A",
			want: "<h1 id=\"a\">A</h1>\n" +
				`<nav class="table-of-contents"><div class="toc-title">Table of Contents</div>` +
				`<ul class="toc-list">` +
				`<li class="toc-item toc-level-1"><a href="#a">A</a></li>` +
				`<li class="toc-item toc-level-1"><a href="#a-1">A</a></li>` +
				"</ul></nav>\n" +
				"<h1 id=\"a-1\">A</h1>\n",
		},
		{
			name:  "CodeBlockIsLiteral",
			input: "```\n<b>*not bold*</b>\n```",
			want: `<div class="code-block-container"><div class="code-header">` +
				`<span class="language">text</span>` +
				`<button class="copy-btn" type="button" data-copy-target="code-1" aria-label="Copy code">Copy</button>` +
				`</div>` +
				`<pre><code class="language-text" id="code-1">&lt;b&gt;*not bold*&lt;/b&gt;</code></pre></div>` + "\n",
		},
		{
			name:  "StrictTable",
			input: "| a | b |\n|:---|---:|\n| 1 | 2 |",
			want: `<div class="table-container"><table class="markdown-table">` +
				`<thead><tr><th class="align-left">a</th><th class="align-right">b</th></tr></thead>` +
				`<tbody><tr><td class="align-left">1</td><td class="align-right">2</td></tr></tbody>` +
				`</table></div>` + "\n",
		},
		{
			name:  "SeparatorlessTable",
			input: "| a | b |\n| 1 | 2 |",
			want: `<div class="table-container"><table class="markdown-table">` +
				`<thead><tr><th>a</th><th>b</th></tr></thead>` +
				`<tbody><tr><td>1</td><td>2</td></tr></tbody>` +
				`</table></div>` + "\n",
		},
		{
			name:  "ListKindChange",
			input: "- a\n- b\n1. c",
			want:  "<ul>\n<li>a</li>\n<li>b</li>\n</ul>\n<ol>\n<li>c</li>\n</ol>\n",
		},
		{
			name:  "OrderedStart",
			input: "3. x\n4. y",
			want:  "<ol start=\"3\">\n<li>x</li>\n<li>y</li>\n</ol>\n",
		},
		{
			name:  "TaskList",
			input: "- [ ] todo\n- [x] done",
			want: "<ul>\n" +
				"<li class=\"task-item\"><input type=\"checkbox\" disabled> todo</li>\n" +
				"<li class=\"task-item\"><input type=\"checkbox\" checked disabled> done</li>\n" +
				"</ul>\n",
		},
		{
			name:  "NestedList",
			input: "- a\n  - b",
			want:  "<ul>\n<li>a<ul>\n<li>b</li>\n</ul>\n</li>\n</ul>\n",
		},
		{
			name:  "BlockQuote",
			input: "> quote",
			want:  "<blockquote class=\"markdown-blockquote\">\n<p>quote</p>\n</blockquote>\n",
		},
		{
			name:  "ThematicBreak",
			input: "---",
			want:  "<hr class=\"markdown-hr\">\n",
		},
		{
			name:  "ExternalLink",
			input: "[x](https://a.com)",
			want:  `<p><a href="https://a.com" target="_blank" rel="noopener noreferrer" class="external-link">x` + externalIcon + `</a></p>` + "\n",
		},
		{
			name:  "LocalLink",
			input: `[x](/docs#y "Docs")`,
			want:  `<p><a href="/docs#y" title="Docs">x</a></p>` + "\n",
		},
		{
			name:  "UnsafeLink",
			input: "[x](javascript:alert(1))",
			want:  "<p>x</p>\n",
		},
		{
			name:  "ObfuscatedUnsafeLink",
			input: "[x](java\tscript:alert(1))",
			want:  "<p>x</p>\n",
		},
		{
			name:  "Autolink",
			input: "see https://a.com",
			want:  `<p>see <a href="https://a.com" target="_blank" rel="noopener noreferrer" class="auto-link">https://a.com` + externalIcon + `</a></p>` + "\n",
		},
		{
			name:  "Image",
			input: "![cat](/cat.png)",
			want: `<p><span class="image-container">` +
				`<img src="/cat.png" alt="cat" loading="lazy" class="markdown-image">` +
				`<span class="image-caption">cat</span></span></p>` + "\n",
		},
		{
			name:  "UnsafeImage",
			input: "![x](data:image/png;base64,AAA)",
			want:  "<p>x</p>\n",
		},
		{
			name:  "ScriptIsText",
			input: "<script>alert('x')</script>",
			want:  "<p>&lt;script&gt;alert(&#39;x&#39;)&lt;/script&gt;</p>\n",
		},
		{
			name:  "InlineCode",
			input: "`a<b`",
			want:  "<p><code class=\"inline-code\">a&lt;b</code></p>\n",
		},
		{
			name:  "Keyboard",
			input: "<kbd>Ctrl</kbd>",
			want:  "<p><kbd class=\"keyboard-key\">Ctrl</kbd></p>\n",
		},
		{
			name:  "Abbreviation",
			input: "*[HTML]: Hyper Text\n\nHTML rocks",
			want:  "<p><abbr title=\"Hyper Text\">HTML</abbr> rocks</p>\n",
		},
		{
			name:  "ScriptMarks",
			input: "H~2~O x^2^ ==m== ~~d~~",
			want:  "<p>H<sub>2</sub>O x<sup>2</sup> <mark>m</mark> <del>d</del></p>\n",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := &HTMLRenderer{Languages: highlight.NewRegistry()}
			got := r.RenderString(test.input)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("Input: %q\nOutput (-want +got):\n%s", test.input, diff)
			}
		})
	}
}

func TestHTMLRendererOptions(t *testing.T) {
	const twoHeadings = "# A\n\n## B"
	tests := []struct {
		name     string
		renderer *HTMLRenderer
		input    string
		want     string
	}{
		{
			name:     "IDPrefix",
			renderer: &HTMLRenderer{IDPrefix: "m1-", OutlineMinHeadings: -1},
			input:    "# A\n\n```\nx\n```",
			want: "<h1 id=\"m1-a\">A</h1>\n" +
				`<div class="code-block-container"><div class="code-header">` +
				`<span class="language">text</span>` +
				`<button class="copy-btn" type="button" data-copy-target="m1-code-1" aria-label="Copy code">Copy</button>` +
				`</div>` +
				`<pre><code class="language-text" id="m1-code-1">x</code></pre></div>` + "\n",
		},
		{
			name:     "OutlineDisabled",
			renderer: &HTMLRenderer{OutlineMinHeadings: -1},
			input:    twoHeadings,
			want:     "<h1 id=\"a\">A</h1>\n<h2 id=\"b\">B</h2>\n",
		},
		{
			name:     "OutlineMinHeadings",
			renderer: &HTMLRenderer{OutlineMinHeadings: 3},
			input:    twoHeadings,
			want:     "<h1 id=\"a\">A</h1>\n<h2 id=\"b\">B</h2>\n",
		},
		{
			name:     "OutlineTitle",
			renderer: &HTMLRenderer{OutlineTitle: "<Contents>"},
			input:    twoHeadings,
			want: "<h1 id=\"a\">A</h1>\n" +
				strings.Replace(tocAB, "Table of Contents", "&lt;Contents&gt;", 1) + "\n" +
				"<h2 id=\"b\">B</h2>\n",
		},
		{
			name:     "NoExternalLinkIcon",
			renderer: &HTMLRenderer{NoExternalLinkIcon: true},
			input:    "<https://a.com>",
			want:     `<p><a href="https://a.com" target="_blank" rel="noopener noreferrer" class="auto-link">https://a.com</a></p>` + "\n",
		},
		{
			name:     "StrictPolicy",
			renderer: &HTMLRenderer{Policy: bluemonday.StrictPolicy()},
			input:    "Hello **World**!",
			want:     "Hello World!\n",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := test.renderer.RenderString(test.input)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("Input: %q\nOutput (-want +got):\n%s", test.input, diff)
			}
		})
	}
}

func TestHighlightedCodeBlock(t *testing.T) {
	keywordFirst := highlight.TokenizerFunc(func(code string) []highlight.Token {
		word, rest, _ := strings.Cut(code, " ")
		return []highlight.Token{
			{Class: highlight.Keyword, Text: word},
			{Class: highlight.Plain, Text: code[len(word):len(code)-len(rest)] + rest},
		}
	})
	languages := highlight.NewRegistry()
	languages.Register(keywordFirst, "toy")
	languages.Register(highlight.TokenizerFunc(func(code string) []highlight.Token {
		panic("boom")
	}), "panics")
	languages.Register(highlight.TokenizerFunc(func(code string) []highlight.Token {
		return []highlight.Token{{Class: highlight.Keyword, Text: "x"}}
	}), "short")

	tests := []struct {
		lang string
		want string
	}{
		{"toy", `<span class="keyword">func</span> f() &lt; 1`},
		{"TOY", `<span class="keyword">func</span> f() &lt; 1`},
		{"panics", `func f() &lt; 1`},
		{"short", `func f() &lt; 1`},
		{"unknown", `func f() &lt; 1`},
	}
	r := &HTMLRenderer{Languages: languages}
	for _, test := range tests {
		got := r.RenderString("```" + test.lang + "\nfunc f() < 1\n```")
		_, code, ok := strings.Cut(got, `id="code-1">`)
		if !ok {
			t.Errorf("code block %q missing code element:\n%s", test.lang, got)
			continue
		}
		code, _, _ = strings.Cut(code, "</code>")
		if code != test.want {
			t.Errorf("code block %q = %q; want %q", test.lang, code, test.want)
		}
		if want := `<span class="language">` + test.lang + `</span>`; !strings.Contains(got, want) {
			t.Errorf("code block %q does not contain %q:\n%s", test.lang, want, got)
		}
	}
}

func TestHeadingIDsMatchOutline(t *testing.T) {
	const input = "# Café\n\n> ## Café\n\n### 🚀\n\n#### Done!"
	got := (&HTMLRenderer{IDPrefix: "x-"}).RenderString(input)
	doc, err := html.Parse(strings.NewReader(got))
	if err != nil {
		t.Fatal(err)
	}
	var ids, hrefs []string
	var visit func(n *html.Node, inNav bool)
	visit = func(n *html.Node, inNav bool) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
				ids = append(ids, attrValue(n, "id"))
			case atom.Nav:
				inNav = true
			case atom.A:
				if inNav {
					hrefs = append(hrefs, strings.TrimPrefix(attrValue(n, "href"), "#"))
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c, inNav)
		}
	}
	visit(doc, false)
	want := []string{"x-cafe", "x-cafe-1", "x-section", "x-done"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("heading ids (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, hrefs); diff != "" {
		t.Errorf("outline links (-want +got):\n%s", diff)
	}
}

func TestTableCellsRoundTrip(t *testing.T) {
	cells := [][]string{
		{"a & b", `"quoted"`, "<tag>"},
		{"1", "it's", "x > y"},
		{"", "last", ""},
	}
	sb := new(strings.Builder)
	for _, row := range cells {
		sb.WriteString("|")
		for _, cell := range row {
			sb.WriteString(" " + cell + " |")
		}
		sb.WriteString("\n")
	}
	got := Render(sb.String())
	doc, err := html.Parse(strings.NewReader(got))
	if err != nil {
		t.Fatal(err)
	}
	var parsed [][]string
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Tr {
			var row []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode {
					row = append(row, textContent(c))
				}
			}
			parsed = append(parsed, row)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(doc)
	if diff := cmp.Diff(cells, parsed); diff != "" {
		t.Errorf("cells (-want +got):\n%s", diff)
	}
}

func TestRenderOutputIsWellFormed(t *testing.T) {
	inputs := []string{
		"**a *b** c*",
		"<b><i>x</b></i>",
		"[a [b](/c)](/d)",
		"| `a | b` | c |\n| d |",
		"- a\n   - b\n - c\n1. d",
		strings.Repeat("[", 50) + "x" + strings.Repeat("](/y)", 50),
		strings.Repeat("<b>", 40) + "x" + strings.Repeat("</b>", 40),
		"```js\n</code></pre><script>alert(1)</script>\n```",
	}
	for _, input := range inputs {
		got := Render(input)
		if problems := normhtml.Audit([]byte(got)); len(problems) > 0 {
			t.Errorf("Render(%q) problems:\n%s\nOutput:\n%s", input, strings.Join(problems, "\n"), got)
		}
	}
}

func TestRenderWriter(t *testing.T) {
	buf := new(bytes.Buffer)
	if err := new(HTMLRenderer).Render(buf, Parse([]byte("*hi*"))); err != nil {
		t.Error("Render:", err)
	}
	if got, want := buf.String(), "<p><em>hi</em></p>\n"; got != want {
		t.Errorf("output = %q; want %q", got, want)
	}

	err := new(HTMLRenderer).Render(failWriter{}, Parse([]byte("*hi*")))
	if !errors.Is(err, errWriteFailed) {
		t.Errorf("Render(failWriter{}, ...) = %v; want %v", err, errWriteFailed)
	}
}

var errWriteFailed = errors.New("write failed")

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) {
	return 0, errWriteFailed
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	sb := new(strings.Builder)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}
