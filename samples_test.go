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
	"io"
	"strings"
	"testing"
	"unicode/utf8"

	"zombiezen.com/go/chatmark/internal/normhtml"
	"zombiezen.com/go/chatmark/internal/samples"
)

func loadSamples(tb testing.TB) []samples.Sample {
	tb.Helper()
	s, err := samples.Load()
	if err != nil {
		tb.Fatal(err)
	}
	if len(s) == 0 {
		tb.Fatal("no samples")
	}
	return s
}

func TestSamples(t *testing.T) {
	renderers := []struct {
		name string
		r    *HTMLRenderer
	}{
		{"Default", new(HTMLRenderer)},
		{"Sanitized", &HTMLRenderer{Policy: NewSanitizePolicy()}},
		{"Prefixed", &HTMLRenderer{IDPrefix: "msg-42-", NoExternalLinkIcon: true}},
	}
	for _, sample := range loadSamples(t) {
		for _, test := range renderers {
			t.Run(sample.Name+"/"+test.name, func(t *testing.T) {
				got := test.r.RenderString(sample.Text)
				if got == "" {
					t.Fatal("empty output")
				}
				if problems := normhtml.Audit([]byte(got)); len(problems) > 0 {
					t.Errorf("problems:\n%s\nOutput:\n%s", strings.Join(problems, "\n"), got)
				}
				if again := test.r.RenderString(sample.Text); again != got {
					t.Error("second render differs from first")
				}
			})
		}
	}
}

func TestSanitizePolicyKeepsRenderedMarkup(t *testing.T) {
	for _, sample := range loadSamples(t) {
		if sample.Name == "hostile" {
			// URL checks in the policy differ for the obfuscated links here.
			continue
		}
		t.Run(sample.Name, func(t *testing.T) {
			plain := Render(sample.Text)
			sanitized := (&HTMLRenderer{Policy: NewSanitizePolicy()}).RenderString(sample.Text)
			want := elementCounts(plain)
			got := elementCounts(sanitized)
			for tag, n := range want {
				if got[tag] != n {
					t.Errorf("<%s> count = %d after sanitizing; want %d", tag, got[tag], n)
				}
			}
		})
	}
}

// elementCounts counts the start tags in rendered HTML.
func elementCounts(s string) map[string]int {
	counts := make(map[string]int)
	for _, part := range strings.Split(s, "<")[1:] {
		if part == "" || part[0] == '/' {
			continue
		}
		name, _, _ := strings.Cut(part, ">")
		name, _, _ = strings.Cut(name, " ")
		counts[name]++
	}
	return counts
}

func FuzzRender(f *testing.F) {
	for _, sample := range loadSamples(f) {
		f.Add(sample.Text)
	}
	f.Add("***\n| a |\n|---|\n- [x] b\n```\n")
	f.Fuzz(func(t *testing.T, text string) {
		if !utf8.ValidString(text) {
			t.Skip("Invalid UTF-8")
		}
		got := Render(text)
		if problems := normhtml.Audit([]byte(got)); len(problems) > 0 {
			t.Errorf("Input: %q\nproblems:\n%s\nOutput:\n%s", text, strings.Join(problems, "\n"), got)
		}
	})
}

func BenchmarkRender(b *testing.B) {
	sb := new(strings.Builder)
	all := loadSamples(b)
	for i, sample := range all {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(sample.Text)
	}
	input := sb.String()

	b.Run("Parse", func(b *testing.B) {
		b.SetBytes(int64(len(input)))
		b.ReportMetric(float64(len(all)), "messages/op")
		for i := 0; i < b.N; i++ {
			Parse([]byte(input))
		}
	})

	b.Run("HTML", func(b *testing.B) {
		doc := Parse([]byte(input))
		r := new(HTMLRenderer)
		b.ResetTimer()
		b.SetBytes(int64(len(input)))
		for i := 0; i < b.N; i++ {
			r.Render(io.Discard, doc)
		}
	})
}
