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
	"strings"
	"unicode/utf8"

	"go4.org/bytereplacer"
)

// htmlSpecialChars are the bytes that [EscapeHTML] replaces.
const htmlSpecialChars = "&'<>\""

var htmlEscaper = bytereplacer.New(
	"&", "&amp;",
	"'", "&#39;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// EscapeHTML appends the HTML-escaped version of src to dst.
// The result is safe to use as element content or as a quoted attribute value.
func EscapeHTML(dst []byte, src []byte) []byte {
	if bytes.IndexAny(src, htmlSpecialChars) < 0 {
		return append(dst, src...)
	}
	return append(dst, htmlEscaper.Replace(bytes.Clone(src))...)
}

// EscapeString returns the HTML-escaped version of s.
func EscapeString(s string) string {
	return string(appendEscaped(nil, s))
}

func appendEscaped(dst []byte, s string) []byte {
	if strings.IndexAny(s, htmlSpecialChars) < 0 {
		return append(dst, s...)
	}
	return EscapeHTML(dst, []byte(s))
}

// NormalizeURI percent-encodes any characters in a string
// that are not reserved or unreserved URI characters.
// This is used for transforming link destinations
// into strings suitable for href or src attributes.
func NormalizeURI(s string) string {
	// RFC 3986 reserved and unreserved characters.
	const safeSet = `;/?:@&=+$,-_.!~*'()#`

	sb := new(strings.Builder)
	sb.Grow(len(s))
	skip := 0
	var buf [utf8.UTFMax]byte
	for i, c := range s {
		if skip > 0 {
			skip--
			sb.WriteRune(c)
			continue
		}
		switch {
		case c == '%':
			if i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
				skip = 2
				sb.WriteByte('%')
			} else {
				sb.WriteString("%25")
			}
		case 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' || strings.ContainsRune(safeSet, c):
			sb.WriteRune(c)
		default:
			n := utf8.EncodeRune(buf[:], c)
			for _, b := range buf[:n] {
				sb.WriteByte('%')
				sb.WriteByte(urlHexDigit(b >> 4))
				sb.WriteByte(urlHexDigit(b & 0x0f))
			}
		}
	}
	return sb.String()
}

func isHex(c byte) bool {
	return 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F' || '0' <= c && c <= '9'
}

func urlHexDigit(x byte) byte {
	switch {
	case x < 0xa:
		return '0' + x
	case x < 0x10:
		return 'A' + x - 0xa
	default:
		panic("out of bounds")
	}
}

// linkTarget classifies a link destination.
type linkTarget uint8

const (
	// unsafeTarget is a destination whose scheme could run script
	// or is otherwise not allowed. Only the link text is shown.
	unsafeTarget linkTarget = iota
	// localTarget is a relative reference or fragment.
	localTarget
	// externalTarget is an absolute http, https, ftp, mailto or tel URL.
	externalTarget
)

// classifyLink reports how a link destination should be rendered.
func classifyLink(dest string) linkTarget {
	switch scheme, ok := uriScheme(dest); {
	case !ok:
		return localTarget
	case scheme == "http" || scheme == "https" || scheme == "ftp" || scheme == "mailto" || scheme == "tel":
		return externalTarget
	default:
		return unsafeTarget
	}
}

// isSafeImageSource reports whether dest may be used as an image source.
func isSafeImageSource(dest string) bool {
	scheme, ok := uriScheme(dest)
	return !ok || scheme == "http" || scheme == "https"
}

// uriScheme returns the lowercased scheme of an absolute URI.
// Browsers ignore whitespace and control characters in a scheme,
// so they are ignored here too.
func uriScheme(dest string) (scheme string, ok bool) {
	cleaned := strings.Map(func(r rune) rune {
		if r <= ' ' || r == 0x7f {
			return -1
		}
		return r
	}, dest)
	for i := 0; i < len(cleaned); i++ {
		c := cleaned[i]
		switch {
		case isASCIILetter(c):
		case i > 0 && (isASCIIDigit(c) || c == '+' || c == '-' || c == '.'):
		case i > 0 && c == ':':
			return strings.ToLower(cleaned[:i]), true
		default:
			return "", false
		}
	}
	return "", false
}
