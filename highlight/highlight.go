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

// Package highlight splits source code into classified tokens
// for presentational syntax highlighting.
//
// Tokenization never alters the code:
// concatenating the Text of every returned [Token]
// always yields the original input.
package highlight

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Class is an enumeration of token classes.
// The zero value is [Plain], which denotes unclassified text.
type Class uint8

const (
	Plain Class = iota
	Keyword
	Literal
	Number
	String
	Comment
	Builtin
	Type
	Variable
	Tag
	Attribute
	Selector
	Property
	Key
	AtRule
	InstanceVariable
	Heading
	Strong
	Emphasis
	Code
	Link
	ListItem

	numClasses
)

var classNames = [numClasses]string{
	Plain:            "plain",
	Keyword:          "keyword",
	Literal:          "literal",
	Number:           "number",
	String:           "string",
	Comment:          "comment",
	Builtin:          "builtin",
	Type:             "type",
	Variable:         "variable",
	Tag:              "tag",
	Attribute:        "attr",
	Selector:         "selector",
	Property:         "property",
	Key:              "key",
	AtRule:           "at-rule",
	InstanceVariable: "instance-variable",
	Heading:          "header",
	Strong:           "bold",
	Emphasis:         "italic",
	Code:             "code",
	Link:             "link",
	ListItem:         "list-item",
}

// String returns the CSS class name used for the token class.
func (c Class) String() string {
	if c >= numClasses {
		return fmt.Sprintf("Class(%d)", uint8(c))
	}
	return classNames[c]
}

// Token is a classified span of source code.
type Token struct {
	Class Class
	Text  string
}

// A Tokenizer splits source code into tokens.
// Implementations must be safe to call from multiple goroutines
// and must return tokens whose texts concatenate to the input.
type Tokenizer interface {
	Tokenize(code string) []Token
}

// TokenizerFunc is a function that implements [Tokenizer].
type TokenizerFunc func(code string) []Token

// Tokenize calls f(code).
func (f TokenizerFunc) Tokenize(code string) []Token {
	return f(code)
}

// Identity is a [Tokenizer] that returns its input as a single [Plain] token.
var Identity Tokenizer = TokenizerFunc(identity)

func identity(code string) []Token {
	if code == "" {
		return nil
	}
	return []Token{{Class: Plain, Text: code}}
}

// NormalizeLanguage returns the registry key for a language tag.
func NormalizeLanguage(lang string) string {
	return strings.ToLower(strings.TrimSpace(lang))
}

// A Registry maps normalized language names to tokenizers.
// Registration is not synchronized:
// register everything before calling Lookup concurrently.
type Registry struct {
	tokenizers map[string]Tokenizer

	// Fallback is consulted for a non-empty language name
	// that has no registered tokenizer.
	// If Fallback is nil or returns nil, Lookup returns [Identity].
	Fallback func(lang string) Tokenizer
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{tokenizers: make(map[string]Tokenizer)}
}

// Register associates a tokenizer with one or more language names,
// replacing any previous association.
func (r *Registry) Register(t Tokenizer, names ...string) {
	if r.tokenizers == nil {
		r.tokenizers = make(map[string]Tokenizer)
	}
	for _, name := range names {
		r.tokenizers[NormalizeLanguage(name)] = t
	}
}

// Has reports whether a tokenizer is registered for the language.
// Fallback is not consulted.
func (r *Registry) Has(lang string) bool {
	if r == nil {
		return false
	}
	_, ok := r.tokenizers[NormalizeLanguage(lang)]
	return ok
}

// Lookup returns the tokenizer for the given language tag.
// Unknown or empty tags yield [Identity].
// Calling Lookup on a nil registry always returns [Identity].
func (r *Registry) Lookup(lang string) Tokenizer {
	if r == nil {
		return Identity
	}
	name := NormalizeLanguage(lang)
	if t := r.tokenizers[name]; t != nil {
		return t
	}
	if name != "" && r.Fallback != nil {
		if t := r.Fallback(name); t != nil {
			return t
		}
	}
	return Identity
}

// Languages returns the sorted list of registered language names.
func (r *Registry) Languages() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.tokenizers))
	for name := range r.tokenizers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a copy of r that can be modified independently.
func (r *Registry) Clone() *Registry {
	r2 := NewRegistry()
	if r == nil {
		return r2
	}
	for name, t := range r.tokenizers {
		r2.tokenizers[name] = t
	}
	r2.Fallback = r.Fallback
	return r2
}

var defaultRegistry struct {
	once sync.Once
	r    *Registry
}

// Default returns the shared registry of built-in languages.
// The returned registry must not be modified; use [*Registry.Clone] first.
func Default() *Registry {
	defaultRegistry.once.Do(func() {
		defaultRegistry.r = NewRegistry()
		registerBuiltins(defaultRegistry.r)
	})
	return defaultRegistry.r
}
