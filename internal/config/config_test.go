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

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points every config search path at empty directories.
func isolate(t *testing.T) string {
	t.Helper()
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("HOME", t.TempDir())
	return xdg
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		isolate(t)
		v := viper.New()
		require.NoError(t, Load(context.Background(), v))

		for _, o := range GetConfigOptions() {
			assert.EqualValues(t, o.Default, v.Get(o.Key), o.Key)
		}
	})

	t.Run("file from search path", func(t *testing.T) {
		xdg := isolate(t)
		writeFile(t, filepath.Join(xdg, "chatmark", "config.toml"),
			"[outline]\nmin_headings = 3\n\n[html]\nid_prefix = \"msg-\"\n")
		v := viper.New()
		require.NoError(t, Load(context.Background(), v))

		assert.Equal(t, 3, v.GetInt("outline.min_headings"))
		assert.Equal(t, "msg-", v.GetString("html.id_prefix"))
		assert.Equal(t, "Table of Contents", v.GetString("outline.title"))
	})

	t.Run("env overrides file", func(t *testing.T) {
		xdg := isolate(t)
		writeFile(t, filepath.Join(xdg, "chatmark", "config.toml"), "[html]\nid_prefix = \"file-\"\n")
		t.Setenv("CHATMARK_HTML_ID_PREFIX", "env-")
		t.Setenv("CHATMARK_HTML_SANITIZE", "true")
		v := viper.New()
		require.NoError(t, Load(context.Background(), v))

		assert.Equal(t, "env-", v.GetString("html.id_prefix"))
		assert.True(t, v.GetBool("html.sanitize"))
	})

	t.Run("explicit file", func(t *testing.T) {
		isolate(t)
		path := filepath.Join(t.TempDir(), "custom.toml")
		writeFile(t, path, "[outline]\ntitle = \"Contents\"\n")
		v := viper.New()
		v.SetConfigFile(path)
		require.NoError(t, Load(context.Background(), v))

		assert.Equal(t, "Contents", v.GetString("outline.title"))
	})

	t.Run("missing explicit file", func(t *testing.T) {
		isolate(t)
		v := viper.New()
		v.SetConfigFile(filepath.Join(t.TempDir(), "nope.toml"))
		assert.Error(t, Load(context.Background(), v))
	})

	t.Run("malformed file", func(t *testing.T) {
		xdg := isolate(t)
		writeFile(t, filepath.Join(xdg, "chatmark", "config.toml"), "[outline\nmin_headings = ")
		v := viper.New()
		err := Load(context.Background(), v)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "load config")
	})

	t.Run("invalid value", func(t *testing.T) {
		xdg := isolate(t)
		writeFile(t, filepath.Join(xdg, "chatmark", "config.toml"), "[outline]\nmin_headings = -1\n")
		v := viper.New()
		err := Load(context.Background(), v)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "outline.min_headings")
	})
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		v := viper.New()
		applyDefaults(v)
		v.Set("html.id_prefix", "msg-1:")
		assert.NoError(t, Validate(v))
	})

	t.Run("reports every problem", func(t *testing.T) {
		v := viper.New()
		applyDefaults(v)
		v.Set("outline.min_headings", -2)
		v.Set("outline.title", "two\nlines")
		v.Set("html.id_prefix", "1 bad\"")

		err := Validate(v)
		require.Error(t, err)
		msg := err.Error()
		for _, want := range []string{
			"outline.min_headings must be 0 or greater",
			"outline.title must be a single line",
			"html.id_prefix",
		} {
			assert.Contains(t, msg, want)
		}
	})
}

func TestRenderDefaultTOML(t *testing.T) {
	out := RenderDefaultTOML()
	assert.Contains(t, out, "[outline]\n")
	assert.Contains(t, out, "min_headings = 2\n")
	assert.Contains(t, out, "title = \"Table of Contents\"\n")
	assert.Contains(t, out, "[highlight]\n")

	t.Run("round trip", func(t *testing.T) {
		isolate(t)
		path := filepath.Join(t.TempDir(), "config.toml")
		writeFile(t, path, out)
		v := viper.New()
		v.SetConfigFile(path)
		require.NoError(t, Load(context.Background(), v))
		for _, o := range GetConfigOptions() {
			assert.True(t, v.InConfig(o.Key), "%s missing from generated file", o.Key)
			assert.EqualValues(t, o.Default, v.Get(o.Key), o.Key)
		}
	})
}

func TestNewRenderer(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		v := viper.New()
		applyDefaults(v)
		r := NewRenderer(v)

		assert.Equal(t, "", r.IDPrefix)
		assert.Equal(t, 2, r.OutlineMinHeadings)
		assert.Equal(t, "Table of Contents", r.OutlineTitle)
		assert.False(t, r.NoExternalLinkIcon)
		assert.Nil(t, r.Policy)
		assert.Nil(t, r.Languages)
	})

	t.Run("all options", func(t *testing.T) {
		v := viper.New()
		applyDefaults(v)
		v.Set("outline.min_headings", 0)
		v.Set("html.id_prefix", "m-")
		v.Set("html.sanitize", true)
		v.Set("html.external_link_icon", false)
		v.Set("highlight.chroma_fallback", true)
		r := NewRenderer(v)

		assert.Equal(t, "m-", r.IDPrefix)
		assert.Equal(t, -1, r.OutlineMinHeadings)
		assert.True(t, r.NoExternalLinkIcon)
		assert.NotNil(t, r.Policy)
		require.NotNil(t, r.Languages)
		assert.True(t, r.Languages.Has("go"))
		assert.NotNil(t, r.Languages.Fallback)

		got := r.RenderString("# A\n\n## B\n\n<https://example.com>")
		assert.NotContains(t, got, "table-of-contents")
		assert.Contains(t, got, `id="m-a"`)
		assert.NotContains(t, got, "fa-external-link-alt")
	})
}
