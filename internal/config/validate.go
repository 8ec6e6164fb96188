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
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

var idPrefixPattern = regexp.MustCompile(`^[A-Za-z][\w\-:.]*$`)

// Validate reports every invalid setting in v.
func Validate(v *viper.Viper) error {
	var errs []error
	if n := v.GetInt("outline.min_headings"); n < 0 {
		errs = append(errs, fmt.Errorf("outline.min_headings must be 0 or greater (got %d)", n))
	}
	if title := v.GetString("outline.title"); strings.ContainsAny(title, "\r\n") {
		errs = append(errs, errors.New("outline.title must be a single line"))
	}
	if prefix := v.GetString("html.id_prefix"); prefix != "" && !idPrefixPattern.MatchString(prefix) {
		errs = append(errs, fmt.Errorf("html.id_prefix %q must start with a letter and contain only letters, digits, '-', '_', ':' or '.'", prefix))
	}
	return errors.Join(errs...)
}
