// Copyright 2025 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/juju/errors"
)

type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewScanner(in), out: out}
}

// askInt prints question and reads an integer. An empty answer selects
// defaultValue when it is not nil.
func (p *prompter) askInt(question string, defaultValue *int) (int, error) {
	if defaultValue != nil {
		question = fmt.Sprintf("%s[%d] ", question, *defaultValue)
	}
	if _, err := fmt.Fprint(p.out, question); err != nil {
		return 0, errors.Trace(err)
	}
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return 0, errors.Trace(err)
		}
		return 0, errors.NotFoundf("answer to %q", strings.TrimSpace(question))
	}
	answer := strings.TrimSpace(p.in.Text())
	if answer == "" && defaultValue != nil {
		return *defaultValue, nil
	}
	value, err := strconv.Atoi(answer)
	if err != nil {
		return 0, errors.NotValidf("number %q", answer)
	}
	return value, nil
}
