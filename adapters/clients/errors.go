// Copyright (c) 2023 ubirch GmbH
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package clients

import "fmt"

// StatusError is returned by operations that cannot continue after the
// target system responded with an unexpected status
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *StatusError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s failed, status: %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

func newStatusError(op string, resp *Response) *StatusError {
	return &StatusError{
		Op:         op,
		StatusCode: resp.Status,
		Body:       string(resp.Body),
		Err:        resp.Error,
	}
}

// isCreated matches the status codes Grafana responds with on resource creation
func isCreated(resp *Response) bool {
	return resp.Error == nil && (resp.Status == 200 || resp.Status == 201)
}
