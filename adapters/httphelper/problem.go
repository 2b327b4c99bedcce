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

package httphelper

import (
	"net/http"
)

// ErrorMessage is the error body the Grafana HTTP API responds with.
type ErrorMessage struct {
	Message string `json:"message"`
	Status  string `json:"status,omitempty"`
}

// RespondError sends a JSON error message with the given status code
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorMessage{Message: message})
}

func Respond401(w http.ResponseWriter) {
	RespondError(w, http.StatusUnauthorized, "Unauthorized")
}

func Respond404(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, message)
}

func Respond400(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, message)
}

func Respond409(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusConflict, message)
}
