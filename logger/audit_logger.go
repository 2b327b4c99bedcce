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

package logger

import log "github.com/sirupsen/logrus"

const auditKeyWord = "AUDIT"

var auditLogFields = log.Fields{"tags": []string{auditKeyWord}}

// AuditLogf logs changes the load test makes on the target system,
// e.g. service accounts created during setup and removed during teardown.
func AuditLogf(format string, args ...interface{}) {
	log.WithFields(auditLogFields).Infof(format, args...)
}
