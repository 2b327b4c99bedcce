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

import "strings"

// JoinURL composes the request target prefix of a client. At most one
// trailing slash is stripped from base and from sub before they are
// concatenated, an empty sub returns the normalized base.
func JoinURL(base, sub string) string {
	return strings.TrimSuffix(base, "/") + strings.TrimSuffix(sub, "/")
}
