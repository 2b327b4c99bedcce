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

import (
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/ubirch/ubirch-load-test/vars"
)

type CredentialKind int

const (
	NoCredentials CredentialKind = iota
	BasicCredentials
	BearerCredentials
)

func (k CredentialKind) String() string {
	switch k {
	case NoCredentials:
		return "none"
	case BasicCredentials:
		return "basic"
	case BearerCredentials:
		return "bearer"
	default:
		return fmt.Sprintf("CredentialKind(%d)", int(k))
	}
}

// Credentials is the authentication material a client injects into every
// request it sends. Only the fields belonging to Kind are used.
type Credentials struct {
	Kind     CredentialKind
	Username string
	Password string
	Token    string
}

func None() Credentials {
	return Credentials{Kind: NoCredentials}
}

func Basic(username, password string) Credentials {
	return Credentials{Kind: BasicCredentials, Username: username, Password: password}
}

func Bearer(token string) Credentials {
	return Credentials{Kind: BearerCredentials, Token: token}
}

// Apply sets the Authorization header for the credential kind. It only
// touches the given header, which must belong to a single request.
func (c Credentials) Apply(header http.Header) {
	switch c.Kind {
	case NoCredentials:
	case BasicCredentials:
		token := c.Username + ":" + c.Password
		header.Set(vars.AuthorizationHeader, vars.BasicScheme+" "+base64.StdEncoding.EncodeToString([]byte(token)))
	case BearerCredentials:
		header.Set(vars.AuthorizationHeader, vars.BearerScheme+" "+c.Token)
	default:
		panic(fmt.Sprintf("unsupported credentials: %s", c.Kind))
	}
}

// String never contains the secret parts of the credentials
func (c Credentials) String() string {
	switch c.Kind {
	case BasicCredentials:
		return fmt.Sprintf("basic(%s:***)", c.Username)
	case BearerCredentials:
		return "bearer(***)"
	default:
		return c.Kind.String()
	}
}
