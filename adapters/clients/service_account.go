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
	"context"
	"fmt"

	"github.com/google/uuid"

	log "github.com/sirupsen/logrus"
	"github.com/ubirch/ubirch-load-test/logger"
	"github.com/ubirch/ubirch-load-test/vars"
)

// ServiceAccountToken identifies the service account and token minted by
// BootstrapServiceAccount
type ServiceAccountToken struct {
	ServiceAccountID   int64
	ServiceAccountName string
	TokenID            int64
	TokenName          string
	Key                string
}

// BootstrapServiceAccount creates an admin service account with the basic
// credentials of username, mints a non-expiring token for it and returns a
// client authenticated with that token. Any unexpected status aborts the
// bootstrap with a *StatusError, a service account created up to then is
// deleted again.
//
// It is meant to run once per test run, the token is handed to the
// virtual users instead of bootstrapping again.
func BootstrapServiceAccount(ctx context.Context, transport Transport, url, username, password string) (*GrafanaClient, *ServiceAccountToken, error) {
	basicClient := NewGrafanaClient(transport, url, Basic(username, password))

	saName := vars.ServiceAccountPrefix + shortID()
	saResp := basicClient.ServiceAccounts.Create(ctx, saName, vars.AdminRole)
	if !isCreated(saResp) {
		return nil, nil, newStatusError("create service account", saResp)
	}

	var sa ServiceAccount
	if err := saResp.JSON(&sa); err != nil {
		return nil, nil, fmt.Errorf("unable to read created service account: %v", err)
	}
	logger.AuditLogf("created service account %q (id %d)", saName, sa.ID)

	tokenName := vars.TokenPrefix + shortID()
	tokenResp := basicClient.ServiceAccounts.CreateToken(ctx, sa.ID, tokenName, 0)
	if !isCreated(tokenResp) {
		discardServiceAccount(ctx, basicClient, sa.ID)
		return nil, nil, newStatusError("create service account token", tokenResp)
	}

	var token Token
	if err := tokenResp.JSON(&token); err != nil {
		discardServiceAccount(ctx, basicClient, sa.ID)
		return nil, nil, fmt.Errorf("unable to read created service account token: %v", err)
	}
	log.Debugf("minted token %q for service account %d", tokenName, sa.ID)

	saToken := &ServiceAccountToken{
		ServiceAccountID:   sa.ID,
		ServiceAccountName: saName,
		TokenID:            token.ID,
		TokenName:          tokenName,
		Key:                token.Key,
	}

	return NewGrafanaClient(transport, url, Bearer(token.Key)), saToken, nil
}

// DeleteServiceAccount removes the service account and thereby revokes its tokens
func DeleteServiceAccount(ctx context.Context, transport Transport, url, username, password string, id int64) error {
	basicClient := NewGrafanaClient(transport, url, Basic(username, password))

	resp := basicClient.ServiceAccounts.Delete(ctx, id)
	if !resp.Success() {
		return newStatusError("delete service account", resp)
	}
	logger.AuditLogf("deleted service account %d", id)
	return nil
}

// discardServiceAccount removes a half bootstrapped service account, a
// failure is only logged as the bootstrap error takes precedence
func discardServiceAccount(ctx context.Context, basicClient *GrafanaClient, id int64) {
	resp := basicClient.ServiceAccounts.Delete(ctx, id)
	if !resp.Success() {
		log.Errorf("unable to delete service account %d after failed bootstrap: %v", id, newStatusError("delete service account", resp))
		return
	}
	logger.AuditLogf("deleted service account %d", id)
}

func shortID() string {
	return uuid.NewString()[:6]
}
