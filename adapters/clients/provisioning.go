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
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/ubirch/ubirch-load-test/vars"
)

// EnsureOrganization returns the ID of the organization with the given
// name and creates it if it does not exist yet
func EnsureOrganization(ctx context.Context, g *GrafanaClient, name string) (int64, error) {
	resp := g.Orgs.FindByName(ctx, name)
	switch {
	case resp.Error == nil && resp.Status == http.StatusOK:
		var org Organization
		if err := resp.JSON(&org); err != nil {
			return 0, err
		}
		log.Debugf("organization %q exists: %d", name, org.ID)
		return org.ID, nil
	case resp.Error == nil && resp.Status == http.StatusNotFound:
		// create below
	default:
		return 0, newStatusError("get organization", resp)
	}

	resp = g.Orgs.Create(ctx, name)
	if !isCreated(resp) {
		return 0, newStatusError("create organization", resp)
	}

	var created CreateOrgResponse
	if err := resp.JSON(&created); err != nil {
		return 0, err
	}
	log.Infof("created organization %q: %d", name, created.OrgID)
	return created.OrgID, nil
}

// EnsureTestdataDatasource returns the ID of the datasource with the
// given name and creates a testdata datasource if it does not exist yet.
// The datasource is created in the organization the client is scoped to.
func EnsureTestdataDatasource(ctx context.Context, g *GrafanaClient, name string) (int64, error) {
	resp := g.Datasources.FindByName(ctx, name)
	switch {
	case resp.Error == nil && resp.Status == http.StatusOK:
		var ds Datasource
		if err := resp.JSON(&ds); err != nil {
			return 0, err
		}
		log.Debugf("datasource %q exists: %d", name, ds.ID)
		return ds.ID, nil
	case resp.Error == nil && resp.Status == http.StatusNotFound:
		// create below
	default:
		return 0, newStatusError("get datasource", resp)
	}

	resp = g.Datasources.Create(ctx, Datasource{
		Name:   name,
		Type:   vars.TestdataType,
		Access: "proxy",
	})
	if !isCreated(resp) {
		return 0, newStatusError("create datasource", resp)
	}

	var created CreateDatasourceResponse
	if err := resp.JSON(&created); err != nil {
		return 0, err
	}
	if created.ID == 0 {
		return 0, fmt.Errorf("created datasource %q without id", name)
	}
	log.Infof("created datasource %q: %d", name, created.ID)
	return created.ID, nil
}
