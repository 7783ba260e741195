/*
Copyright 2025 Bank Recon Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package recon

import (
	"embed"

	"github.com/m-islam-ciplc/bank-recon/cache"
	"github.com/m-islam-ciplc/bank-recon/config"
	"github.com/m-islam-ciplc/bank-recon/database"
)

//go:embed sql/*.sql
var SQLFiles embed.FS

// Recon is the reconciliation service: the three matching stages plus the
// run bookkeeping around them.
type Recon struct {
	datasource database.IDataSource
	cache      cache.Cache
}

func NewRecon(db database.IDataSource) (*Recon, error) {
	_, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	newCache, err := cache.NewCache()
	if err != nil {
		return nil, err
	}
	return &Recon{datasource: db, cache: newCache}, nil
}
