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
package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAndAddDefaults(t *testing.T) {
	cnf := &Configuration{
		DataSource: DataSourceConfig{Dns: "postgres://localhost/recon"},
		Redis:      RedisConfig{Dns: "localhost:6379"},
	}

	err := cnf.validateAndAddDefaults()
	assert.NoError(t, err)
	assert.Equal(t, "Bank Recon Server", cnf.ProjectName)
	assert.Equal(t, DEFAULT_PORT, cnf.Server.Port)
	assert.Equal(t, DefaultMaxComboSize, cnf.Matching.MaxComboSize)
	assert.Equal(t, DefaultMaxComboTries, cnf.Matching.MaxComboTries)
	assert.Contains(t, cnf.Dialects, "MDB", "Built-in dialects merge in")
	assert.Contains(t, cnf.Dialects, "MTB")
	assert.Contains(t, cnf.Dialects, "PBL")
}

func TestValidateRequiresDataSource(t *testing.T) {
	cnf := &Configuration{Redis: RedisConfig{Dns: "localhost:6379"}}
	assert.Error(t, cnf.validateAndAddDefaults())
}

func TestValidateRequiresRedis(t *testing.T) {
	cnf := &Configuration{DataSource: DataSourceConfig{Dns: "postgres://localhost/recon"}}
	assert.Error(t, cnf.validateAndAddDefaults())
}

func TestFileDialectOverridesBuiltin(t *testing.T) {
	cnf := &Configuration{
		DataSource: DataSourceConfig{Dns: "postgres://localhost/recon"},
		Redis:      RedisConfig{Dns: "localhost:6379"},
		Dialects: map[string]DialectConfig{
			"MDB": {BankCode: "MDB", VendorAliases: map[string]string{"X": "Y"}},
		},
	}

	err := cnf.validateAndAddDefaults()
	assert.NoError(t, err)
	assert.Equal(t, map[string]string{"X": "Y"}, cnf.Dialects["MDB"].VendorAliases, "File config wins over the built-in table")
	assert.Contains(t, cnf.Dialects, "MTB", "Untouched built-ins still merge in")
}

func TestDialectUnknownBankCode(t *testing.T) {
	cnf := &Configuration{Dialects: BuiltinDialects()}

	d := cnf.Dialect("NOPE")
	assert.Empty(t, d.BankCode)
	assert.Nil(t, d.VendorAliases)
	assert.Empty(t, d.BankChequeRules, "Unknown dialects degrade to no cheque extraction")
}

func TestBuiltinDialects(t *testing.T) {
	dialects := BuiltinDialects()

	mdb := dialects["MDB"]
	assert.Equal(t, "JOYNALSONS", mdb.VendorAliases["JOYNALANDSONS"])
	assert.NotEmpty(t, mdb.BankChequeRules)

	mtb := dialects["MTB"]
	assert.True(t, mtb.StripLeadingZeros)

	pbl := dialects["PBL"]
	assert.True(t, pbl.UseChequeColumn)
	assert.True(t, pbl.AbsWithdrawals)
	assert.Equal(t, "B_Ref_Cheque", pbl.Columns.ChequeRef)
}

func TestBuiltinTallyRuleOrder(t *testing.T) {
	// Extraction is first-rule-wins, so the prefix order is behavioral when a
	// narration carries more than one known prefix.
	dialects := BuiltinDialects()

	mdbPrefixes := make([]string, 0)
	for _, r := range dialects["MDB"].TallyChequeRules {
		mdbPrefixes = append(mdbPrefixes, r.Prefix)
	}
	assert.Equal(t, []string{
		"cq-", "Cheque No : C ", "A/C-", "CD-", "STD-", "OD#", "CQ-", "(Hypo)-", "SND-",
	}, mdbPrefixes)

	mtbPrefixes := make([]string, 0)
	for _, r := range dialects["MTB"].TallyChequeRules {
		mtbPrefixes = append(mtbPrefixes, r.Prefix)
	}
	assert.Equal(t, []string{
		"$", "cq-", "A/C-", "CD-", "STD-", "OD#", "CQ-", "(Hypo)-", "GULC#",
	}, mtbPrefixes)
}
