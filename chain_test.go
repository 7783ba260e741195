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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m-islam-ciplc/bank-recon/model"
)

func chainGroup(matchID string, bankAmount string, finance ...model.FinanceRecord) model.MatchGroup {
	return model.MatchGroup{
		MatchID:   matchID,
		MatchType: "1 to 2",
		Bank: []model.BankRecord{
			{BankUID: "b-" + matchID, BankCode: "MDB", Withdrawal: bankAmount},
		},
		Finance: finance,
	}
}

func TestMatchChainCompletesBalancedGroup(t *testing.T) {
	groups := []model.MatchGroup{
		chainGroup("BFM_x_0001", "500.00",
			model.FinanceRecord{FinUID: "f1", VoucherNo: "PV-1001", CreditAmount: "200.00"},
			model.FinanceRecord{FinUID: "f2", VoucherNo: "PV-1002", CreditAmount: "300.00"},
		),
	}
	tally := []model.TallyRecord{
		{TallyUID: "t1", VoucherNo: "1001", Credit: "200.00"},
		{TallyUID: "t2", VoucherNo: "1002", Credit: "300.00"},
	}

	result := MatchChain(groups, tally)

	assert.Equal(t, 1, len(result.Groups))
	g := result.Groups[0]
	assert.Equal(t, "1 to 2 to 2", g.MatchType, "Match type carries the actual member counts")
	assert.Equal(t, "BFM_x_0001", g.SourceMatchID)
	assert.Equal(t, 2, len(g.Tally))
	assert.Equal(t, "t1", g.Tally[0].TallyUID)
	assert.Equal(t, "t2", g.Tally[1].TallyUID)
	assert.Equal(t, 0, result.SkippedGroups)
}

func TestMatchChainAbortsOnMissingCandidate(t *testing.T) {
	groups := []model.MatchGroup{
		chainGroup("BFM_x_0001", "500.00",
			model.FinanceRecord{FinUID: "f1", VoucherNo: "PV-1001", CreditAmount: "200.00"},
			model.FinanceRecord{FinUID: "f2", VoucherNo: "PV-9999", CreditAmount: "300.00"},
		),
	}
	tally := []model.TallyRecord{
		{TallyUID: "t1", VoucherNo: "1001", Credit: "200.00"},
	}

	result := MatchChain(groups, tally)

	assert.Empty(t, result.Groups)
	assert.Equal(t, 1, result.SkippedGroups)
}

func TestMatchChainRejectsUnbalancedSums(t *testing.T) {
	// Vouchers all resolve but the tally total disagrees with the bank amount.
	groups := []model.MatchGroup{
		chainGroup("BFM_x_0001", "600.00",
			model.FinanceRecord{FinUID: "f1", VoucherNo: "PV-1001", CreditAmount: "200.00"},
			model.FinanceRecord{FinUID: "f2", VoucherNo: "PV-1002", CreditAmount: "300.00"},
		),
	}
	tally := []model.TallyRecord{
		{TallyUID: "t1", VoucherNo: "1001", Credit: "200.00"},
		{TallyUID: "t2", VoucherNo: "1002", Credit: "300.00"},
	}

	result := MatchChain(groups, tally)

	assert.Empty(t, result.Groups, "Sums off by more than the tolerance must not chain")
}

func TestMatchChainClaimsTallyAcrossGroups(t *testing.T) {
	groups := []model.MatchGroup{
		chainGroup("BFM_x_0001", "200.00",
			model.FinanceRecord{FinUID: "f1", VoucherNo: "PV-1001", CreditAmount: "200.00"},
		),
		chainGroup("BFM_x_0002", "200.00",
			model.FinanceRecord{FinUID: "f2", VoucherNo: "PV-1001", CreditAmount: "200.00"},
		),
	}
	// A single tally row both groups want; only the first gets it.
	tally := []model.TallyRecord{
		{TallyUID: "t1", VoucherNo: "1001", Credit: "200.00"},
	}

	result := MatchChain(groups, tally)

	assert.Equal(t, 1, len(result.Groups))
	assert.Equal(t, "BFM_x_0001", result.Groups[0].SourceMatchID)
	assert.Equal(t, "1 to 1 to 1", result.Groups[0].MatchType)
	assert.Equal(t, 1, result.SkippedGroups)
}

func TestMatchChainSkipsMalformedGroups(t *testing.T) {
	groups := []model.MatchGroup{
		// No bank member at all.
		{MatchID: "BFM_x_0001", Finance: []model.FinanceRecord{{FinUID: "f1"}}},
		// No finance members.
		{MatchID: "BFM_x_0002", Bank: []model.BankRecord{{BankUID: "b1", Withdrawal: "100.00"}}},
	}

	result := MatchChain(groups, nil)

	assert.Empty(t, result.Groups)
	assert.Equal(t, 2, result.SkippedGroups)
}

func TestMatchChainDistinctTallyRowsWithinGroup(t *testing.T) {
	// Two finance rows with identical voucher suffix and amount must claim two
	// different tally rows, not the same one twice.
	groups := []model.MatchGroup{
		chainGroup("BFM_x_0001", "400.00",
			model.FinanceRecord{FinUID: "f1", VoucherNo: "PV-1001", CreditAmount: "200.00"},
			model.FinanceRecord{FinUID: "f2", VoucherNo: "PV-1001", CreditAmount: "200.00"},
		),
	}
	tally := []model.TallyRecord{
		{TallyUID: "t1", VoucherNo: "1001", Credit: "200.00"},
		{TallyUID: "t2", VoucherNo: "1001", Credit: "200.00"},
	}

	result := MatchChain(groups, tally)

	assert.Equal(t, 1, len(result.Groups))
	assert.Equal(t, 2, len(result.Groups[0].Tally))
	assert.NotEqual(t, result.Groups[0].Tally[0].TallyUID, result.Groups[0].Tally[1].TallyUID)
}
