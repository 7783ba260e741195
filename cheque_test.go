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

	"github.com/m-islam-ciplc/bank-recon/config"
	"github.com/m-islam-ciplc/bank-recon/model"
)

func TestChequeExtractorLiteralPrefix(t *testing.T) {
	ex, err := newChequeExtractor([]config.ChequeRule{
		{Prefix: "CQ-", MinDigits: 5},
	})
	assert.NoError(t, err)

	assert.Equal(t, "12345", ex.extract("Payment CQ-12345 settled"))
	assert.Equal(t, "12345", ex.extract("payment cq-12 345 settled"), "Prefix match is case-insensitive and spaces are stripped")
	assert.Equal(t, "", ex.extract("Payment CQ-123 settled"), "Too few digits")
	assert.Equal(t, "", ex.extract("No reference here"))
}

func TestChequeExtractorRuleOrder(t *testing.T) {
	ex, err := newChequeExtractor([]config.ChequeRule{
		{Prefix: "SND-", MinDigits: 5},
		{Prefix: "CQ-", MinDigits: 5},
	})
	assert.NoError(t, err)

	// Both prefixes appear; the first rule in configured order wins.
	assert.Equal(t, "77777", ex.extract("CQ-12345 via SND-77777"))
}

func TestChequeExtractorBetweenSlashes(t *testing.T) {
	ex, err := newChequeExtractor([]config.ChequeRule{
		{DynamicPrefix: "RTGS RTGS Outward", BetweenSlashes: []int{2, 3}, MinDigits: 5},
	})
	assert.NoError(t, err)

	assert.Equal(t, "98765", ex.extract("RTGS RTGS Outward/BATCH1/98765/MORE"))
	assert.Equal(t, "", ex.extract("Some other narration/BATCH1/98765/MORE"), "Rule requires the prefix")
}

func TestChequeExtractorAfterNthNumber(t *testing.T) {
	ex, err := newChequeExtractor([]config.ChequeRule{
		{DynamicPrefix: "USD", AfterNthNumber: 1, MinDigits: 5},
	})
	assert.NoError(t, err)

	assert.Equal(t, "4455667", ex.extract("USD 44,55,667 remitted"), "Commas count toward the run and are stripped after")
}

func TestChequeExtractorAfterNthSlash(t *testing.T) {
	ex, err := newChequeExtractor([]config.ChequeRule{
		{DynamicPrefix: "ACCEPTANCE COMM", AfterNthSlash: 3, MinDigits: 5},
	})
	assert.NoError(t, err)

	assert.Equal(t, "55443", ex.extract("ACCEPTANCE COMM/A/B/ref 55443 end"))
}

func TestChequeExtractorWholeTextPattern(t *testing.T) {
	ex, err := newChequeExtractor([]config.ChequeRule{
		{Pattern: `\b([A-Z]{2,}[0-9]{6,}[A-Z0-9]*)\b`, MinDigits: 6},
	})
	assert.NoError(t, err)

	assert.Equal(t, "CH123456", ex.extract("instrument CH123456 cleared"))
	assert.Equal(t, "", ex.extract("instrument C123456 cleared"), "Needs at least two leading letters")
}

func TestMatchChequesWithdrawalToCredit(t *testing.T) {
	dialect := config.DialectConfig{
		BankCode:         "MTB",
		BankChequeRules:  []config.ChequeRule{{Prefix: "CQ-", MinDigits: 5}},
		TallyChequeRules: []config.ChequeRule{{Prefix: "CQ-", MinDigits: 5}},
	}
	bank := []model.BankRecord{
		{BankUID: "b1", Particulars: "Cleared CQ-12345", Withdrawal: "500.00"},
	}
	tally := []model.TallyRecord{
		{TallyUID: "t1", Particulars: "CQ-12345 issued", Credit: "500.00"},
	}

	groups, err := MatchCheques(bank, tally, dialect)
	assert.NoError(t, err)

	assert.Equal(t, 1, len(groups))
	assert.Equal(t, "1 to 1 (cheque)", groups[0].MatchType)
	assert.Equal(t, "b1", groups[0].Bank[0].BankUID)
	assert.Equal(t, "t1", groups[0].Tally[0].TallyUID)
}

func TestMatchChequesDepositToDebit(t *testing.T) {
	dialect := config.DialectConfig{
		BankCode:         "MTB",
		BankChequeRules:  []config.ChequeRule{{Prefix: "CQ-", MinDigits: 5}},
		TallyChequeRules: []config.ChequeRule{{Prefix: "CQ-", MinDigits: 5}},
	}
	bank := []model.BankRecord{
		{BankUID: "b1", Particulars: "Received CQ-54321", Deposit: "750.00"},
	}
	tally := []model.TallyRecord{
		{TallyUID: "t1", Particulars: "CQ-54321 receipt", Debit: "750.00"},
	}

	groups, err := MatchCheques(bank, tally, dialect)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(groups))
}

func TestMatchChequesDirectionMustAgree(t *testing.T) {
	dialect := config.DialectConfig{
		BankCode:         "MTB",
		BankChequeRules:  []config.ChequeRule{{Prefix: "CQ-", MinDigits: 5}},
		TallyChequeRules: []config.ChequeRule{{Prefix: "CQ-", MinDigits: 5}},
	}
	bank := []model.BankRecord{
		// Withdrawal on the bank side but the tally row records a debit.
		{BankUID: "b1", Particulars: "Cleared CQ-12345", Withdrawal: "500.00"},
	}
	tally := []model.TallyRecord{
		{TallyUID: "t1", Particulars: "CQ-12345", Debit: "500.00"},
	}

	groups, err := MatchCheques(bank, tally, dialect)
	assert.NoError(t, err)
	assert.Empty(t, groups)
}

func TestMatchChequesLeadingZeroNormalization(t *testing.T) {
	dialect := config.DialectConfig{
		BankCode:          "MTB",
		BankChequeRules:   []config.ChequeRule{{Prefix: "CQ-", MinDigits: 5}},
		TallyChequeRules:  []config.ChequeRule{{Prefix: "CQ-", MinDigits: 5}},
		StripLeadingZeros: true,
	}
	bank := []model.BankRecord{
		{BankUID: "b1", Particulars: "Cleared CQ-0012345", Withdrawal: "500.00"},
	}
	tally := []model.TallyRecord{
		{TallyUID: "t1", Particulars: "CQ-12345", Credit: "500.00"},
	}

	groups, err := MatchCheques(bank, tally, dialect)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(groups), "Zero-padded references must still pair")
}

func TestMatchChequesDedicatedColumn(t *testing.T) {
	dialect := config.DialectConfig{
		BankCode:         "PBL",
		BankChequeRules:  []config.ChequeRule{{Pattern: `\b([A-Z]{2,}[0-9]{6,}[A-Z0-9]*)\b`, MinDigits: 6}},
		TallyChequeRules: []config.ChequeRule{{Pattern: `\b([A-Z]{2,}[0-9]{6,}[A-Z0-9]*)\b`, MinDigits: 6}},
		UseChequeColumn:  true,
	}
	bank := []model.BankRecord{
		// Reference lives in the cheque column, not the narration.
		{BankUID: "b1", Particulars: "no ref here", ChequeRef: "CH123456", Withdrawal: "900.00"},
	}
	tally := []model.TallyRecord{
		{TallyUID: "t1", Particulars: "cheque CH123456 issued", Credit: "900.00"},
	}

	groups, err := MatchCheques(bank, tally, dialect)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(groups))
}

func TestMatchChequesTallyRowPairsOnce(t *testing.T) {
	dialect := config.DialectConfig{
		BankCode:         "MTB",
		BankChequeRules:  []config.ChequeRule{{Prefix: "CQ-", MinDigits: 5}},
		TallyChequeRules: []config.ChequeRule{{Prefix: "CQ-", MinDigits: 5}},
	}
	bank := []model.BankRecord{
		{BankUID: "b1", Particulars: "CQ-12345", Withdrawal: "500.00"},
		{BankUID: "b2", Particulars: "CQ-12345", Withdrawal: "500.00"},
	}
	tally := []model.TallyRecord{
		{TallyUID: "t1", Particulars: "CQ-12345", Credit: "500.00"},
	}

	groups, err := MatchCheques(bank, tally, dialect)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(groups))
	assert.Equal(t, "b1", groups[0].Bank[0].BankUID)
}

func TestMatchChequesNegativeWithdrawal(t *testing.T) {
	dialect := config.DialectConfig{
		BankCode:         "PBL",
		BankChequeRules:  []config.ChequeRule{{Prefix: "CQ-", MinDigits: 5}},
		TallyChequeRules: []config.ChequeRule{{Prefix: "CQ-", MinDigits: 5}},
		AbsWithdrawals:   true,
	}
	bank := []model.BankRecord{
		{BankUID: "b1", Particulars: "CQ-12345", Withdrawal: "-500.00"},
	}
	tally := []model.TallyRecord{
		{TallyUID: "t1", Particulars: "CQ-12345", Credit: "500.00"},
	}

	groups, err := MatchCheques(bank, tally, dialect)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(groups), "Sign-flipped withdrawals pair by magnitude")
}

func TestMatchChequesSignedWithdrawalByDefault(t *testing.T) {
	// Without the dialect opting in, a negative withdrawal compares as-is and
	// never equals a positive tally credit.
	dialect := config.DialectConfig{
		BankCode:         "MTB",
		BankChequeRules:  []config.ChequeRule{{Prefix: "CQ-", MinDigits: 5}},
		TallyChequeRules: []config.ChequeRule{{Prefix: "CQ-", MinDigits: 5}},
	}
	bank := []model.BankRecord{
		{BankUID: "b1", Particulars: "CQ-12345", Withdrawal: "-500.00"},
	}
	tally := []model.TallyRecord{
		{TallyUID: "t1", Particulars: "CQ-12345", Credit: "500.00"},
	}

	groups, err := MatchCheques(bank, tally, dialect)
	assert.NoError(t, err)
	assert.Empty(t, groups)
}
