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
	"fmt"

	"github.com/m-islam-ciplc/bank-recon/config"
	"github.com/m-islam-ciplc/bank-recon/model"
)

// BankFinanceResult holds the output of one bank-finance matching run: the
// matched groups in discovery order plus the two unmatched residues.
type BankFinanceResult struct {
	Groups           []model.MatchGroup
	UnmatchedBank    []model.BankRecord
	UnmatchedFinance []model.FinanceRecord
}

// matchKey carries the comparison keys derived once per record before the
// passes run: blocking prefix, alias, rounded amount and the raw date.
type matchKey struct {
	first5 string
	alias  string
	amount float64
	date   string
}

func bankKey(r model.BankRecord, aliases map[string]string) matchKey {
	return matchKey{
		first5: model.VendorFirst5(r.Vendor),
		alias:  model.VendorAlias(r.Vendor, aliases),
		amount: model.NormAmount(r.Withdrawal),
		date:   r.Date,
	}
}

func financeKey(r model.FinanceRecord) matchKey {
	return matchKey{
		first5: model.VendorFirst5(r.Vendor),
		// Finance vendors are the canonical side; they alias to themselves.
		alias:  model.VendorAlias(r.Vendor, nil),
		amount: model.NormAmount(r.CreditAmount),
		date:   r.PaymentDate,
	}
}

// bankFinanceMatcher runs the four sequential passes. Finance consumption is
// tracked by index so every pass scans candidates in original row order, which
// downstream match-id assignment depends on.
type bankFinanceMatcher struct {
	bank     []model.BankRecord
	finance  []model.FinanceRecord
	bankKeys []matchKey
	finKeys  []matchKey
	finOpen  []bool

	maxCombo int
	maxTries int

	groups []model.MatchGroup
	seq    int
}

// MatchBankFinance discovers bank-finance correspondences over the unmatched
// pools of one (bank, account) scope. Finance candidates are pre-filtered by
// sender bank and, when given, sender account, before any pass runs.
//
// The passes, each operating on the residue of the previous one:
//
//	A: 1:1 on the first-5 vendor prefix
//	B: 1:N sum on the first-5 vendor prefix, N up to matching.MaxComboSize
//	C: 1:1 on the dialect vendor alias
//	D: 1:N sum on the dialect vendor alias
//
// Within a pass the first acceptable candidate (or combination) wins; ties
// resolve by finance scan order. A consumed finance record is gone for all
// later passes.
func MatchBankFinance(bankCode, accountNumber string, bank []model.BankRecord, finance []model.FinanceRecord, dialect config.DialectConfig, matching config.MatchingConfig) BankFinanceResult {
	filtered := make([]model.FinanceRecord, 0, len(finance))
	for _, f := range finance {
		if f.BankCode != bankCode {
			continue
		}
		if accountNumber != "" && f.AccountNumber != accountNumber {
			continue
		}
		filtered = append(filtered, f)
	}

	m := &bankFinanceMatcher{
		bank:     bank,
		finance:  filtered,
		bankKeys: make([]matchKey, len(bank)),
		finKeys:  make([]matchKey, len(filtered)),
		finOpen:  make([]bool, len(filtered)),
		maxCombo: matching.MaxComboSize,
		maxTries: matching.MaxComboTries,
	}
	for i, b := range bank {
		m.bankKeys[i] = bankKey(b, dialect.VendorAliases)
	}
	for j, f := range filtered {
		m.finKeys[j] = financeKey(f)
		m.finOpen[j] = true
	}

	residue := m.passOneToOne(allIndexes(len(bank)), false)
	residue = m.passOneToMany(residue, false)
	residue = m.passOneToOne(residue, true)
	residue = m.passOneToMany(residue, true)

	result := BankFinanceResult{Groups: m.groups}
	for _, i := range residue {
		result.UnmatchedBank = append(result.UnmatchedBank, bank[i])
	}
	for j, open := range m.finOpen {
		if open {
			result.UnmatchedFinance = append(result.UnmatchedFinance, filtered[j])
		}
	}
	return result
}

func allIndexes(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// passOneToOne scans unmatched finance records in original order and accepts
// the first whose vendor key, rounded amount and date (or the weekend shift)
// all agree with the bank record.
func (m *bankFinanceMatcher) passOneToOne(bankIdxs []int, useAlias bool) []int {
	var residue []int
	for _, i := range bankIdxs {
		bk := m.bankKeys[i]
		matched := false
		for j := range m.finance {
			if !m.finOpen[j] {
				continue
			}
			fk := m.finKeys[j]
			if !vendorKeyEqual(bk, fk, useAlias) {
				continue
			}
			if !model.AmountsEqual(bk.amount, fk.amount) {
				continue
			}
			if !model.DatesMatch(bk.date, fk.date) {
				continue
			}
			label := "1 to 1"
			if useAlias {
				label = "1 to 1 (alias)"
			}
			m.claim(i, []int{j}, label)
			matched = true
			break
		}
		if !matched {
			residue = append(residue, i)
		}
	}
	return residue
}

// passOneToMany gathers finance candidates sharing the vendor key and an
// acceptable date, then searches combinations in increasing size (2 up to the
// configured maximum) and, within a size, in index-combination order. The
// first combination whose rounded sum equals the rounded bank amount wins and
// ends the search for that bank record.
func (m *bankFinanceMatcher) passOneToMany(bankIdxs []int, useAlias bool) []int {
	var residue []int
	for _, i := range bankIdxs {
		bk := m.bankKeys[i]
		var candidates []int
		for j := range m.finance {
			if !m.finOpen[j] {
				continue
			}
			fk := m.finKeys[j]
			if vendorKeyEqual(bk, fk, useAlias) && model.DatesMatch(bk.date, fk.date) {
				candidates = append(candidates, j)
			}
		}

		combo, found := m.findSumCombination(bk.amount, candidates)
		if !found {
			residue = append(residue, i)
			continue
		}
		label := fmt.Sprintf("1 to %d", len(combo))
		if useAlias {
			label = fmt.Sprintf("1 to %d (alias)", len(combo))
		}
		m.claim(i, combo, label)
	}
	return residue
}

// findSumCombination runs the bounded subset-sum search. The generator keeps
// the enumeration explicit and lets the whole search carry a hard iteration
// cap independent of the candidate pool size.
func (m *bankFinanceMatcher) findSumCombination(target float64, candidates []int) ([]int, bool) {
	tries := 0
	for size := 2; size <= m.maxCombo && size <= len(candidates); size++ {
		gen := newComboGen(len(candidates), size)
		for {
			pick, ok := gen.next()
			if !ok {
				break
			}
			tries++
			if tries > m.maxTries {
				return nil, false
			}
			sum := 0.0
			for _, p := range pick {
				sum += m.finKeys[candidates[p]].amount
			}
			if !model.AmountsEqual(sum, target) {
				continue
			}
			combo := make([]int, size)
			for k, p := range pick {
				combo[k] = candidates[p]
			}
			return combo, true
		}
	}
	return nil, false
}

// claim records a match group and consumes its finance rows.
func (m *bankFinanceMatcher) claim(bankIdx int, finIdxs []int, matchType string) {
	m.seq++
	group := model.MatchGroup{
		MatchID:   fmt.Sprintf("%04d", m.seq),
		MatchType: matchType,
		Bank:      []model.BankRecord{m.bank[bankIdx]},
	}
	for _, j := range finIdxs {
		group.Finance = append(group.Finance, m.finance[j])
		m.finOpen[j] = false
	}
	m.groups = append(m.groups, group)
}

func vendorKeyEqual(b, f matchKey, useAlias bool) bool {
	if useAlias {
		return b.alias == f.alias
	}
	return b.first5 == f.first5
}

// comboGen enumerates k-subsets of [0,n) as index slices in lexicographic
// order, matching the order a nested-loop enumeration would produce.
type comboGen struct {
	n, k  int
	idx   []int
	first bool
	done  bool
}

func newComboGen(n, k int) *comboGen {
	g := &comboGen{n: n, k: k, first: true}
	if k > n || k <= 0 {
		g.done = true
		return g
	}
	g.idx = make([]int, k)
	for i := range g.idx {
		g.idx[i] = i
	}
	return g
}

// next returns the next combination. The returned slice is reused between
// calls; callers copy what they keep.
func (g *comboGen) next() ([]int, bool) {
	if g.done {
		return nil, false
	}
	if g.first {
		g.first = false
		return g.idx, true
	}
	// Advance the rightmost index that still has room.
	i := g.k - 1
	for i >= 0 && g.idx[i] == g.n-g.k+i {
		i--
	}
	if i < 0 {
		g.done = true
		return nil, false
	}
	g.idx[i]++
	for j := i + 1; j < g.k; j++ {
		g.idx[j] = g.idx[j-1] + 1
	}
	return g.idx, true
}
