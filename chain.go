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
	"math"

	"github.com/m-islam-ciplc/bank-recon/model"
)

// chainTolerance is the slack allowed when the two chain-side sums are checked
// against the bank amount. Both sides were already matched at 2-decimal
// precision, so this only absorbs float accumulation noise.
const chainTolerance = 1e-4

// ChainResult is the output of one chain matching run.
type ChainResult struct {
	Groups []model.MatchGroup
	// SkippedGroups counts input groups that did not complete a chain, either
	// by shape, a finance voucher with no tally candidate, or a failed
	// acceptance check.
	SkippedGroups int
}

// MatchChain extends completed bank-finance groups to the tally ledger. For
// each input group with exactly one bank record and at least one finance
// record, every finance record must claim a tally record whose voucher digit
// suffix and credit amount both agree. A tally record claimed by any group is
// unavailable to every later one. The chain is accepted only when all three
// sides balance:
//
//	count(finance) == count(tally)
//	|sum(finance) - bank|  < tolerance
//	|sum(tally)   - bank|  < tolerance
//
// A finance record with no candidate aborts the group's attempt immediately;
// tally records tentatively claimed by the aborted attempt are released.
func MatchChain(groups []model.MatchGroup, tally []model.TallyRecord) ChainResult {
	used := make([]bool, len(tally))
	var result ChainResult
	seq := 0

	for _, g := range groups {
		if len(g.Bank) != 1 || len(g.Finance) == 0 {
			result.SkippedGroups++
			continue
		}
		bankAmount := model.NormAmount(g.Bank[0].Withdrawal)

		claimed := make([]int, 0, len(g.Finance))
		inAttempt := make(map[int]bool)
		complete := true
		for _, f := range g.Finance {
			suffix := model.DigitSuffix(f.VoucherNo)
			amount := model.NormAmount(f.CreditAmount)
			found := -1
			for t := range tally {
				if used[t] || inAttempt[t] {
					continue
				}
				if model.DigitSuffix(tally[t].VoucherNo) != suffix {
					continue
				}
				if !model.AmountsEqual(model.NormAmount(tally[t].Credit), amount) {
					continue
				}
				found = t
				break
			}
			if found < 0 {
				complete = false
				break
			}
			claimed = append(claimed, found)
			inAttempt[found] = true
		}

		if !complete || !chainBalances(g, bankAmount, claimed, tally) {
			result.SkippedGroups++
			continue
		}

		for _, t := range claimed {
			used[t] = true
		}
		seq++
		chained := model.MatchGroup{
			MatchID:       fmt.Sprintf("%04d", seq),
			MatchType:     fmt.Sprintf("1 to %d to %d", len(g.Finance), len(claimed)),
			Bank:          g.Bank,
			Finance:       g.Finance,
			SourceMatchID: g.MatchID,
		}
		for _, t := range claimed {
			chained.Tally = append(chained.Tally, tally[t])
		}
		result.Groups = append(result.Groups, chained)
	}
	return result
}

func chainBalances(g model.MatchGroup, bankAmount float64, claimed []int, tally []model.TallyRecord) bool {
	if len(claimed) != len(g.Finance) {
		return false
	}
	finSum := 0.0
	for _, f := range g.Finance {
		finSum += model.NormAmount(f.CreditAmount)
	}
	tallySum := 0.0
	for _, t := range claimed {
		tallySum += model.NormAmount(tally[t].Credit)
	}
	// NaN anywhere fails both comparisons, so a malformed bank amount or
	// member amount rejects the chain rather than matching at zero.
	return math.Abs(finSum-bankAmount) < chainTolerance &&
		math.Abs(tallySum-bankAmount) < chainTolerance
}
