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
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/m-islam-ciplc/bank-recon/config"
	"github.com/m-islam-ciplc/bank-recon/model"
)

// refJunk are the characters stripped out of an extracted reference before
// comparison: whitespace, hyphens and thousands commas.
var refJunk = regexp.MustCompile(`[\s,\-]`)

// compiledRule is a ChequeRule with its regular expressions built once.
type compiledRule struct {
	rule      config.ChequeRule
	prefixRe  *regexp.Regexp // literal-prefix rules
	patternRe *regexp.Regexp // whole-text pattern rules
	digitsRe  *regexp.Regexp // digit runs for dynamic-prefix rules
}

// chequeExtractor applies a dialect's ordered rule list to narration text.
type chequeExtractor struct {
	rules []compiledRule
}

// newChequeExtractor compiles a rule list. A rule that fails to compile is an
// error, not a skip: a dialect with a broken rule table should refuse to run.
func newChequeExtractor(rules []config.ChequeRule) (*chequeExtractor, error) {
	ex := &chequeExtractor{rules: make([]compiledRule, 0, len(rules))}
	for _, r := range rules {
		cr := compiledRule{rule: r}
		minDigits := r.MinDigits
		if minDigits <= 0 {
			minDigits = 1
		}
		var err error
		switch {
		case r.Pattern != "":
			cr.patternRe, err = regexp.Compile(r.Pattern)
		case r.Prefix != "":
			cr.prefixRe, err = regexp.Compile(
				`(?i)` + regexp.QuoteMeta(r.Prefix) + fmt.Sprintf(`([\d\- ]{%d,})`, minDigits))
		case r.DynamicPrefix != "":
			cr.digitsRe, err = regexp.Compile(fmt.Sprintf(`[\d,]{%d,}`, minDigits))
		default:
			err = errors.New("cheque rule has no prefix, dynamic prefix or pattern")
		}
		if err != nil {
			return nil, errors.Wrap(err, "compiling cheque rule")
		}
		ex.rules = append(ex.rules, cr)
	}
	return ex, nil
}

// extract returns the first reference any rule pulls out of the text, cleaned
// of junk characters, or "" when no rule applies.
func (ex *chequeExtractor) extract(text string) string {
	for _, cr := range ex.rules {
		if ref := cr.apply(text); ref != "" {
			return ref
		}
	}
	return ""
}

func (cr *compiledRule) apply(text string) string {
	switch {
	case cr.patternRe != nil:
		m := cr.patternRe.FindStringSubmatch(text)
		if len(m) > 1 {
			return cleanRef(m[1], cr.rule.MinDigits)
		}
	case cr.prefixRe != nil:
		m := cr.prefixRe.FindStringSubmatch(text)
		if len(m) > 1 {
			return cleanRef(m[1], cr.rule.MinDigits)
		}
	default:
		return cr.applyDynamic(text)
	}
	return ""
}

// applyDynamic handles dynamic-prefix rules. The rule fires only when the
// text starts with the prefix; the reference comes from a slash segment, a
// digit run inside a slash segment, or the Nth digit run of the whole text.
func (cr *compiledRule) applyDynamic(text string) string {
	r := cr.rule
	if !strings.HasPrefix(strings.ToLower(text), strings.ToLower(r.DynamicPrefix)) {
		return ""
	}

	if len(r.BetweenSlashes) == 2 {
		parts := splitSlashes(text)
		n := r.BetweenSlashes[0]
		if n < len(parts) {
			return cleanRef(parts[n], r.MinDigits)
		}
		return ""
	}

	scope := text
	if r.AfterNthSlash > 0 {
		parts := splitSlashes(text)
		if r.AfterNthSlash >= len(parts) {
			return ""
		}
		scope = parts[r.AfterNthSlash]
	}
	nth := r.AfterNthNumber
	if nth <= 0 {
		nth = 1
	}
	runs := cr.digitsRe.FindAllString(scope, -1)
	if len(runs) < nth {
		return ""
	}
	return cleanRef(runs[nth-1], r.MinDigits)
}

func splitSlashes(text string) []string {
	raw := strings.Split(text, "/")
	parts := raw[:0]
	for _, p := range raw {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// cleanRef strips junk characters and enforces the minimum length. A
// reference that shrinks below the minimum after cleaning is treated as a
// non-extraction so the next rule gets a chance.
func cleanRef(ref string, minDigits int) string {
	cleaned := refJunk.ReplaceAllString(ref, "")
	if len(cleaned) < minDigits {
		return ""
	}
	return cleaned
}

// MatchCheques pairs bank statement rows with tally rows by cheque reference,
// one to one, within a single dialect.
//
// References come out of the dialect's bank and tally rule tables; the bank
// side reads the dedicated cheque column instead of the narration when the
// dialect says so, and dialects whose tally export zero-pads references strip
// leading zeros on both sides before comparison. A pair is accepted when the
// references agree and the money moves the same way: bank withdrawal equals
// tally credit, or bank deposit equals tally debit. Dialects whose exports
// deliver withdrawals sign-flipped compare them by magnitude instead. Each
// tally row pairs at most once, first bank row in scan order wins.
func MatchCheques(bank []model.BankRecord, tally []model.TallyRecord, dialect config.DialectConfig) ([]model.MatchGroup, error) {
	bankEx, err := newChequeExtractor(dialect.BankChequeRules)
	if err != nil {
		return nil, errors.Wrap(err, "bank cheque rules")
	}
	tallyEx, err := newChequeExtractor(dialect.TallyChequeRules)
	if err != nil {
		return nil, errors.Wrap(err, "tally cheque rules")
	}

	// Tally references indexed once; indices stay in original row order so
	// the first unused candidate is deterministic.
	tallyByRef := make(map[string][]int)
	for t, row := range tally {
		ref := tallyEx.extract(row.Particulars)
		ref = normalizeRef(ref, dialect.StripLeadingZeros)
		if ref == "" {
			continue
		}
		tallyByRef[ref] = append(tallyByRef[ref], t)
	}

	used := make([]bool, len(tally))
	var groups []model.MatchGroup
	seq := 0
	for _, b := range bank {
		text := b.Particulars
		if dialect.UseChequeColumn {
			text = b.ChequeRef
		}
		ref := normalizeRef(bankEx.extract(text), dialect.StripLeadingZeros)
		if ref == "" {
			continue
		}

		withdrawal := model.NormAmount(b.Withdrawal)
		if dialect.AbsWithdrawals {
			withdrawal = math.Abs(withdrawal)
		}
		deposit := model.NormAmount(b.Deposit)
		for _, t := range tallyByRef[ref] {
			if used[t] {
				continue
			}
			credit := model.NormAmount(tally[t].Credit)
			debit := model.NormAmount(tally[t].Debit)
			wMatch := !isZeroOrNaN(withdrawal) && model.AmountsEqual(withdrawal, credit)
			dMatch := !isZeroOrNaN(deposit) && model.AmountsEqual(deposit, debit)
			if !wMatch && !dMatch {
				continue
			}
			used[t] = true
			seq++
			groups = append(groups, model.MatchGroup{
				MatchID:   fmt.Sprintf("%04d", seq),
				MatchType: "1 to 1 (cheque)",
				Bank:      []model.BankRecord{b},
				Tally:     []model.TallyRecord{tally[t]},
			})
			break
		}
	}
	return groups, nil
}

func normalizeRef(ref string, stripLeadingZeros bool) string {
	if stripLeadingZeros {
		ref = strings.TrimLeft(ref, "0")
	}
	return ref
}

func isZeroOrNaN(v float64) bool {
	return v == 0 || math.IsNaN(v)
}
