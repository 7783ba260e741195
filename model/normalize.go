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
package model

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// dateLayouts are the calendar-date formats the parsing collaborators emit.
// No time component is significant; anything past the date is ignored.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02-Jan-2006",
	"02/01/2006",
}

var digitRuns = regexp.MustCompile(`\d+`)

// NormAmount coerces a raw amount field to a number rounded to 2 decimal
// places. Values that fail coercion normalize to NaN, a sentinel that can
// never equal anything — the row silently drops out of candidacy instead of
// matching at zero.
func NormAmount(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return math.NaN()
	}
	return Round2(v)
}

// Round2 rounds to 2 decimal places using decimal arithmetic, so that sums of
// rounded finance amounts compare to bank amounts to the cent.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return math.NaN()
	}
	out, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return out
}

// AmountsEqual reports whether two amounts are equal at 2-decimal precision.
// NaN (coercion failure) never equals anything, itself included.
func AmountsEqual(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return false
	}
	return Round2(a) == Round2(b)
}

// VendorFirst5 derives the cheap blocking key: uppercased, trimmed, truncated
// to 5 characters.
func VendorFirst5(raw string) string {
	v := []rune(strings.ToUpper(strings.TrimSpace(raw)))
	if len(v) > 5 {
		v = v[:5]
	}
	return string(v)
}

// VendorAlias maps a noisy vendor string through a dialect alias table. An
// unknown vendor (or a nil table, the configuration-gap case) degrades to the
// uppercased, trimmed value itself.
func VendorAlias(raw string, aliases map[string]string) string {
	key := strings.ToUpper(strings.TrimSpace(raw))
	if mapped, ok := aliases[key]; ok {
		return mapped
	}
	return key
}

// DigitSuffix concatenates every digit run of a voucher number in order of
// appearance, the key used to correlate finance vouchers with tally vouchers.
func DigitSuffix(raw string) string {
	return strings.Join(digitRuns.FindAllString(raw, -1), "")
}

// ParseDate parses a calendar date in any of the supported layouts.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// IsWeekendShift reports whether the fixed settlement-lag exception holds:
// the bank posted on a Sunday and finance paid on a Thursday. Unparseable
// dates never qualify.
func IsWeekendShift(bankDate, finDate string) bool {
	bd, err := ParseDate(bankDate)
	if err != nil {
		return false
	}
	fd, err := ParseDate(finDate)
	if err != nil {
		return false
	}
	return bd.Weekday() == time.Sunday && fd.Weekday() == time.Thursday
}

// DatesMatch is the date acceptance rule shared by every bank-finance pass:
// raw equality (dates are normalized upstream) or the weekend shift.
func DatesMatch(bankDate, finDate string) bool {
	return bankDate == finDate || IsWeekendShift(bankDate, finDate)
}
