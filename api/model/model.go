/*
Copyright 2024 Blnk Finance Authors.

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
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the layout of calendar dates such as card expiry and statement bounds.
const DateLayout = "2006-01-02"

func nonNegative(value interface{}) error {
	amount, ok := value.(*decimal.Decimal)
	if !ok || amount == nil {
		return nil
	}
	if amount.IsNegative() {
		return errors.New("must not be negative")
	}
	return nil
}

func validDate(value interface{}) error {
	date, _ := value.(string)
	if date == "" {
		return nil
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return errors.New("please format the date as 'YYYY-MM-DD' (e.g., 2029-12-31)")
	}
	return nil
}

// ParseDate accepts either a calendar date or an RFC 3339 timestamp.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(DateLayout, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

func upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
