package util

import (
	"testing"
)

func TestValidateAmount_Positive(t *testing.T) {
	testCases := []int64{1, 1000, 50_000_000, 99_999_999_999}

	for _, amount := range testCases {
		err := ValidateAmount(amount)
		if err != nil {
			t.Errorf("ValidateAmount(%d) error = %v, want nil", amount, err)
		}
	}
}

func TestValidateAmount_ZeroAndNegative(t *testing.T) {
	testCases := []int64{0, -1, -500_000}

	for _, amount := range testCases {
		err := ValidateAmount(amount)
		if err == nil {
			t.Errorf("ValidateAmount(%d) error = nil, want error", amount)
		}
	}
}

func TestValidateAmount_TooLarge(t *testing.T) {
	err := ValidateAmount(100_000_000_000)

	if err == nil {
		t.Error("ValidateAmount(100_000_000_000) error = nil, want error")
	}
}

func TestValidateDate_Valid(t *testing.T) {
	testCases := []string{
		"2024-01-01",
		"2024-12-31",
		"2025-06-15",
	}

	for _, date := range testCases {
		err := ValidateDate(date)
		if err != nil {
			t.Errorf("ValidateDate(%q) error = %v, want nil", date, err)
		}
	}
}

func TestValidateDate_InvalidFormat(t *testing.T) {
	testCases := []string{
		"",
		"2024/01/01",
		"01-01-2024",
		"2024-1-1",
		"not-a-date",
		"2024-13-01",
		"2024-01-32",
	}

	for _, date := range testCases {
		err := ValidateDate(date)
		if err == nil {
			t.Errorf("ValidateDate(%q) error = nil, want error", date)
		}
	}
}

func TestValidateCategory(t *testing.T) {
	if err := ValidateCategory("groceries"); err != nil {
		t.Errorf("ValidateCategory(groceries) error = %v, want nil", err)
	}
	if err := ValidateCategory(""); err == nil {
		t.Error("ValidateCategory(\"\") error = nil, want error")
	}
	if err := ValidateCategory("this-category-name-is-far-too-long-to-store"); err == nil {
		t.Error("ValidateCategory(long) error = nil, want error")
	}
}

func TestParseDateTime(t *testing.T) {
	valid := []string{
		"2024-05-01",
		"2024-05-01T08:30:00",
		"2024-05-01T08:30:00+07:00",
	}
	for _, s := range valid {
		if _, ok := ParseDateTime(s); !ok {
			t.Errorf("ParseDateTime(%q) ok = false, want true", s)
		}
	}
	if _, ok := ParseDateTime("01/05/2024"); ok {
		t.Error("ParseDateTime(01/05/2024) ok = true, want false")
	}
}
