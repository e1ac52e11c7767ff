package core

import (
	"testing"
	"time"
)

func TestMonthKeyFor(t *testing.T) {
	tests := []struct {
		date time.Time
		want string
	}{
		{time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), "2024-03"},
		{time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC), "2024-12"},
		{time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), "2025-01"},
		{time.Date(1999, 10, 5, 12, 0, 0, 0, time.UTC), "1999-10"},
	}
	for _, tt := range tests {
		if got := MonthKeyFor(tt.date); got != tt.want {
			t.Errorf("MonthKeyFor(%v) = %q, want %q", tt.date, got, tt.want)
		}
	}
}

func TestIsValidMonthKey(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"2024-03", true},
		{"1999-12", true},
		{"2024-3", false},
		{"2024-031", false},
		{"202403", false},
		{"2024/03", false},
		{"abcd-ef", false},
		{"", false},
		{" 2024-03", false},
	}
	for _, tt := range tests {
		if got := IsValidMonthKey(tt.in); got != tt.want {
			t.Errorf("IsValidMonthKey(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMonthKeyForMatchesIsValid(t *testing.T) {
	// Every derived key must be accepted by the validator.
	dates := []time.Time{
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		time.Now(),
	}
	for _, d := range dates {
		key := MonthKeyFor(d)
		if !IsValidMonthKey(key) {
			t.Errorf("derived key %q should be valid", key)
		}
	}
}

func TestMonthLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-01", "Janvier 2024"},
		{"2024-03", "Mars 2024"},
		{"2024-08", "Août 2024"},
		{"2023-12", "Décembre 2023"},
		{"2024-13", "Mois inconnu 2024"},
		{"garbage", "garbage"},
	}
	for _, tt := range tests {
		if got := MonthLabel(tt.in); got != tt.want {
			t.Errorf("MonthLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
