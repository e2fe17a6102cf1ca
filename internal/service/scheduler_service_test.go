package service

import (
	"testing"
	"time"
)

func TestBuildDailySpec(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"07:30", "0 30 7 * * *", false},
		{"00:00", "0 0 0 * * *", false},
		{" 23:59 ", "0 59 23 * * *", false},
		{"24:00", "", true},
		{"12:60", "", true},
		{"noon", "", true},
	}
	for _, tc := range cases {
		got, err := buildDailySpec(tc.in)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Errorf("buildDailySpec(%q) = %q, %v", tc.in, got, err)
		}
	}
}

func TestBuildIntervalSpec(t *testing.T) {
	cases := []struct {
		in      time.Duration
		want    string
		wantErr bool
	}{
		{15 * time.Minute, "@every 900s", false},
		{500 * time.Millisecond, "@every 1s", false},
		{0, "", true},
		{-time.Second, "", true},
	}
	for _, tc := range cases {
		got, err := buildIntervalSpec(tc.in)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Errorf("buildIntervalSpec(%s) = %q, %v", tc.in, got, err)
		}
	}
}
