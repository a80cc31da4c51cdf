package dates

import "testing"

func TestInferLocale(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected Locale
	}{
		{"french vocabulary", "Délivré le 01/02/2023, valable jusqu'au 01/02/2028", LocaleDayFirst},
		{"english vocabulary", "Issued 01/02/2023. Valid until 01/02/2028. Expires on renewal.", LocaleMonthFirst},
		{"single english label", "Issued: 01/02/2023", LocaleUnknown},
		{"no vocabulary", "01/02/2023", LocaleUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferLocale(tt.text); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestParseNumericOrder(t *testing.T) {
	tests := []struct {
		name      string
		a, b, c   string
		hint      Locale
		expected  string
		ambiguous bool
		ok        bool
	}{
		{"year first", "2023", "01", "15", LocaleUnknown, "2023-01-15", false, true},
		{"first over twelve", "25", "06", "2020", LocaleMonthFirst, "2020-06-25", false, true},
		{"second over twelve", "06", "25", "2020", LocaleDayFirst, "2020-06-25", false, true},
		{"ambiguous day first", "01", "02", "2023", LocaleUnknown, "2023-02-01", true, true},
		{"ambiguous month first", "01", "02", "2023", LocaleMonthFirst, "2023-01-02", true, true},
		{"same day and month", "05", "05", "2023", LocaleUnknown, "2023-05-05", false, true},
		{"two digit year", "15", "09", "29", LocaleUnknown, "2029-09-15", false, true},
		{"three digit year", "15", "09", "029", LocaleUnknown, "", false, false},
		{"february thirtieth", "30", "02", "2024", LocaleUnknown, "", false, false},
		{"year out of range", "01", "01", "1850", LocaleUnknown, "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := parseNumeric(tt.a, tt.b, tt.c, tt.hint, false)
			if ok != tt.ok {
				t.Fatalf("Expected ok=%v, got %v", tt.ok, ok)
			}
			if !ok {
				return
			}
			if got := p.date.Format(ISOLayout); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
			if p.ambiguous != tt.ambiguous {
				t.Errorf("Expected ambiguous=%v, got %v", tt.ambiguous, p.ambiguous)
			}
		})
	}
}

func TestFindDatesSkipsOverlaps(t *testing.T) {
	got := findDates("on 12 March 2021 and 2021-03-15")
	if len(got) != 2 {
		t.Fatalf("Expected 2 dates, got %d: %+v", len(got), got)
	}
	if got[0].raw != "12 March 2021" {
		t.Errorf("Expected first raw %q, got %q", "12 March 2021", got[0].raw)
	}
	if got[1].raw != "2021-03-15" {
		t.Errorf("Expected second raw %q, got %q", "2021-03-15", got[1].raw)
	}
}
