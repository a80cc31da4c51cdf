package dates

import (
	"strings"
	"testing"
)

func TestExtractLabelAnchored(t *testing.T) {
	tests := []struct {
		name           string
		text           string
		expectedIssued string
		expectedExpiry string
	}{
		{
			name:           "english labels with iso dates",
			text:           "Date of issue: 2023-01-15\nExpiry date: 2028-01-14",
			expectedIssued: "2023-01-15",
			expectedExpiry: "2028-01-14",
		},
		{
			name:           "month abbreviation",
			text:           "Expiry date: 03-Aug-2027",
			expectedExpiry: "2027-08-03",
		},
		{
			name:           "french labels with french month names",
			text:           "Délivré le 12 mars 2021\nValable jusqu'au 11 mars 2026",
			expectedIssued: "2021-03-12",
			expectedExpiry: "2026-03-11",
		},
		{
			name:           "month name first",
			text:           "Issued on May 4, 2022. Valid until May 3, 2027.",
			expectedIssued: "2022-05-04",
			expectedExpiry: "2027-05-03",
		},
		{
			name:           "day greater than twelve is certain",
			text:           "Issued: 25/06/2020",
			expectedIssued: "2020-06-25",
		},
		{
			name:           "two digit year",
			text:           "Expires 15.09.29",
			expectedExpiry: "2029-09-15",
		},
		{
			name:           "label window stops at other label",
			text:           "Issued by the Maritime Authority\nExpiry: 01-Jan-2030",
			expectedExpiry: "2030-01-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Extract(tt.text)
			if res.Issued.ISO != tt.expectedIssued {
				t.Errorf("Expected issued %q, got %q", tt.expectedIssued, res.Issued.ISO)
			}
			if res.Expiry.ISO != tt.expectedExpiry {
				t.Errorf("Expected expiry %q, got %q", tt.expectedExpiry, res.Expiry.ISO)
			}
			if tt.expectedIssued != "" && res.Issued.Confidence != LabelConfidence {
				t.Errorf("Expected issued confidence %.2f, got %.2f", LabelConfidence, res.Issued.Confidence)
			}
			if tt.expectedExpiry != "" && res.Expiry.Confidence != LabelConfidence {
				t.Errorf("Expected expiry confidence %.2f, got %.2f", LabelConfidence, res.Expiry.Confidence)
			}
		})
	}
}

func TestExtractMonthAbbreviationHasNoNote(t *testing.T) {
	res := Extract("Expiry date: 03-Aug-2027")
	if res.Expiry.ISO != "2027-08-03" {
		t.Fatalf("Expected 2027-08-03, got %q", res.Expiry.ISO)
	}
	if res.Expiry.Confidence != 0.95 {
		t.Errorf("Expected confidence 0.95, got %.2f", res.Expiry.Confidence)
	}
	if len(res.Notes) != 0 {
		t.Errorf("Expected no notes, got %v", res.Notes)
	}
}

func TestExtractAmbiguousNumericDate(t *testing.T) {
	res := Extract("Date of issue: 01/02/2023")
	if res.Issued.ISO != "2023-02-01" {
		t.Errorf("Expected day-first 2023-02-01, got %q", res.Issued.ISO)
	}
	if !res.Issued.Ambiguous {
		t.Error("Expected issued date to be flagged ambiguous")
	}
	if len(res.Notes) != 1 || !strings.Contains(res.Notes[0], "Issued") {
		t.Errorf("Expected one note naming Issued, got %v", res.Notes)
	}
}

func TestExtractBirthDateExcluded(t *testing.T) {
	tests := []string{
		"Date of Birth: 04/08/1990",
		"Name: J. Smith\nBorn 04/08/1990",
		"Date de naissance : 04/08/1990",
	}

	for _, text := range tests {
		res := Extract(text)
		if res.Issued.Found() || res.Expiry.Found() {
			t.Errorf("Expected no dates for %q, got issued=%q expiry=%q", text, res.Issued.ISO, res.Expiry.ISO)
		}
		if res.Issued.Confidence != 0 || res.Expiry.Confidence != 0 {
			t.Errorf("Expected zero confidence for %q", text)
		}
	}
}

func TestExtractLabelPrecedenceOverFallback(t *testing.T) {
	text := "Course held 2019-06-01 to 2019-06-05\nIssued: 2023-01-15\nRef 2031-12-31"
	res := Extract(text)
	if res.Issued.ISO != "2023-01-15" {
		t.Errorf("Expected issued 2023-01-15, got %q", res.Issued.ISO)
	}
	if res.Issued.Confidence != 0.95 {
		t.Errorf("Expected confidence 0.95, got %.2f", res.Issued.Confidence)
	}
	if res.Expiry.ISO != "2031-12-31" || res.Expiry.Confidence != FallbackConfidence {
		t.Errorf("Expected fallback expiry 2031-12-31 at %.2f, got %q at %.2f",
			FallbackConfidence, res.Expiry.ISO, res.Expiry.Confidence)
	}
}

func TestExtractFallback(t *testing.T) {
	t.Run("earliest and latest", func(t *testing.T) {
		res := Extract("STCW BASIC TRAINING\n2027-03-10\n2022-03-11\n2024-01-01")
		if res.Issued.ISO != "2022-03-11" || res.Expiry.ISO != "2027-03-10" {
			t.Errorf("Expected 2022-03-11 / 2027-03-10, got %q / %q", res.Issued.ISO, res.Expiry.ISO)
		}
		if res.Issued.Confidence != FallbackConfidence || res.Expiry.Confidence != FallbackConfidence {
			t.Errorf("Expected fallback confidence, got %.2f / %.2f", res.Issued.Confidence, res.Expiry.Confidence)
		}
	})

	t.Run("single date fills issued only", func(t *testing.T) {
		res := Extract("Certificate\n2022-03-11")
		if res.Issued.ISO != "2022-03-11" {
			t.Errorf("Expected issued 2022-03-11, got %q", res.Issued.ISO)
		}
		if res.Expiry.Found() {
			t.Errorf("Expected no expiry, got %q", res.Expiry.ISO)
		}
	})

	t.Run("labelled date is not reused", func(t *testing.T) {
		res := Extract("Valid until 2030-05-01")
		if res.Expiry.ISO != "2030-05-01" {
			t.Errorf("Expected expiry 2030-05-01, got %q", res.Expiry.ISO)
		}
		if res.Issued.Found() {
			t.Errorf("Expected no issued date, got %q", res.Issued.ISO)
		}
	})

	t.Run("labelled dates count toward the fallback", func(t *testing.T) {
		tests := []struct {
			name       string
			text       string
			issued     string
			issuedConf float64
			expiry     string
			expiryConf float64
		}{
			{
				name:       "labelled issue plus one other date",
				text:       "STCW Basic Safety Training\nIssued: 2023-01-15\nCourse reference dated 2027-05-05",
				issued:     "2023-01-15",
				issuedConf: LabelConfidence,
				expiry:     "2027-05-05",
				expiryConf: FallbackConfidence,
			},
			{
				name:       "labelled expiry plus one other date",
				text:       "Medical Fitness\nValid until 2026-02-01\nExamined 2024-02-02",
				issued:     "2024-02-02",
				issuedConf: FallbackConfidence,
				expiry:     "2026-02-01",
				expiryConf: LabelConfidence,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				res := Extract(tt.text)
				if res.Issued.ISO != tt.issued || res.Issued.Confidence != tt.issuedConf {
					t.Errorf("Expected issued %q at %.2f, got %q at %.2f", tt.issued, tt.issuedConf, res.Issued.ISO, res.Issued.Confidence)
				}
				if res.Expiry.ISO != tt.expiry || res.Expiry.Confidence != tt.expiryConf {
					t.Errorf("Expected expiry %q at %.2f, got %q at %.2f", tt.expiry, tt.expiryConf, res.Expiry.ISO, res.Expiry.Confidence)
				}
			})
		}
	})

	t.Run("birth date skipped in fallback", func(t *testing.T) {
		res := Extract("Date of birth 04/08/1990\n\nSTCW BASIC TRAINING\nPersonal Survival Techniques\ncompleted 2021-10-10")
		if res.Issued.ISO != "2021-10-10" {
			t.Errorf("Expected issued 2021-10-10, got %q", res.Issued.ISO)
		}
	})
}

func TestExtractMalformedDates(t *testing.T) {
	res := Extract("Issued: 31/02/2023\nExpiry: 45/45/2023")
	if res.Issued.Found() || res.Expiry.Found() {
		t.Errorf("Expected impossible dates to be ignored, got %q / %q", res.Issued.ISO, res.Expiry.ISO)
	}
}

func TestExtractedISORoundTrips(t *testing.T) {
	texts := []string{
		"Date of issue: 01/02/2023\nExpiry date: 31-Dec-2027",
		"Délivré le 1er janvier 2020, valable jusqu'au 31 décembre 2024",
		"Issued 2020-02-29 Expires 29.02.24",
		"random 12/11/10 text 9/9/2099",
	}
	for _, text := range texts {
		res := Extract(text)
		for _, d := range []ExtractedDate{res.Issued, res.Expiry} {
			if !d.Found() {
				continue
			}
			parsed, err := ParseISO(d.ISO)
			if err != nil {
				t.Errorf("Failed to parse %q from %q: %v", d.ISO, text, err)
				continue
			}
			if got := parsed.Format(ISOLayout); got != d.ISO {
				t.Errorf("Round trip changed %q to %q", d.ISO, got)
			}
		}
	}
}
