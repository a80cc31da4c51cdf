package title

import (
	"testing"

	"github.com/crewdocs/docmeta/internal/catalog"
)

func TestSelectStrategies(t *testing.T) {
	s := NewSelector(catalog.Default())

	tests := []struct {
		name             string
		text             string
		filename         string
		expectedValue    string
		expectedStrategy Strategy
	}{
		{
			name:             "course code",
			text:             "OMI 3.19 Ship Security Officer",
			expectedValue:    "OMI 3.19 Ship Security Officer",
			expectedStrategy: StrategyCourseCode,
		},
		{
			name:             "longest course code wins",
			text:             "IMO 1.13 EFA\nTraining centre\nIMO 1.19 Personal Survival Techniques",
			expectedValue:    "IMO 1.19 Personal Survival Techniques",
			expectedStrategy: StrategyCourseCode,
		},
		{
			name:             "course code beats known course",
			text:             "Crowd Management\nIMO 1.28 Crowd Management Training",
			expectedValue:    "IMO 1.28 Crowd Management Training",
			expectedStrategy: StrategyCourseCode,
		},
		{
			name:             "dotted date is not a course code",
			text:             "DOB 12.05.1990\nCrowd Management",
			expectedValue:    "Crowd Management",
			expectedStrategy: StrategyKnownCourse,
		},
		{
			name:             "known course",
			text:             "This is to certify that J. Smith attended the\ncrowd management course",
			expectedValue:    "Crowd Management",
			expectedStrategy: StrategyKnownCourse,
		},
		{
			name:             "scored heading",
			text:             "REPUBLIC OF THE MARSHALL ISLANDS\nCERTIFICATE OF COMPETENCY\nMASTER (YACHTS) 500 GT\nDate of issue: 01/02/2020",
			expectedValue:    "Certificate Of Competency",
			expectedStrategy: StrategyScored,
		},
		{
			name:             "forbidden segment loses",
			text:             "Valid until 12/12/2030 | STCW",
			expectedValue:    "STCW",
			expectedStrategy: StrategyScored,
		},
		{
			name:             "bare issued label loses to filename",
			text:             "Issued: 12/03/2023",
			filename:         "stcw_basic_training.pdf",
			expectedValue:    "STCW Basic Training",
			expectedStrategy: StrategyFilename,
		},
		{
			name:             "date label lines lose to filename",
			text:             "Issued: 2023-01-15\nExpiry: 2030-01-14\nValid: yes",
			filename:         "scans/crew_doc_scan.jpg",
			expectedValue:    "Crew Doc Scan",
			expectedStrategy: StrategyFilename,
		},
		{
			name:             "prefix stripped",
			text:             "Diploma: yacht master offshore",
			expectedValue:    "Yacht Master Offshore",
			expectedStrategy: StrategyScored,
		},
		{
			name:             "filename fallback",
			text:             "12345 67890",
			filename:         "uploads/yacht_master-offshore.pdf",
			expectedValue:    "Yacht Master Offshore",
			expectedStrategy: StrategyFilename,
		},
		{
			name:             "nothing at all",
			text:             "",
			expectedValue:    "",
			expectedStrategy: StrategyNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := s.SelectDetailed(tt.text, tt.filename)
			if sel.Value != tt.expectedValue {
				t.Errorf("Expected value %q, got %q", tt.expectedValue, sel.Value)
			}
			if sel.Strategy != tt.expectedStrategy {
				t.Errorf("Expected strategy %q, got %q", tt.expectedStrategy, sel.Strategy)
			}
			if got := s.Select(tt.text, tt.filename); got != sel.Value {
				t.Errorf("Expected Select to agree with SelectDetailed, got %q", got)
			}
		})
	}
}

func TestScoreRules(t *testing.T) {
	seg := func(text string, docHasCoC bool) segment {
		return segment{text: text, runes: len([]rune(text)), docHasCoC: docHasCoC}
	}

	t.Run("sso penalised under coc", func(t *testing.T) {
		alone := score(seg("SSO ENDORSEMENT", false), defaultScoreRules)
		withCoC := score(seg("SSO ENDORSEMENT", true), defaultScoreRules)
		if alone-withCoC != 4 {
			t.Errorf("Expected a 4 point penalty, got %d vs %d", alone, withCoC)
		}
	})

	t.Run("coc heading outranks sso", func(t *testing.T) {
		coc := score(seg("CERTIFICATE OF COMPETENCY", true), defaultScoreRules)
		sso := score(seg("SHIP SECURITY OFFICER", true), defaultScoreRules)
		if coc <= sso {
			t.Errorf("Expected CoC score %d to beat SSO score %d", coc, sso)
		}
	})

	t.Run("mostly numeric", func(t *testing.T) {
		if !mostlyNumeric(seg("No. 123456", false)) {
			t.Error("Expected reference number to be mostly numeric")
		}
		if mostlyNumeric(seg("Yacht Master 3000", false)) {
			t.Error("Expected title with a tonnage not to be mostly numeric")
		}
	})

	t.Run("floor", func(t *testing.T) {
		s := NewSelector(catalog.Default())
		if raw, sc := s.fromScoredSegments("1234 5678\n31/12/2020"); raw != "" {
			t.Errorf("Expected nothing above the floor, got %q (%d)", raw, sc)
		}
	})

	t.Run("ties keep first segment", func(t *testing.T) {
		s := NewSelector(catalog.Default())
		raw, _ := s.fromScoredSegments("Harbour Office | Marine Office")
		if raw != "Harbour Office" {
			t.Errorf("Expected first segment to win a tie, got %q", raw)
		}
	})
}

func TestPrettify(t *testing.T) {
	cat := catalog.Default()

	tests := []struct {
		input    string
		expected string
	}{
		{"stcw basic training", "STCW Basic Training"},
		{"master 200gt", "Master 200GT"},
		{"ship security officer (sso)", "Ship Security Officer (SSO)"},
		{"OMI 3.19", "OMI 3.19"},
		{"ELEMENTARY FIRST AID", "Elementary First Aid"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Prettify(tt.input, cat); got != tt.expected {
			t.Errorf("Prettify(%q): expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}
