package schema

import (
	"fmt"
	"testing"
)

func checkType(t *testing.T, typ Type, name string, cases map[string]bool) {
	t.Helper()
	if typ.Name() != name {
		t.Errorf("Name() = %q, want %q", typ.Name(), name)
	}
	for value, wantErr := range cases {
		err := typ.Validate(value)
		if (err != nil) != wantErr {
			t.Errorf("%s.Validate(%q) error = %v, wantErr %v", name, value, err, wantErr)
		}
	}
}

func TestTextType(t *testing.T) {
	checkType(t, Text(), "text", map[string]bool{
		"hello": false,
		"  x ":  false,
		"":      true,
		"   ":   true,
	})
}

func TestNumberType(t *testing.T) {
	checkType(t, Number(), "number", map[string]bool{
		"42":        false,
		"3.14":      false,
		"-7":        false,
		"1,250.00":  false,
		"$1,500":    false,
		"twelve":    true,
		"12 months": true,
		"NaN":       true,
		"Inf":       true,
		"-infinity": true,
		"1e400":     true,
	})
}

func TestDateType(t *testing.T) {
	checkType(t, Date(), "date", map[string]bool{
		"2024-01-31": false,
		"2024-02-30": true,
		"31/01/2024": true,
		"tomorrow":   true,
	})
}

func TestEmailType(t *testing.T) {
	checkType(t, Email(), "email", map[string]bool{
		"ada@example.com":            false,
		"first.last@sub.example.org": false,
		"ada@localhost":              true,
		"ada":                        true,
		"Ada <ada@example.com>":      true,
		"ada@example.":               true,
		"a da@example.com":           true,
	})
}

func TestPhoneType(t *testing.T) {
	checkType(t, Phone(), "phone", map[string]bool{
		"+1 (555) 123-4567": false,
		"5551234":           false,
		"555-12":            true,
		"call me":           true,
	})
}

func TestChoiceType(t *testing.T) {
	checkType(t, OneOf("Monthly", "Weekly"), "choice", map[string]bool{
		"Monthly": false,
		"Weekly":  false,
		"monthly": true,
		"Daily":   true,
	})

	if OneOf().Name() != "text" {
		t.Errorf("OneOf() without options should fall back to text")
	}
}

func TestConfirmationType(t *testing.T) {
	checkType(t, Confirmation(), "confirmation", map[string]bool{
		"yes":  false,
		"TRUE": false,
		"no":   true,
		"":     true,
	})
}

func TestCustomType(t *testing.T) {
	even := Custom("even", func(v string) error {
		n, err := ParseNumber(v)
		if err != nil || int(n)%2 != 0 {
			return fmt.Errorf("expected an even number")
		}
		return nil
	})
	checkType(t, even, "even", map[string]bool{
		"2": false,
		"3": true,
		"x": true,
	})
}

func TestParseNumber(t *testing.T) {
	tests := map[string]float64{
		"1":         1,
		" 2.5 ":     2.5,
		"$1,234.50": 1234.5,
	}
	for in, want := range tests {
		got, err := ParseNumber(in)
		if err != nil {
			t.Fatalf("ParseNumber(%q) error = %v", in, err)
		}
		if got != want {
			t.Errorf("ParseNumber(%q) = %v, want %v", in, got, want)
		}
	}

	for _, in := range []string{"nan", "+Inf", "-infinity", "$Infinity"} {
		if _, err := ParseNumber(in); err == nil {
			t.Errorf("ParseNumber(%q) should reject non-finite values", in)
		}
	}
}
