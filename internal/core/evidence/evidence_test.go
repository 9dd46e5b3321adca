package evidence

import (
	"testing"

	"github.com/example/court/internal/core/courterr"
)

func TestParseDisplayID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    DisplayID
		wantErr bool
	}{
		{name: "simple", input: "12.3", want: DisplayID{CaseID: 12, Position: 3}},
		{name: "large case id", input: "1048576.1", want: DisplayID{CaseID: 1048576, Position: 1}},
		{name: "missing dot", input: "123", wantErr: true},
		{name: "empty position", input: "12.", wantErr: true},
		{name: "empty case", input: ".3", wantErr: true},
		{name: "extra dot", input: "12.3.4", wantErr: true},
		{name: "negative", input: "12.-3", wantErr: true},
		{name: "plus sign", input: "+12.3", wantErr: true},
		{name: "zero position", input: "12.0", want: DisplayID{CaseID: 12, Position: 0}},
		{name: "position overflow", input: "12.99999999999999999999", wantErr: true},
		{name: "zero case", input: "0.1", wantErr: true},
		{name: "whitespace", input: " 12.3", wantErr: true},
		{name: "letters", input: "abc.def", wantErr: true},
		{name: "overflow", input: "99999999999999999999.1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDisplayID(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDisplayID(%q) = %v, want error", tt.input, got)
				}
				if courterr.KindOf(err) != courterr.KindValidation {
					t.Errorf("KindOf = %q, want validation", courterr.KindOf(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseDisplayID(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDisplayIDString(t *testing.T) {
	if got := Format(7, 2); got != "7.2" {
		t.Errorf("Format(7, 2) = %q, want %q", got, "7.2")
	}
	id, err := ParseDisplayID(Format(42, 9))
	if err != nil || id.CaseID != 42 || id.Position != 9 {
		t.Errorf("parse(format) = %+v, %v", id, err)
	}
}

func TestCheckBelongsTo(t *testing.T) {
	id := DisplayID{CaseID: 5, Position: 1}
	if err := CheckBelongsTo(id, 5); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	err := CheckBelongsTo(id, 6)
	if courterr.KindOf(err) != courterr.KindNotFound {
		t.Errorf("KindOf = %q, want not_found", courterr.KindOf(err))
	}
}

func TestValidateSubmission(t *testing.T) {
	if err := ValidateSubmission("photo of the scene", "https://example.com/a.png"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateSubmission("signed statement", "binder 3, page 12"); err != nil {
		t.Errorf("expected plain reference to be accepted, got %v", err)
	}
	if err := ValidateSubmission("  ", "https://example.com"); err == nil {
		t.Error("expected error for blank description")
	}
	if err := ValidateSubmission("desc", ""); err == nil {
		t.Error("expected error for empty link")
	}
}
