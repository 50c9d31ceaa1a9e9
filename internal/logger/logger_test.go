package logger

import "testing"

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", ModeDevelopment, false},
		{"dev", ModeDevelopment, false},
		{"Development", ModeDevelopment, false},
		{"prod", ModeProduction, false},
		{"PRODUCTION", ModeProduction, false},
		{"quiet", ModeQuiet, false},
		{"verbose", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNew(t *testing.T) {
	for _, mode := range []string{"dev", "prod", "quiet"} {
		l, err := New(mode)
		if err != nil {
			t.Fatalf("New(%q) error = %v", mode, err)
		}
		l.With("pair", "HAL_ORCID").Debug("debug line", "n", 1)
	}
	if _, err := New("loud"); err == nil {
		t.Error("New(loud) should fail")
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("OrNop(nil) returned nil")
	}
	l := Nop()
	if OrNop(l) != l {
		t.Error("OrNop should return its argument when non-nil")
	}
	OrNop(nil).Info("discarded", "k", "v")
}
