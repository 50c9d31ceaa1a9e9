package importer

import (
	"encoding/json"
	"testing"
)

func TestFlexibleString_Unmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"string", `"2024"`, "2024", false},
		{"number", `2024`, "2024", false},
		{"null", `null`, "", false},
		{"large pmid", `38123456`, "38123456", false},
		{"object", `{"y": 1}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FlexibleString
			err := json.Unmarshal([]byte(tt.input), &f)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && f.String() != tt.want {
				t.Errorf("FlexibleString = %q, want %q", f, tt.want)
			}
		})
	}
}
