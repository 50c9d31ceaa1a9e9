package anomaly

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/Loris-rss/Research-Visbility-Checker/internal/collection"
)

func wos() *collection.Collection {
	c := collection.New("WoS", []string{DefaultAuthorColumn, ORCIDPathColumn, ProfileColumn})
	c.Rows = []collection.Record{
		{DefaultAuthorColumn: "Humbert, Marc; Dupont, Marie", ORCIDPathColumn: "/0000-0001/work/1", ProfileColumn: "A-1234"},
		{DefaultAuthorColumn: "Dupont, Marie; Martin, Paul", ORCIDPathColumn: nil, ProfileColumn: "A-1234"},
		{DefaultAuthorColumn: "Martin, Paul; Dupont, Jean", ORCIDPathColumn: nil, ProfileColumn: "A-1234"},
		{DefaultAuthorColumn: "HUMBERT, MARC", ORCIDPathColumn: nil, ProfileColumn: "A-1234"},
	}
	return c
}

func TestCheck(t *testing.T) {
	rep, err := Check(wos(), "Humbert, Marc", "")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	if !reflect.DeepEqual(rep.Flagged, []int{1, 2}) {
		t.Errorf("Flagged = %v, want [1 2]", rep.Flagged)
	}
	want := []NameCount{{"dupont", 2}, {"martin", 2}}
	if !reflect.DeepEqual(rep.TopNames, want) {
		t.Errorf("TopNames = %v, want %v", rep.TopNames, want)
	}
}

func TestCheck_TopNamesCapped(t *testing.T) {
	c := collection.New("WoS", []string{DefaultAuthorColumn})
	c.Rows = []collection.Record{
		{DefaultAuthorColumn: "A, x; B, y; C, z; D, w"},
		{DefaultAuthorColumn: "A, x; B, y"},
		{DefaultAuthorColumn: "A, x"},
	}

	rep, err := Check(c, "Nobody", "")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	want := []NameCount{{"a", 3}, {"b", 2}, {"c", 1}}
	if !reflect.DeepEqual(rep.TopNames, want) {
		t.Errorf("TopNames = %v, want %v", rep.TopNames, want)
	}
}

func TestCheck_Errors(t *testing.T) {
	if _, err := Check(wos(), "Humbert", "Authors"); !errors.Is(err, ErrMissingAuthorColumn) {
		t.Errorf("Check(missing column) error = %v", err)
	}
	if _, err := Check(wos(), "  ", ""); err == nil {
		t.Error("Check(blank researcher) expected error")
	}
}

func TestReport_Message(t *testing.T) {
	rep, _ := Check(wos(), "Humbert", "")
	msg := rep.Message()
	for _, want := range []string{"Sur 4 articles - il y a 2 articles", "Nom : Dupont : 2 fois"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Message() missing %q:\n%s", want, msg)
		}
	}

	clean, _ := Check(wos(), "a", "")
	if clean.Message() != "Il n'y a pas d'anomalie" {
		t.Errorf("Message() = %q", clean.Message())
	}
}

func TestReport_SuggestAction(t *testing.T) {
	c := wos()
	rep, _ := Check(c, "Humbert", "")

	tests := []struct {
		row  int
		want string
	}{
		{0, "Dans ORCID et situé dans votre WoS ResearcherID : A-1234"},
		{1, ActionRemove},
		{3, ActionNotORCID},
	}
	for _, tt := range tests {
		if got := rep.SuggestAction(c, tt.row); got != tt.want {
			t.Errorf("SuggestAction(%d) = %q, want %q", tt.row, got, tt.want)
		}
	}
}
