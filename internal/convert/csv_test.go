package convert

import (
	"strings"
	"testing"
)

func TestCSVConverter_LabelsCellsWithHeaders(t *testing.T) {
	input := "name,age\nana,31\nbo,44\n"
	c := &CSVConverter{}
	got, err := c.Convert(strings.NewReader(input), "people.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Headers: name, age\nname: ana, age: 31\nname: bo, age: 44\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestCSVConverter_RaggedRowKeepsExtraCells(t *testing.T) {
	input := "a,b\n1,2,3\n"
	c := &CSVConverter{}
	got, err := c.Convert(strings.NewReader(input), "ragged.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "a: 1, b: 2, 3") {
		t.Errorf("expected unlabeled trailing cell, got %q", got)
	}
}

func TestCSVConverter_TabDelimitedByFilename(t *testing.T) {
	input := "name\tage\nana\t31\n"
	c := &CSVConverter{}
	got, err := c.Convert(strings.NewReader(input), "people.tsv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Headers: name, age\nname: ana, age: 31\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestCSVConverter_EmptyInput(t *testing.T) {
	c := &CSVConverter{}
	got, err := c.Convert(strings.NewReader(""), "empty.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}
