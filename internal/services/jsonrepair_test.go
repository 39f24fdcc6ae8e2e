package services

import "testing"

type testDoc struct {
	Title string `json:"title"`
}

func TestParseObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"plain json", `{"title": "Cell Biology"}`},
		{"json fence", "```json\n{\"title\": \"Cell Biology\"}\n```"},
		{"bare fence", "```\n{\"title\": \"Cell Biology\"}\n```"},
		{"leading prose", "Here is the result:\n{\"title\": \"Cell Biology\"}"},
		{"trailing prose", "{\"title\": \"Cell Biology\"}\nLet me know if you need changes."},
		{"fence and prose", "Sure!\n```json\n{\"title\": \"Cell Biology\"}\n```\nDone."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var doc testDoc
			if err := ParseObject(tc.input, &doc); err != nil {
				t.Fatalf("ParseObject failed: %v", err)
			}
			if doc.Title != "Cell Biology" {
				t.Errorf("Expected title 'Cell Biology', got %q", doc.Title)
			}
		})
	}
}

func TestParseObject_Unparseable(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"no json at all", "I cannot process this content."},
		{"broken json", `{"title": "Cell Biology"`},
		{"empty", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var doc testDoc
			if err := ParseObject(tc.input, &doc); err == nil {
				t.Error("Expected error for unparseable input")
			}
		})
	}
}
