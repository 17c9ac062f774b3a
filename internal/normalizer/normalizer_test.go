package normalizer

import (
	"reflect"
	"testing"
)

func TestText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"trims spaces", "  chat  ", "chat"},
		{"trims tabs and newlines", "\tchat\n", "chat"},
		{"empty", "   ", ""},
		{"composes decomposed e acute", "cafe\u0301", "caf\u00e9"},
		{"keeps composed", "caf\u00e9", "caf\u00e9"},
		{"keeps inner spaces", " bon jour ", "bon jour"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Text(tt.input)
			if result != tt.expected {
				t.Errorf("Text(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty", "", nil},
		{"single", "cat", []string{"cat"}},
		{"trims pieces", " cat ; tomcat ", []string{"cat", "tomcat"}},
		{"drops blanks", "cat;; ;tomcat;", []string{"cat", "tomcat"}},
		{"keeps duplicates and order", "b;a;b", []string{"b", "a", "b"}},
		{"only separators", ";;;", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SplitList(tt.input)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("SplitList(%q) = %#v, want %#v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestCloze(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		translations map[string]string
		expected     string
	}{
		{"substitutes", "{{c1::hello}}", map[string]string{"c1": "bonjour"}, "{{c1::hello::bonjour}}"},
		{"missing key untouched", "{{c2::world}}", map[string]string{"c1": "bonjour"}, "{{c2::world}}"},
		{"case insensitive", "{{C1::hello}}", map[string]string{"c1": "bonjour"}, "{{C1::hello::bonjour}}"},
		{"every occurrence", "{{c1::a}} and {{c1::b}}", map[string]string{"c1": "x"}, "{{c1::a::x}} and {{c1::b::x}}"},
		{"mixed keys", "{{c1::hello}} {{c2::world}}", map[string]string{"c2": "monde"}, "{{c1::hello}} {{c2::world::monde}}"},
		{"surrounding text", "Say {{c1::hello}}!", map[string]string{"c1": "salut"}, "Say {{c1::hello::salut}}!"},
		{"no translations", "{{c1::hello}}", nil, "{{c1::hello}}"},
		{"no markers", "plain text", map[string]string{"c1": "x"}, "plain text"},
		{"existing hint kept", "{{c1::hello::hint}} {{c1::hi}}", map[string]string{"c1": "bonjour"}, "{{c1::hello::hint}} {{c1::hi::bonjour}}"},
		{"single colon in content", "{{c1::12:30}}", map[string]string{"c1": "midi"}, "{{c1::12:30::midi}}"},
		{"multiline content", "{{c1::a\nb}}", map[string]string{"c1": "x"}, "{{c1::a\nb::x}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Cloze(tt.input, tt.translations)
			if result != tt.expected {
				t.Errorf("Cloze(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestClozeIdempotent(t *testing.T) {
	translations := map[string]string{"c1": "bonjour", "c2": "monde"}
	once := Cloze("{{c1::hello}}, {{c2::world}}", translations)
	if twice := Cloze(once, translations); twice != once {
		t.Errorf("second Cloze changed %q to %q", once, twice)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"plain", "plain"},
		{"a\tb", "a b"},
		{"line one\nline two", "line one line two"},
		{"a\r\nb", "a b"},
	}

	for _, tt := range tests {
		if got := Sanitize(tt.input); got != tt.expected {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
