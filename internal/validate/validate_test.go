package validate

import "testing"

func TestSenderType(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"user", true},
		{"agent", true},
		{"bot", true},
		{"User", false},
		{"admin", false},
		{"", false},
		{" user", false},
	}
	for _, tt := range tests {
		if got := SenderType(tt.in); got != tt.want {
			t.Errorf("SenderType(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMessageText(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"hi", true},
		{"  hello  ", true},
		{"00", true},
		{"", false},
		{"   ", false},
		{"\t\n", false},
		{"0", false},
		{" 0 ", false},
	}
	for _, tt := range tests {
		if got := MessageText(tt.in); got != tt.want {
			t.Errorf("MessageText(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPresentString(t *testing.T) {
	if PresentString("") || PresentString("0") {
		t.Error("empty and \"0\" must not be present")
	}
	if !PresentString("Ana") || !PresentString(" ") {
		t.Error("non-empty strings other than \"0\" are present")
	}
}

func TestSearchQuery(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"a", false},
		{"ab", true},
		{"hello", true},
		{"é", true}, // two bytes
	}
	for _, tt := range tests {
		if got := SearchQuery(tt.in); got != tt.want {
			t.Errorf("SearchQuery(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestEmail(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"john@example.com", true},
		{"first.last+tag@sub.example.org", true},
		{"", false},
		{"invalid-email", false},
		{"john@", false},
		{"@example.com", false},
		{"john@localhost", false},
		{"john@example.", false},
		{"john doe@example.com", false},
	}
	for _, tt := range tests {
		if got := Email(tt.in); got != tt.want {
			t.Errorf("Email(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
