package model

import "testing"

func TestNormalizeID(t *testing.T) {
	tests := map[string]struct {
		in   string
		want string
	}{
		"spaces and punctuation": {in: "My Profile!", want: "my-profile"},
		"surrounding whitespace": {in: "  Go Backend  ", want: "go-backend"},
		"whitespace runs":        {in: "a \t\n b", want: "a-b"},
		"dots and hyphens kept":  {in: "team.web-v2", want: "team.web-v2"},
		"underscore kept":        {in: "snake_case", want: "snake_case"},
		"only junk":              {in: "!!!", want: ""},
		"empty":                  {in: "", want: ""},
		"already normalized":     {in: "js-frontend", want: "js-frontend"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := NormalizeID(tt.in); got != tt.want {
				t.Errorf("NormalizeID(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeID_Idempotent(t *testing.T) {
	inputs := []string{"My Profile!", "Python Backend (Django)", "  x  y  ", "a.b-c_d", "ÜBER setup"}
	for _, in := range inputs {
		once := NormalizeID(in)
		if twice := NormalizeID(once); twice != once {
			t.Errorf("NormalizeID not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestResolveID(t *testing.T) {
	tests := map[string]struct {
		id, name string
		want     string
	}{
		"derived from name":  {id: "", name: "My Setup", want: "my-setup"},
		"blank id":           {id: "   ", name: "My Setup", want: "my-setup"},
		"explicit id wins":   {id: "Custom ID", name: "My Setup", want: "custom-id"},
		"both empty":         {id: "", name: "", want: ""},
		"name normalizes to": {id: "", name: "???", want: ""},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := ResolveID(tt.id, tt.name); got != tt.want {
				t.Errorf("ResolveID(%q, %q) = %q, want %q", tt.id, tt.name, got, tt.want)
			}
		})
	}
}
