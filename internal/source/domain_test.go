package source

import "testing"

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"bare domain", "reuters.com", "reuters.com"},
		{"full url", "https://www.BBC.com/news/x?y=1", "bbc.com"},
		{"scheme and port", "http://example.com:8080/path", "example.com"},
		{"subdomain collapse", "blogs.reuters.com", "reuters.com"},
		{"multi-label suffix", "news.bbc.co.uk", "bbc.co.uk"},
		{"multi-label suffix bare", "bbc.co.uk", "bbc.co.uk"},
		{"australian", "shop.example.com.au", "example.com.au"},
		{"citation label", "report.pdf, p.3", "report.pdf"},
		{"url citation label", "https://www.reuters.com/article/x, p.2", "reuters.com"},
		{"fragment", "https://apnews.com/hub/tech#top", "apnews.com"},
		{"trailing slash", "https://ft.com/", "ft.com"},
		{"single label", "localhost", "localhost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeDomain(tt.input); got != tt.want {
				t.Errorf("NormalizeDomain(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeDomain_Idempotent(t *testing.T) {
	inputs := []string{"bbc.com", "bbc.co.uk", "reuters.com", "example.com.au"}
	for _, in := range inputs {
		once := NormalizeDomain(in)
		twice := NormalizeDomain(once)
		if once != twice {
			t.Errorf("NormalizeDomain not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestRegistrableDomain(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"", ""},
		{"a.b.c.example.com", "example.com"},
		{"a.b.gov.uk", "b.gov.uk"},
		{"example.co.jp", "example.co.jp"},
	}

	for _, tt := range tests {
		if got := RegistrableDomain(tt.host); got != tt.want {
			t.Errorf("RegistrableDomain(%q) = %q, want %q", tt.host, got, tt.want)
		}
	}
}
