package authz

import "testing"

func TestIsWebAsset(t *testing.T) {
	classifier := NewClassifier([]string{"css", "js", ".PNG", " svg "})

	cases := []struct {
		path string
		want bool
	}{
		{"/static/app.css", true},
		{"/static/app.js", true},
		{"/img/logo.PNG", true},
		{"/img/icon.svg?v=3", true},
		{"/static/app.css#section", true},
		{"/api/resource", false},
		{"/docs/readme.pdf", false},
		{"/file.", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := classifier.IsWebAsset(tc.path); got != tc.want {
			t.Errorf("IsWebAsset(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestIsWebAsset_NoDotNeverAsset(t *testing.T) {
	classifier := NewClassifier([]string{"css"})
	if classifier.IsWebAsset("/cssfile") {
		t.Fatalf("path without extension must not classify as asset")
	}
}

func TestParseFullURL(t *testing.T) {
	cases := []struct {
		raw    string
		scheme string
		host   string
		path   string
	}{
		{"https://app.example.com/dashboard", "https", "app.example.com", "/dashboard"},
		{"http://intranet:8080/tools", "http", "intranet:8080", "/tools"},
		{"HTTPS://app.example.com/x", "https", "app.example.com", "/x"},
		{"/bare/path", "", "", "/bare/path"},
		{"dashboard", "", "", "dashboard"},
		{"ftp://files.example.com/a", "", "", "ftp://files.example.com/a"},
	}
	for _, tc := range cases {
		scheme, host, path := ParseFullURL(tc.raw)
		if scheme != tc.scheme || host != tc.host || path != tc.path {
			t.Errorf("ParseFullURL(%q) = (%q, %q, %q), want (%q, %q, %q)",
				tc.raw, scheme, host, path, tc.scheme, tc.host, tc.path)
		}
	}
}
