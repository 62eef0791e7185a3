package utils

import (
	"testing"
)

func TestNormalizeIP(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "ipv4", input: "192.0.2.1", want: "192.0.2.1"},
		{name: "ipv4_port", input: "192.0.2.1:161", want: "192.0.2.1"},
		{name: "ipv6_port", input: "[2001:db8::1]:161", want: "2001:db8::1"},
		{name: "ipv6_zone", input: "fe80::1%eth0", want: "fe80::1"},
		{name: "mapped", input: "::ffff:192.0.2.1", want: "192.0.2.1"},
		{name: "invalid", input: "not-an-ip", want: "not-an-ip"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeIP(tt.input); got != tt.want {
				t.Errorf("NormalizeIP(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCanonicalIP(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantAddress string
		wantVersion int
		wantOK      bool
	}{
		{name: "ipv4", input: "10.0.0.1", wantAddress: "10.0.0.1", wantVersion: 4, wantOK: true},
		{name: "ipv4_spaces", input: " 10.0.0.1 ", wantAddress: "10.0.0.1", wantVersion: 4, wantOK: true},
		{name: "ipv6_compressed", input: "2001:DB8::1", wantAddress: "2001:0db8:0000:0000:0000:0000:0000:0001", wantVersion: 6, wantOK: true},
		{name: "ipv6_expanded", input: "2001:0db8:0000:0000:0000:0000:0000:0001", wantAddress: "2001:0db8:0000:0000:0000:0000:0000:0001", wantVersion: 6, wantOK: true},
		{name: "ipv4_mapped", input: "::ffff:10.1.2.3", wantAddress: "10.1.2.3", wantVersion: 4, wantOK: true},
		{name: "invalid", input: "300.1.1.1", wantOK: false},
		{name: "empty", input: "", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			address, version, ok := CanonicalIP(tt.input)
			if ok != tt.wantOK || address != tt.wantAddress || version != tt.wantVersion {
				t.Errorf("CanonicalIP(%q) = (%q, %d, %v), want (%q, %d, %v)",
					tt.input, address, version, ok, tt.wantAddress, tt.wantVersion, tt.wantOK)
			}
		})
	}
}
