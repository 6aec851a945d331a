package rigproto

import (
	"errors"
	"testing"
)

func TestEncodeReadFrequency(t *testing.T) {
	if got := string(EncodeReadFrequency()); got != "f\n" {
		t.Fatalf("encode read = %q", got)
	}
}

func TestEncodeSetFrequency(t *testing.T) {
	cases := []struct {
		hz   int64
		want string
	}{
		{1234, "F 1234\n"},
		{999000, "F 999000\n"},
		{145012500, "F 145012500\n"},
		{0, "F 0\n"},
	}
	for _, tc := range cases {
		if got := string(EncodeSetFrequency(tc.hz)); got != tc.want {
			t.Fatalf("encode set %d = %q, want %q", tc.hz, got, tc.want)
		}
	}
}

func TestDecodeFrequency(t *testing.T) {
	cases := []struct {
		name string
		resp string
		want int64
	}{
		{"single line", "145000000\n", 145000000},
		{"no trailing newline", "145000000", 145000000},
		{"banner prefix", "OK\n145000000\n", 145000000},
		{"multiple banner lines", "rigctld ready\necho f\n7100000\n", 7100000},
		{"crlf line ending", "145000000\r\n", 145000000},
		{"surrounding blanks", "  \n432100000\n  ", 432100000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeFrequency([]byte(tc.resp))
			if err != nil {
				t.Fatalf("decode %q: %v", tc.resp, err)
			}
			if got != tc.want {
				t.Fatalf("decode %q = %d, want %d", tc.resp, got, tc.want)
			}
		})
	}
}

func TestDecodeFrequencyMalformed(t *testing.T) {
	cases := []string{
		"",
		"\n\n",
		"RPRT 0\n",
		"not-a-number\n",
		"145000000 Hz\n",
		"145000000\ngarbage\n",
	}
	for _, resp := range cases {
		if _, err := DecodeFrequency([]byte(resp)); !errors.Is(err, ErrDecode) {
			t.Fatalf("decode %q: expected ErrDecode, got %v", resp, err)
		}
	}
}
