package cli

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
)

func TestGetSimpleText_TrimsNewline(t *testing.T) {
	var out bytes.Buffer
	r := bufio.NewReader(strings.NewReader("alice@x.com\n"))

	got, err := GetSimpleText(r, "Email", &out)
	if err != nil {
		t.Fatalf("GetSimpleText error: %v", err)
	}
	if got != "alice@x.com" {
		t.Fatalf("got %q want %q", got, "alice@x.com")
	}
	if !strings.Contains(out.String(), "Email") {
		t.Fatalf("prompt not written: %q", out.String())
	}
}

func TestGetSimpleText_PartialLineAtEOF(t *testing.T) {
	var out bytes.Buffer
	r := bufio.NewReader(strings.NewReader("alice"))

	got, err := GetSimpleText(r, "Username", &out)
	if err != nil {
		t.Fatalf("GetSimpleText error: %v", err)
	}
	if got != "alice" {
		t.Fatalf("got %q want %q", got, "alice")
	}
}

func TestGetPassword_UsesStub(t *testing.T) {
	orig := readPassword
	defer func() { readPassword = orig }()
	readPassword = func(fd int) ([]byte, error) {
		return []byte("Secret123!"), nil
	}

	var out bytes.Buffer
	got, err := GetPassword(&out)
	if err != nil {
		t.Fatalf("GetPassword error: %v", err)
	}
	if got != "Secret123!" {
		t.Fatalf("got %q", got)
	}
	if !strings.Contains(out.String(), "Enter password:") {
		t.Fatalf("prompt not written: %q", out.String())
	}
}
