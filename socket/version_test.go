package socket

import (
	"regexp"
	"testing"
)

func TestGetVersion(t *testing.T) {
	v := GetVersion()
	if !regexp.MustCompile(`^\d+\.\d+\.\d+$`).MatchString(v) {
		t.Error("Version must be MAJOR.MINOR.PATCH but was", v)
	}
	if v != "3.1.0" {
		t.Error("Unexpected version", v)
	}
}
