package monitoring

import "testing"

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var got string
	SetLogger(func(format string, v ...interface{}) { got = format })
	Logf("decode warning: %s", "frame 3")
	if got != "decode warning: %s" {
		t.Errorf("custom logger not invoked, got %q", got)
	}

	// nil installs a no-op, not a nil func.
	SetLogger(nil)
	if Logf == nil {
		t.Fatal("Logf must never be nil")
	}
	Logf("must not panic")
}

func TestDefaultLogger(t *testing.T) {
	if Logf == nil {
		t.Fatal("Logf should default to a usable logger")
	}
}
