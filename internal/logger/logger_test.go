package logger

import "testing"

func TestNew_RejectsUnknownLevel(t *testing.T) {
	if _, err := New(Config{Level: "loud"}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestNew_Defaults(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		l, err := New(Config{Format: format})
		if err != nil {
			t.Fatalf("%s: %v", format, err)
		}
		l.WithComponent("test").WithUserID("u1").WithChat(1).Debugw("hello")
	}
}
