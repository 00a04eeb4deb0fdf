package timex

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDuration_UnmarshalJSON_String(t *testing.T) {
	var d Duration
	if err := json.Unmarshal([]byte(`"15m"`), &d); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if d.Duration != 15*time.Minute {
		t.Fatalf("got %v want %v", d.Duration, 15*time.Minute)
	}
}

func TestDuration_UnmarshalJSON_Number(t *testing.T) {
	var d Duration
	if err := json.Unmarshal([]byte(`1000000000`), &d); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if d.Duration != time.Second {
		t.Fatalf("got %v want %v", d.Duration, time.Second)
	}
}

func TestDuration_UnmarshalJSON_Invalid(t *testing.T) {
	cases := []string{`"abc"`, `true`, `[1]`}
	for _, c := range cases {
		var d Duration
		if err := json.Unmarshal([]byte(c), &d); err == nil {
			t.Fatalf("expected error for %s, got nil", c)
		}
	}
}

func TestDuration_MarshalJSON(t *testing.T) {
	d := Duration{Duration: 90 * time.Second}
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	if string(b) != `"1m30s"` {
		t.Fatalf("got %s want %q", b, "1m30s")
	}
}
