package zerolog

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/unkn0wn-root/autocache"
)

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(zerolog.New(&buf).Level(zerolog.InfoLevel))

	l.Debug("hidden", autocache.Fields{"x": 1})
	l.Warn("cache backend error", autocache.Fields{"err": errors.New("timeout"), "op": "get"})

	out := strings.TrimSpace(buf.String())
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug leaked: %s", out)
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(out), &m); err != nil {
		t.Fatalf("%s: %v", out, err)
	}
	if m["level"] != "warn" || m["err"] != "timeout" || m["op"] != "get" || m["component"] != "autocache" {
		t.Fatalf("entry=%v", m)
	}
}
