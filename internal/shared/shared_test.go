package shared

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	t.Run("Writes To Provided Writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Info("hello")

		if !strings.Contains(buf.String(), "hello") {
			t.Errorf("expected log output, got %q", buf.String())
		}
	})

	t.Run("Nil Writer Defaults", func(t *testing.T) {
		if logger := NewLogger(nil); logger == nil {
			t.Fatal("expected logger to be created")
		}
	})
}

func TestGenerateID(t *testing.T) {
	a := GenerateID()
	b := GenerateID()

	if a == b {
		t.Error("expected unique ids")
	}
	if len(a) != 36 {
		t.Errorf("expected uuid format, got %q", a)
	}
}

func TestMarshalJSON(t *testing.T) {
	data := map[string]int{"count": 3}

	t.Run("Compact", func(t *testing.T) {
		out, err := MarshalJSON(data, false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if string(out) != `{"count":3}` {
			t.Errorf("unexpected output: %s", out)
		}
	})

	t.Run("Pretty", func(t *testing.T) {
		out, err := MarshalJSON(data, true)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(string(out), "\n") {
			t.Errorf("expected indented output, got %s", out)
		}
	})
}

func TestNormalizeTrackKey(t *testing.T) {
	cases := []struct {
		name   string
		title  string
		artist string
		want   string
	}{
		{"Simple", "Song", "Artist", "song|artist"},
		{"Mixed Case", "SoNg TiTle", "ARTIST", "song title|artist"},
		{"Extra Whitespace", "  Song   Title ", " Artist  Name ", "song title|artist name"},
		{"Empty Artist", "Song", "", "song|"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeTrackKey(tc.title, tc.artist); got != tc.want {
				t.Errorf("NormalizeTrackKey(%q, %q) = %q, want %q", tc.title, tc.artist, got, tc.want)
			}
		})
	}
}

func TestLookupSetting(t *testing.T) {
	const envVar = "PLAYFERRY_TEST_SETTING"

	t.Run("Env Wins", func(t *testing.T) {
		t.Setenv(envVar, "from-env")
		if got := LookupSetting(envVar, "from-file"); got != "from-env" {
			t.Errorf("expected env value, got %q", got)
		}
	})

	t.Run("Falls Back To File Value", func(t *testing.T) {
		if got := LookupSetting(envVar, "from-file"); got != "from-file" {
			t.Errorf("expected file value, got %q", got)
		}
	})

	t.Run("Empty Env Ignored", func(t *testing.T) {
		t.Setenv(envVar, "")
		if got := LookupSetting(envVar, "from-file"); got != "from-file" {
			t.Errorf("expected file value for empty env, got %q", got)
		}
	})
}
