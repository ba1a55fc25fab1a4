package progressbar

import (
	"bytes"
	"strings"
	"testing"
)

func TestManualProgressBar(t *testing.T) {
	var buf bytes.Buffer
	p := NewManualProgressBar(&buf, 10, 4)

	p.Display()
	if !strings.Contains(buf.String(), "| [0.00%") {
		t.Errorf("expected empty bar, got %q", buf.String())
	}

	for i := 0; i < 6; i++ {
		p.Increment()
	}
	if p.Progress() != 1 {
		t.Errorf("expected progress to stop at 1, got %v", p.Progress())
	}

	buf.Reset()
	p.Display()
	if got := strings.Count(buf.String(), "█"); got != 10 {
		t.Errorf("expected 10 filled cells, got %v", got)
	}
	if !strings.Contains(buf.String(), "100.00%") {
		t.Errorf("expected full bar, got %q", buf.String())
	}
}
