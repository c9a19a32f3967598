package hebrew

import "testing"

func TestGematria(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "א"},
		{2, "ב"},
		{9, "ט"},
		{10, "י"},
		{11, "יא"},
		{15, "טו"}, // not יה
		{16, "טז"}, // not יו
		{17, "יז"},
		{20, "כ"},
		{99, "צט"},
		{100, "ק"},
		{115, "קטו"},
		{116, "קטז"},
		{200, "ר"},
		{300, "ש"},
		{400, "ת"},
		{425, "תכה"},
		{500, "תק"},
		{613, "תריג"},
		{800, "תת"},
		{1000, "תתר"},
	}

	for _, tt := range tests {
		if got := Gematria(tt.n); got != tt.want {
			t.Errorf("Gematria(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestGematriaNonPositive(t *testing.T) {
	if got := Gematria(0); got != "" {
		t.Errorf("Gematria(0) = %q, want empty", got)
	}
	if got := Gematria(-3); got != "" {
		t.Errorf("Gematria(-3) = %q, want empty", got)
	}
}

func TestGematriaPunctuated(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "א׳"},
		{10, "י׳"},
		{15, "ט״ו"},
		{25, "כ״ה"},
		{425, "תכ״ה"},
	}

	for _, tt := range tests {
		if got := GematriaPunctuated(tt.n); got != tt.want {
			t.Errorf("GematriaPunctuated(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestDafAddress(t *testing.T) {
	tests := []struct {
		pos      int
		page     int
		side     int
		external string
	}{
		{1, 1, 0, "1a"},
		{2, 1, 1, "1b"},
		{3, 2, 0, "2a"},
		{4, 2, 1, "2b"},
		{21, 11, 0, "11a"},
	}

	for _, tt := range tests {
		if got := DafPage(tt.pos); got != tt.page {
			t.Errorf("DafPage(%d) = %d, want %d", tt.pos, got, tt.page)
		}
		if got := DafSide(tt.pos); got != tt.side {
			t.Errorf("DafSide(%d) = %d, want %d", tt.pos, got, tt.side)
		}
		if got := DafExternal(tt.pos); got != tt.external {
			t.Errorf("DafExternal(%d) = %q, want %q", tt.pos, got, tt.external)
		}
	}
}

func TestDafHebrew(t *testing.T) {
	if got := DafHebrew(3); got != "ב׳ ע״א" {
		t.Errorf("DafHebrew(3) = %q, want %q", got, "ב׳ ע״א")
	}
	if got := DafHebrew(4); got != "ב׳ ע״ב" {
		t.Errorf("DafHebrew(4) = %q, want %q", got, "ב׳ ע״ב")
	}
}

func TestDafPositionRoundTrip(t *testing.T) {
	for pos := 1; pos <= 40; pos++ {
		if got := DafPosition(DafPage(pos), DafSide(pos)); got != pos {
			t.Errorf("DafPosition(DafPage(%d), DafSide(%d)) = %d", pos, pos, got)
		}
	}
}
