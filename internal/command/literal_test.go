package command

import "testing"

func TestLiteralLadders(t *testing.T) {
	cases := []struct {
		in     string
		ladder []literal
		want   int64
		ok     bool
	}{
		{"42", valueLadder, 42, true},
		{"-7", valueLadder, -7, true},
		{"+7", valueLadder, 7, true},
		{"0x2A", valueLadder, 42, true},
		{"2A", valueLadder, 42, true},
		{"-0x10", valueLadder, -16, true},
		{"0b101", valueLadder, 5, true},
		{"0B11", valueLadder, 3, true},
		{"0b101", integerLadder, 0, false},
		{"1e3", valueLadder, 0x1E3, true},
		{"0x", valueLadder, 0, false},
		{"0b", valueLadder, 0, false},
		{"0x-5", valueLadder, 0, false},
		{"--5", valueLadder, 0, false},
		{"1.5", valueLadder, 0, false},
		{"", valueLadder, 0, false},
	}
	for _, tc := range cases {
		got, ok := firstLiteral(tc.in, tc.ladder)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("firstLiteral(%q) = (%d, %v), want (%d, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestPayload32(t *testing.T) {
	if v, ok := payload32(-1); !ok || v != 0xFFFFFFFF {
		t.Fatalf("payload32(-1) = (%#x, %v)", v, ok)
	}
	if _, ok := payload32(1 << 32); ok {
		t.Fatalf("expected 2^32 to be rejected")
	}
	if _, ok := payload32(-1 << 31); !ok {
		t.Fatalf("expected MinInt32 to be accepted")
	}
}

func TestClassify(t *testing.T) {
	st, err := classify("Set Name Of Device 3 To Hello World")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if st.query != QueryNone || st.value != "Hello World" {
		t.Fatalf("unexpected statement: %+v", st)
	}
	if st.parameterToken() != "name" || st.leftRaw[1] != "Name" {
		t.Fatalf("tokens not split into lower/raw views: %+v", st)
	}

	st, err = classify("GET ontime")
	if err != nil || st.query != QueryGet {
		t.Fatalf("expected get query, got %+v %v", st, err)
	}
}
