package property

import (
	"testing"
)

var batches = map[string][]Message{
	"empty": nil,
	"set mode": {
		SetPhysicalDimensions(640, 480),
		SetVirtualDimensions(640, 480),
		SetBitsPerPixel(24),
	},
	"allocate":        {AllocateBuffer(16)},
	"release":         {ReleaseBuffer()},
	"pitch and depth": {GetBytesPerRow(), GetBitsPerPixel()},
	"every tag": {
		AllocateBuffer(16), ReleaseBuffer(),
		GetPhysicalDimensions(), SetPhysicalDimensions(1, 2),
		GetVirtualDimensions(), SetVirtualDimensions(3, 4),
		GetBitsPerPixel(), SetBitsPerPixel(32), GetBytesPerRow(),
	},
}

func TestBuildHeaderAndAlignment(t *testing.T) {
	for name, msgs := range batches {
		t.Run(name, func(t *testing.T) {
			buf := Build(msgs)
			if int(buf[0]) != len(buf)*4 {
				t.Errorf("size word = %d, buffer is %d bytes", buf[0], len(buf)*4)
			}
			if len(buf)*4%Alignment != 0 {
				t.Errorf("buffer of %d bytes is not %d-byte aligned", len(buf)*4, Alignment)
			}
			if ResultCode(buf[1]) != Request {
				t.Errorf("code word = %#x, want request", buf[1])
			}
		})
	}
}

func TestBuildEndTag(t *testing.T) {
	for name, msgs := range batches {
		t.Run(name, func(t *testing.T) {
			buf := Build(msgs)
			end := headerWords
			for _, m := range msgs {
				end += len(m.Words())
			}
			if buf[end] != EndTag {
				t.Fatalf("word %d = %#x, want end tag", end, buf[end])
			}
			for i := end + 1; i < len(buf); i++ {
				if buf[i] != 0 {
					t.Errorf("padding word %d = %#x, want 0", i, buf[i])
				}
			}
		})
	}
}

func TestBuildExactLayout(t *testing.T) {
	got := Build([]Message{
		SetPhysicalDimensions(640, 480),
		SetVirtualDimensions(640, 480),
		SetBitsPerPixel(24),
	})
	want := []uint32{
		80, 0,
		0x00048003, 8, 0, 640, 480,
		0x00048004, 8, 0, 640, 480,
		0x00048005, 4, 0, 24,
		0,
		0, 0, 0,
	}
	if len(got) != len(want) {
		t.Fatalf("Build() = %d words, want %d: %#x", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("word %d = %#x, want %#x", i, got[i], want[i])
		}
	}

	alloc := Build([]Message{AllocateBuffer(16)})
	wantAlloc := []uint32{32, 0, 0x00040001, 8, 0, 16, 0, 0}
	for i := range wantAlloc {
		if alloc[i] != wantAlloc[i] {
			t.Errorf("allocate word %d = %#x, want %#x", i, alloc[i], wantAlloc[i])
		}
	}
}

func TestBuildDeterministic(t *testing.T) {
	msgs := batches["every tag"]
	a, b := Build(msgs), Build(msgs)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Build() differs at word %d", i)
		}
	}
}

func TestLayoutMatchesBuild(t *testing.T) {
	for name, msgs := range batches {
		t.Run(name, func(t *testing.T) {
			buf := Build(msgs)
			spans := Layout(msgs)
			if len(spans) != len(msgs) {
				t.Fatalf("Layout() = %d spans, want %d", len(spans), len(msgs))
			}
			for i, s := range spans {
				m := msgs[i]
				if buf[s.Offset-3] != m.Kind.ID() {
					t.Errorf("span %d: id word = %#x, want %#x", i, buf[s.Offset-3], m.Kind.ID())
				}
				if int(buf[s.Offset-2]) != s.Words*4 {
					t.Errorf("span %d: size word = %d, span has %d words", i, buf[s.Offset-2], s.Words)
				}
				if s.Words != m.Kind.ValueWords() {
					t.Errorf("span %d: %d words, kind has %d", i, s.Words, m.Kind.ValueWords())
				}
				for j := 0; j < m.Kind.Args(); j++ {
					if buf[s.Offset+j] != m.Args[j] {
						t.Errorf("span %d: arg %d = %d, want %d", i, j, buf[s.Offset+j], m.Args[j])
					}
				}
			}
		})
	}
}

func TestParseResult(t *testing.T) {
	tests := []struct {
		code    uint32
		want    ResultCode
		wantErr bool
	}{
		{0x0000_0000, Request, false},
		{0x8000_0000, ResponseSuccess, false},
		{0x8000_0001, ResponseError, false},
		{0x8000_0002, 0, true},
		{0x0000_0001, 0, true},
		{0xFFFF_FFFF, 0, true},
	}
	for _, tt := range tests {
		t.Run(ResultCode(tt.code).String(), func(t *testing.T) {
			buf := []uint32{16, tt.code, 0, 0}
			got, err := ParseResult(buf)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseResult() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseResult() = %v, want %v", got, tt.want)
			}
			again, _ := ParseResult(buf)
			if again != got {
				t.Errorf("ParseResult() not stable: %v then %v", got, again)
			}
		})
	}
}

func TestParseResultShortBuffer(t *testing.T) {
	_, err := ParseResult([]uint32{8})
	if _, ok := err.(*DecodeError); !ok {
		t.Errorf("ParseResult() error = %v, want *DecodeError", err)
	}
}

func TestKindTable(t *testing.T) {
	seen := map[uint32]Kind{}
	for k := Kind(0); k < numKinds; k++ {
		if prev, dup := seen[k.ID()]; dup {
			t.Errorf("%v and %v share id %#x", prev, k, k.ID())
		}
		seen[k.ID()] = k
		if k.Args() > k.ValueWords() {
			t.Errorf("%v takes %d args but has %d value words", k, k.Args(), k.ValueWords())
		}
		got, ok := KindForID(k.ID())
		if !ok || got != k {
			t.Errorf("KindForID(%#x) = %v, %v", k.ID(), got, ok)
		}
	}
	if _, ok := KindForID(0x00010001); ok {
		t.Errorf("KindForID() found a tag the table does not have")
	}
}
