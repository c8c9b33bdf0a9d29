package types

import "testing"

func TestPropTagComponents(t *testing.T) {
	tests := []struct {
		tag      PropTag
		wantType PropType
		wantID   uint16
	}{
		{PR_MESSAGE_CLASS_W, PT_UNICODE, 0x001A},
		{PR_MESSAGE_CLASS_A, PT_STRING8, 0x001A},
		{PR_ENTRYID, PT_BINARY, 0x0FFF},
		{PR_DEFAULT_STORE, PT_BOOLEAN, 0x3400},
		{PR_CREATION_TIME, PT_SYSTIME, 0x3007},
	}
	for _, tt := range tests {
		t.Run(PropTagName(tt.tag), func(t *testing.T) {
			if got := tt.tag.Type(); got != tt.wantType {
				t.Errorf("Type() = %v, want %v", got, tt.wantType)
			}
			if got := tt.tag.ID(); got != tt.wantID {
				t.Errorf("ID() = 0x%04X, want 0x%04X", got, tt.wantID)
			}
			pt, id := tt.tag.TypeAndID()
			if pt != tt.wantType || id != tt.wantID {
				t.Errorf("TypeAndID() = (%v, 0x%04X)", pt, id)
			}
			if got := NewPropTag(tt.wantType, tt.wantID); got != tt.tag {
				t.Errorf("NewPropTag = 0x%08X, want 0x%08X", uint32(got), uint32(tt.tag))
			}
		})
	}

	if got := NewPropTag(PT_UNICODE, 0x001A); uint32(got) != 0x001A001F {
		t.Errorf("type is not in the low 16 bits: 0x%08X", uint32(got))
	}
}

func TestPropTagRoundTrip(t *testing.T) {
	pts := []PropType{PT_UNSPECIFIED, PT_LONG, PT_BOOLEAN, PT_UNICODE, PT_BINARY, PT_SYSTIME, 0xFFFF, MV_FLAG | PT_LONG}
	ids := []uint16{0, 1, 0x001A, 0x3001, 0x8000, 0xFFFF}
	for _, pt := range pts {
		for _, id := range ids {
			gotType, gotID := NewPropTag(pt, id).TypeAndID()
			if gotType != pt || gotID != id {
				t.Fatalf("decompose(compose(%v, 0x%04X)) = (%v, 0x%04X)", pt, id, gotType, gotID)
			}
		}
	}
}

func TestPropTagWithType(t *testing.T) {
	if got := PR_MESSAGE_CLASS_W.WithType(PT_STRING8); got != PR_MESSAGE_CLASS_A {
		t.Errorf("WithType(PT_STRING8) = %v, want PR_MESSAGE_CLASS_A", got)
	}
	for _, t1 := range []PropType{PT_LONG, PT_UNICODE, PT_BINARY} {
		for _, t2 := range []PropType{PT_ERROR, PT_STRING8, PT_I8} {
			for _, id := range []uint16{0x0001, 0x3001, 0xFFFE} {
				if got, want := NewPropTag(t1, id).WithType(t2), NewPropTag(t2, id); got != want {
					t.Errorf("WithType: got 0x%08X, want 0x%08X", uint32(got), uint32(want))
				}
			}
		}
	}
}

func TestPropTagName(t *testing.T) {
	if got := PropTagName(PR_DISPLAY_NAME_W); got != "PR_DISPLAY_NAME_W" {
		t.Errorf("PropTagName = %q", got)
	}
	if got := PropTagName(NewPropTag(PT_LONG, 0x8123)); got != "0x81230003" {
		t.Errorf("PropTagName(unknown) = %q", got)
	}
	tag, ok := LookupPropTag("PR_SUBJECT_W")
	if !ok || tag != PR_SUBJECT_W {
		t.Errorf("LookupPropTag = %v, %v", tag, ok)
	}
	if _, ok := LookupPropTag("PR_NOPE"); ok {
		t.Error("LookupPropTag resolved an unknown name")
	}
}

func TestPropTypeClass(t *testing.T) {
	tests := []struct {
		pt         PropType
		class      Class
		streamable bool
	}{
		{PT_BINARY, ClassBinary, true},
		{PT_STRING8, ClassString8, true},
		{PT_UNICODE, ClassUnicode, true},
		{PT_LONG, ClassInteger, false},
		{PT_I8, ClassInteger, false},
		{PT_BOOLEAN, ClassBoolean, false},
		{PT_SYSTIME, ClassTime, false},
		{PT_DOUBLE, ClassFloat, false},
		{PT_ERROR, ClassError, false},
		{PT_CLSID, ClassOpaque, false},
	}
	for _, tt := range tests {
		t.Run(tt.pt.String(), func(t *testing.T) {
			if got := tt.pt.Class(); got != tt.class {
				t.Errorf("Class() = %v, want %v", got, tt.class)
			}
			if got := tt.pt.Streamable(); got != tt.streamable {
				t.Errorf("Streamable() = %v, want %v", got, tt.streamable)
			}
		})
	}
	if got := (MV_FLAG | PT_LONG).String(); got != "PT_MV_LONG" {
		t.Errorf("String() = %q, want PT_MV_LONG", got)
	}
}
