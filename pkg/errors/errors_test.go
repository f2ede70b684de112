package errors

import "testing"

func TestStrings(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{CatUser.Category(), "User"},
		{CatInternal.Category(), "Internal"},
		{CatUnknown.Category(), "Unknown"},
		{TypeFS.Type(), "FS"},
		{TypeParameter.Type(), "Parameter"},
		{TypeCodec.Type(), "Codec"},
		{TypeArchive.Type(), "Archive"},
		{TypeTimeout.Type(), "TimeoutOrCancel"},
		{Type(999).Type(), "Unknown"},
	}
	for _, test := range tests {
		if test.got != test.want {
			t.Errorf("TestStrings: got %q, want %q", test.got, test.want)
		}
	}
}

func TestStdlibWrappers(t *testing.T) {
	base := New("base")
	joined := Join(base, nil)
	if !Is(joined, base) {
		t.Errorf("TestStdlibWrappers: Is(Join(base), base) = false")
	}
	if Join(nil, nil) != nil {
		t.Errorf("TestStdlibWrappers: Join(nil, nil) != nil")
	}
}
