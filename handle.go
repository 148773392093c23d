package serialport

// Handle is an opaque reference to an open device, issued by a Binding and
// valid until that binding's Close. Handles are non-negative and zero is a
// perfectly good handle, so absence is never encoded as a sentinel value.
type Handle int

// optionalHandle distinguishes "holding handle 0" from "holding no handle".
// The zero value is the absent state.
type optionalHandle struct {
	value Handle
	valid bool
}

func someHandle(h Handle) optionalHandle {
	return optionalHandle{value: h, valid: true}
}

func (o optionalHandle) present() bool {
	return o.valid
}

// get returns the held handle; ok is false when no handle is held.
func (o optionalHandle) get() (Handle, bool) {
	return o.value, o.valid
}
