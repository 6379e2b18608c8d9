package wasm

// LEB128 encoding utilities for the WebAssembly binary format.

// AppendULEB128 appends v to dst as an unsigned LEB128 value.
func AppendULEB128(dst []byte, v uint64) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			dst = append(dst, b|0x80)
			continue
		}
		return append(dst, b)
	}
}

// AppendSLEB128 appends v to dst as a signed LEB128 value.
func AppendSLEB128(dst []byte, v int64) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(dst, b)
		}
		dst = append(dst, b|0x80)
	}
}

// appendName appends a length-prefixed UTF-8 name.
func appendName(dst []byte, name string) []byte {
	dst = AppendULEB128(dst, uint64(len(name)))
	return append(dst, name...)
}
