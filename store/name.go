package store

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash"
)

// Filename encoding for record ids. Bytes in [A-Za-z0-9_.-] pass through,
// everything else becomes %XX, so distinct ids always yield distinct
// names. Encodings over maxNameLen are cut to truncLen plus '~' plus the
// xxhash64 of the full id; '~' never appears in an escaped name, so the
// two forms cannot collide.
const (
	maxNameLen = 128
	truncLen   = 64
)

const hexDigits = "0123456789ABCDEF"

func plain(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' || c == '_' || c == '.' || c == '-'
}

func EncodeId(id string) string {
	var b strings.Builder
	b.Grow(len(id))
	for i := 0; i < len(id); i++ {
		c := id[i]
		if plain(c) {
			b.WriteByte(c)
		} else {
			b.WriteByte('%')
			b.WriteByte(hexDigits[c>>4])
			b.WriteByte(hexDigits[c&0xf])
		}
	}
	name := b.String()
	if len(name) > maxNameLen {
		name = fmt.Sprintf("%s~%016x", name[:truncLen], xxhash.Sum64String(id))
	}
	return name
}

// DecodeName inverts EncodeId. It reports false for length-bounded names,
// whose original id is not recoverable from the name alone.
func DecodeName(name string) (string, bool) {
	if strings.ContainsRune(name, '~') {
		return "", false
	}
	if !strings.ContainsRune(name, '%') {
		return name, true
	}
	var b strings.Builder
	b.Grow(len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		if i+2 >= len(name) {
			return "", false
		}
		hi := strings.IndexByte(hexDigits, name[i+1])
		lo := strings.IndexByte(hexDigits, name[i+2])
		if hi < 0 || lo < 0 {
			return "", false
		}
		b.WriteByte(byte(hi<<4 | lo))
		i += 2
	}
	return b.String(), true
}
