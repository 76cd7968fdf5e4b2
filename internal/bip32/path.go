package bip32

import (
	"fmt"
	"strconv"
	"strings"
)

// HardenedBit marks a hardened child index.
const HardenedBit uint32 = 0x80000000

// ParsePath parses a path such as "m/44'/60'/0'/0/0". Hardened indexes may
// be written with a trailing ', h or H. "m" alone yields an empty path.
func ParsePath(path string) ([]uint32, error) {
	parts := strings.Split(path, "/")
	if parts[0] != "m" {
		return nil, fmt.Errorf("%w: %q must start with m", ErrInvalidPath, path)
	}

	out := make([]uint32, 0, len(parts)-1)
	for _, part := range parts[1:] {
		hardened := false
		if n := len(part); n > 0 && (part[n-1] == '\'' || part[n-1] == 'h' || part[n-1] == 'H') {
			hardened = true
			part = part[:n-1]
		}

		i, err := strconv.ParseUint(part, 10, 32)
		if err != nil || i >= uint64(HardenedBit) || (len(part) > 1 && part[0] == '0') {
			return nil, fmt.Errorf("%w: bad index %q in %q", ErrInvalidPath, part, path)
		}

		idx := uint32(i)
		if hardened {
			idx |= HardenedBit
		}
		out = append(out, idx)
	}
	return out, nil
}

// FormatPath renders a path in the form accepted by ParsePath.
func FormatPath(path []uint32) string {
	var sb strings.Builder
	sb.WriteString("m")
	for _, i := range path {
		sb.WriteByte('/')
		sb.WriteString(strconv.FormatUint(uint64(i&^HardenedBit), 10))
		if i&HardenedBit != 0 {
			sb.WriteByte('\'')
		}
	}
	return sb.String()
}
