package util

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidInput is returned for anything that is not a dotted-quad IPv4 address.
var ErrInvalidInput = errors.New("invalid input")

// IPv4ToUint32 encodes a dotted-quad address as ((o1*256+o2)*256+o3)*256+o4.
func IPv4ToUint32(addr string) (uint32, error) {
	octets := strings.Split(addr, ".")
	if len(octets) != 4 {
		return 0, fmt.Errorf("%w: %q is not a dotted-quad IPv4 address", ErrInvalidInput, addr)
	}

	var result uint32
	for i, octet := range octets {
		// ParseUint would accept "+1"; only plain decimal digits are allowed.
		if octet == "" || len(octet) > 3 || strings.TrimLeft(octet, "0123456789") != "" {
			return 0, fmt.Errorf("%w: octet %d of %q is not numeric", ErrInvalidInput, i+1, addr)
		}
		value, err := strconv.ParseUint(octet, 10, 8)
		if err != nil {
			return 0, fmt.Errorf("%w: octet %d of %q is out of range", ErrInvalidInput, i+1, addr)
		}
		result = result*256 + uint32(value)
	}
	return result, nil
}

// Uint32ToBytes renders an encoded address as the 4-byte big-endian value stored in the audit table.
func Uint32ToBytes(v uint32) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, v)
	return buf
}
