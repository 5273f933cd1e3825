// Package bitfield packs and unpacks struct fields into integers.
// This is a simplified version based on golang.org/x/text/internal/gen/bitfield
package bitfield

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Config determines settings for packing.
type Config struct {
	// NumBits fixes the maximum allowed bits for the integer representation.
	// Zero means no limit beyond the 64 bits of the result.
	NumBits uint
}

// Word32 is the configuration for hardware register words.
var Word32 = &Config{NumBits: 32}

// field is one annotated bit range of a struct, lowest bits first.
type field struct {
	index int
	bits  uint
}

// fields returns the annotated fields of t in declaration order.
// Only fields that have a "bitfield" tag take part. The tag is
// "methodName,bits" or just ",bits".
func fields(t reflect.Type) ([]field, error) {
	var out []field
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("bitfield")
		if tag == "" {
			continue
		}

		_, width, ok := strings.Cut(tag, ",")
		n, err := strconv.ParseUint(width, 10, 8)
		if !ok || err != nil {
			return nil, fmt.Errorf("bitfield: invalid tag %q on field %s", tag, f.Name)
		}
		bits := uint(n)
		if bits == 0 {
			continue
		}
		if bits > 64 {
			return nil, fmt.Errorf("bitfield: field %s wants %d bits", f.Name, bits)
		}
		out = append(out, field{index: i, bits: bits})
	}
	return out, nil
}

func structValue(x interface{}, op string) (reflect.Value, error) {
	v := reflect.ValueOf(x)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("%s: expected struct, got %v", op, v.Kind())
	}
	return v, nil
}

func mask(bits uint) uint64 {
	if bits >= 64 {
		return ^uint64(0)
	}
	return (1 << bits) - 1
}

// Pack packs annotated bit ranges of struct x into an integer.
// The first annotated field occupies the lowest bits.
func Pack(x interface{}, c *Config) (packed uint64, err error) {
	if c == nil {
		c = &Config{NumBits: 64}
	}

	v, err := structValue(x, "Pack")
	if err != nil {
		return 0, err
	}
	fs, err := fields(v.Type())
	if err != nil {
		return 0, err
	}

	var bitOffset uint
	for _, f := range fs {
		fieldValue := v.Field(f.index)
		name := v.Type().Field(f.index).Name
		var fieldBits uint64

		switch fieldValue.Kind() {
		case reflect.Bool:
			if fieldValue.Bool() {
				fieldBits = 1
			}
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			fieldBits = fieldValue.Uint()
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			val := fieldValue.Int()
			if val < 0 {
				return 0, fmt.Errorf("Pack: negative value %d for field %s", val, name)
			}
			fieldBits = uint64(val)
		default:
			return 0, fmt.Errorf("Pack: unsupported field type %v for field %s", fieldValue.Kind(), name)
		}

		if fieldBits > mask(f.bits) {
			return 0, fmt.Errorf("Pack: value %d exceeds %d bits for field %s", fieldBits, f.bits, name)
		}

		packed |= fieldBits << bitOffset
		bitOffset += f.bits
	}

	if c.NumBits > 0 && bitOffset > c.NumBits {
		return 0, fmt.Errorf("Pack: total bits %d exceeds NumBits %d", bitOffset, c.NumBits)
	}
	return packed, nil
}

// Unpack is the inverse of Pack: it stores the bit ranges of packed into
// the annotated fields of the struct x points to.
func Unpack(packed uint64, x interface{}) error {
	v := reflect.ValueOf(x)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("Unpack: expected pointer to struct, got %v", v.Kind())
	}
	v = v.Elem()
	fs, err := fields(v.Type())
	if err != nil {
		return err
	}

	var bitOffset uint
	for _, f := range fs {
		fieldValue := v.Field(f.index)
		raw := (packed >> bitOffset) & mask(f.bits)
		bitOffset += f.bits

		switch fieldValue.Kind() {
		case reflect.Bool:
			fieldValue.SetBool(raw != 0)
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if fieldValue.OverflowUint(raw) {
				return fmt.Errorf("Unpack: value %d overflows field %s", raw, v.Type().Field(f.index).Name)
			}
			fieldValue.SetUint(raw)
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if raw > math.MaxInt64 || fieldValue.OverflowInt(int64(raw)) {
				return fmt.Errorf("Unpack: value %d overflows field %s", raw, v.Type().Field(f.index).Name)
			}
			fieldValue.SetInt(int64(raw))
		default:
			return fmt.Errorf("Unpack: unsupported field type %v for field %s", fieldValue.Kind(), v.Type().Field(f.index).Name)
		}
	}
	return nil
}
