package state

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/baderkha/dbporter/pkg/migrate/config"
)

// Key : order independent encoding of a unit identity, safe to compare and use as a map key
type Key string

// UnitKey : canonical key of a migration unit
func UnitKey(o config.Order) Key {
	return Canonicalize(o.Identity())
}

// Canonicalize : mappings become key sorted pairs, sequences stay ordered and scalars pass
// through, recursively. Two mappings with the same pairs encode the same regardless of
// insertion order.
func Canonicalize(v any) Key {
	var sb strings.Builder
	writeCanon(&sb, reflect.ValueOf(v))
	return Key(sb.String())
}

func writeCanon(sb *strings.Builder, v reflect.Value) {
	for v.IsValid() && (v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer) {
		if v.IsNil() {
			sb.WriteString("null")
			return
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		sb.WriteString("null")
		return
	}
	switch v.Kind() {
	case reflect.Map:
		type pair struct {
			key string
			val reflect.Value
		}
		pairs := make([]pair, 0, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			pairs = append(pairs, pair{key: scalarKey(iter.Key()), val: iter.Value()})
		}
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].key < pairs[j].key })
		sb.WriteByte('{')
		for i, p := range pairs {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(p.key)
			sb.WriteByte(':')
			writeCanon(sb, p.val)
		}
		sb.WriteByte('}')
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			sb.WriteString("null")
			return
		}
		sb.WriteByte('[')
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeCanon(sb, v.Index(i))
		}
		sb.WriteByte(']')
	default:
		sb.WriteString(scalar(v))
	}
}

func scalarKey(v reflect.Value) string {
	for v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	if v.Kind() == reflect.String {
		return strconv.Quote(v.String())
	}
	return strconv.Quote(fmt.Sprint(v.Interface()))
}

// integers and floats share one spelling so 1 and 1.0 compare equal
func scalar(v reflect.Value) string {
	switch v.Kind() {
	case reflect.String:
		return strconv.Quote(v.String())
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatFloat(float64(v.Int()), 'g', -1, 64)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatFloat(float64(v.Uint()), 'g', -1, 64)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64)
	}
	return strconv.Quote(fmt.Sprint(v.Interface()))
}

// Keys : set of completed units
type Keys map[Key]struct{}

func NewKeys(keys ...Key) Keys {
	ks := make(Keys, len(keys))
	for _, k := range keys {
		ks[k] = struct{}{}
	}
	return ks
}

func (ks Keys) Add(k Key) { ks[k] = struct{}{} }

func (ks Keys) Has(k Key) bool {
	_, ok := ks[k]
	return ok
}

// Sorted : keys in a stable order for persisting
func (ks Keys) Sorted() []Key {
	out := make([]Key, 0, len(ks))
	for k := range ks {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
