// Package phpserialize converts between the wire format produced by
// PHP's serialize()/unserialize() primitives and Go values.
//
// # Basic Usage
//
// Decode PHP data:
//
//	var profile struct {
//	    ID   int      `php:"id"`
//	    Name string   `php:"name"`
//	    Tags []string `php:"tags"`
//	}
//	data := []byte(`a:3:{s:2:"id";i:42;s:4:"name";s:3:"Bob";s:4:"tags";a:2:{i:0;s:3:"foo";i:1;s:3:"bar";}}`)
//	if err := phpserialize.Unmarshal(data, &profile); err != nil {
//	    log.Fatal(err)
//	}
//
// Encode Go values:
//
//	data, err := phpserialize.Marshal(map[string]any{
//	    "active": true,
//	    "score":  1.9,
//	})
//
// # Supported Types
//
//   - Scalars: null, boolean, integer (64-bit signed on the wire),
//     float (PHP omits the fractional part of whole floats; both forms
//     decode), raw byte strings (content need not be valid text)
//   - Arrays, disambiguated by the first key's tag: consecutive
//     integer-keyed sequences decode into slices and arrays, string-keyed
//     mappings into maps and structs
//   - Optionals: Go pointers; nil encodes as `N;` and `N;` decodes to nil
//   - UnorderedArray for arrays whose integer keys are sparse or out of
//     order
//
// # Limitations
//
// PHP objects (the `O:` tag) are not supported in either direction; a
// stream containing one fails with ErrUnsupportedFeature and is not
// recoverable past that point. Mixed-key-type arrays are rejected.
// The encoder does not detect circular pointer graphs.
//
// Declared string lengths and array counts are attacker-controlled;
// decoding caps them (and the nesting depth) with configurable limits,
// see WithMaxStringLen, WithMaxArrayLen and WithMaxDepth.
package phpserialize

// IsSerialized reports whether data plausibly starts a PHP-serialized
// value. This is a quick tag check, not a validation of the payload.
func IsSerialized(data []byte) bool {
	if len(data) < 2 {
		return false
	}
	switch data[0] {
	case tagNull:
		return data[1] == ';'
	case tagBool, tagInt, tagFloat, tagString, tagArray, tagObject:
		return data[1] == ':'
	}
	return false
}
