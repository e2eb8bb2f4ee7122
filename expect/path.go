package expect

import (
	"strconv"
	"strings"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Lookup finds the value at path within a parsed JSON body.
//
// A path is a dot-separated list of object keys and array indexes, such as "user.email" or
// "0.id", optionally starting with "$." and optionally using brackets for indexes ("items[0]").
// The empty path and "$" refer to the whole body. A "*" segment applies the rest of the path to
// every element of an array and collects the results into a new array; elements where the rest
// of the path does not exist are left out.
//
// The second return value is false if the path does not exist in the value.
func Lookup(value ldvalue.Value, path string) (ldvalue.Value, bool) {
	return lookupSegments(value, splitPath(path))
}

func splitPath(path string) []string {
	path = strings.TrimPrefix(path, "$")
	path = strings.TrimPrefix(path, ".")
	path = strings.NewReplacer("[", ".", "]", "").Replace(path)
	if path == "" {
		return nil
	}
	var segments []string
	for _, s := range strings.Split(path, ".") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

func lookupSegments(current ldvalue.Value, segments []string) (ldvalue.Value, bool) {
	for i, seg := range segments {
		switch current.Type() {
		case ldvalue.ObjectType:
			if !hasKey(current, seg) {
				return ldvalue.Null(), false
			}
			current = current.GetByKey(seg)
		case ldvalue.ArrayType:
			if seg == "*" {
				rest := segments[i+1:]
				results := ldvalue.ArrayBuild()
				for j := 0; j < current.Count(); j++ {
					if v, ok := lookupSegments(current.GetByIndex(j), rest); ok {
						results.Add(v)
					}
				}
				return results.Build(), true
			}
			index, err := strconv.Atoi(seg)
			if err != nil || index < 0 || index >= current.Count() {
				return ldvalue.Null(), false
			}
			current = current.GetByIndex(index)
		default:
			return ldvalue.Null(), false
		}
	}
	return current, true
}

func hasKey(object ldvalue.Value, key string) bool {
	for _, k := range object.Keys() {
		if k == key {
			return true
		}
	}
	return false
}
