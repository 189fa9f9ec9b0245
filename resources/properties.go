// Package resources implements the descriptor-level editing operations
// spec.md section 4.4 describes - files, product metadata, and
// environment properties - on top of the ovf package's typed section
// handles. Grounded on original_source/COT/ovf/ovf.py's
// _validate_value_for_property/set_property_value.
package resources

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/glennmatthews/cot/errors"
	"github.com/glennmatthews/cot/ovf"
)

var (
	maxLenPattern   = regexp.MustCompile(`MaxLen\((\d+)\)`)
	minLenPattern   = regexp.MustCompile(`MinLen\((\d+)\)`)
	valueMapPattern = regexp.MustCompile(`ValueMap\{([^}]*)\}`)
)

// knownPropertyTypes is consulted by SplitTypeSuffix below.
var knownPropertyTypes = map[string]struct{}{
	"string": {}, "boolean": {}, "uint8": {}, "uint16": {}, "uint32": {},
	"uint64": {}, "int8": {}, "int16": {}, "int32": {}, "int64": {},
	"real32": {}, "real64": {},
}

// SplitTypeSuffix resolves the CLI's "key=value+type" delimiter ambiguity
// (spec.md section 4.4): property values may themselves legally contain
// '=' and '+', so a trailing "+type" suffix is consumed as a type
// annotation only when the text after the last '+' is one of the OVF
// schema's known property types. Otherwise the whole string (plus sign
// included) is the value, with no explicit type given.
func SplitTypeSuffix(raw string) (value string, propType string) {
	idx := strings.LastIndex(raw, "+")
	if idx < 0 || idx == len(raw)-1 {
		return raw, ""
	}
	candidate := raw[idx+1:]
	if _, ok := knownPropertyTypes[candidate]; ok {
		return raw[:idx], candidate
	}
	return raw, ""
}

// ValidateAndCanonicalize checks value against prop's declared type and
// qualifiers, returning the canonicalized value to store (e.g. "yes" ->
// "true" for a boolean property) or an InvalidInput error.
func ValidateAndCanonicalize(prop ovf.Property, value string) (string, error) {
	propType := ""
	if prop.Type != nil {
		propType = *prop.Type
	}

	switch propType {
	case "boolean":
		canon, ok := canonicalizeBoolean(value)
		if !ok {
			return "", errors.Unsupported(prop.Key, value, "a boolean value")
		}
		value = canon
	}

	if prop.Qualifiers == nil {
		return value, nil
	}
	qual := *prop.Qualifiers

	if m := maxLenPattern.FindStringSubmatch(qual); m != nil {
		maxLen, _ := strconv.Atoi(m[1])
		if len(value) > maxLen {
			return "", errors.Unsupported(prop.Key, value, "a string no longer than "+m[1]+" characters")
		}
	}
	if m := minLenPattern.FindStringSubmatch(qual); m != nil {
		minLen, _ := strconv.Atoi(m[1])
		if len(value) < minLen {
			return "", errors.Unsupported(prop.Key, value, "a string no shorter than "+m[1]+" characters")
		}
	}
	if m := valueMapPattern.FindStringSubmatch(qual); m != nil {
		allowed := strings.Split(m[1], ",")
		for i := range allowed {
			allowed[i] = strings.TrimSpace(allowed[i])
		}
		if !stringIn(value, allowed) {
			return "", errors.Unsupported(prop.Key, value, allowed)
		}
	}
	return value, nil
}

func canonicalizeBoolean(value string) (string, bool) {
	switch strings.ToLower(value) {
	case "true", "1", "t", "y", "yes":
		return "true", true
	case "false", "0", "f", "n", "no":
		return "false", true
	default:
		return "", false
	}
}

func stringIn(v string, list []string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// EditProperty applies a single (key, value[, type]) edit to ps, per
// spec.md section 4.4: creating the Property with default type "string"
// if it does not already exist, and validating/canonicalizing value
// against the (new or existing) Property's type and qualifiers. A value
// of "" (as opposed to a nil/omitted edit) is a legal, distinct setting -
// callers distinguish "set to empty string" from "leave unset" before
// calling this, typically by only invoking it for keys the user actually
// named on the command line.
func EditProperty(ps *ovf.ProductSection, key, value string, explicitType *string) error {
	existing, found := ps.PropertyByKey(key)
	if !found {
		propType := "string"
		if explicitType != nil {
			propType = *explicitType
		}
		prop := ovf.Property{Key: key, Type: &propType}
		canon, err := ValidateAndCanonicalize(prop, value)
		if err != nil {
			return err
		}
		prop.Value = &canon
		ps.SetProperty(prop)
		return nil
	}
	if explicitType != nil {
		existing.Type = explicitType
	}
	canon, err := ValidateAndCanonicalize(existing, value)
	if err != nil {
		return err
	}
	existing.Value = &canon
	ps.SetProperty(existing)
	return nil
}
