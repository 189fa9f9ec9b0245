package editor

import (
	"strings"

	"github.com/glennmatthews/cot/resources"
)

// PropertyEdit is one parsed "-p key=value+type" argument. Value is nil
// for a bare "key" with no '=' at all (nothing to set); Type is nil unless
// an explicit "+type" suffix was recognized.
type PropertyEdit struct {
	Key   string
	Value *string
	Type  *string
}

// ParsePropertyEdit splits a raw "-p" argument into key, value, and
// optional type, delegating the "+type" suffix's ambiguity with a
// legitimately '+'-containing value to resources.SplitTypeSuffix.
func ParsePropertyEdit(raw string) PropertyEdit {
	idx := strings.Index(raw, "=")
	if idx < 0 {
		return PropertyEdit{Key: raw}
	}
	key := raw[:idx]
	rest := raw[idx+1:]
	value, propType := resources.SplitTypeSuffix(rest)
	edit := PropertyEdit{Key: key, Value: &value}
	if propType != "" {
		edit.Type = &propType
	}
	return edit
}

// EditProperties applies each edit with a Value to the VirtualSystem's
// ProductSection in order; edits with a nil Value (no '=' given) are
// skipped, since there is nothing to set.
func (e *Editor) EditProperties(edits []PropertyEdit) error {
	ps := e.vs.ProductSection()
	for _, edit := range edits {
		if edit.Value == nil {
			continue
		}
		if err := resources.EditProperty(ps, edit.Key, *edit.Value, edit.Type); err != nil {
			return err
		}
	}
	return nil
}
