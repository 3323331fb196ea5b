package reflection

import (
	"fmt"
	"reflect"
	"strings"
)

// TagInfo contains parsed injection annotations.
type TagInfo struct {
	Optional bool
	Name     string
	Named    bool
	Constant string
	List     string
	IsList   bool
	Map      string
	IsMap    bool
	Ignore   bool
}

// IsConstant reports whether the annotation requests a named constant.
func (t TagInfo) IsConstant() bool {
	return t.Constant != ""
}

func (t TagInfo) validate() error {
	kinds := 0
	if t.IsConstant() {
		kinds++
	}
	if t.IsList {
		kinds++
	}
	if t.IsMap {
		kinds++
	}

	if kinds > 1 {
		return fmt.Errorf("constant, list and map annotations are mutually exclusive")
	}

	if kinds == 1 && t.Named {
		return fmt.Errorf("name cannot be combined with constant, list or map annotations")
	}

	return nil
}

// ParseParamTags parses the tags of a parameter object field:
//
//	Cache  Cache  `name:"redis"`
//	Logger Logger `optional:"true"`
//	Answer int    `constant:"answer"`
//	Tires  []Tire `list:""`
//	Routes map[string]Route `map:"routes"`
//	Skip   string `inject:"-"`
func ParseParamTags(tag reflect.StructTag) (TagInfo, error) {
	info := TagInfo{}

	if val, ok := tag.Lookup("optional"); ok {
		info.Optional = val == "true"
	}

	if val, ok := tag.Lookup("name"); ok {
		info.Name = val
		info.Named = true
	}

	if val, ok := tag.Lookup("constant"); ok {
		if val == "" {
			return info, fmt.Errorf("constant tag requires a name")
		}
		info.Constant = val
	}

	if val, ok := tag.Lookup("list"); ok {
		info.List = val
		info.IsList = true
	}

	if val, ok := tag.Lookup("map"); ok {
		info.Map = val
		info.IsMap = true
	}

	if val, ok := tag.Lookup("inject"); ok && val == "-" {
		info.Ignore = true
	}

	return info, info.validate()
}

// ParsePropertyTag parses the value of an inject tag on a struct field.
// The value is a comma separated list of options:
//
//	`inject:""`
//	`inject:"name=primary"`
//	`inject:"constant=answer,optional"`
//	`inject:"list=plugins"`
//	`inject:"map=routes"`
func ParsePropertyTag(raw string) (TagInfo, error) {
	info := TagInfo{}

	if raw == "-" {
		info.Ignore = true
		return info, nil
	}

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		key, value, hasValue := strings.Cut(part, "=")
		switch key {
		case "optional":
			info.Optional = true
		case "name":
			info.Name = value
			info.Named = true
		case "constant":
			if value == "" {
				return info, fmt.Errorf("constant option requires a name")
			}
			info.Constant = value
		case "list":
			info.List = value
			info.IsList = true
		case "map":
			info.Map = value
			info.IsMap = true
		default:
			if hasValue {
				return info, fmt.Errorf("unknown inject option %q", key)
			}
			return info, fmt.Errorf("unknown inject option %q", part)
		}
	}

	return info, info.validate()
}
