package domain

// CoalesceStr returns the first non-empty string from the given values.
func CoalesceStr(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// StrFromPtrWithDefault returns *ptr if ptr is non-nil, otherwise def.
func StrFromPtrWithDefault(ptr *string, def string) string {
	if ptr != nil {
		return *ptr
	}
	return def
}

// TimeTypeFromPtrWithDefault returns *ptr if ptr is non-nil, otherwise def.
func TimeTypeFromPtrWithDefault(ptr *TimeType, def TimeType) TimeType {
	if ptr != nil {
		return *ptr
	}
	return def
}
