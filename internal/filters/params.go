package filters

// Params holds decode parameters taken from a stream's DecodeParms
// dictionary, already converted to Go values (int, float64, bool, string).
type Params map[string]interface{}

// Int returns the integer parameter key, or def if it is missing or not a number.
func (p Params) Int(key string, def int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

// Bool returns the boolean parameter key, or def if it is missing.
func (p Params) Bool(key string, def bool) bool {
	if v, ok := p[key].(bool); ok {
		return v
	}
	return def
}
