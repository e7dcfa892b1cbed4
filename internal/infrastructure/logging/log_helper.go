package logging

// Args flattens a category pair plus extra keys into zap's sugared key/value
// form, for use with Infow/Warnw/Errorw.
func Args(cat Category, sub SubCategory, extra map[ExtraKey]any) []any {
	params := make([]any, 0, 4+2*len(extra))
	params = append(params, "category", string(cat), "subcategory", string(sub))

	for k, v := range extra {
		params = append(params, string(k), v)
	}

	return params
}
