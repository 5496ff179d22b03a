package quality

// Recommendations turns scores into grading advice. The list is never empty.
func Recommendations(m *Metrics) []string {
	if m == nil {
		return nil
	}
	var out []string
	if m.ColorUniformity < 60 {
		out = append(out, "Consider grading as second quality due to color inconsistency")
	}
	if m.SizeConsistency < 50 {
		out = append(out, "Shape irregularities detected - may affect market value")
	}
	if m.SurfaceQuality < 70 {
		out = append(out, "Surface defects detected - inspect for damage or disease")
	}
	switch {
	case m.RipenessLevel < 30:
		out = append(out, "Allow more time to ripen for better market value")
	case m.RipenessLevel > 85:
		out = append(out, "Optimal ripeness achieved - harvest soon for best quality")
	}
	switch {
	case m.OverallQuality > 80:
		out = append(out, "Excellent quality - suitable for premium market")
	case m.OverallQuality < 50:
		out = append(out, "Consider alternative uses or processing applications")
	}
	if len(out) == 0 {
		out = append(out, "Good quality bell pepper suitable for fresh market")
	}
	return out
}
