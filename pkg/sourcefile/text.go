package sourcefile

func lineStart(source []byte, offset int) int {
	for offset > 0 && source[offset-1] != '\n' {
		offset--
	}
	return offset
}

// lineIndent returns the leading whitespace of the line holding offset.
func lineIndent(source []byte, offset int) string {
	start := lineStart(source, offset)
	end := start
	for end < len(source) && (source[end] == ' ' || source[end] == '\t') {
		end++
	}
	return string(source[start:end])
}

// LineIndent returns the leading whitespace of the line holding offset.
func LineIndent(source []byte, offset int) string {
	return lineIndent(source, offset)
}

// RemovalSpan widens span so deleting it leaves no debris: a trailing `,` or
// `;` separator is swallowed, and when span is alone on its lines the whole
// lines go, newline included.
func RemovalSpan(source []byte, span Span) Span {
	end := span.End
	i := end
	for i < len(source) && (source[i] == ' ' || source[i] == '\t') {
		i++
	}
	if i < len(source) && (source[i] == ',' || source[i] == ';') {
		end = i + 1
	}

	start := lineStart(source, span.Start)
	for j := start; j < span.Start; j++ {
		if source[j] != ' ' && source[j] != '\t' {
			return Span{Start: span.Start, End: end}
		}
	}

	k := end
	for k < len(source) && (source[k] == ' ' || source[k] == '\t') {
		k++
	}
	switch {
	case k == len(source):
		return Span{Start: start, End: k}
	case source[k] == '\n':
		return Span{Start: start, End: k + 1}
	case source[k] == '\r' && k+1 < len(source) && source[k+1] == '\n':
		return Span{Start: start, End: k + 2}
	}
	return Span{Start: span.Start, End: end}
}
