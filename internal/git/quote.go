package git

import "strings"

// UnescapePath turns a path as printed by git back into the literal path.
//
// With core.quotePath (the default) git wraps a path in double quotes when it
// contains control characters, a double quote, a backslash or bytes above
// 0x7f, and escapes those with C-style sequences: \a \b \t \n \v \f \r \" \\
// and three-digit octal for raw bytes. Unquoted paths are returned as-is, since
// git never escapes inside an unquoted path. Unknown or truncated escape
// sequences are kept literally.
func UnescapePath(p string) string {
	if len(p) < 2 || p[0] != '"' || p[len(p)-1] != '"' {
		return p
	}
	p = p[1 : len(p)-1]
	if !strings.ContainsRune(p, '\\') {
		return p
	}

	out := make([]byte, 0, len(p))
	for i := 0; i < len(p); i++ {
		c := p[i]
		if c != '\\' || i == len(p)-1 {
			out = append(out, c)
			continue
		}
		i++
		switch e := p[i]; e {
		case 'a':
			out = append(out, '\a')
		case 'b':
			out = append(out, '\b')
		case 't':
			out = append(out, '\t')
		case 'n':
			out = append(out, '\n')
		case 'v':
			out = append(out, '\v')
		case 'f':
			out = append(out, '\f')
		case 'r':
			out = append(out, '\r')
		case '"', '\\':
			out = append(out, e)
		default:
			if v, n := octal(p[i:]); n > 0 {
				out = append(out, v)
				i += n - 1
				continue
			}
			out = append(out, '\\', e)
		}
	}
	return string(out)
}

// octal decodes up to three octal digits at the start of s. It returns n == 0
// when s does not start with a digit or the value does not fit in a byte.
func octal(s string) (byte, int) {
	v, n := 0, 0
	for n < 3 && n < len(s) && s[n] >= '0' && s[n] <= '7' {
		v = v*8 + int(s[n]-'0')
		n++
	}
	if n == 0 || v > 0xff {
		return 0, 0
	}
	return byte(v), n
}
