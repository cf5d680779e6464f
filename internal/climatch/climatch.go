// Package climatch implements the "key $param key ..." command-line
// pattern matcher: given a format string and a command line, it reports
// the byte offset of each captured parameter inside the command.
//
// A format token is either a literal key, matched byte-for-byte against
// the command token at the same position, or a parameter token beginning
// with '$' whose remaining text (up to the next space or terminator) is a
// human-readable label ignored by the matcher. Tokens are whitespace
// separated with exactly one space between them; commands end at '\n',
// formats end at the end of the Go string (the source's '\0' terminator
// has no equivalent need in a length-prefixed Go string).
package climatch

func isTokenEnd(b byte) bool {
	return b == ' ' || b == '\n'
}

// tokenize returns the start offset of each whitespace-separated token in
// s, stopping at the first '\n' (or at the end of s if none is present).
func tokenize(s string) []int {
	var offsets []int
	i := 0
	for i < len(s) {
		if s[i] == ' ' {
			i++
			continue
		}
		if s[i] == '\n' {
			break
		}
		offsets = append(offsets, i)
		for i < len(s) && !isTokenEnd(s[i]) {
			i++
		}
	}
	return offsets
}

func tokenLen(s string, start int) int {
	i := start
	for i < len(s) && !isTokenEnd(s[i]) {
		i++
	}
	return i - start
}

func isParamToken(fmtToken string) bool {
	return len(fmtToken) > 0 && fmtToken[0] == '$'
}

// tokenMatch reports whether the key fmtToken matches the command text
// starting at cmd[pos:], requiring the command token to end exactly where
// the format token ends (no partial-key matches).
func tokenMatch(fmtToken, cmd string, pos int) bool {
	if pos+len(fmtToken) > len(cmd) {
		return false
	}
	if cmd[pos:pos+len(fmtToken)] != fmtToken {
		return false
	}
	end := pos + len(fmtToken)
	return end == len(cmd) || isTokenEnd(cmd[end])
}

// Match compares cmd against format and returns the starting offset of
// each captured parameter within cmd. ok is false if the token counts
// differ, a key fails to match, or more parameters are captured than
// paramMax allows.
//
// format's tokens are split on spaces the same way cmd's are, reading to
// the end of the format string (there is no embedded terminator in a Go
// string). cmd is scanned up to its first '\n', matching the wire rule
// that commands terminate with a newline.
func Match(cmd, format string, paramMax int) (params []int, ok bool) {
	fmtOffsets := tokenize(format)
	cmdOffsets := tokenize(cmd)
	if len(fmtOffsets) != len(cmdOffsets) {
		return nil, false
	}

	params = make([]int, 0, paramMax)
	for i, cmdPos := range cmdOffsets {
		fmtPos := fmtOffsets[i]
		fLen := tokenLen(format, fmtPos)
		fmtToken := format[fmtPos : fmtPos+fLen]

		if isParamToken(fmtToken) {
			if len(params) == paramMax {
				return nil, false
			}
			params = append(params, cmdPos)
			continue
		}
		if !tokenMatch(fmtToken, cmd, cmdPos) {
			return nil, false
		}
	}
	return params, true
}

// MatchDestructive behaves like Match but additionally writes a '\0' byte
// over the terminator of each captured parameter token in cmd, so the
// caller can treat each offset as the start of a NUL-terminated string —
// the destructive variant the source calls BFX_CliRawMatch.
func MatchDestructive(cmd []byte, format string, paramMax int) (params []int, ok bool) {
	params, ok = Match(string(cmd), format, paramMax)
	if !ok {
		return nil, false
	}
	for _, off := range params {
		end := off + tokenLen(string(cmd), off)
		if end < len(cmd) {
			cmd[end] = 0
		}
	}
	return params, true
}

// ParamText extracts the parameter text starting at off within cmd, for
// callers using the non-destructive Match.
func ParamText(cmd string, off int) string {
	return cmd[off : off+tokenLen(cmd, off)]
}

// HasAdjacentParams reports whether format contains two consecutive
// parameter tokens with no literal key token between them. Whitespace
// tokenization makes every parameter position unambiguous regardless
// (each command token maps 1:1 to a format token by index), so this is
// informational only — Match does not reject such patterns, since spec
// scenario E5 ("$a $b world") is exactly this shape and must succeed.
func HasAdjacentParams(format string) bool {
	offsets := tokenize(format)
	prevParam := false
	for _, off := range offsets {
		length := tokenLen(format, off)
		token := format[off : off+length]
		isParam := isParamToken(token)
		if isParam && prevParam {
			return true
		}
		prevParam = isParam
	}
	return false
}
