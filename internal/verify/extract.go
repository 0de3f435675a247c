package verify

import (
	"strconv"
	"strings"

	"github.com/Klingon-tech/sui-tokengen/internal/token"
)

// Markers recognised by Extract.
const (
	witnessMarker   = "witness"
	byteStrPrefix   = `b"`
	optionNoneToken = "option::none(),"
	freezeCall      = "transfer::public_freeze_object"

	// minCallArgs is the number of positional arguments (decimals, symbol,
	// name, description) a create_currency call must yield.
	minCallArgs = 4
)

// Extract recovers the declared coin parameters from Move source by
// scanning whitespace-separated tokens. It only understands the call shape
// emitted by movegen:
//
//	coin::create_currency(witness, <decimals>, b"<symbol>", b"<name>", b"<description>", option::none(), ctx)
//
// Extract never fails. Anything it cannot recognise is left at its zero
// value, and the environment is always empty since it is not present in
// Move source.
func Extract(src string) token.Params {
	var p token.Params

	found := false
	inCall := false
	var args []string
	var buf []string

	flush := func() {
		if len(buf) > 0 {
			args = append(args, strings.Join(buf, " "))
			buf = buf[:0]
		}
	}
	endCall := func() {
		flush()
		inCall = false
		if !found && len(args) >= minCallArgs {
			p.Decimals = parseDecimals(cleanArg(args[0]))
			p.Symbol = cleanArg(args[1])
			p.Name = cleanArg(args[2])
			p.Description = cleanArg(args[3])
			found = true
		}
		args = nil
	}

	for _, tok := range strings.Fields(src) {
		if strings.Contains(tok, freezeCall) {
			p.IsFrozen = true
		}
		if found {
			continue
		}

		if !inCall {
			if strings.Contains(tok, witnessMarker) {
				inCall = true
				args = nil
				buf = buf[:0]
			}
			continue
		}

		switch {
		case strings.HasSuffix(tok, optionNoneToken):
			endCall()
		case strings.HasSuffix(tok, ");") || strings.HasSuffix(tok, ")"):
			if strings.HasPrefix(tok, byteStrPrefix) && argComplete(buf) {
				flush()
			}
			buf = append(buf, strings.TrimRight(tok, ");"))
			endCall()
		case strings.HasPrefix(tok, byteStrPrefix) && argComplete(buf):
			flush()
			buf = append(buf, tok)
		default:
			buf = append(buf, tok)
		}
	}
	if inCall {
		endCall()
	}
	return p
}

// argComplete reports whether buf holds a finished argument. A byte string
// is open until a token closes its quote, so a word such as `b",` inside
// a name does not split it.
func argComplete(buf []string) bool {
	if len(buf) == 0 || !strings.HasPrefix(buf[0], byteStrPrefix) {
		return true
	}
	last := buf[len(buf)-1]
	if len(buf) == 1 && last == byteStrPrefix {
		return false
	}
	return strings.HasSuffix(last, `",`) || strings.HasSuffix(last, `"`)
}

// cleanArg strips the argument separator and byte-string delimiters.
func cleanArg(arg string) string {
	arg = strings.TrimSuffix(arg, ",")
	arg = strings.TrimPrefix(arg, byteStrPrefix)
	arg = strings.TrimSuffix(arg, `"`)
	return arg
}

// parseDecimals returns 0 for anything that is not a u8 literal.
func parseDecimals(s string) uint8 {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 8)
	if err != nil {
		return 0
	}
	return uint8(n)
}
