// Package rle implements the run-length pair codec used by .tz files and the
// scheduler that spreads it over a worker pool.
//
// The compressed form is a flat sequence of 2-byte pairs:
//
//	+-------------+-------------+-------------+-------------+----
//	| count (u8)  | value       | count (u8)  | value       | ...
//	+-------------+-------------+-------------+-------------+----
//
// There is no header. A count is always in [1, 255] when produced by this
// package; a pair with count 0 decodes to nothing.
package rle

// MaxRun is the longest run a single pair can describe.
const MaxRun = 255

// Run is a sequence of identical consecutive bytes.
type Run struct {
	Value  byte
	Length int
}

// Pair is the 2-byte wire unit of the codec.
type Pair struct {
	Count byte
	Value byte
}

// Pair returns the wire form of r. r.Length must be in [1, MaxRun].
func (r Run) Pair() Pair {
	return Pair{Count: byte(r.Length), Value: r.Value}
}

// EncodeRuns splits b into runs of at most MaxRun bytes.
func EncodeRuns(b []byte) []Run {
	var runs []Run
	for i := 0; i < len(b); {
		r := firstRun(b[i:])
		runs = append(runs, r)
		i += r.Length
	}
	return runs
}

// Encode returns the pair encoding of b. The result is never nil.
func Encode(b []byte) []byte {
	return AppendEncode(make([]byte, 0, encodedCap(len(b))), b)
}

// AppendEncode appends the pair encoding of b to dst and returns the extended slice.
func AppendEncode(dst, b []byte) []byte {
	for i := 0; i < len(b); {
		r := firstRun(b[i:])
		p := r.Pair()
		dst = append(dst, p.Count, p.Value)
		i += r.Length
	}
	return dst
}

// firstRun returns the run starting at b[0], capped at MaxRun.
func firstRun(b []byte) Run {
	v := b[0]
	n := 1
	for n < len(b) && n < MaxRun && b[n] == v {
		n++
	}
	return Run{Value: v, Length: n}
}

// encodedCap guesses an output capacity for n input bytes. Incompressible input
// doubles in size, but most real input has some runs, so start at half that.
func encodedCap(n int) int {
	if n < 64 {
		return 2 * n
	}
	return n
}

// Pairs splits enc into its pairs. A dangling trailing byte is dropped.
func Pairs(enc []byte) []Pair {
	pairs := make([]Pair, 0, len(enc)/2)
	for i := 0; i+1 < len(enc); i += 2 {
		pairs = append(pairs, Pair{Count: enc[i], Value: enc[i+1]})
	}
	return pairs
}

// DecodedLen returns the number of bytes enc expands to.
func DecodedLen(enc []byte) int {
	n := 0
	for i := 0; i+1 < len(enc); i += 2 {
		n += int(enc[i])
	}
	return n
}

// Decode expands a pair stream. The result is never nil.
//
// Decoding is lenient: an odd-length stream has its last byte silently dropped,
// since a lone count cannot form a pair.
func Decode(enc []byte) []byte {
	return AppendDecode(make([]byte, 0, DecodedLen(enc)), enc)
}

// AppendDecode appends the expansion of enc to dst and returns the extended slice.
func AppendDecode(dst, enc []byte) []byte {
	for i := 0; i+1 < len(enc); i += 2 {
		count, v := int(enc[i]), enc[i+1]
		for j := 0; j < count; j++ {
			dst = append(dst, v)
		}
	}
	return dst
}

// pairsLen returns the number of bytes pairs expand to.
func pairsLen(pairs []Pair) int {
	n := 0
	for _, p := range pairs {
		n += int(p.Count)
	}
	return n
}

// expandPairs writes the expansion of pairs into out, which must be exactly
// pairsLen(pairs) bytes long.
func expandPairs(out []byte, pairs []Pair) {
	pos := 0
	for _, p := range pairs {
		run := out[pos : pos+int(p.Count)]
		for j := range run {
			run[j] = p.Value
		}
		pos += len(run)
	}
}
