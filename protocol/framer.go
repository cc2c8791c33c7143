// File: protocol/framer.go
// Author: momentics <momentics@gmail.com>
//
// Frame splits a raw, possibly sticky-packet TCP stream into individual
// JSON object slices: for every '{' it finds the next '}' and treats
// that span as one frame. It does not track nesting or string-literal
// content, so a '}' inside a quoted string or a nested object ends the
// frame early. The wire schema is flat with base64-encoded content, so
// neither case occurs on a conforming stream.
package protocol

// Frame returns the byte ranges of buf that look like top-level JSON
// objects under the naive bracket-matching rule. The returned slices
// alias buf; callers that retain them past the next mutation of buf
// must copy.
func Frame(buf []byte) [][]byte {
	var frames [][]byte
	for i := 0; i < len(buf); i++ {
		if buf[i] != '{' {
			continue
		}
		for j := i + 1; j < len(buf); j++ {
			if buf[j] == '}' {
				frames = append(frames, buf[i:j+1])
				i = j
				break
			}
		}
	}
	return frames
}
