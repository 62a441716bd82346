package rag

// Splitter cuts a document into fixed-size windows with overlap. Windows
// are measured in runes so multibyte Korean text never splits mid-character.
type Splitter struct {
	size    int
	overlap int
}

func NewSplitter(size, overlap int) *Splitter {
	if size <= 0 {
		size = 500
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	return &Splitter{size: size, overlap: overlap}
}

// Split returns the segments of text. Each segment starts size-overlap
// runes after the previous one, so together they cover the whole input.
// Text shorter than the window comes back as a single segment.
func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	if len(runes) <= s.size {
		return []string{text}
	}

	step := s.size - s.overlap
	segments := make([]string, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := start + s.size
		if end > len(runes) {
			end = len(runes)
		}
		segments = append(segments, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return segments
}
