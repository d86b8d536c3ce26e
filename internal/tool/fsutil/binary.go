package fsutil

// BinaryDetector reports whether content looks like binary data, using null
// byte detection over a bounded sample. UTF-16/UTF-32 BOMs are treated as
// text to avoid false positives.
type BinaryDetector struct {
	SampleSize int
}

// NewBinaryDetector creates a detector sampling at most sampleSize bytes.
func NewBinaryDetector(sampleSize int) *BinaryDetector {
	return &BinaryDetector{SampleSize: sampleSize}
}

// IsBinaryContent checks content for null bytes within the sample window.
func (d *BinaryDetector) IsBinaryContent(content []byte) bool {
	if len(content) >= 2 {
		if (content[0] == 0xFF && content[1] == 0xFE) ||
			(content[0] == 0xFE && content[1] == 0xFF) {
			return false
		}
	}
	if len(content) >= 4 {
		if (content[0] == 0xFF && content[1] == 0xFE && content[2] == 0x00 && content[3] == 0x00) ||
			(content[0] == 0x00 && content[1] == 0x00 && content[2] == 0xFE && content[3] == 0xFF) {
			return false
		}
	}

	sample := len(content)
	if d.SampleSize > 0 && d.SampleSize < sample {
		sample = d.SampleSize
	}
	for i := 0; i < sample; i++ {
		if content[i] == 0 {
			return true
		}
	}
	return false
}
