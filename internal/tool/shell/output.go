package shell

import "bytes"

// binaryDetector reports whether content looks like binary data.
type binaryDetector interface {
	IsBinaryContent(content []byte) bool
}

// collector captures command output with a size limit and binary content
// detection. Writes past the limit are counted as accepted but dropped.
type collector struct {
	buffer    bytes.Buffer
	maxBytes  int
	truncated bool
	isBinary  bool

	binary       binaryDetector
	bytesChecked int
	sampleSize   int
}

func newCollector(maxBytes, sampleSize int, binary binaryDetector) *collector {
	return &collector{maxBytes: maxBytes, sampleSize: sampleSize, binary: binary}
}

func (c *collector) Write(p []byte) (int, error) {
	if c.isBinary {
		return len(p), nil
	}

	if c.bytesChecked < c.sampleSize {
		toCheck := p
		if remaining := c.sampleSize - c.bytesChecked; len(toCheck) > remaining {
			toCheck = toCheck[:remaining]
		}
		if c.binary.IsBinaryContent(toCheck) {
			c.isBinary = true
			c.truncated = true
			return len(p), nil
		}
		c.bytesChecked += len(toCheck)
	}

	remaining := c.maxBytes - c.buffer.Len()
	if remaining <= 0 {
		c.truncated = true
		return len(p), nil
	}

	toWrite := p
	if len(toWrite) > remaining {
		toWrite = toWrite[:remaining]
		c.truncated = true
	}
	if _, err := c.buffer.Write(toWrite); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *collector) String() string {
	if c.isBinary {
		return "[binary output]"
	}
	return c.buffer.String()
}

func (c *collector) Truncated() bool {
	return c.truncated
}
