package helpers

import (
	"fmt"
	"io"
)

// ReadLimitedAndClose drains at most limit bytes of r and closes it. A body
// larger than limit is an error.
func ReadLimitedAndClose(r io.ReadCloser, limit int64) ([]byte, error) {
	defer r.Close()
	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("body exceeds %d bytes", limit)
	}
	return data, nil
}
