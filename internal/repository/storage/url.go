package storage

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// sizedBody returns data with a known length, buffering it when size is
// negative.
func sizedBody(data io.Reader, size int64) (io.Reader, int64, error) {
	if size >= 0 {
		return data, size, nil
	}
	buf, err := io.ReadAll(data)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read data: %w", err)
	}
	return bytes.NewReader(buf), int64(len(buf)), nil
}

// joinURL appends objectPath to base, escaping each path segment so names
// with spaces, '#' or non-ASCII characters still address the same object.
func joinURL(base, objectPath string) string {
	segments := strings.Split(strings.Trim(objectPath, "/"), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
}

func minioObjectURL(endpoint, bucket string, useSSL bool, objectPath string) string {
	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	return joinURL(fmt.Sprintf("%s://%s/%s", scheme, endpoint, bucket), objectPath)
}

func publicReadPolicy(bucket string) string {
	return fmt.Sprintf(`{
		"Version": "2012-10-17",
		"Statement": [{
			"Effect": "Allow",
			"Principal": {"AWS": ["*"]},
			"Action": ["s3:GetObject"],
			"Resource": ["arn:aws:s3:::%s/*"]
		}]
	}`, bucket)
}
