package share

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// SlugLength is the length of generated slugs in URL-safe base64 characters.
const SlugLength = 8

// SlugGenerator returns a fresh candidate slug.
type SlugGenerator func() (string, error)

// RandomSlug 从 crypto/rand 取 6 字节，编码为 8 位 URL 安全字符。
func RandomSlug() (string, error) {
	buf := make([]byte, SlugLength*6/8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
