package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/ppiankov/veritas/internal/model"
)

// Cache stores encoded analysis results for a limited time
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives the cache key for one analysis request.
// The provider and model are part of the key so switching either bypasses old answers.
func Key(provider, modelName string, mode model.Mode, text string, file *model.Attachment) string {
	h := sha256.New()
	for _, part := range []string{provider, modelName, string(mode), strings.TrimSpace(text)} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	if file != nil {
		h.Write([]byte(file.MIMEType))
		h.Write([]byte{0})
		h.Write(file.Data)
	}
	return "veritas:v1:" + hex.EncodeToString(h.Sum(nil))
}
