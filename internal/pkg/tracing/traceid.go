package tracing

import (
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var fallbackCounter atomic.Uint64

// GenerateTraceID возвращает trace ID в формате W3C Trace Context:
// 32 символа lowercase hex, например "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6".
// Основа: случайный UUID v4; при недоступности источника случайности
// используется timestamp со счётчиком.
func GenerateTraceID() string {
	u, err := uuid.NewRandom()
	if err != nil {
		return fallbackTraceID()
	}
	return hex.EncodeToString(u[:])
}

// fallbackTraceID: %016x для uint64 даёт ровно 16 символов, итого 32.
func fallbackTraceID() string {
	counter := fallbackCounter.Add(1)
	timestamp := uint64(time.Now().UnixNano())
	return fmt.Sprintf("%016x%016x", timestamp, counter)
}
