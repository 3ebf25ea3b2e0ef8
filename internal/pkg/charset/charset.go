// Package charset перекодирует trace-файлы в UTF-8 перед отправкой алерта.
// Логи Windows-сервисов и 1С часто пишутся в CP1251 или CP866.
package charset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Auto выбирает UTF-8 для валидных данных, иначе CP1251.
const Auto = "auto"

// ErrUnknownEncoding: имя кодировки не поддерживается.
var ErrUnknownEncoding = errors.New("charset: unknown encoding")

var encodings = map[string]encoding.Encoding{
	"cp1251":       charmap.Windows1251,
	"windows-1251": charmap.Windows1251,
	"cp866":        charmap.CodePage866,
	"ibm866":       charmap.CodePage866,
	"koi8-r":       charmap.KOI8R,
	"koi8-u":       charmap.KOI8U,
	"iso-8859-1":   charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"iso-8859-5":   charmap.ISO8859_5,
	"cp1252":       charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
}

// Lookup возвращает декодер по имени. "" , "utf-8" и "utf8" означают
// отсутствие перекодирования (nil, nil).
func Lookup(name string) (encoding.Encoding, error) {
	switch n := strings.ToLower(strings.TrimSpace(name)); n {
	case "", "utf-8", "utf8":
		return nil, nil
	default:
		enc, ok := encodings[n]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
		}
		return enc, nil
	}
}

// Decode перекодирует data из кодировки name в UTF-8.
// Для Auto валидный UTF-8 возвращается как есть, остальное читается как CP1251.
func Decode(data []byte, name string) (string, error) {
	if isAuto(name) {
		if utf8.Valid(data) {
			return string(data), nil
		}
		return decodeWith(data, charmap.Windows1251)
	}

	enc, err := Lookup(name)
	if err != nil {
		return "", err
	}
	if enc == nil {
		return string(data), nil
	}
	return decodeWith(data, enc)
}

func decodeWith(data []byte, enc encoding.Encoding) (string, error) {
	out, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), enc.NewDecoder()))
	if err != nil {
		return "", fmt.Errorf("charset: декодирование: %w", err)
	}
	return string(out), nil
}

// ReadAll читает не более limit байт из r и перекодирует их.
// truncated сообщает, что данные были обрезаны.
func ReadAll(r io.Reader, name string, limit int64) (text string, truncated bool, err error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", false, fmt.Errorf("charset: чтение: %w", err)
	}
	if int64(len(data)) > limit {
		data = data[:limit]
		truncated = true
		if expectsUTF8(name) {
			data = trimPartialRune(data)
		}
	}
	text, err = Decode(data, name)
	return text, truncated, err
}

func isAuto(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), Auto)
}

// expectsUTF8 сообщает, что данные для name могут быть UTF-8: Auto или utf-8.
func expectsUTF8(name string) bool {
	if isAuto(name) {
		return true
	}
	enc, err := Lookup(name)
	return err == nil && enc == nil
}

// trimPartialRune отбрасывает незавершённую UTF-8 последовательность,
// оставшуюся в конце после обрезки по limit.
func trimPartialRune(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}
	for k := 1; k < utf8.UTFMax && k < len(data); k++ {
		if utf8.Valid(data[:len(data)-k]) {
			return data[:len(data)-k]
		}
	}
	return data
}
