package output

import "io"

// Writer сериализует Result в w.
// JSON схема результата: testdata/schema/result.schema.json.
type Writer interface {
	Write(w io.Writer, result *Result) error
}
