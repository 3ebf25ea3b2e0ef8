package alert

// TraceFileName: имя файла, которое получает вложение, созданное из trace.
const TraceFileName = "trace.log"

// traceSeparator разделяет существующее содержимое вложения и добавленный trace.
const traceSeparator = "\n\n--- Trace Log ---\n"

// Attachment: дополнительное содержимое алерта.
// Content выводится блоком кода, URL выводится отдельной строкой.
type Attachment struct {
	// URL: ссылка на внешний ресурс.
	URL string `json:"url,omitempty"`
	// FileName: подпись блока с Content. Если пусто, провайдер подставляет свою.
	FileName string `json:"file_name,omitempty"`
	// Content: текст, который показывается inline.
	Content string `json:"content,omitempty"`
}

// MergeTrace объединяет trace с вложением и возвращает результат.
//
//   - пустой trace: вложение возвращается без изменений (может быть nil);
//   - nil вложение: создаётся новое {Content: trace, FileName: "trace.log"};
//   - вложение с Content: trace дописывается через разделитель "--- Trace Log ---";
//   - вложение без Content: Content = trace, FileName = "trace.log".
//
// Переданное вложение изменяется на месте: вызывающий код видит объединённый trace.
func MergeTrace(att *Attachment, trace string) *Attachment {
	if trace == "" {
		return att
	}
	if att == nil {
		return &Attachment{Content: trace, FileName: TraceFileName}
	}
	if att.Content != "" {
		att.Content = att.Content + traceSeparator + trace
		return att
	}
	att.Content = trace
	att.FileName = TraceFileName
	return att
}
