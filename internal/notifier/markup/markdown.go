package markup

import (
	"fmt"
	"strings"
)

// Все спец символы MarkdownV2 по документации телеграма
var replacer = strings.NewReplacer(
	"\\", "\\\\",
	"-", "\\-",
	"_", "\\_",
	"*", "\\*",
	"[", "\\[",
	"]", "\\]",
	"(", "\\(",
	")", "\\)",
	"~", "\\~",
	"`", "\\`",
	">", "\\>",
	"#", "\\#",
	"+", "\\+",
	"=", "\\=",
	"|", "\\|",
	"{", "\\{",
	"}", "\\}",
	".", "\\.",
	"!", "\\!",
)

// Внутри (...) ссылки экранируются только ) и \
var linkReplacer = strings.NewReplacer(
	"\\", "\\\\",
	")", "\\)",
)

// Функция которая делает escape спец символы markdown специально для телеграма
func EscapeForMarkdown(src string) string {
	return replacer.Replace(src)
}

// Жирный текст, содержимое экранируется
func Bold(text string) string {
	return "*" + EscapeForMarkdown(text) + "*"
}

// Ссылка вида [text](url)
func Link(text, url string) string {
	return fmt.Sprintf("[%s](%s)", EscapeForMarkdown(text), linkReplacer.Replace(url))
}
