package generation

import (
	"strings"

	"github.com/tidwall/gjson"
)

// ResponseShape names which envelope layout the advice text was found in.
type ResponseShape int

const (
	ShapeChatChoices ResponseShape = iota // choices[0].message.content
	ShapeOutput                           // top-level "output"
	ShapeRaw                              // unrecognized, raw payload
)

func (s ResponseShape) String() string {
	switch s {
	case ShapeChatChoices:
		return "chat_choices"
	case ShapeOutput:
		return "output"
	default:
		return "raw"
	}
}

const maxRawAdviceRunes = 2000

// ExtractAdvice pulls the advice text out of a provider payload. Known shapes are tried in
// order; anything else is returned as the raw payload truncated to 2000 characters.
func ExtractAdvice(raw []byte) (string, ResponseShape, error) {
	body := strings.TrimSpace(string(raw))
	if body == "" {
		return "", ShapeRaw, ErrEmptyResponse
	}

	if gjson.Valid(body) {
		if content := gjson.Get(body, "choices.0.message.content"); usable(content) {
			return content.String(), ShapeChatChoices, nil
		}
		if output := gjson.Get(body, "output"); usable(output) {
			if output.IsArray() || output.IsObject() {
				return output.Raw, ShapeOutput, nil
			}
			return output.String(), ShapeOutput, nil
		}
	}

	return truncateRunes(body, maxRawAdviceRunes), ShapeRaw, nil
}

func usable(r gjson.Result) bool {
	return r.Exists() && r.Type != gjson.Null && strings.TrimSpace(r.String()) != ""
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
