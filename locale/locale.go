// Package locale holds every user-facing string that varies by advice language.
package locale

import (
	"errors"

	"agriassist/models"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// Message IDs.
const (
	MsgSpeakFirst       = "SpeakFirst"
	MsgSelectLocation   = "SelectLocation"
	MsgFallbackUsed     = "FallbackUsed"
	MsgGenerationFailed = "GenerationFailed"
	MsgLocalHeader      = "LocalHeader"
	MsgLocalAdvice      = "LocalAdvice"
	MsgGeneratedAt      = "GeneratedAt"
	MsgSearchHint       = "SearchHint"
)

var catalog = map[language.Tag][]*i18n.Message{
	language.English: {
		{ID: MsgSpeakFirst, Other: "Please speak first"},
		{ID: MsgSelectLocation, Other: "Select a location"},
		{ID: MsgFallbackUsed, Other: "AI generation used fallback due to provider error. See logs for details."},
		{ID: MsgGenerationFailed, Other: "Generation failed: {{.Detail}}"},
		{ID: MsgLocalHeader, Other: "User: {{.Text}}"},
		{ID: MsgLocalAdvice, Other: "First check soil moisture and drainage."},
		{ID: MsgGeneratedAt, Other: "Generated at {{.Time}}"},
		{ID: MsgSearchHint, Other: "Search city e.g. Mumbai"},
	},
	language.Japanese: {
		{ID: MsgSpeakFirst, Other: "まず話してください"},
		{ID: MsgSelectLocation, Other: "場所を選択してください"},
		{ID: MsgFallbackUsed, Other: "AI生成でエラーが発生したため、代替の提案を表示しています。"},
		{ID: MsgGenerationFailed, Other: "生成に失敗しました: {{.Detail}}"},
		{ID: MsgLocalHeader, Other: "あなたの相談: {{.Text}}"},
		{ID: MsgLocalAdvice, Other: "まず土壌の湿度を確認してください。"},
		{ID: MsgSearchHint, Other: "都市名で検索 (例: 札幌)"},
	},
	language.Hindi: {
		{ID: MsgSpeakFirst, Other: "कृपया बोलें"},
		{ID: MsgSelectLocation, Other: "कृपया स्थान चुनें"},
		{ID: MsgFallbackUsed, Other: "प्रदाता त्रुटि के कारण वैकल्पिक सुझाव दिखाए जा रहे हैं।"},
		{ID: MsgGenerationFailed, Other: "सुझाव बनाना विफल रहा: {{.Detail}}"},
		{ID: MsgLocalHeader, Other: "आपका संदेश: {{.Text}}"},
		{ID: MsgLocalAdvice, Other: "पहले मिट्टी की नमी जाँचें।"},
		{ID: MsgSearchHint, Other: "शहर का नाम"},
	},
}

// Messages without a translation fall back to English.
var bundle = newBundle()

func newBundle() *i18n.Bundle {
	b := i18n.NewBundle(language.English)
	for tag, msgs := range catalog {
		if err := b.AddMessages(tag, msgs...); err != nil {
			panic("locale: invalid catalog: " + err.Error())
		}
	}
	return b
}

// Localize renders message id for lang. Unknown ids render as the id itself.
func Localize(lang models.Language, id string, data map[string]any) string {
	loc := i18n.NewLocalizer(bundle, string(lang))
	text, err := loc.Localize(&i18n.LocalizeConfig{MessageID: id, TemplateData: data})
	if text == "" {
		return id
	}
	var notFound *i18n.MessageNotFoundErr
	if err != nil && !errors.As(err, &notFound) {
		return id
	}
	return text
}

// Text is Localize without template data.
func Text(lang models.Language, id string) string {
	return Localize(lang, id, nil)
}

var speechTags = map[models.Language]string{
	models.LanguageEnglish:  "en-US",
	models.LanguageJapanese: "ja-JP",
	models.LanguageHindi:    "hi-IN",
}

// SpeechTag maps an advice language onto the recognizer locale tag.
func SpeechTag(lang models.Language) string {
	if tag, ok := speechTags[lang]; ok {
		return tag
	}
	return speechTags[models.LanguageEnglish]
}
