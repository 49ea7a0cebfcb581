package i18n

import "sync"

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected" or "raw").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	if t.lang == "ja" {
		return messageJA(code, data)
	}
	return messageEN(code, data)
}

func messageEN(code string, data map[string]string) string {
	switch code {
	case "type_mismatch":
		if exp := data["expected"]; exp != "" {
			return "expected " + exp
		}
		return "type mismatch"
	case "missing_value":
		if exp := data["expected"]; exp != "" {
			return "missing " + exp + " value"
		}
		return "missing value"
	case "data_corrupted":
		return "data corrupted"
	case "unknown_novel_value":
		if raw := data["raw"]; raw != "" {
			return "unknown value " + quote(raw)
		}
		return "unknown value"
	case "custom":
		return "decode failed"
	case "parse_error":
		return "parse error"
	case "duplicate_key":
		return "duplicate key"
	case "truncated":
		return "truncated"
	}
	return code
}

func messageJA(code string, data map[string]string) string {
	switch code {
	case "type_mismatch":
		if exp := data["expected"]; exp != "" {
			return exp + " が必要です"
		}
		return "型が不正です"
	case "missing_value":
		return "値がありません"
	case "data_corrupted":
		return "データが不正です"
	case "unknown_novel_value":
		if raw := data["raw"]; raw != "" {
			return "未知の値です " + quote(raw)
		}
		return "未知の値です"
	case "custom":
		return "デコードに失敗しました"
	case "parse_error":
		return "解析エラー"
	case "duplicate_key":
		return "キーが重複しています"
	case "truncated":
		return "打ち切られました"
	}
	return code
}

func quote(s string) string { return "\"" + s + "\"" }

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
