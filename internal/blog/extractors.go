package blog

// Extractor pulls generated text out of one known response shape.
type Extractor struct {
	Name    string
	Extract func(resp map[string]interface{}) (string, bool)
}

// DefaultExtractors returns the known shapes in priority order.
func DefaultExtractors() []Extractor {
	return []Extractor{
		{Name: "generation", Extract: topLevelGeneration},
		{Name: "output.text", Extract: outputText},
		{Name: "outputs[0].text", Extract: firstOutputText},
	}
}

// ExtractText runs extractors in order. The first non-empty match wins.
func ExtractText(resp map[string]interface{}, extractors []Extractor) (text string, matched string, ok bool) {
	for _, ex := range extractors {
		if ex.Extract == nil {
			continue
		}
		if text, ok := ex.Extract(resp); ok && text != "" {
			return text, ex.Name, true
		}
	}
	return "", "", false
}

func topLevelGeneration(resp map[string]interface{}) (string, bool) {
	return stringField(resp, "generation")
}

func outputText(resp map[string]interface{}) (string, bool) {
	output, ok := resp["output"].(map[string]interface{})
	if !ok {
		return "", false
	}
	return stringField(output, "text")
}

func firstOutputText(resp map[string]interface{}) (string, bool) {
	outputs, ok := resp["outputs"].([]interface{})
	if !ok || len(outputs) == 0 {
		return "", false
	}
	first, ok := outputs[0].(map[string]interface{})
	if !ok {
		return "", false
	}
	return stringField(first, "text")
}

func stringField(m map[string]interface{}, key string) (string, bool) {
	s, ok := m[key].(string)
	return s, ok && s != ""
}
