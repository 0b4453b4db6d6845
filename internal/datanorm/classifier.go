package datanorm

import "strings"

// Classifier determines whether an uploaded file carries plan rows or
// historical performance rows, from its filename and header row.
type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

var historyKeywords = []string{"historical", "history", "past", "performance", "7day", "7_day"}
var planKeywords = []string{"plan", "inventory", "user_input", "input"}
var historyHeaders = []string{"date", "revenue", "clicks"}

// Classify determines the record kind based on filename and CSV header row.
// History-specific headers win over filename keywords because operators
// rename files freely but rarely touch exported headers.
func (c *Classifier) Classify(key string, headerRow []string) Kind {
	hits := 0
	for _, h := range headerRow {
		hLower := strings.ToLower(strings.TrimSpace(h))
		for _, hh := range historyHeaders {
			if hLower == hh {
				hits++
			}
		}
	}
	if hits >= 2 {
		return KindHistory
	}

	keyLower := strings.ToLower(key)
	for _, kw := range historyKeywords {
		if strings.Contains(keyLower, kw) {
			return KindHistory
		}
	}
	for _, kw := range planKeywords {
		if strings.Contains(keyLower, kw) {
			return KindPlan
		}
	}
	return KindPlan
}
