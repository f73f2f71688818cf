package models

// experience levels offered by the interview form
var ValidLevels = map[string]bool{
	"Junior":    true,
	"Mid-Level": true,
	"Senior":    true,
	"Lead":      true,
}

// interview types offered by the interview form
var ValidTypes = map[string]bool{
	"Technical":  true,
	"Behavioral": true,
	"Mixed":      true,
}

const (
	DefaultQuestionAmount = 5
	MaxQuestionAmount     = 20
	DefaultPublicFeedSize = 20
)

func ValidLevelsList() []string {
	return []string{"Junior", "Mid-Level", "Senior", "Lead"}
}

func ValidTypesList() []string {
	return []string{"Technical", "Behavioral", "Mixed"}
}
