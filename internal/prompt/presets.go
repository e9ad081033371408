package prompt

import "strings"

// StylePreset overrides the measured style with a named register.
type StylePreset string

const (
	StyleOriginal     StylePreset = "Original"
	StyleProfessional StylePreset = "Professional"
	StyleCasual       StylePreset = "Casual"
	StyleAcademic     StylePreset = "Academic"
	StyleCreative     StylePreset = "Creative"
	StyleTechnical    StylePreset = "Technical"
	StylePersuasive   StylePreset = "Persuasive"
)

// PurposePreset describes what the writing is for.
type PurposePreset string

const (
	PurposeGeneral     PurposePreset = "General"
	PurposeBusiness    PurposePreset = "Business"
	PurposeAcademic    PurposePreset = "Academic"
	PurposeCreative    PurposePreset = "Creative"
	PurposeSocialMedia PurposePreset = "Social Media"
	PurposePersonal    PurposePreset = "Personal"
	PurposeTechnical   PurposePreset = "Technical"
)

var styleDirectives = map[StylePreset]string{
	StyleOriginal:     "Write exactly in the user's own voice as described above. Do not add polish they do not use.",
	StyleProfessional: "Use a professional register: clear, courteous, and free of slang, while keeping the user's phrasing habits.",
	StyleCasual:       "Use a relaxed, conversational register with contractions and plain words.",
	StyleAcademic:     "Use an academic register: precise terminology, hedged claims, and well-structured argument.",
	StyleCreative:     "Write expressively, with vivid imagery and varied rhythm.",
	StyleTechnical:    "Write precisely and unambiguously, preferring concrete specifics over adjectives.",
	StylePersuasive:   "Write to convince: lead with the strongest point, anticipate objections, and end with a clear call to action.",
}

var purposeDirectives = map[PurposePreset]string{
	PurposeGeneral:     "The text is for general use.",
	PurposeBusiness:    "The text is for a business setting; keep it focused on outcomes and next steps.",
	PurposeAcademic:    "The text is for an academic setting; structure it around a clear thesis and evidence.",
	PurposeCreative:    "The text is a creative piece; favour voice and imagery over exposition.",
	PurposeSocialMedia: "The text is for social media; keep it short, scannable, and engaging.",
	PurposePersonal:    "The text is personal; keep it warm and sincere.",
	PurposeTechnical:   "The text is technical documentation; favour accuracy, structure, and examples.",
}

// Styles lists the style presets in display order.
var Styles = []StylePreset{StyleOriginal, StyleProfessional, StyleCasual, StyleAcademic, StyleCreative, StyleTechnical, StylePersuasive}

// Purposes lists the purpose presets in display order.
var Purposes = []PurposePreset{PurposeGeneral, PurposeBusiness, PurposeAcademic, PurposeCreative, PurposeSocialMedia, PurposePersonal, PurposeTechnical}

// ParseStyle matches s case-insensitively, falling back to StyleOriginal.
func ParseStyle(s string) StylePreset {
	for _, p := range Styles {
		if strings.EqualFold(string(p), strings.TrimSpace(s)) {
			return p
		}
	}
	return StyleOriginal
}

// ParsePurpose matches s case-insensitively, falling back to PurposeGeneral.
func ParsePurpose(s string) PurposePreset {
	for _, p := range Purposes {
		if strings.EqualFold(string(p), strings.TrimSpace(s)) {
			return p
		}
	}
	return PurposeGeneral
}
