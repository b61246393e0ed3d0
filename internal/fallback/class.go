package fallback

import "strings"

// Class is a recognized equipment class. Matching is keyword-based and
// deliberately small: these are the subjects the deterministic responder
// can say something specific about.
type Class string

const (
	ClassNone       Class = ""
	ClassSawBlade   Class = "saw_blade"
	ClassSpindle    Class = "spindle"
	ClassCompressor Class = "compressor"
	ClassCNC        Class = "cnc"
)

// classInfo carries per-class display labels and plausibility bounds for
// parsed dimensions.
type classInfo struct {
	keywords  []string // matched against lowercased input
	subjectFA string
	subjectEN string
	minMM     float64 // dimensions below this are flagged low-confidence, 0 = no bound
}

var classes = map[Class]classInfo{
	ClassSawBlade: {
		keywords:  []string{"تیغه", "اره", "دیسک برش", "saw blade", "blade", "circular saw"},
		subjectFA: "تیغه اره",
		subjectEN: "saw blade",
		minMM:     200,
	},
	ClassSpindle: {
		keywords:  []string{"اسپیندل", "spindle"},
		subjectFA: "اسپیندل",
		subjectEN: "spindle",
	},
	ClassCompressor: {
		keywords:  []string{"کمپرسور", "compressor"},
		subjectFA: "کمپرسور",
		subjectEN: "compressor",
	},
	ClassCNC: {
		keywords:  []string{"سی ان سی", "سی‌ان‌سی", "cnc"},
		subjectFA: "دستگاه CNC",
		subjectEN: "CNC machine",
	},
}

// classOrder fixes iteration order so detection is deterministic when
// multiple classes match; first match wins.
var classOrder = []Class{ClassSawBlade, ClassSpindle, ClassCompressor, ClassCNC}

// DetectClass scans text for equipment-class keywords.
func DetectClass(text string) Class {
	lower := strings.ToLower(text)
	for _, c := range classOrder {
		for _, kw := range classes[c].keywords {
			if strings.Contains(lower, kw) {
				return c
			}
		}
	}
	return ClassNone
}

// Subject returns the class label in the given locale key ("fa" or not).
func (c Class) Subject(persian bool) string {
	info, ok := classes[c]
	if !ok {
		return ""
	}
	if persian {
		return info.subjectFA
	}
	return info.subjectEN
}

// MinPlausibleMM returns the smallest plausible dimension for the class,
// or 0 when the class carries no bound.
func (c Class) MinPlausibleMM() float64 {
	return classes[c].minMM
}
