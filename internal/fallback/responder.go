// Package fallback produces deterministic, network-free replies for the
// cases where the completion service errors out or returns nothing. Every
// reply follows the same structure: a one-line summary, up to three likely
// causes, three to six checks, one next action and exactly one follow-up
// question, rendered in the detected locale.
package fallback

import (
	"fmt"
	"strings"

	"sinax/internal/domain"
	"sinax/internal/lang"
)

// continuation phrases: low-information follow-ups that should re-engage
// the remembered topic instead of getting a generic answer.
var continuationPhrases = []string{
	"سوال دیگه",
	"سؤال دیگه",
	"یه سوال دیگه",
	"بعدش چی",
	"خب بعدش",
	"ادامه بده",
	"another question",
	"i have another question",
	"and then",
	"what next",
	"continue",
}

func isContinuation(text string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(text))
	if trimmed == "" {
		return false
	}
	for _, p := range continuationPhrases {
		if strings.Contains(trimmed, p) {
			return true
		}
	}
	return false
}

// Respond builds a deterministic reply for text in locale l. topic may be
// nil; when present and the text is a continuation phrase, the reply
// re-engages the remembered subject. Total: never returns empty, never fails.
func Respond(text string, l lang.Lang, topic *domain.Topic) string {
	persian := l == lang.Persian

	if topic != nil && isContinuation(text) {
		return continuationReply(topic, persian)
	}

	if class := DetectClass(text); class != ClassNone {
		return classReply(text, class, persian)
	}

	return genericReply(persian)
}

type replyParts struct {
	summary    string
	causes     []string // at most 3
	checks     []string // 3 to 6
	nextAction string
	question   string // exactly one follow-up question
}

func (p replyParts) render(persian bool) string {
	var b strings.Builder
	if persian {
		b.WriteString("خلاصه: " + p.summary + "\n")
		b.WriteString("علت‌های محتمل:\n")
		for _, c := range p.causes {
			b.WriteString("- " + c + "\n")
		}
		b.WriteString("بررسی‌ها:\n")
		for _, c := range p.checks {
			b.WriteString("- " + c + "\n")
		}
		b.WriteString("اقدام بعدی: " + p.nextAction + "\n")
		b.WriteString("سوال: " + p.question)
	} else {
		b.WriteString("Summary: " + p.summary + "\n")
		b.WriteString("Likely causes:\n")
		for _, c := range p.causes {
			b.WriteString("- " + c + "\n")
		}
		b.WriteString("Checks:\n")
		for _, c := range p.checks {
			b.WriteString("- " + c + "\n")
		}
		b.WriteString("Next action: " + p.nextAction + "\n")
		b.WriteString("Question: " + p.question)
	}
	return b.String()
}

func continuationReply(topic *domain.Topic, persian bool) string {
	subject := topic.Subject
	if subject == "" {
		subject = Class(topic.Class).Subject(persian)
	}
	if persian {
		p := replyParts{
			summary: fmt.Sprintf("ادامه موضوع قبلی: %s.", subject),
			causes: []string{
				"داده ناکافی از مرحله قبل",
				"تغییر شرایط کاری بین دو پرسش",
				"ابهام در مشخصات تجهیز",
			},
			checks: []string{
				fmt.Sprintf("آخرین وضعیت %s را بازبینی کن", subject),
				"مشخصات فنی (مدل، توان، ابعاد) را آماده داشته باش",
				"تغییرات اخیر (سرویس، تعویض قطعه) را فهرست کن",
				"شرایط کاری فعلی (بار، دور، دما) را ثبت کن",
			},
			nextAction: "جزئیات جدید پرسش را همراه مشخصات بفرست.",
			question:   fmt.Sprintf("پرسش جدیدت درباره %s دقیقاً چیست؟", subject),
		}
		return p.render(true)
	}
	p := replyParts{
		summary: fmt.Sprintf("Continuing the previous topic: %s.", subject),
		causes: []string{
			"Incomplete data from the previous exchange",
			"Operating conditions changed between questions",
			"Ambiguity in the equipment specification",
		},
		checks: []string{
			fmt.Sprintf("Review the last known state of the %s", subject),
			"Have the technical specs ready (model, power, dimensions)",
			"List recent changes (service, part replacement)",
			"Record current operating conditions (load, speed, temperature)",
		},
		nextAction: "Send the new question together with the specs.",
		question:   fmt.Sprintf("What exactly is your new question about the %s?", subject),
	}
	return p.render(false)
}

func classReply(text string, class Class, persian bool) string {
	subject := class.Subject(persian)

	var dimension, caveat string
	if mm, ok := ParseMeasurement(text); ok {
		rounded := RoundMM(mm)
		if persian {
			dimension = fmt.Sprintf(" اندازه واردشده حدود %d میلی‌متر است.", rounded)
		} else {
			dimension = fmt.Sprintf(" The entered dimension is about %d mm.", rounded)
		}
		if min := class.MinPlausibleMM(); min > 0 && mm < min {
			if persian {
				caveat = fmt.Sprintf(" (اطمینان پایین: برای %s معمولاً مقدار کمتر از %d میلی‌متر نامحتمل است؛ احتمال خطای واحد.)", subject, RoundMM(min))
			} else {
				caveat = fmt.Sprintf(" (Low confidence: values below %d mm are unusual for a %s; possible unit-entry mistake.)", RoundMM(min), subject)
			}
		}
	}

	if persian {
		p := replyParts{
			summary: fmt.Sprintf("مشکل مربوط به %s تشخیص داده شد.%s%s", subject, dimension, caveat),
			causes: []string{
				"سایش یا آسیب مکانیکی قطعه",
				"نصب یا تنظیم نادرست",
				"ناسازگاری مشخصات با کاربرد",
			},
			checks: []string{
				fmt.Sprintf("وضعیت ظاهری %s را از نظر ترک و سایش بررسی کن", subject),
				"ابعاد و مشخصات را با پلاک/کاتالوگ سازنده مطابقت بده",
				"محکم بودن اتصالات و بست‌ها را کنترل کن",
				"صدا و لرزش غیرعادی هنگام کار را ثبت کن",
				"سازگاری با جنس قطعه کار و سرعت مجاز را چک کن",
			},
			nextAction: "مدل دقیق دستگاه و شرایط بروز مشکل را بفرست.",
			question:   fmt.Sprintf("مشکل %s دقیقاً در چه شرایطی ظاهر می‌شود؟", subject),
		}
		return p.render(true)
	}
	p := replyParts{
		summary: fmt.Sprintf("Issue identified with a %s.%s%s", subject, dimension, caveat),
		causes: []string{
			"Mechanical wear or damage",
			"Incorrect mounting or adjustment",
			"Specification mismatch for the application",
		},
		checks: []string{
			fmt.Sprintf("Inspect the %s for cracks and wear", subject),
			"Match dimensions and ratings against the nameplate/catalog",
			"Verify fasteners and mounts are tight",
			"Note any abnormal noise or vibration under load",
			"Confirm compatibility with workpiece material and rated speed",
		},
		nextAction: "Send the exact machine model and the conditions when the problem appears.",
		question:   fmt.Sprintf("Under what conditions exactly does the %s problem appear?", subject),
	}
	return p.render(false)
}

func genericReply(persian bool) string {
	if persian {
		p := replyParts{
			summary: "در حال حاضر پاسخ کامل از سرویس تحلیل در دسترس نیست؛ چک‌لیست عمومی زیر را دنبال کن.",
			causes: []string{
				"شرح مشکل هنوز کامل نیست",
				"مشخصات تجهیز ارسال نشده",
				"شرایط بروز خطا نامشخص است",
			},
			checks: []string{
				"نام و مدل دقیق تجهیز را مشخص کن",
				"علائم را با جزئیات ثبت کن (صدا، لرزش، خطا)",
				"زمان و شرایط شروع مشکل را یادداشت کن",
				"آخرین سرویس یا تغییر روی دستگاه را بنویس",
			},
			nextAction: "همین موارد را در یک پیام بفرست تا بررسی دقیق انجام شود.",
			question:   "دستگاه و مشکل اصلی‌ات چیست؟",
		}
		return p.render(true)
	}
	p := replyParts{
		summary: "A full analysis is not available right now; use the general checklist below.",
		causes: []string{
			"Problem description is still incomplete",
			"Equipment specifications were not provided",
			"Failure conditions are unclear",
		},
		checks: []string{
			"State the exact make and model of the equipment",
			"Record symptoms in detail (noise, vibration, error codes)",
			"Note when and under what conditions the problem started",
			"List the last service or modification on the machine",
		},
		nextAction: "Send these details in one message for a precise review.",
		question:   "What is the machine and the main problem?",
	}
	return p.render(false)
}
