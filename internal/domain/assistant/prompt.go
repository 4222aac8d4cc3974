package assistant

import (
	"fmt"
	"strings"

	"github.com/soudan/casebook/internal/domain/client"
	"github.com/soudan/casebook/internal/domain/consultation"
	"github.com/soudan/casebook/internal/domain/medication"
	"github.com/soudan/casebook/internal/domain/plan"
)

const (
	systemPrompt    = "あなたは経験豊富な計画相談支援専門員です。利用者の状況を総合的に判断し、具体的で実現可能なサービス利用計画を提案してください。必ず日本語で回答してください。"
	replyInJapanese = "\n\n※必ず日本語で回答してください。"

	quotedConsultations = 3
)

const answerFormat = `
# 以下の形式で計画を提案してください

【現在の状況】
(利用者の現状を100-200文字程度で記述)

【本人・家族の希望やニーズ】
(希望やニーズを100-200文字程度で記述)

【総合的な援助方針】
(援助の基本方針を150-250文字程度で記述)

【長期目標】
(6ヶ月～1年後の目標を80-150文字程度で記述)

【短期目標】
(3ヶ月程度の目標を80-150文字程度で記述)

【推奨サービス】
1. サービス種別名 - 提供内容(簡潔に)
2. サービス種別名 - 提供内容(簡潔に)
(必要に応じて3～5つ程度)

※具体的で実現可能な内容にしてください
※利用者の特性や状況に配慮した提案をしてください
`

// context gathered for one proposal; the user's name is deliberately left
// out of the prompt.
type planContext struct {
	user          *client.User
	medications   []*medication.Medication
	consultations []*consultation.Consultation
	previous      *plan.Plan
	evaluation    *plan.Evaluation
}

func block(b *strings.Builder, title string, s *string) {
	if s != nil && *s != "" {
		fmt.Fprintf(b, "【%s】\n%s\n\n", title, *s)
	}
}

func buildPrompt(pc planContext) string {
	var b strings.Builder
	b.WriteString("あなたは経験豊富な計画相談支援専門員です。以下の情報をもとに、利用者のサービス利用計画を提案してください。\n\n")

	u := pc.user
	age := "不明"
	if !u.BirthDate.IsZero() {
		age = fmt.Sprintf("%d歳", u.Age)
	}
	gender := "未登録"
	if u.Gender != nil && *u.Gender != "" {
		gender = *u.Gender
	}
	level := "未設定"
	if u.DisabilitySupportLevel != nil {
		level = fmt.Sprintf("区分%d", *u.DisabilitySupportLevel)
	}
	fmt.Fprintf(&b, "# 利用者基本情報\n- 年齢: %s\n- 性別: %s\n- 障害支援区分: %s\n\n", age, gender, level)

	if len(pc.medications) > 0 {
		b.WriteString("# 服薬情報\n")
		for _, m := range pc.medications {
			b.WriteString("- " + m.MedicationName)
			if m.Purpose != nil && *m.Purpose != "" {
				b.WriteString(" (" + *m.Purpose + ")")
			}
			if m.Dosage != nil && *m.Dosage != "" {
				b.WriteString(" - " + *m.Dosage)
			}
			if m.Frequency != nil && *m.Frequency != "" {
				b.WriteString(" - " + *m.Frequency)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(pc.consultations) > 0 {
		b.WriteString("# 最近の相談記録\n")
		for i, c := range pc.consultations {
			if i == quotedConsultations {
				break
			}
			fmt.Fprintf(&b, "【%s】\n%s\n\n", c.ConsultationDate, c.Content)
		}
	}

	if p := pc.previous; p != nil {
		b.WriteString("# 前回の計画\n")
		fmt.Fprintf(&b, "期間: %s ～ %s\n\n", p.StartDate, p.EndDate)
		block(&b, "前回の状況", p.CurrentSituation)
		block(&b, "前回の長期目標", p.LongTermGoal)
		block(&b, "前回の短期目標", p.ShortTermGoal)
	}

	if e := pc.evaluation; e != nil {
		b.WriteString("# 前回計画の評価\n")
		fmt.Fprintf(&b, "達成状況: %s\n\n", e.AchievementStatus)
		block(&b, "達成状況詳細", e.AchievementDetails)
		block(&b, "課題・問題点", e.Challenges)
		block(&b, "次期計画への提言", e.NextActions)
	}

	b.WriteString(answerFormat)
	return b.String()
}

// Proposal is the model's reply split into plan fields.
type Proposal struct {
	CurrentSituation    string   `json:"current_situation"`
	HopesAndNeeds       string   `json:"hopes_and_needs"`
	SupportPolicy       string   `json:"support_policy"`
	LongTermGoal        string   `json:"long_term_goal"`
	ShortTermGoal       string   `json:"short_term_goal"`
	RecommendedServices []string `json:"recommended_services"`
	RawResponse         string   `json:"raw_response"`
}

type section int

const (
	secNone section = iota
	secSituation
	secNeeds
	secPolicy
	secLongTerm
	secShortTerm
	secServices
)

// headings in match order; each has the full title and a shorter form
// models often use instead.
var headings = []struct {
	sec        section
	title, alt string
}{
	{secSituation, "現在の状況", "現在の状況"},
	{secNeeds, "本人・家族の希望やニーズ", "希望やニーズ"},
	{secPolicy, "総合的な援助方針", "援助方針"},
	{secLongTerm, "長期目標", "長期目標"},
	{secShortTerm, "短期目標", "短期目標"},
	{secServices, "推奨サービス", "推奨サービス"},
}

// heading reports whether line opens a section. Bracketed headings may
// carry text after the closing bracket, returned as rest.
func heading(line string) (sec section, rest string) {
	s := strings.TrimLeft(line, "#* ")
	if strings.HasPrefix(s, "【") {
		end := strings.Index(s, "】")
		if end < 0 {
			return secNone, ""
		}
		title := s[len("【"):end]
		for _, h := range headings {
			if strings.Contains(title, h.alt) {
				return h.sec, strings.TrimSpace(s[end+len("】"):])
			}
		}
		return secNone, ""
	}
	bare := strings.Trim(s, "*:： ")
	for _, h := range headings {
		if bare == h.title || bare == h.alt {
			return h.sec, ""
		}
	}
	return secNone, ""
}

func isServiceLine(line string) bool {
	for _, p := range []string{"-", "•", "・"} {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	// "1." through "9."
	return len(line) >= 2 && line[0] >= '1' && line[0] <= '9' && line[1] == '.'
}

func parseProposal(reply string) Proposal {
	p := Proposal{RecommendedServices: []string{}, RawResponse: reply}
	texts := map[section]*string{
		secSituation: &p.CurrentSituation,
		secNeeds:     &p.HopesAndNeeds,
		secPolicy:    &p.SupportPolicy,
		secLongTerm:  &p.LongTermGoal,
		secShortTerm: &p.ShortTermGoal,
	}

	current := secNone
	add := func(line string) {
		if line == "" || current == secNone {
			return
		}
		if current == secServices {
			if isServiceLine(line) {
				p.RecommendedServices = append(p.RecommendedServices, line)
			}
			return
		}
		t := texts[current]
		if *t != "" {
			*t += " "
		}
		*t += line
	}

	for _, raw := range strings.Split(reply, "\n") {
		line := strings.TrimSpace(raw)
		if sec, rest := heading(line); sec != secNone {
			current = sec
			add(rest)
			continue
		}
		add(line)
	}
	return p
}
