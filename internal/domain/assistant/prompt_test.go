package assistant

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/soudan/casebook/internal/domain/client"
	"github.com/soudan/casebook/internal/domain/consultation"
	"github.com/soudan/casebook/internal/domain/medication"
	"github.com/soudan/casebook/internal/domain/plan"
	"github.com/soudan/casebook/internal/platform/dates"
)

func strp(s string) *string { return &s }

func TestBuildPrompt(t *testing.T) {
	level := 4
	var cons []*consultation.Consultation
	for i, d := range []string{"2025-06-10", "2025-06-03", "2025-05-27", "2025-05-20"} {
		cons = append(cons, &consultation.Consultation{ConsultationDate: dates.MustParse(d), Content: "相談" + string(rune('A'+i))})
	}
	pc := planContext{
		user: &client.User{Name: "山田 太郎", BirthDate: dates.MustParse("1980-05-15"), Age: 45, Gender: strp("男性"), DisabilitySupportLevel: &level},
		medications: []*medication.Medication{
			{MedicationName: "デパケン", Purpose: strp("気分安定"), Dosage: strp("200mg"), Frequency: strp("1日2回")},
		},
		consultations: cons,
		previous: &plan.Plan{
			StartDate: dates.MustParse("2024-04-01"), EndDate: dates.MustParse("2025-03-31"),
			LongTermGoal: strp("一般就労"),
		},
		evaluation: &plan.Evaluation{AchievementStatus: "一部達成", Challenges: strp("通所の継続")},
	}

	p := buildPrompt(pc)
	assert.NotContains(t, p, "山田", "name stays out of the prompt")
	assert.Contains(t, p, "- 年齢: 45歳\n- 性別: 男性\n- 障害支援区分: 区分4")
	assert.Contains(t, p, "- デパケン (気分安定) - 200mg - 1日2回\n")
	assert.Contains(t, p, "【2025-06-10】\n相談A")
	assert.Contains(t, p, "【2025-05-27】\n相談C")
	assert.NotContains(t, p, "相談D", "only three consultations are quoted")
	assert.Contains(t, p, "期間: 2024-04-01 ～ 2025-03-31")
	assert.Contains(t, p, "【前回の長期目標】\n一般就労")
	assert.NotContains(t, p, "【前回の短期目標】")
	assert.Contains(t, p, "達成状況: 一部達成")
	assert.Contains(t, p, "【課題・問題点】\n通所の継続")
	assert.True(t, strings.HasSuffix(p, answerFormat))
}

func TestBuildPrompt_Minimal(t *testing.T) {
	p := buildPrompt(planContext{user: &client.User{Name: "佐藤"}})
	assert.Contains(t, p, "- 年齢: 不明\n- 性別: 未登録\n- 障害支援区分: 未設定")
	assert.NotContains(t, p, "# 服薬情報")
	assert.NotContains(t, p, "# 前回の計画")
}

func TestParseProposal(t *testing.T) {
	reply := `以下が計画案です。

【現在の状況】
就労継続支援B型に週3日通所している。
体調は安定。

【本人・家族の希望やニーズ】
一人暮らしをしたい。

**総合的な援助方針**
段階的に生活スキルを身につける。

【長期目標】一年以内にグループホームへ移行する。

### 短期目標
通所を週4日に増やす。

【推奨サービス】
1. 就労継続支援B型 - 日中活動
2. 共同生活援助 - 住まいの場
・ 居宅介護 - 家事援助
補足: 必要に応じて見直す。`

	p := parseProposal(reply)
	assert.Equal(t, "就労継続支援B型に週3日通所している。 体調は安定。", p.CurrentSituation)
	assert.Equal(t, "一人暮らしをしたい。", p.HopesAndNeeds)
	assert.Equal(t, "段階的に生活スキルを身につける。", p.SupportPolicy)
	assert.Equal(t, "一年以内にグループホームへ移行する。", p.LongTermGoal)
	assert.Equal(t, "通所を週4日に増やす。", p.ShortTermGoal)
	assert.Equal(t, []string{
		"1. 就労継続支援B型 - 日中活動",
		"2. 共同生活援助 - 住まいの場",
		"・ 居宅介護 - 家事援助",
	}, p.RecommendedServices)
	assert.Equal(t, reply, p.RawResponse)
}

func TestParseProposal_Unstructured(t *testing.T) {
	p := parseProposal("申し訳ありませんが、情報が不足しています。")
	assert.Empty(t, p.CurrentSituation)
	assert.NotNil(t, p.RecommendedServices)
	assert.Empty(t, p.RecommendedServices)
}

func TestHeading_ContentMentioningTitleIsNotAHeading(t *testing.T) {
	sec, _ := heading("長期目標に向けて通所を続ける。")
	assert.Equal(t, secNone, sec)
}
