// Package report renders records as downloadable PDF and spreadsheet files.
package report

import (
	"fmt"
	"strconv"

	"github.com/soudan/casebook/internal/domain/client"
	"github.com/soudan/casebook/internal/domain/consultation"
	"github.com/soudan/casebook/internal/domain/medication"
	"github.com/soudan/casebook/internal/domain/monitoring"
	"github.com/soudan/casebook/internal/domain/network"
	"github.com/soudan/casebook/internal/domain/plan"
	"github.com/soudan/casebook/internal/platform/dates"
	"github.com/soudan/casebook/internal/platform/pdf"
)

const noMedications = "現在、登録されている服薬情報はありません。"

func jpDate(d dates.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006年01月02日")
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func period(from, to dates.Date) string {
	return jpDate(from) + " ～ " + jpDate(to)
}

func profileDocument(u *client.User) pdf.Document {
	level := "未認定"
	if u.DisabilitySupportLevel != nil {
		level = fmt.Sprintf("区分%d", *u.DisabilitySupportLevel)
	}
	age := ""
	if !u.BirthDate.IsZero() {
		age = strconv.Itoa(u.Age) + "歳"
	}

	guardian := pdf.Section{Heading: "後見人情報", Note: "後見人の登録はありません。"}
	if u.GuardianName != nil && *u.GuardianName != "" {
		guardian.Fields = []pdf.Field{
			{Label: "種別", Value: str(u.GuardianType)},
			{Label: "氏名", Value: *u.GuardianName},
			{Label: "連絡先", Value: str(u.GuardianContact)},
		}
	}

	return pdf.Document{
		Title: "利用者基本情報",
		Sections: []pdf.Section{
			{Heading: "基本情報", Fields: []pdf.Field{
				{Label: "氏名", Value: u.Name},
				{Label: "フリガナ", Value: str(u.NameKana)},
				{Label: "生年月日", Value: jpDate(u.BirthDate)},
				{Label: "年齢", Value: age},
				{Label: "性別", Value: str(u.Gender)},
				{Label: "郵便番号", Value: str(u.PostalCode)},
				{Label: "住所", Value: str(u.Address)},
				{Label: "電話番号", Value: str(u.Phone)},
				{Label: "メールアドレス", Value: str(u.Email)},
				{Label: "担当職員", Value: str(u.AssignedStaffName)},
			}},
			{Heading: "緊急連絡先", Fields: []pdf.Field{
				{Label: "氏名", Value: str(u.EmergencyContactName)},
				{Label: "電話番号", Value: str(u.EmergencyContactPhone)},
			}},
			{Heading: "障害支援区分", Fields: []pdf.Field{
				{Label: "区分", Value: level},
				{Label: "認定日", Value: jpDate(u.DisabilitySupportCertifiedDate)},
				{Label: "有効期限", Value: jpDate(u.DisabilitySupportExpiryDate)},
			}},
			guardian,
		},
	}
}

func planDocument(p *plan.Plan) pdf.Document {
	services := pdf.Section{Heading: "推奨サービス", Note: "登録されているサービスはありません。"}
	if len(p.Services) > 0 {
		t := &pdf.Table{
			Header: []string{"サービス種別", "提供事業所", "頻度", "時間"},
			Widths: []float64{45, 55, 35},
		}
		for _, s := range p.Services {
			t.Rows = append(t.Rows, []string{s.ServiceType, s.Provider, s.Frequency, s.Hours})
		}
		services.Table = t
	}

	return pdf.Document{
		Title: "サービス利用計画",
		Sections: []pdf.Section{
			{Heading: "計画情報", Fields: []pdf.Field{
				{Label: "利用者名", Value: p.UserName},
				{Label: "計画番号", Value: p.PlanNumber},
				{Label: "計画種別", Value: p.PlanType},
				{Label: "作成日", Value: jpDate(p.CreatedDate)},
				{Label: "計画期間", Value: period(p.StartDate, p.EndDate)},
				{Label: "作成者", Value: p.StaffName},
				{Label: "承認状況", Value: p.ApprovalStatus.Label()},
				{Label: "承認日", Value: jpDate(p.ApprovalDate)},
			}},
			{Heading: "現在の状況", Text: pdf.Text(p.CurrentSituation)},
			{Heading: "本人・家族の希望やニーズ", Text: pdf.Text(p.HopesAndNeeds)},
			{Heading: "総合的な援助方針", Text: pdf.Text(p.SupportPolicy)},
			{Heading: "長期目標", Fields: []pdf.Field{{Label: "目標期間", Value: str(p.LongTermGoalPeriod)}}, Text: pdf.Text(p.LongTermGoal)},
			{Heading: "短期目標", Fields: []pdf.Field{{Label: "目標期間", Value: str(p.ShortTermGoalPeriod)}}, Text: pdf.Text(p.ShortTermGoal)},
			services,
		},
	}
}

func monitoringDocument(m *monitoring.Monitoring) pdf.Document {
	revision := "不要"
	if m.PlanRevisionNeeded {
		revision = "必要"
	}
	return pdf.Document{
		Title: "モニタリング記録",
		Sections: []pdf.Section{
			{Heading: "モニタリング情報", Fields: []pdf.Field{
				{Label: "利用者名", Value: m.UserName},
				{Label: "計画番号", Value: m.PlanNumber},
				{Label: "実施日", Value: jpDate(m.MonitoringDate)},
				{Label: "種別", Value: m.MonitoringType},
				{Label: "担当者", Value: m.StaffName},
				{Label: "満足度", Value: str(m.Satisfaction)},
				{Label: "計画変更の必要性", Value: revision},
				{Label: "次回予定日", Value: jpDate(m.NextMonitoringDate)},
			}},
			{Heading: "サービス利用状況", Text: pdf.Text(m.ServiceUsageStatus)},
			{Heading: "目標の達成状況", Text: pdf.Text(m.GoalAchievement)},
			{Heading: "ニーズの変化", Text: pdf.Text(m.ChangesInNeeds)},
			{Heading: "課題・懸念事項", Text: pdf.Text(m.IssuesAndConcerns)},
			{Heading: "今後の方針", Text: pdf.Text(m.FuturePolicy)},
		},
	}
}

func consultationDocument(c *consultation.Consultation) pdf.Document {
	return pdf.Document{
		Title: "相談記録",
		Sections: []pdf.Section{
			{Heading: "相談情報", Fields: []pdf.Field{
				{Label: "利用者名", Value: c.UserName},
				{Label: "相談日", Value: jpDate(c.ConsultationDate)},
				{Label: "相談種別", Value: c.ConsultationType},
				{Label: "担当者", Value: c.StaffName},
			}},
			{Heading: "相談内容", Text: pdf.Text(&c.Content)},
			{Heading: "対応内容", Text: pdf.Text(c.Response)},
		},
	}
}

func medicationsDocument(userName string, meds []*medication.Medication) pdf.Document {
	doc := pdf.Document{Title: "服薬情報一覧 - " + userName}

	current := &pdf.Table{
		Header: []string{"薬品名", "用量", "回数", "タイミング", "処方医", "開始日"},
		Widths: []float64{40, 22, 22, 26, 30},
	}
	past := &pdf.Table{
		Header: []string{"薬品名", "用量", "処方医", "開始日", "終了日"},
		Widths: []float64{50, 25, 35, 30},
	}
	for _, m := range meds {
		if m.IsCurrent {
			current.Rows = append(current.Rows, []string{
				m.MedicationName, str(m.Dosage), str(m.Frequency), str(m.Timing), str(m.DoctorName), jpDate(m.StartDate),
			})
			continue
		}
		past.Rows = append(past.Rows, []string{
			m.MedicationName, str(m.Dosage), str(m.DoctorName), jpDate(m.StartDate), jpDate(m.EndDate),
		})
	}

	if len(current.Rows) == 0 && len(past.Rows) == 0 {
		doc.Sections = []pdf.Section{{Heading: "現在服用中の薬", Note: noMedications}}
		return doc
	}
	cur := pdf.Section{Heading: "現在服用中の薬", Note: "現在服用中の薬はありません。"}
	if len(current.Rows) > 0 {
		cur.Table = current
	}
	doc.Sections = append(doc.Sections, cur)
	if len(past.Rows) > 0 {
		doc.Sections = append(doc.Sections, pdf.Section{Heading: "過去の服薬", Table: past})
	}
	return doc
}

var nodeTypeLabels = map[string]string{
	network.NodeUser:     "本人",
	network.NodeService:  "サービス事業所",
	network.NodeMedical:  "医療機関",
	network.NodeGuardian: "後見人",
	network.NodeStaff:    "担当職員",
	network.NodeOther:    "その他",
}

// networkDocument lists the graph's relationships. image, when set, is a
// PNG rendering of the graph supplied by the caller.
func networkDocument(g *network.Graph, image []byte) pdf.Document {
	nodes := make(map[string]network.Node, len(g.Nodes))
	for _, n := range g.Nodes {
		nodes[n.ID] = n
	}
	t := &pdf.Table{
		Header: []string{"名称", "種別", "関係", "頻度", "開始日"},
		Widths: []float64{50, 30, 30, 25},
	}
	for _, e := range g.Edges {
		n := nodes[e.To]
		t.Rows = append(t.Rows, []string{n.Label, nodeTypeLabels[n.Type], e.Relationship, str(e.Frequency), jpDate(e.StartDate)})
	}

	doc := pdf.Document{Title: "ネットワーク図 - " + g.UserName}
	if len(image) > 0 {
		doc.Sections = append(doc.Sections, pdf.Section{Heading: "支援ネットワーク", Image: image})
	}
	rel := pdf.Section{Heading: "関係者一覧", Note: "登録されている関係者はいません。"}
	if len(t.Rows) > 0 {
		rel.Table = t
	}
	doc.Sections = append(doc.Sections, rel)
	return doc
}
