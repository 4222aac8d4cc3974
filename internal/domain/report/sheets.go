package report

import (
	"github.com/soudan/casebook/internal/domain/client"
	"github.com/soudan/casebook/internal/domain/consultation"
	"github.com/soudan/casebook/internal/domain/medication"
	"github.com/soudan/casebook/internal/platform/export"
)

func usersSheet(users []*client.User) export.Sheet {
	s := export.Sheet{
		Name:   "利用者一覧",
		Header: []string{"ID", "氏名", "フリガナ", "生年月日", "年齢", "性別", "電話番号", "住所", "障害支援区分", "区分有効期限", "担当職員", "後見人"},
		Widths: []float64{8, 16, 18, 12, 6, 6, 14, 36, 12, 12, 14, 14},
	}
	for _, u := range users {
		var level interface{} = ""
		if u.DisabilitySupportLevel != nil {
			level = *u.DisabilitySupportLevel
		}
		var age interface{} = ""
		if !u.BirthDate.IsZero() {
			age = u.Age
		}
		s.Rows = append(s.Rows, []interface{}{
			u.ID, u.Name, str(u.NameKana), u.BirthDate.String(), age, str(u.Gender),
			str(u.Phone), str(u.Address), level, u.DisabilitySupportExpiryDate.String(),
			str(u.AssignedStaffName), str(u.GuardianName),
		})
	}
	return s
}

func consultationsSheet(items []*consultation.Consultation) export.Sheet {
	s := export.Sheet{
		Name:   "相談記録",
		Header: []string{"ID", "相談日", "利用者名", "相談種別", "担当者", "相談内容", "対応内容"},
		Widths: []float64{8, 12, 16, 10, 14, 50, 50},
	}
	for _, c := range items {
		s.Rows = append(s.Rows, []interface{}{
			c.ID, c.ConsultationDate.String(), c.UserName, c.ConsultationType, c.StaffName, c.Content, str(c.Response),
		})
	}
	return s
}

func medicationsSheet(meds []*medication.Medication) export.Sheet {
	s := export.Sheet{
		Name:   "服薬情報",
		Header: []string{"薬品名", "一般名", "用量", "回数", "タイミング", "処方医", "医療機関", "開始日", "終了日", "服用状態", "処方目的", "備考"},
		Widths: []float64{20, 20, 10, 10, 12, 14, 20, 12, 12, 10, 24, 30},
	}
	for _, m := range meds {
		state := "終了"
		if m.IsCurrent {
			state = "服用中"
		}
		s.Rows = append(s.Rows, []interface{}{
			m.MedicationName, str(m.GenericName), str(m.Dosage), str(m.Frequency), str(m.Timing),
			str(m.DoctorName), str(m.HospitalName), m.StartDate.String(), m.EndDate.String(),
			state, str(m.Purpose), str(m.Notes),
		})
	}
	return s
}
