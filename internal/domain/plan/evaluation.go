package plan

import (
	"time"

	"github.com/soudan/casebook/internal/platform/dates"
)

var validAchievement = map[string]bool{
	"達成": true, "一部達成": true, "未達成": true, "継続中": true,
}

// Evaluation records how far a plan's goals were reached.
type Evaluation struct {
	ID                 int64      `db:"id" json:"id"`
	PlanID             int64      `db:"plan_id" json:"plan_id"`
	UserID             int64      `db:"user_id" json:"user_id"`
	StaffID            int64      `db:"staff_id" json:"staff_id"`
	EvaluationDate     dates.Date `db:"evaluation_date" json:"evaluation_date"`
	AchievementStatus  string     `db:"achievement_status" json:"achievement_status"`
	AchievementDetails *string    `db:"achievement_details" json:"achievement_details"`
	Goal1Achievement   *string    `db:"goal_1_achievement" json:"goal_1_achievement"`
	Goal1Notes         *string    `db:"goal_1_notes" json:"goal_1_notes"`
	Goal2Achievement   *string    `db:"goal_2_achievement" json:"goal_2_achievement"`
	Goal2Notes         *string    `db:"goal_2_notes" json:"goal_2_notes"`
	Goal3Achievement   *string    `db:"goal_3_achievement" json:"goal_3_achievement"`
	Goal3Notes         *string    `db:"goal_3_notes" json:"goal_3_notes"`
	OverallEvaluation  *string    `db:"overall_evaluation" json:"overall_evaluation"`
	Challenges         *string    `db:"challenges" json:"challenges"`
	NextActions        *string    `db:"next_actions" json:"next_actions"`
	IsDeleted          bool       `db:"is_deleted" json:"is_deleted"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`

	StaffName string `db:"-" json:"staff_name"`
}

type EvaluationInput struct {
	StaffID            *int64      `json:"staff_id"`
	EvaluationDate     *dates.Date `json:"evaluation_date"`
	AchievementStatus  *string     `json:"achievement_status"`
	AchievementDetails *string     `json:"achievement_details"`
	Goal1Achievement   *string     `json:"goal_1_achievement"`
	Goal1Notes         *string     `json:"goal_1_notes"`
	Goal2Achievement   *string     `json:"goal_2_achievement"`
	Goal2Notes         *string     `json:"goal_2_notes"`
	Goal3Achievement   *string     `json:"goal_3_achievement"`
	Goal3Notes         *string     `json:"goal_3_notes"`
	OverallEvaluation  *string     `json:"overall_evaluation"`
	Challenges         *string     `json:"challenges"`
	NextActions        *string     `json:"next_actions"`
}

func (in *EvaluationInput) apply(e *Evaluation) {
	if in.StaffID != nil {
		e.StaffID = *in.StaffID
	}
	if in.EvaluationDate != nil {
		e.EvaluationDate = *in.EvaluationDate
	}
	if in.AchievementStatus != nil {
		e.AchievementStatus = *in.AchievementStatus
	}
	if in.AchievementDetails != nil {
		e.AchievementDetails = in.AchievementDetails
	}
	if in.Goal1Achievement != nil {
		e.Goal1Achievement = in.Goal1Achievement
	}
	if in.Goal1Notes != nil {
		e.Goal1Notes = in.Goal1Notes
	}
	if in.Goal2Achievement != nil {
		e.Goal2Achievement = in.Goal2Achievement
	}
	if in.Goal2Notes != nil {
		e.Goal2Notes = in.Goal2Notes
	}
	if in.Goal3Achievement != nil {
		e.Goal3Achievement = in.Goal3Achievement
	}
	if in.Goal3Notes != nil {
		e.Goal3Notes = in.Goal3Notes
	}
	if in.OverallEvaluation != nil {
		e.OverallEvaluation = in.OverallEvaluation
	}
	if in.Challenges != nil {
		e.Challenges = in.Challenges
	}
	if in.NextActions != nil {
		e.NextActions = in.NextActions
	}
}
