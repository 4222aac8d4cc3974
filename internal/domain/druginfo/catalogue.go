package druginfo

const sourceInternal = "内部データベース"

// builtin is reference data for common psychiatric and chronic-care
// medicines. It is not a substitute for a licensed drug database.
var builtin = []Drug{
	{
		Name:        "リスペリドン錠",
		GenericName: "リスペリドン",
		Category:    "抗精神病薬",
		Effects:     "統合失調症の治療に使用される抗精神病薬です。陽性症状(幻覚、妄想)や陰性症状(意欲低下、感情の平板化)を改善します。",
		SideEffects: "眠気、めまい、体重増加、口の渇き、便秘、不眠、震え、筋肉のこわばり等。重大な副作用として悪性症候群、遅発性ジスキネジアがあります。",
		DosageForm:  "錠剤、細粒、内用液",
		Warnings:    "運転操作は避けてください。アルコールとの併用は避けてください。定期的な血液検査が必要です。",
	},
	{
		Name:        "エチゾラム錠",
		GenericName: "エチゾラム",
		Category:    "抗不安薬",
		Effects:     "不安、緊張、抑うつ、睡眠障害の改善に使用されるベンゾジアゼピン系抗不安薬です。",
		SideEffects: "眠気、ふらつき、脱力感、倦怠感、口の渇き。長期服用で依存性が生じる可能性があります。",
		DosageForm:  "錠剤",
		Warnings:    "運転操作は避けてください。アルコールとの併用は避けてください。急に中止すると離脱症状が出ることがあります。",
	},
	{
		Name:        "ハロペリドール錠",
		GenericName: "ハロペリドール",
		Category:    "抗精神病薬",
		Effects:     "統合失調症の治療に使用される定型抗精神病薬です。幻覚、妄想などの陽性症状を改善します。",
		SideEffects: "錐体外路症状(手足の震え、筋肉のこわばり)、眠気、口の渇き、便秘。重大な副作用として悪性症候群があります。",
		DosageForm:  "錠剤、細粒、注射液",
		Warnings:    "運転操作は避けてください。定期的な血液検査が必要です。錐体外路症状が出やすいため注意が必要です。",
	},
	{
		Name:        "セルトラリン錠",
		GenericName: "セルトラリン",
		Category:    "抗うつ薬",
		Effects:     "うつ病、パニック障害、強迫性障害の治療に使用されるSSRI(選択的セロトニン再取り込み阻害薬)です。",
		SideEffects: "吐き気、食欲不振、下痢、眠気、不眠、性機能障害。まれにセロトニン症候群が起こることがあります。",
		DosageForm:  "錠剤、OD錠",
		Warnings:    "効果が出るまで2-4週間かかります。急に中止すると離脱症状が出ることがあります。",
	},
	{
		Name:        "アムロジピン錠",
		GenericName: "アムロジピン",
		Category:    "降圧薬",
		Effects:     "高血圧、狭心症の治療に使用されるカルシウム拮抗薬です。血管を広げて血圧を下げます。",
		SideEffects: "顔のほてり、頭痛、動悸、めまい、むくみ、歯肉肥厚。",
		DosageForm:  "錠剤、OD錠",
		Warnings:    "グレープフルーツジュースとの併用は避けてください。急に中止すると症状が悪化することがあります。",
	},
	{
		Name:        "アリピプラゾール錠",
		GenericName: "アリピプラゾール",
		Category:    "抗精神病薬",
		Effects:     "統合失調症、双極性障害の治療に使用される非定型抗精神病薬です。陽性症状と陰性症状の両方を改善します。",
		SideEffects: "不眠、アカシジア(じっとしていられない)、体重増加、吐き気、便秘。錐体外路症状は比較的少ないです。",
		DosageForm:  "錠剤、OD錠、散剤、内用液",
		Warnings:    "運転操作は避けてください。定期的な血液検査が必要です。",
	},
	{
		Name:        "ロラゼパム錠",
		GenericName: "ロラゼパム",
		Category:    "抗不安薬",
		Effects:     "不安、緊張、抑うつ、睡眠障害の改善に使用されるベンゾジアゼピン系抗不安薬です。",
		SideEffects: "眠気、ふらつき、脱力感、倦怠感。長期服用で依存性が生じる可能性があります。",
		DosageForm:  "錠剤",
		Warnings:    "運転操作は避けてください。アルコールとの併用は避けてください。急に中止すると離脱症状が出ることがあります。",
	},
	{
		Name:        "クエチアピン錠",
		GenericName: "クエチアピン",
		Category:    "抗精神病薬",
		Effects:     "統合失調症、双極性障害のうつ状態の治療に使用される非定型抗精神病薬です。",
		SideEffects: "眠気、体重増加、口の渇き、便秘、血糖値上昇。",
		DosageForm:  "錠剤、細粒",
		Warnings:    "運転操作は避けてください。糖尿病の方は注意が必要です。定期的な血液検査が必要です。",
	},
	{
		Name:        "パロキセチン錠",
		GenericName: "パロキセチン",
		Category:    "抗うつ薬",
		Effects:     "うつ病、パニック障害、強迫性障害、社交不安障害、PTSDの治療に使用されるSSRIです。",
		SideEffects: "吐き気、食欲不振、眠気、不眠、性機能障害、体重増加。",
		DosageForm:  "錠剤",
		Warnings:    "効果が出るまで2-4週間かかります。急に中止すると離脱症状が強く出ることがあります。",
	},
	{
		Name:        "レボドパ・カルビドパ配合錠",
		GenericName: "レボドパ・カルビドパ",
		Category:    "抗パーキンソン病薬",
		Effects:     "パーキンソン病の治療に使用される薬です。脳内のドパミンを増やして症状を改善します。",
		SideEffects: "吐き気、食欲不振、不随意運動、幻覚、妄想、起立性低血圧。",
		DosageForm:  "錠剤",
		Warnings:    "食事との関係で効果が変わることがあります。急に中止しないでください。",
	},
}
