package model

// SurveyView is the public survey tree of a college. Correct answers are not part of it.
type SurveyView struct {
	CollegeName string         `json:"college_name"`
	Categories  []CategoryView `json:"categories"`
}

type CategoryView struct {
	Name              string        `json:"name"`
	HasCorrectAnswers bool          `json:"has_correct_answers"`
	Sections          []SectionView `json:"sections"`
}

type SectionView struct {
	Name      string         `json:"name"`
	Questions []QuestionView `json:"questions"`
}

type QuestionView struct {
	ID      uint         `json:"id"`
	Text    string       `json:"text"`
	Options []OptionView `json:"options"`
}

type OptionView struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

// StudentResultsView groups a student's results by category.
type StudentResultsView struct {
	StudentName string               `json:"student_name"`
	StudentID   string               `json:"student_id"`
	Results     []CategoryResultView `json:"results"`
}

type CategoryResultView struct {
	Category string              `json:"category"`
	Sections []SectionResultView `json:"sections"`
}

// SectionResultView is either a "marks" entry with Score or a "subjective"
// entry with Responses.
type SectionResultView struct {
	Section    string                 `json:"section"`
	ResultType string                 `json:"result_type"`
	Score      *int                   `json:"score,omitempty"`
	Responses  []SubjectiveAnswerView `json:"responses,omitempty"`
}

type SubjectiveAnswerView struct {
	Question       string `json:"question"`
	SelectedOption string `json:"selected_option"`
}

// NewSurveyView maps a fully preloaded college onto its public view.
func NewSurveyView(c *College) *SurveyView {
	view := &SurveyView{CollegeName: c.Name, Categories: make([]CategoryView, 0, len(c.Categories))}
	for _, cat := range c.Categories {
		cv := CategoryView{Name: cat.Name, HasCorrectAnswers: cat.HasCorrectAnswers, Sections: make([]SectionView, 0, len(cat.Sections))}
		for _, sec := range cat.Sections {
			sv := SectionView{Name: sec.Name, Questions: make([]QuestionView, 0, len(sec.Questions))}
			for _, q := range sec.Questions {
				qv := QuestionView{ID: q.ID, Text: q.Text, Options: make([]OptionView, 0, len(q.Options))}
				for _, o := range q.Options {
					qv.Options = append(qv.Options, OptionView{ID: o.ID, Text: o.Text})
				}
				sv.Questions = append(sv.Questions, qv)
			}
			cv.Sections = append(cv.Sections, sv)
		}
		view.Categories = append(view.Categories, cv)
	}
	return view
}
