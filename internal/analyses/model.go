package analyses

// AnalysisRecord is the validated result of one resume analysis.
// Field order matches the serialized JSON.
type AnalysisRecord struct {
	SkillMatchPercentage            int      `json:"skill_match_percentage"`
	MatchedSkills                   []string `json:"matched_skills"`
	MissingSkills                   []string `json:"missing_skills"`
	ResumeIssues                    []string `json:"resume_issues"`
	ImprovementSuggestions          []string `json:"improvement_suggestions"`
	SimulatedScoreAfterImprovements int      `json:"simulated_score_after_improvements"`
}

// OutOfRange lists the score fields that fall outside 0..100.
func (r AnalysisRecord) OutOfRange() []string {
	var fields []string
	if r.SkillMatchPercentage < 0 || r.SkillMatchPercentage > 100 {
		fields = append(fields, "skill_match_percentage")
	}
	if r.SimulatedScoreAfterImprovements < 0 || r.SimulatedScoreAfterImprovements > 100 {
		fields = append(fields, "simulated_score_after_improvements")
	}
	return fields
}

// AnalyzeRequest is the body accepted by POST /api/analyze.
type AnalyzeRequest struct {
	Role       string `json:"role"`
	ResumeText string `json:"resumeText"`
}
