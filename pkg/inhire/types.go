package inhire

// Talent is the talent resource returned by the InHire API
type Talent struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Linkedin string `json:"linkedinUsername,omitempty"`
}

// JobTalent is an application: a talent placed in a job pipeline
type JobTalent struct {
	ID       string `json:"id"`
	JobID    string `json:"jobId"`
	TalentID string `json:"talentId"`
	Stage    string `json:"stageName,omitempty"`
	Status   string `json:"status,omitempty"`
}

type addTalentRequest struct {
	TalentID string `json:"talentId"`
}
