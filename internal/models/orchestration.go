package models

// SequenceConfig describes the outreach sequence the worker creates for each contact
type SequenceConfig struct {
	Steps        int    `json:"steps" example:"3"`
	DelayDays    int    `json:"delay_days" example:"2"`
	Tone         string `json:"tone,omitempty" example:"friendly"`
	SenderName   string `json:"sender_name,omitempty" example:"Alex"`
	CallToAction string `json:"call_to_action,omitempty" example:"Book a 15 minute call"`
}

// StartOrchestrationRequest is forwarded to POST /orchestration/start
type StartOrchestrationRequest struct {
	SolutionDescription string                 `json:"solution_description" binding:"required" example:"AI bookkeeping for dental clinics"`
	MaxContacts         int                    `json:"max_contacts" binding:"required,min=1" example:"50"`
	EnrichCredits       int                    `json:"enrich_credits" binding:"min=0" example:"50"`
	DurationConfig      *DurationConfig        `json:"duration_config,omitempty"`
	SequenceConfig      SequenceConfig         `json:"sequence_config"`
	TargetFilters       map[string]interface{} `json:"target_filters,omitempty"`
}

// StartOrchestrationResponse is returned by POST /orchestration/start
type StartOrchestrationResponse struct {
	CampaignID string `json:"campaign_id" example:"8f14e45f-ceea-467f-a0e6-2f6c1d9b2a51"`
	Status     string `json:"status,omitempty" example:"active"`
	Message    string `json:"message,omitempty" example:"Campaign started"`
}

// StartCampaignRequest is what the dashboard posts: the orchestration payload
// plus the raw configurator inputs the duration config is built from
type StartCampaignRequest struct {
	SolutionDescription string                 `json:"solution_description" binding:"required" example:"AI bookkeeping for dental clinics"`
	MaxContacts         int                    `json:"max_contacts" binding:"required,min=1" example:"50"`
	EnrichCredits       int                    `json:"enrich_credits" binding:"min=0" example:"50"`
	MultiDay            bool                   `json:"multi_day" example:"true"`
	DurationDays        int                    `json:"duration_days" example:"7"`
	PreferredRunHour    int                    `json:"preferred_run_hour" example:"9"`
	SequenceConfig      SequenceConfig         `json:"sequence_config"`
	TargetFilters       map[string]interface{} `json:"target_filters,omitempty"`
}
