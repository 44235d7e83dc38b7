// internal/workers/engagement/send-match-notification/models.go
package sendmatchnotification

type Input struct {
	FounderID   string `json:"founderId"`
	InvestorID  string `json:"investorId"`
	Action      string `json:"action"` // interested or connected
	MatchScore  int    `json:"matchScore"`
	CompanyName string `json:"companyName"`
	FundName    string `json:"fundName"`
	// Contact details are resolved upstream in the workflow; this
	// worker only delivers.
	RecipientEmail string `json:"recipientEmail,omitempty"`
	RecipientPhone string `json:"recipientPhone,omitempty"`
}

type Output struct {
	ChannelsSent   []string `json:"channelsSent"`
	ChannelsFailed []string `json:"channelsFailed,omitempty"`
	Message        string   `json:"message"`
}
