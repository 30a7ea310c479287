package leave

type ApplyRequest struct {
	Type       string `json:"type" binding:"required,oneof=casual medical earned academic"`
	Name       string `json:"name" binding:"required"`
	From       string `json:"from" binding:"required"`
	To         string `json:"to" binding:"required"`
	ReqMessage string `json:"reqMessage" binding:"required"`
}

type RecordResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Username   string  `json:"username"`
	Type       string  `json:"type"`
	From       string  `json:"from"`
	To         string  `json:"to"`
	Days       int     `json:"days"`
	ReqMessage string  `json:"reqMessage"`
	Stage      string  `json:"stage"`
	Status     string  `json:"status"`
	RejMessage *string `json:"rejMessage,omitempty"`
	CreatedAt  string  `json:"createdAt"`
}

type StatsResponse struct {
	TotalLeaves    int64 `json:"totalLeaves"`
	ApprovedLeaves int64 `json:"approvedLeaves"`
	PendingLeaves  int64 `json:"pendingLeaves"`
}
