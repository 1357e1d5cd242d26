package dto

// StatsResponse 管理员看板统计
type StatsResponse struct {
	Students         int64             `json:"students"`
	Professors       int64             `json:"professors"`
	Defenses         map[string]int64  `json:"defenses"`
	Reports          map[string]int64  `json:"reports"`
	UnreadMessages   int64             `json:"unread_messages"`
	UpcomingDefenses []DefenseResponse `json:"upcoming_defenses"`
}
