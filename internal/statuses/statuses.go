package statuses

const (
	RoomStatusActive = "active"
	RoomStatusEnded  = "ended"
)
