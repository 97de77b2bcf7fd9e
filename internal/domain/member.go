package domain

// Member represents a user's presence in a room through one connection.
// No transport or lifecycle logic here.
type Member struct {
	User   *User
	RoomID RoomID
}

func NewMember(user *User, room RoomID) *Member {
	return &Member{User: user, RoomID: room}
}
