package transport

// RegisterRequest creates a profile and opens its first session.
type RegisterRequest struct {
	Username string `json:"username"`
	Bio      string `json:"bio"`
}

type LoginRequest struct {
	Username string `json:"username"`
}

type ProfileUpdateRequest struct {
	Bio       *string `json:"bio"`
	ImagePath *string `json:"image_path"`
}

// TaskRequest carries a catalog task. Durations travel as whole seconds.
type TaskRequest struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	Points           int    `json:"points"`
	TimeToRepeatSecs int64  `json:"time_to_repeat_seconds"`
	CategoryID       string `json:"category_id"`
	Rarity           int    `json:"rarity"`
	IsBomb           bool   `json:"is_bomb"`
	BombLimitSecs    int64  `json:"bomb_time_limit_seconds"`
}

type CategoryRequest struct {
	Name string `json:"name"`
}

type CompleteRequest struct {
	PhotoRef string   `json:"photo_ref"`
	Note     string   `json:"note"`
	Lat      *float64 `json:"lat"`
	Lon      *float64 `json:"lon"`
}

type TagRequest struct {
	Username string `json:"username"`
}

type FriendRequestCreate struct {
	Username string `json:"username"`
}

type LeagueRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Visibility  string `json:"visibility"`
	InviteOnly  bool   `json:"invite_only"`
}

type LeagueInviteRequest struct {
	Username string `json:"username"`
}

type LeagueMemberRequest struct {
	ProfileID string `json:"profile_id"`
}
