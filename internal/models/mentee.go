package models

type Badge struct {
	ID     string `bson:"id" json:"id"`
	Title  string `bson:"title" json:"title"`
	Earned bool   `bson:"earned" json:"earned"`
}

type Mentee struct {
	ID       string `bson:"_id" json:"id"`
	FullName string `bson:"full_name" json:"full_name"`
	Email    string `bson:"email" json:"email"`

	CompletedSessions int     `bson:"completed_sessions" json:"completed_sessions"`
	EarnedBadges      []Badge `bson:"earned_badges" json:"earned_badges"`
}
