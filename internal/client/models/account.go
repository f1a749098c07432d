package models

// PointsPerLevel is how many profile points make one level.
const PointsPerLevel = 100

// User is an account mirrored from the server. Password holds the
// credential digest used for offline login, never a plain password.
type User struct {
	ID         int64    `db:"id" json:"id" validate:"gt=0"`
	Username   string   `db:"username" json:"username" validate:"required,max=150"`
	Password   string   `db:"password" json:"password"`
	FirstName  string   `db:"first_name" json:"first_name" validate:"max=150"`
	LastName   string   `db:"last_name" json:"last_name" validate:"max=150"`
	Email      string   `db:"email" json:"email" validate:"omitempty,email"`
	IsStaff    bool     `db:"is_staff" json:"is_staff"`
	IsActive   bool     `db:"is_active" json:"is_active"`
	DateJoined UnixTime `db:"date_joined" json:"date_joined"`
}

func (u User) Validate() error { return validateRecord("user", u) }

// DisplayName prefers the full name and falls back to the username.
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	}
	return u.Username
}

// Profile is the 1:1 gamification state of a user.
type Profile struct {
	ID               int64  `db:"id" json:"id" validate:"gt=0"`
	UserID           int64  `db:"user_id" json:"user_id" validate:"gt=0"`
	Bio              string `db:"bio" json:"bio"`
	ProfilePic       string `db:"profile_pic" json:"profile_pic"`
	Points           int64  `db:"points" json:"points" validate:"gte=0"`
	Level            int64  `db:"level" json:"level" validate:"gte=1"`
	ExperiencePoints int64  `db:"experience_points" json:"experience_points" validate:"gte=0"`
}

func (p Profile) Validate() error { return validateRecord("profile", p) }

// LevelForPoints returns the level reached with the given point total.
func LevelForPoints(points int64) int64 {
	if points < 0 {
		points = 0
	}
	return points/PointsPerLevel + 1
}

// WithPoints returns a copy of p with earned points added and the level
// recomputed. Experience accumulates the same amount.
func (p Profile) WithPoints(earned int64) Profile {
	if earned < 0 {
		earned = 0
	}
	p.Points += earned
	p.ExperiencePoints += earned
	p.Level = LevelForPoints(p.Points)
	return p
}
