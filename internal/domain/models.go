// Package domain defines the persistence models for users, athlete and
// recruiter profiles, matches, and chat messages. These types are mapped
// with GORM and form the core data layer of the TalentScout backend.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// User roles. Every account is either an athlete or a recruiter; the role
// decides which profile record accompanies the user.
const (
	RoleAthlete   = "athlete"
	RoleRecruiter = "recruiter"
)

// Match lifecycle statuses. A match starts pending and may move exactly once
// to accepted or declined; both are terminal.
const (
	MatchPending  = "pending"
	MatchAccepted = "accepted"
	MatchDeclined = "declined"
)

// User represents an account on the platform. Authentication state
// (password hash), verification, and subscription flags live here; the
// sport-specific or company-specific profile lives in Athlete / Recruiter.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Email: unique login identifier.
//   - PasswordHash: bcrypt hash; never serialized.
//   - Role: "athlete" or "recruiter" (enforced by DB constraint).
//   - IsVerified / IsSubscribed: account state flags.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker (retains row for audit/history).
type User struct {
	ID           string         `json:"id"            gorm:"type:char(36);primaryKey"`
	Name         string         `json:"name"          gorm:"type:varchar(255);not null"`
	Email        string         `json:"email"         gorm:"type:varchar(255);not null;uniqueIndex:ux_users_email"`
	PasswordHash string         `json:"-"             gorm:"type:varchar(255);not null"`
	Role         string         `json:"role"          gorm:"type:varchar(16);not null;check:role IN ('athlete','recruiter')"`
	IsVerified   bool           `json:"is_verified"   gorm:"not null;default:false"`
	IsSubscribed bool           `json:"is_subscribed" gorm:"not null;default:false"`
	Avatar       string         `json:"avatar,omitempty" gorm:"type:varchar(512)"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-"             gorm:"index"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Athlete is the sport-facing profile attached to a user with the athlete
// role. Exactly one athlete profile exists per athlete user.
type Athlete struct {
	ID        string         `json:"id"       gorm:"type:char(36);primaryKey"`
	UserID    string         `json:"user_id"  gorm:"type:char(36);not null;uniqueIndex:ux_athletes_user"`
	Sport     string         `json:"sport"    gorm:"type:varchar(64);not null"`
	Position  string         `json:"position,omitempty" gorm:"type:varchar(64)"`
	Bio       string         `json:"bio,omitempty"      gorm:"type:text"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"        gorm:"index"`

	// User is the owning account. Profiles are cascade-deleted with the user.
	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Athlete.
func (Athlete) TableName() string { return "athletes" }

// Recruiter is the company-facing profile attached to a user with the
// recruiter role. Exactly one recruiter profile exists per recruiter user.
type Recruiter struct {
	ID        string         `json:"id"       gorm:"type:char(36);primaryKey"`
	UserID    string         `json:"user_id"  gorm:"type:char(36);not null;uniqueIndex:ux_recruiters_user"`
	Company   string         `json:"company"  gorm:"type:varchar(255);not null"`
	Bio       string         `json:"bio,omitempty" gorm:"type:text"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"        gorm:"index"`

	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Recruiter.
func (Recruiter) TableName() string { return "recruiters" }

// Match connects one athlete and one recruiter. The pair is fixed at
// creation; only Status may change afterwards, and only via the conditional
// pending→accepted / pending→declined update in the repository. Matches are
// never physically deleted in normal flow.
//
// The (athlete_id, recruiter_id) pair is unique so a recruiter cannot open
// a second match against the same athlete.
type Match struct {
	ID          string         `json:"id"           gorm:"type:char(36);primaryKey"`
	AthleteID   string         `json:"athlete_id"   gorm:"type:char(36);not null;uniqueIndex:ux_matches_pair,priority:1;index:idx_matches_athlete"`
	RecruiterID string         `json:"recruiter_id" gorm:"type:char(36);not null;uniqueIndex:ux_matches_pair,priority:2;index:idx_matches_recruiter"`
	Status      string         `json:"status"       gorm:"type:varchar(16);not null;default:'pending';check:status IN ('pending','accepted','declined')"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-"            gorm:"index"`

	Athlete   Athlete   `json:"-" gorm:"foreignKey:AthleteID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Recruiter Recruiter `json:"-" gorm:"foreignKey:RecruiterID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Match.
func (Match) TableName() string { return "matches" }

// Terminal reports whether the match has left the pending state.
func (m Match) Terminal() bool { return m.Status != MatchPending }

// Message is a single chat utterance inside a match's room. Messages are
// immutable after creation and replayed in Seq order.
//
// Seq is the table's autoincrement key, assigned by the store at insert
// time. It gives a total, monotonically increasing order across concurrent
// appends without relying on clock resolution.
type Message struct {
	Seq       uint64         `json:"seq"       gorm:"primaryKey;autoIncrement"`
	ID        string         `json:"id"        gorm:"type:char(36);not null;uniqueIndex:ux_messages_id"`
	MatchID   string         `json:"match_id"  gorm:"type:char(36);not null;index:idx_match_msgs"`
	SenderID  string         `json:"sender_id" gorm:"type:char(36);not null"`
	Text      string         `json:"text"      gorm:"type:text;not null"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `json:"-"         gorm:"index"`

	// Match is the parent room. Messages are cascade-deleted with the match.
	Match Match `json:"-" gorm:"foreignKey:MatchID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Message.
func (Message) TableName() string { return "messages" }
