package domain

import "time"

type Role string

const (
	RoleAdmin Role = "Admin"
	RoleUser  Role = "User"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser:
		return true
	default:
		return false
	}
}

type Category string

const (
	CategoryERP       Category = "ERP"
	CategoryTicketing Category = "Ticketing"
	CategoryHR        Category = "HR"
	CategoryDMS       Category = "DMS"
	CategoryOther     Category = "Other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryERP, CategoryTicketing, CategoryHR, CategoryDMS, CategoryOther:
		return true
	default:
		return false
	}
}

type AppStatus string

const (
	AppStatusActive    AppStatus = "Active"
	AppStatusPaused    AppStatus = "Paused"
	AppStatusCancelled AppStatus = "Cancelled"
)

func (s AppStatus) Valid() bool {
	switch s {
	case AppStatusActive, AppStatusPaused, AppStatusCancelled:
		return true
	default:
		return false
	}
}

type TicketStatus string

const (
	TicketOpen       TicketStatus = "Open"
	TicketInProgress TicketStatus = "In Progress"
	TicketResolved   TicketStatus = "Resolved"
)

func (s TicketStatus) Valid() bool {
	switch s {
	case TicketOpen, TicketInProgress, TicketResolved:
		return true
	default:
		return false
	}
}

type User struct {
	ID             int64     `json:"id" db:"id"`
	FullName       string    `json:"full_name" db:"full_name"`
	Email          string    `json:"email" db:"email"`
	HashedPassword string    `json:"-" db:"hashed_password"`
	Role           Role      `json:"role" db:"role"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Application is a catalog entry. OwnerEmail is resolved from the owning user
// at read time and is empty when the owner account no longer exists.
type Application struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Category    Category  `json:"category" db:"category"`
	OwnerUserID *int64    `json:"owner_user_id" db:"owner_user_id"`
	OwnerEmail  string    `json:"owner" db:"owner_email"`
	Status      AppStatus `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

func (a Application) OwnedBy(userID int64) bool {
	return a.OwnerUserID != nil && *a.OwnerUserID == userID
}

// ApplicationView is an application annotated with the caller's effective level.
type ApplicationView struct {
	Application
	PermissionLevel PermissionLevel `json:"permission_level"`
}

type Grant struct {
	ID              int64           `json:"id" db:"id"`
	UserID          int64           `json:"user_id" db:"user_id"`
	ApplicationID   int64           `json:"application_id" db:"application_id"`
	PermissionLevel PermissionLevel `json:"permission_level" db:"permission_level"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

type Ticket struct {
	ID            int64        `json:"id" db:"id"`
	Title         string       `json:"title" db:"title"`
	Description   string       `json:"description" db:"description"`
	ApplicationID int64        `json:"application_id" db:"application_id"`
	CreatedBy     *int64       `json:"created_by" db:"created_by"`
	Status        TicketStatus `json:"status" db:"status"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" db:"updated_at"`
}

func (t Ticket) CreatedByUser(userID int64) bool {
	return t.CreatedBy != nil && *t.CreatedBy == userID
}

// Partial updates: nil fields are left untouched.

type ApplicationPatch struct {
	Name     *string
	Category *Category
	Status   *AppStatus
}

func (p ApplicationPatch) Empty() bool {
	return p.Name == nil && p.Category == nil && p.Status == nil
}

type UserPatch struct {
	FullName *string
	Role     *Role
}

func (p UserPatch) Empty() bool {
	return p.FullName == nil && p.Role == nil
}

type TicketPatch struct {
	Title       *string
	Description *string
	Status      *TicketStatus
}

func (p TicketPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil
}

type ApplicationFilter struct {
	Search    string
	Category  Category
	Status    AppStatus
	VisibleTo *int64
}

type UserFilter struct {
	Search string
}

type TicketFilter struct {
	CreatedBy     *int64
	ApplicationID *int64
	Status        TicketStatus
	Search        string
}

type ChatSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

type ChatReply struct {
	Text    string       `json:"text"`
	Sources []ChatSource `json:"sources"`
}

type ChatTranscript struct {
	UserID      int64
	Query       string
	Reply       ChatReply
	RequestedAt time.Time
}
