package domain

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User validation errors.
var (
	ErrEmptyUserUID = errors.New("user uid cannot be empty")
	ErrEmptyEmail   = errors.New("email cannot be empty")
	ErrInvalidEmail = errors.New("invalid email format")
)

// User represents a registered user profile. Identity is issued by an
// external provider, so the uid is an opaque external string rather than an
// ID this service generates.
type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"         json:"id"`
	UID         string             `bson:"uid"                   json:"uid"`
	Email       string             `bson:"email"                 json:"email"`
	DisplayName string             `bson:"displayName,omitempty" json:"displayName,omitempty"`
	PhotoURL    string             `bson:"photoURL,omitempty"    json:"photoURL,omitempty"`
	PhoneNumber string             `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt"             json:"createdAt"`
}

// NewUser creates a new User with the given external uid and email.
// Returns an error if validation fails.
func NewUser(uid, email string) (*User, error) {
	user := &User{
		UID:       uid,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
// Returns an error if any field fails validation.
func (u *User) Validate() error {
	if u.UID == "" {
		return ErrEmptyUserUID
	}
	if u.Email == "" {
		return ErrEmptyEmail
	}
	if !validateEmailFormat(u.Email) {
		return ErrInvalidEmail
	}
	return nil
}

// validateEmailFormat performs basic validation of email format. Full RFC
// 5322 validation happens at the API boundary; this is a last-resort check
// for entities constructed in code.
func validateEmailFormat(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domainPart := email[at+1:]
	dot := strings.Index(domainPart, ".")
	return dot > 0 && dot < len(domainPart)-1
}
