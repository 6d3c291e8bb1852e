// Package validation provides input validation for the application's forms.
package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail checks basic email format.
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	if len(email) > 250 {
		return fmt.Errorf("email must not exceed 250 characters")
	}
	return nil
}

// ValidatePassword checks if a password meets minimum requirements.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}
	if len(password) > 128 {
		return fmt.Errorf("password must not exceed 128 characters")
	}
	return nil
}

// ValidateName checks a display name.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required")
	}
	if len(name) > 250 {
		return fmt.Errorf("name must not exceed 250 characters")
	}
	return nil
}

// ValidateImageURL checks that an image reference is an absolute http(s) URL.
func ValidateImageURL(raw string) error {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return fmt.Errorf("image URL must be a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("image URL must use http or https")
	}
	if len(raw) > 250 {
		return fmt.Errorf("image URL must not exceed 250 characters")
	}
	return nil
}

// RegisterForm carries the registration form fields.
type RegisterForm struct {
	Email    string
	Password string
	Name     string
}

// Validate returns a field->message map; an empty map means the form is valid.
func (f RegisterForm) Validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(f.Email) == "" {
		errs["email"] = "email is required"
	} else if err := ValidateEmail(f.Email); err != nil {
		errs["email"] = err.Error()
	}
	if f.Password == "" {
		errs["password"] = "password is required"
	} else if err := ValidatePassword(f.Password); err != nil {
		errs["password"] = err.Error()
	}
	if err := ValidateName(f.Name); err != nil {
		errs["name"] = err.Error()
	}
	return errs
}

// LoginForm carries the login form fields.
type LoginForm struct {
	Email    string
	Password string
}

func (f LoginForm) Validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(f.Email) == "" {
		errs["email"] = "email is required"
	} else if err := ValidateEmail(f.Email); err != nil {
		errs["email"] = err.Error()
	}
	if f.Password == "" {
		errs["password"] = "password is required"
	}
	return errs
}

// PostForm carries the create/edit post form fields.
type PostForm struct {
	Title    string
	Subtitle string
	Body     string
	ImageURL string
}

func (f PostForm) Validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(f.Title) == "" {
		errs["title"] = "title is required"
	} else if len(f.Title) > 250 {
		errs["title"] = "title must not exceed 250 characters"
	}
	if strings.TrimSpace(f.Subtitle) == "" {
		errs["subtitle"] = "subtitle is required"
	} else if len(f.Subtitle) > 250 {
		errs["subtitle"] = "subtitle must not exceed 250 characters"
	}
	if strings.TrimSpace(f.Body) == "" {
		errs["body"] = "body is required"
	}
	if strings.TrimSpace(f.ImageURL) == "" {
		errs["image_url"] = "image URL is required"
	} else if err := ValidateImageURL(f.ImageURL); err != nil {
		errs["image_url"] = err.Error()
	}
	return errs
}

// CommentForm carries the comment form fields.
type CommentForm struct {
	Body string
}

func (f CommentForm) Validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(f.Body) == "" {
		errs["body"] = "comment text is required"
	} else if len(f.Body) > 10000 {
		errs["body"] = "comment too long (max 10000 characters)"
	}
	return errs
}
