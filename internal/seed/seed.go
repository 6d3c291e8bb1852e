// Package seed populates the database with development data.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"quill/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configures the seeder.
type Options struct {
	NumUsers           int
	NumPosts           int
	MaxCommentsPerPost int
	ShouldClean        bool
}

// DefaultOptions are sensible development defaults.
func DefaultOptions() Options {
	return Options{
		NumUsers:           8,
		NumPosts:           12,
		MaxCommentsPerPost: 5,
	}
}

// Run seeds the database. The first account created is the admin (the
// repository layer promotes it); its credentials are printed so local
// development can log in.
func Run(db *gorm.DB, opts Options) error {
	if opts.ShouldClean {
		if err := clean(db); err != nil {
			return err
		}
	}

	const adminEmail = "admin@example.com"
	const adminPassword = "changeme-admin"

	admin, err := ensureUser(db, adminEmail, adminPassword, "Site Admin", true)
	if err != nil {
		return err
	}
	log.Printf("admin account: %s / %s", adminEmail, adminPassword)

	users := []*models.User{admin}
	for i := 0; i < opts.NumUsers; i++ {
		name := gofakeit.Name()
		email := fmt.Sprintf("%s%d@%s", gofakeit.Username(), i, gofakeit.DomainName())
		user, err := ensureUser(db, email, gofakeit.Password(true, true, true, false, false, 12), name, false)
		if err != nil {
			return err
		}
		users = append(users, user)
	}

	var posts []*models.BlogPost
	for i := 0; i < opts.NumPosts; i++ {
		post := &models.BlogPost{
			Title:    fmt.Sprintf("%s #%d", gofakeit.BookTitle(), i+1),
			Subtitle: gofakeit.Sentence(6),
			Body:     gofakeit.Paragraph(3, 4, 12, "\n\n"),
			ImageURL: fmt.Sprintf("https://picsum.photos/seed/%d/900/400", i+1),
			Date:     gofakeit.DateRange(time.Now().AddDate(-1, 0, 0), time.Now()).Format("January 2, 2006"),
			AuthorID: admin.ID,
		}
		if err := db.Create(post).Error; err != nil {
			return fmt.Errorf("seed post %q: %w", post.Title, err)
		}
		posts = append(posts, post)
	}

	for _, post := range posts {
		n := rand.Intn(opts.MaxCommentsPerPost + 1)
		for i := 0; i < n; i++ {
			author := users[rand.Intn(len(users))]
			comment := &models.Comment{
				Body:     gofakeit.Sentence(12),
				AuthorID: author.ID,
				PostID:   post.ID,
			}
			if err := db.Create(comment).Error; err != nil {
				return fmt.Errorf("seed comment on post %d: %w", post.ID, err)
			}
		}
	}

	log.Printf("seeded %d users, %d posts", len(users), len(posts))
	return nil
}

func ensureUser(db *gorm.DB, email, password, name string, isAdmin bool) (*models.User, error) {
	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		IsAdmin:      isAdmin,
	}
	if err := db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("seed user %q: %w", email, err)
	}
	return user, nil
}

func clean(db *gorm.DB) error {
	for _, table := range []string{"comments", "blog_posts", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clean %s: %w", table, err)
		}
	}
	return nil
}
