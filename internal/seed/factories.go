// Demo-data factories. These are for development and testing only; nothing
// here runs in production.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"inkwell/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the demo seeder.
type Options struct {
	NumUsers           int
	NumPosts           int
	MaxCommentsPerPost int
	MaxDaysBack        int
	SkipBcrypt         bool
}

// Factory builds demo entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	if opts.MaxDaysBack <= 0 {
		opts.MaxDaysBack = 90
	}
	return &Factory{
		db:   db,
		opts: opts,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	bio := gofakeit.Sentence(10)
	birthday := gofakeit.DateRange(
		time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2005, 12, 31, 0, 0, 0, 0, time.UTC),
	).Format("2006-01-02")

	user := &models.User{
		Username: gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Bio:      bio,
		Birthday: &birthday,
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.PasswordHash = "password123"
	} else {
		hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.PasswordHash = string(hash)
	}

	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePost constructs and persists a sample post with a realistic
// created_at spread over the configured window.
func (f *Factory) CreatePost(author *models.User, categoryID *uint, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		Title:      gofakeit.Sentence(5),
		Content:    gofakeit.Paragraph(2, 4, 8, "\n\n"),
		AuthorID:   author.ID,
		CategoryID: categoryID,
	}

	daysBack := f.rng.Intn(f.opts.MaxDaysBack)
	hoursBack := f.rng.Intn(24)
	post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)
	post.UpdatedAt = post.CreatedAt

	for _, override := range overrides {
		override(post)
	}
	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a sample comment, optionally replying to parent.
func (f *Factory) CreateComment(post *models.Post, author *models.User, parent *models.Comment) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:   post.ID,
		AuthorID: author.ID,
		Content:  gofakeit.Sentence(gofakeit.Number(4, 18)),
	}
	if parent != nil {
		comment.ParentID = &parent.ID
	}

	earliest := post.CreatedAt
	if parent != nil {
		earliest = parent.CreatedAt
	}
	comment.CreatedAt = gofakeit.DateRange(earliest, time.Now())

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// Run populates the database with a demo corpus: users, categorized posts
// and threaded comments. The base data (admin, categories) must already be
// seeded.
func (f *Factory) Run() error {
	var categories []*models.Category
	if err := f.db.Find(&categories).Error; err != nil {
		return err
	}

	users := make([]*models.User, 0, f.opts.NumUsers)
	for i := 0; i < f.opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return err
		}
		users = append(users, user)
	}
	if len(users) == 0 {
		return nil
	}

	for i := 0; i < f.opts.NumPosts; i++ {
		author := users[f.rng.Intn(len(users))]

		var categoryID *uint
		if len(categories) > 0 && f.rng.Intn(10) > 0 {
			categoryID = &categories[f.rng.Intn(len(categories))].ID
		}

		post, err := f.CreatePost(author, categoryID)
		if err != nil {
			return err
		}

		var roots []*models.Comment
		for c := 0; c < f.rng.Intn(f.opts.MaxCommentsPerPost+1); c++ {
			commenter := users[f.rng.Intn(len(users))]

			var parent *models.Comment
			if len(roots) > 0 && f.rng.Intn(3) == 0 {
				parent = roots[f.rng.Intn(len(roots))]
			}
			comment, err := f.CreateComment(post, commenter, parent)
			if err != nil {
				return err
			}
			if parent == nil {
				roots = append(roots, comment)
			}
		}
	}
	return nil
}
