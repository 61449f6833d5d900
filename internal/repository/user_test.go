package repository

import (
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func strPtr(s string) *string { return &s }

func TestUserRepository_Create(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)

	t.Run("creates a user", func(t *testing.T) {
		err := repo.Create(ctxb(), &models.User{Username: "alice", PasswordHash: "x"})
		require.NoError(t, err)

		got, err := repo.GetByUsername(ctxb(), "alice")
		require.NoError(t, err)
		assert.False(t, got.IsAdmin)
	})

	t.Run("duplicate username is a conflict", func(t *testing.T) {
		err := repo.Create(ctxb(), &models.User{Username: "alice", PasswordHash: "y"})
		require.Error(t, err)

		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "CONFLICT", appErr.Code)
	})
}

func TestUserRepository_UpdateProfile(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	user := createUser(t, db, "alice", false)
	require.NoError(t, db.Model(user).Updates(map[string]interface{}{
		"bio":        "original bio",
		"avatar_url": "/static/uploads/a.png",
	}).Error)

	t.Run("updates only provided fields", func(t *testing.T) {
		err := repo.UpdateProfile(ctxb(), user.ID, models.ProfileUpdate{
			Birthday: strPtr("1990-05-04"),
		})
		require.NoError(t, err)

		got, err := repo.GetByID(ctxb(), user.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Birthday)
		assert.Equal(t, "1990-05-04", *got.Birthday)
		assert.Equal(t, "original bio", got.Bio)
		assert.Equal(t, "/static/uploads/a.png", got.AvatarURL)
	})

	t.Run("empty update is a no-op", func(t *testing.T) {
		require.NoError(t, repo.UpdateProfile(ctxb(), user.ID, models.ProfileUpdate{}))
	})

	t.Run("missing user reports not found", func(t *testing.T) {
		err := repo.UpdateProfile(ctxb(), 9999, models.ProfileUpdate{Bio: strPtr("hi")})
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("bio can be cleared to empty", func(t *testing.T) {
		require.NoError(t, repo.UpdateProfile(ctxb(), user.ID, models.ProfileUpdate{Bio: strPtr("")}))

		got, err := repo.GetByID(ctxb(), user.ID)
		require.NoError(t, err)
		assert.Empty(t, got.Bio)
	})
}

func TestUserRepository_Delete(t *testing.T) {
	t.Run("admin accounts are refused", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewUserRepository(db)
		admin := createUser(t, db, "admin", true)

		err := repo.Delete(ctxb(), admin.ID)
		assert.ErrorIs(t, err, ErrAdminUndeletable)

		var still models.User
		require.NoError(t, db.First(&still, admin.ID).Error)
	})

	t.Run("missing user reports not found", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewUserRepository(db)

		err := repo.Delete(ctxb(), 9999)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("cascade removes posts and the comment closure", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewUserRepository(db)

		doomed := createUser(t, db, "doomed", false)
		bystander := createUser(t, db, "bystander", false)

		doomedPost := createPost(t, db, "doomed post", doomed.ID, nil)
		otherPost := createPost(t, db, "other post", bystander.ID, nil)

		// Comment by the doomed user on someone else's post, with a reply
		// from the bystander underneath; both must go.
		onOther := createComment(t, db, otherPost.ID, doomed.ID, nil, "by doomed")
		replyToDoomed := createComment(t, db, otherPost.ID, bystander.ID, &onOther.ID, "reply to doomed")

		// Bystander's comment on the doomed user's post also goes.
		onDoomedPost := createComment(t, db, doomedPost.ID, bystander.ID, nil, "on doomed post")

		// Unrelated comment survives.
		unrelated := createComment(t, db, otherPost.ID, bystander.ID, nil, "unrelated")

		require.NoError(t, repo.Delete(ctxb(), doomed.ID))

		var userGone models.User
		assert.ErrorIs(t, db.First(&userGone, doomed.ID).Error, gorm.ErrRecordNotFound)

		var postGone models.Post
		assert.ErrorIs(t, db.First(&postGone, doomedPost.ID).Error, gorm.ErrRecordNotFound)

		for _, id := range []uint{onOther.ID, replyToDoomed.ID, onDoomedPost.ID} {
			var gone models.Comment
			assert.ErrorIs(t, db.First(&gone, id).Error, gorm.ErrRecordNotFound, "comment %d", id)
		}

		var kept models.Comment
		require.NoError(t, db.First(&kept, unrelated.ID).Error)

		var otherStill models.Post
		require.NoError(t, db.First(&otherStill, otherPost.ID).Error)
	})
}

func TestUserRepository_List(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	for _, name := range []string{"a", "b", "c"} {
		createUser(t, db, name, false)
	}

	users, total, err := repo.List(ctxb(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, users, 2)
}
