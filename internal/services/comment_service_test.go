package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/podelme/podel/internal/database/testutil"
	"github.com/podelme/podel/internal/models"
)

func setupCommentService(t *testing.T) (*gorm.DB, *CommentService, *models.User, *models.Website) {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewCommentService(db)
	require.NoError(t, err)

	user := &models.User{Name: "commenter", Language: models.DefaultLanguage, PasswordHash: "x"}
	require.NoError(t, db.Create(user).Error)

	website := &models.Website{Name: "podela", DomainName: "podela.me"}
	require.NoError(t, db.Create(website).Error)

	return db, svc, user, website
}

func TestCommentCreateAndList(t *testing.T) {
	_, svc, user, website := setupCommentService(t)

	created, err := svc.Create(context.Background(), models.ParentWebsite, website.ID, user.ID, "  great site  ")
	require.NoError(t, err)
	require.Equal(t, "great site", created.Text)
	require.Len(t, created.ID, 26)

	comments, err := svc.List(context.Background(), models.ParentWebsite, website.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	require.Equal(t, created.ID, comments[0].ID)
	require.NotNil(t, comments[0].User)
	require.Equal(t, "commenter", comments[0].User.Name)
}

func TestCommentCreateRejectsUnknownKind(t *testing.T) {
	_, svc, user, website := setupCommentService(t)

	_, err := svc.Create(context.Background(), models.ParentKind("user; DROP TABLE"), website.ID, user.ID, "text")
	require.ErrorIs(t, err, ErrUnknownParentKind)

	_, err = svc.List(context.Background(), models.ParentKind("bogus"), website.ID, 10, 0)
	require.ErrorIs(t, err, ErrUnknownParentKind)
}

func TestCommentCreateRequiresExistingParent(t *testing.T) {
	_, svc, user, _ := setupCommentService(t)

	_, err := svc.Create(context.Background(), models.ParentWebsite, models.NewID(), user.ID, "orphan")
	require.ErrorIs(t, err, ErrParentNotFound)
}

func TestCommentListCapsPageSize(t *testing.T) {
	_, svc, user, website := setupCommentService(t)

	for i := 0; i < 25; i++ {
		_, err := svc.Create(context.Background(), models.ParentWebsite, website.ID, user.ID, fmt.Sprintf("comment %d", i))
		require.NoError(t, err)
	}

	comments, err := svc.List(context.Background(), models.ParentWebsite, website.ID, 100, 0)
	require.NoError(t, err)
	require.Len(t, comments, 20)
}
